package utility

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"talking_menu/internal/common"
)

// VerifiedIdentity là thông tin principal sau khi xác thực token thành công
type VerifiedIdentity struct {
	UID     string
	Email   string
	Name    string
	Picture string
	Claims  map[string]interface{}
}

// IdentityVerifier xác thực bearer token với identity provider
type IdentityVerifier interface {
	VerifyToken(ctx context.Context, token string) (*VerifiedIdentity, error)
}

// LocalJWTVerifier xác thực JWT HS256 ký bằng JWT_SECRET (môi trường dev/test)
type LocalJWTVerifier struct {
	secret []byte
	issuer string
}

// NewLocalJWTVerifier tạo verifier với secret cho trước
func NewLocalJWTVerifier(secret string) *LocalJWTVerifier {
	return &LocalJWTVerifier{secret: []byte(secret), issuer: "talking-menu-local"}
}

// LocalClaims là claims của token local, mô phỏng các field Firebase trả về
type LocalClaims struct {
	Email   string `json:"email,omitempty"`
	Name    string `json:"name,omitempty"`
	Picture string `json:"picture,omitempty"`
	jwt.RegisteredClaims
}

// VerifyToken kiểm tra chữ ký, issuer và hạn của token
func (v *LocalJWTVerifier) VerifyToken(_ context.Context, token string) (*VerifiedIdentity, error) {
	claims := &LocalClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return v.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithIssuer(v.issuer))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, common.NewError(common.ErrCodeAuthToken, "Token expired", common.StatusUnauthorized, err)
		}
		return nil, common.NewError(common.ErrCodeAuthToken, "Invalid token", common.StatusUnauthorized, err)
	}
	if !parsed.Valid || claims.Subject == "" {
		return nil, common.ErrTokenInvalid
	}

	return &VerifiedIdentity{
		UID:     claims.Subject,
		Email:   claims.Email,
		Name:    claims.Name,
		Picture: claims.Picture,
		Claims: map[string]interface{}{
			"email": claims.Email,
			"name":  claims.Name,
		},
	}, nil
}

// IssueToken ký token local cho uid (dùng bởi tmctl và test)
func (v *LocalJWTVerifier) IssueToken(uid, email, name string, ttl time.Duration) (string, error) {
	if uid == "" {
		return "", fmt.Errorf("uid is required")
	}
	now := time.Now()
	claims := LocalClaims{
		Email: email,
		Name:  name,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   uid,
			Issuer:    v.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(v.secret)
}
