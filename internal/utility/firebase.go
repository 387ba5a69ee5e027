package utility

import (
	"context"
	"fmt"
	"os"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
	"google.golang.org/api/option"

	"talking_menu/internal/common"
)

// FirebaseVerifier xác thực Firebase ID token qua Admin SDK
type FirebaseVerifier struct {
	client *auth.Client
}

// InitFirebase khởi tạo Firebase Admin SDK và trả về verifier.
// credentialsPath rỗng thì dùng Application Default Credentials.
func InitFirebase(ctx context.Context, projectID, credentialsPath string) (*FirebaseVerifier, error) {
	var opts []option.ClientOption
	if credentialsPath != "" {
		if _, err := os.Stat(credentialsPath); err != nil {
			return nil, fmt.Errorf("firebase credentials file not found: %s", credentialsPath)
		}
		opts = append(opts, option.WithCredentialsFile(credentialsPath))
	}

	app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: projectID}, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Firebase app: %w", err)
	}

	client, err := app.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get Firebase Auth client: %w", err)
	}
	return &FirebaseVerifier{client: client}, nil
}

// VerifyToken xác thực ID token; token sai/hết hạn trả 401, lỗi khác trả 502
func (v *FirebaseVerifier) VerifyToken(ctx context.Context, idToken string) (*VerifiedIdentity, error) {
	token, err := v.client.VerifyIDToken(ctx, idToken)
	if err != nil {
		if auth.IsIDTokenExpired(err) || auth.IsIDTokenInvalid(err) || auth.IsIDTokenRevoked(err) {
			return nil, common.NewError(common.ErrCodeAuthToken, "Invalid or expired token", common.StatusUnauthorized, err)
		}
		return nil, common.NewUpstreamError("Identity provider unavailable", err)
	}

	id := &VerifiedIdentity{UID: token.UID, Claims: token.Claims}
	if email, ok := token.Claims["email"].(string); ok {
		id.Email = email
	}
	if name, ok := token.Claims["name"].(string); ok {
		id.Name = name
	}
	if picture, ok := token.Claims["picture"].(string); ok {
		id.Picture = picture
	}
	return id, nil
}
