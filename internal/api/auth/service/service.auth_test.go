package authsvc

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	authdto "talking_menu/internal/api/auth/dto"
	models "talking_menu/internal/api/auth/models"
	"talking_menu/internal/common"
	"talking_menu/internal/store/memstore"
	"talking_menu/internal/utility"
)

func TestSignIn_CreatesDinerThenSyncsProfile(t *testing.T) {
	db := memstore.New()
	svc := NewAuthService(db.Stores().Users)
	ctx := context.Background()

	_, err := svc.SignIn(ctx, nil)
	assert.ErrorIs(t, err, common.ErrUnauthorized)

	user, err := svc.SignIn(ctx, &utility.VerifiedIdentity{UID: "uid-1", Email: "Lan@Example.com", Name: "Lan"})
	require.NoError(t, err)
	assert.Equal(t, "lan@example.com", user.Email)
	assert.Equal(t, []string{models.RoleDiner}, user.Roles)

	user, err = svc.SignIn(ctx, &utility.VerifiedIdentity{UID: "uid-1", Email: "lan@example.com", Name: "Lan Nguyen"})
	require.NoError(t, err)
	assert.Equal(t, "Lan Nguyen", user.Name)
	assert.Equal(t, []string{models.RoleDiner}, user.Roles)
}

func TestSignUp_PrefersInputProfile(t *testing.T) {
	db := memstore.New()
	svc := NewAuthService(db.Stores().Users)

	user, err := svc.SignUp(context.Background(),
		&utility.VerifiedIdentity{UID: "uid-2", Email: "minh@example.com", Name: "From Google"},
		&authdto.SignUpInput{Name: "Minh", AvatarURL: "https://cdn.example.com/minh.png"})
	require.NoError(t, err)
	assert.Equal(t, "Minh", user.Name)
	assert.Equal(t, "https://cdn.example.com/minh.png", user.AvatarURL)
}

func TestGetUserAccess_SelfOrPlatformAdmin(t *testing.T) {
	db := memstore.New()
	svc := NewAuthService(db.Stores().Users)
	ctx := context.Background()
	alice := db.PutUser(models.User{FirebaseUID: "alice", Roles: []string{models.RoleDiner}})
	bob := db.PutUser(models.User{FirebaseUID: "bob", Roles: []string{models.RoleDiner}})
	admin := db.PutUser(models.User{FirebaseUID: "root", Roles: []string{models.RoleTalkingMenuAdmin}})

	out, err := svc.GetUserAccess(ctx, alice, "alice")
	require.NoError(t, err)
	assert.Equal(t, "alice", out.UserID)
	assert.NotNil(t, out.AccessibleDashboards)

	_, err = svc.GetUserAccess(ctx, bob, "alice")
	assert.ErrorIs(t, err, common.ErrForbidden)

	_, err = svc.GetUserAccess(ctx, admin, "alice")
	assert.NoError(t, err)

	_, err = svc.GetUserAccess(ctx, admin, "ghost")
	assert.ErrorIs(t, err, common.ErrUserNotFound)
}

func TestAssignRole(t *testing.T) {
	db := memstore.New()
	svc := NewAuthService(db.Stores().Users)
	ctx := context.Background()
	owner := db.PutUser(models.User{FirebaseUID: "owner", Roles: []string{models.RoleDiner}})
	admin := db.PutUser(models.User{FirebaseUID: "root", Roles: []string{models.RoleTalkingMenuAdmin}})

	_, err := svc.AssignRole(ctx, owner, "owner", models.RoleRestaurantMainAdmin)
	assert.ErrorIs(t, err, common.ErrAdminRequired)

	out, err := svc.AssignRole(ctx, admin, "owner", models.RoleRestaurantMainAdmin)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{models.RoleDiner, models.RoleRestaurantMainAdmin}, out.Roles)

	// gán lại không tạo role trùng
	out, err = svc.AssignRole(ctx, admin, "owner", models.RoleRestaurantMainAdmin)
	require.NoError(t, err)
	assert.Len(t, out.Roles, 2)

	_, err = svc.AssignRole(ctx, admin, "ghost", models.RoleRestaurantMainAdmin)
	assert.ErrorIs(t, err, common.ErrUserNotFound)
}

func TestPromotePlatformAdmin_CreatesMissingUser(t *testing.T) {
	db := memstore.New()
	svc := NewAuthService(db.Stores().Users)
	ctx := context.Background()

	assert.Error(t, svc.PromotePlatformAdmin(ctx, ""))
	require.NoError(t, svc.PromotePlatformAdmin(ctx, "bootstrap"))

	user, err := svc.GetProfile(ctx, "bootstrap")
	require.NoError(t, err)
	assert.True(t, user.IsPlatformAdmin())
}
