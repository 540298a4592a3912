package core

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"animehub/pkg/models"
)

type fakeUserRepo struct {
	users map[int64]*models.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[int64]*models.User)}
}

func (f *fakeUserRepo) Create(_ context.Context, user *models.User) error {
	user.CreatedAt = time.Now()
	cp := *user
	f.users[user.ID] = &cp
	return nil
}

func (f *fakeUserRepo) GetByID(_ context.Context, id int64) (*models.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, models.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUserRepo) GetByEmail(_ context.Context, email string) (*models.User, error) {
	for _, u := range f.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, models.ErrUserNotFound
}

func (f *fakeUserRepo) EmailExists(ctx context.Context, email string) (bool, error) {
	_, err := f.GetByEmail(ctx, email)
	return err == nil, nil
}

func (f *fakeUserRepo) List(_ context.Context) ([]models.User, error) { return nil, nil }
func (f *fakeUserRepo) SearchByName(_ context.Context, _ string) ([]models.User, error) {
	return nil, nil
}
func (f *fakeUserRepo) Update(_ context.Context, _ int64, _ *models.UpdateProfileRequest) error {
	return nil
}

func (f *fakeUserRepo) SetBlocked(_ context.Context, id int64, blocked bool) error {
	u, ok := f.users[id]
	if !ok {
		return models.ErrUserNotFound
	}
	u.IsBlocked = blocked
	return nil
}

func (f *fakeUserRepo) Delete(_ context.Context, id int64) error {
	if _, ok := f.users[id]; !ok {
		return models.ErrUserNotFound
	}
	delete(f.users, id)
	return nil
}

func newAuthFixture() (AuthService, *fakeUserRepo) {
	userRepo := newFakeUserRepo()
	svc := NewAuthService(userRepo, newFakeSequence(), "test-secret", "animehub-test", time.Hour)
	return svc, userRepo
}

func TestRegisterAndLogin(t *testing.T) {
	svc, _ := newAuthFixture()
	ctx := context.Background()

	resp, err := svc.Register(ctx, models.RegisterRequest{
		Name:     "testuser",
		Email:    "Test@Example.com",
		Password: "password123",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, "test@example.com", resp.User.Email, "emails are normalised to lower case")
	assert.Greater(t, resp.User.ID, int64(0))

	login, err := svc.Login(ctx, models.LoginRequest{
		Email:    "test@example.com",
		Password: "password123",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, login.Token)
	assert.Equal(t, resp.User.ID, login.User.ID)
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	svc, _ := newAuthFixture()
	ctx := context.Background()

	req := models.RegisterRequest{Name: "testuser", Email: "dup@example.com", Password: "password123"}
	_, err := svc.Register(ctx, req)
	require.NoError(t, err)

	req.Name = "otheruser"
	_, err = svc.Register(ctx, req)
	assert.ErrorIs(t, err, models.ErrEmailExists)
}

func TestRegisterValidation(t *testing.T) {
	svc, _ := newAuthFixture()
	ctx := context.Background()

	cases := []struct {
		name string
		req  models.RegisterRequest
	}{
		{"short name", models.RegisterRequest{Name: "ab", Email: "a@b.com", Password: "password123"}},
		{"bad email", models.RegisterRequest{Name: "testuser", Email: "not-an-email", Password: "password123"}},
		{"short password", models.RegisterRequest{Name: "testuser", Email: "a@b.com", Password: "short"}},
		{"long name", models.RegisterRequest{Name: strings.Repeat("x", 51), Email: "a@b.com", Password: "password123"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Register(ctx, tc.req)
			assert.ErrorIs(t, err, models.ErrInvalidInput)
		})
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	svc, _ := newAuthFixture()
	ctx := context.Background()

	_, err := svc.Register(ctx, models.RegisterRequest{
		Name: "testuser", Email: "login@example.com", Password: "password123",
	})
	require.NoError(t, err)

	_, err = svc.Login(ctx, models.LoginRequest{Email: "login@example.com", Password: "wrongpassword"})
	assert.ErrorIs(t, err, models.ErrInvalidCredentials)

	_, err = svc.Login(ctx, models.LoginRequest{Email: "nobody@example.com", Password: "password123"})
	assert.ErrorIs(t, err, models.ErrInvalidCredentials)
}

func TestValidateToken(t *testing.T) {
	svc, _ := newAuthFixture()
	ctx := context.Background()

	resp, err := svc.Register(ctx, models.RegisterRequest{
		Name: "testuser", Email: "tok@example.com", Password: "password123",
	})
	require.NoError(t, err)

	user, err := svc.ValidateToken(ctx, resp.Token)
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID, user.ID)

	_, err = svc.ValidateToken(ctx, "not.a.token")
	assert.ErrorIs(t, err, models.ErrInvalidToken)

	_, err = svc.ValidateToken(ctx, resp.Token+"tampered")
	assert.ErrorIs(t, err, models.ErrInvalidToken)
}

func TestValidateTokenReflectsRevocation(t *testing.T) {
	svc, userRepo := newAuthFixture()
	ctx := context.Background()

	resp, err := svc.Register(ctx, models.RegisterRequest{
		Name: "testuser", Email: "rev@example.com", Password: "password123",
	})
	require.NoError(t, err)

	// Blocking takes effect on the very next validation, inside token lifetime
	require.NoError(t, userRepo.SetBlocked(ctx, resp.User.ID, true))
	_, err = svc.ValidateToken(ctx, resp.Token)
	assert.ErrorIs(t, err, models.ErrUserBlocked)

	require.NoError(t, userRepo.SetBlocked(ctx, resp.User.ID, false))
	_, err = svc.ValidateToken(ctx, resp.Token)
	assert.NoError(t, err)

	// So does deletion
	require.NoError(t, userRepo.Delete(ctx, resp.User.ID))
	_, err = svc.ValidateToken(ctx, resp.Token)
	assert.ErrorIs(t, err, models.ErrInvalidToken)
}

func TestLoginRejectsBlockedUser(t *testing.T) {
	svc, userRepo := newAuthFixture()
	ctx := context.Background()

	resp, err := svc.Register(ctx, models.RegisterRequest{
		Name: "testuser", Email: "blocked@example.com", Password: "password123",
	})
	require.NoError(t, err)
	require.NoError(t, userRepo.SetBlocked(ctx, resp.User.ID, true))

	_, err = svc.Login(ctx, models.LoginRequest{Email: "blocked@example.com", Password: "password123"})
	assert.ErrorIs(t, err, models.ErrUserBlocked)
}
