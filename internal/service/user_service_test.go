package service

import (
	"context"
	"testing"
	"time"

	"standardops/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type fakeUserRepo struct {
	users []*model.User
}

func (f *fakeUserRepo) Create(_ context.Context, user *model.User) error {
	user.ID = uuid.New()
	f.users = append(f.users, user)
	return nil
}

func (f *fakeUserRepo) GetByID(_ context.Context, id string) (*model.User, error) {
	for _, u := range f.users {
		if u.ID.String() == id {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeUserRepo) GetByEmail(_ context.Context, email string) (*model.User, error) {
	for _, u := range f.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeUserRepo) GetByUsername(_ context.Context, username string) (*model.User, error) {
	for _, u := range f.users {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeUserRepo) GetWithRoles(_ context.Context, id uuid.UUID) (*model.User, error) {
	for _, u := range f.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeUserRepo) List(_ context.Context, _, _ int) ([]model.User, int64, error) {
	var out []model.User
	for _, u := range f.users {
		out = append(out, *u)
	}
	return out, int64(len(out)), nil
}

func (f *fakeUserRepo) Update(_ context.Context, _ *model.User) error { return nil }

func (f *fakeUserRepo) Delete(_ context.Context, id string) error {
	for i, u := range f.users {
		if u.ID.String() == id {
			f.users = append(f.users[:i], f.users[i+1:]...)
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (f *fakeUserRepo) AssignRole(_ context.Context, _ *model.UserRole) error { return nil }

func (f *fakeUserRepo) RemoveRole(_ context.Context, _, _ uuid.UUID) error { return nil }

type fakeTokenRepo struct {
	tokens []*model.RefreshToken
}

func (f *fakeTokenRepo) Create(_ context.Context, token *model.RefreshToken) error {
	token.ID = uuid.New()
	f.tokens = append(f.tokens, token)
	return nil
}

func (f *fakeTokenRepo) GetByToken(_ context.Context, token string) (*model.RefreshToken, error) {
	for _, t := range f.tokens {
		if t.Token == token {
			return t, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeTokenRepo) Delete(_ context.Context, token string) error {
	for i, t := range f.tokens {
		if t.Token == token {
			f.tokens = append(f.tokens[:i], f.tokens[i+1:]...)
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (f *fakeTokenRepo) DeleteExpired(_ context.Context) error {
	kept := f.tokens[:0]
	for _, t := range f.tokens {
		if t.ExpiresAt.After(time.Now()) {
			kept = append(kept, t)
		}
	}
	f.tokens = kept
	return nil
}

func userServiceFixture(t *testing.T) (*fakeUserRepo, *fakeTokenRepo, UserService, *model.User) {
	t.Helper()
	users := &fakeUserRepo{}
	tokens := &fakeTokenRepo{}
	svc := NewUserService(users, newFakeRoleRepo(), tokens, nil)

	hashed, err := bcrypt.GenerateFromPassword([]byte("hunter22"), bcrypt.MinCost)
	require.NoError(t, err)
	user := &model.User{Username: "jdoe", Email: "jdoe@example.com", Password: string(hashed)}
	require.NoError(t, users.Create(context.Background(), user))
	return users, tokens, svc, user
}

func TestLogin(t *testing.T) {
	_, tokens, svc, _ := userServiceFixture(t)

	resp, err := svc.Login(context.Background(), LoginUserRequest{Email: "jdoe@example.com", Password: "hunter22"})

	require.NoError(t, err)
	assert.NotEmpty(t, resp.Token)
	assert.NotEmpty(t, resp.RefreshToken)
	assert.Len(t, tokens.tokens, 1)

	_, err = svc.Login(context.Background(), LoginUserRequest{Email: "jdoe@example.com", Password: "wrong"})
	assert.Error(t, err)
}

func TestRefreshToken_RotatesAndSweepsExpired(t *testing.T) {
	_, tokens, svc, user := userServiceFixture(t)

	stale := &model.RefreshToken{UserID: user.ID, Token: "stale", ExpiresAt: time.Now().Add(-time.Hour)}
	live := &model.RefreshToken{UserID: user.ID, Token: "live", ExpiresAt: time.Now().Add(time.Hour)}
	require.NoError(t, tokens.Create(context.Background(), stale))
	require.NoError(t, tokens.Create(context.Background(), live))

	resp, err := svc.RefreshToken(context.Background(), RefreshTokenRequest{RefreshToken: "live"})

	require.NoError(t, err)
	assert.NotEmpty(t, resp.Token)
	assert.NotEqual(t, "live", resp.RefreshToken, "refresh tokens rotate on use")

	_, err = tokens.GetByToken(context.Background(), "live")
	assert.Error(t, err, "the used token is revoked")
	_, err = tokens.GetByToken(context.Background(), "stale")
	assert.Error(t, err, "expired tokens are swept on the refresh path")
	assert.Len(t, tokens.tokens, 1)
}

func TestRefreshToken_ExpiredTokenRejected(t *testing.T) {
	_, tokens, svc, user := userServiceFixture(t)

	stale := &model.RefreshToken{UserID: user.ID, Token: "stale", ExpiresAt: time.Now().Add(-time.Hour)}
	require.NoError(t, tokens.Create(context.Background(), stale))

	_, err := svc.RefreshToken(context.Background(), RefreshTokenRequest{RefreshToken: "stale"})
	require.Error(t, err)
	assert.Empty(t, tokens.tokens)
}

func TestRefreshToken_UnknownTokenRejected(t *testing.T) {
	_, _, svc, _ := userServiceFixture(t)

	_, err := svc.RefreshToken(context.Background(), RefreshTokenRequest{RefreshToken: "nope"})
	assert.Error(t, err)
}
