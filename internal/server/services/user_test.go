package services

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/inkwellapp/inkwell/internal/common"
	"github.com/inkwellapp/inkwell/internal/dbx"
	"github.com/inkwellapp/inkwell/internal/logging"
	"github.com/inkwellapp/inkwell/internal/server/models"
	"github.com/inkwellapp/inkwell/internal/server/ratelimit"
	"github.com/inkwellapp/inkwell/internal/server/repositories/folders"
	"github.com/inkwellapp/inkwell/internal/server/repositories/pages"
	"github.com/inkwellapp/inkwell/internal/server/repositories/sessions"
	"github.com/inkwellapp/inkwell/internal/server/repositories/users"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memUsers struct {
	byEmail map[string]models.User
}

func newMemUsers() *memUsers {
	return &memUsers{byEmail: map[string]models.User{}}
}

func (m *memUsers) Create(_ context.Context, u *models.User) (*models.User, error) {
	if _, ok := m.byEmail[u.Email]; ok {
		return nil, common.ErrorLoginAlreadyExists
	}
	u.CreatedAt = time.Now()
	m.byEmail[u.Email] = *u
	return u, nil
}

func (m *memUsers) GetByEmail(_ context.Context, email string) (*models.User, error) {
	u, ok := m.byEmail[email]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return &u, nil
}

func (m *memUsers) GetByID(_ context.Context, id string) (*models.User, error) {
	for _, u := range m.byEmail {
		if u.ID == id {
			return &u, nil
		}
	}
	return nil, common.ErrorNotFound
}

type userRepos struct {
	users *memUsers
}

func (r *userRepos) RunMigrations(context.Context, *sql.DB) error { return nil }
func (r *userRepos) Users(dbx.DBTX) users.Repository             { return r.users }
func (r *userRepos) Sessions(dbx.DBTX) sessions.Repository       { return nil }
func (r *userRepos) Pages(dbx.DBTX) pages.Repository             { return nil }
func (r *userRepos) Folders(dbx.DBTX) folders.Repository         { return nil }

func newTestUserService(t *testing.T) *UserService {
	t.Helper()
	limiter := ratelimit.NewLimiter(5, 15*time.Minute, 15*time.Minute, logging.NewSlogLogger(nil))
	return NewUserService(nil, &userRepos{users: newMemUsers()}, limiter)
}

func TestRegisterAndLogin(t *testing.T) {
	s := newTestUserService(t)
	ctx := context.Background()

	u, err := s.Register(ctx, "Alice@Example.COM ", "password123")
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", u.Email, "emails are normalized on storage")
	assert.NotEmpty(t, u.ID)
	assert.NotContains(t, string(u.PasswordHash), "password123")

	// login matches regardless of the email's spelling
	got, err := s.Login(ctx, "ALICE@example.com", "password123")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	s := newTestUserService(t)
	ctx := context.Background()

	_, err := s.Register(ctx, "a@b.com", "password123")
	require.NoError(t, err)

	_, err = s.Register(ctx, "A@B.com", "otherpassword")
	assert.ErrorIs(t, err, common.ErrorLoginAlreadyExists)
}

func TestLogin_WrongPasswordAndUnknownEmailLookAlike(t *testing.T) {
	s := newTestUserService(t)
	ctx := context.Background()

	_, err := s.Register(ctx, "a@b.com", "password123")
	require.NoError(t, err)

	_, errWrong := s.Login(ctx, "a@b.com", "nope")
	_, errUnknown := s.Login(ctx, "ghost@b.com", "nope")

	assert.ErrorIs(t, errWrong, common.ErrorUnauthorized)
	assert.ErrorIs(t, errUnknown, common.ErrorUnauthorized)
	assert.Equal(t, errWrong.Error(), errUnknown.Error())
}

func TestLogin_RateLimiting(t *testing.T) {
	s := newTestUserService(t)
	ctx := context.Background()

	_, err := s.Register(ctx, "a@b.com", "password123")
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		_, err := s.Login(ctx, "a@b.com", "wrong")
		assert.ErrorIs(t, err, common.ErrorUnauthorized)
	}

	// even the correct password is refused while blocked
	_, err = s.Login(ctx, "a@b.com", "password123")
	require.ErrorIs(t, err, common.ErrRateLimited)

	var blocked *ratelimit.BlockedError
	require.ErrorAs(t, err, &blocked)
	assert.Positive(t, blocked.RetryAfter)

	// the limiter key is the normalized email
	_, err = s.Login(ctx, " A@B.COM ", "password123")
	assert.ErrorIs(t, err, common.ErrRateLimited)
}

func TestLogin_SuccessResetsFailureCount(t *testing.T) {
	s := newTestUserService(t)
	ctx := context.Background()

	_, err := s.Register(ctx, "a@b.com", "password123")
	require.NoError(t, err)

	for i := 0; i < 4; i++ {
		_, _ = s.Login(ctx, "a@b.com", "wrong")
	}
	_, err = s.Login(ctx, "a@b.com", "password123")
	require.NoError(t, err)

	for i := 0; i < 4; i++ {
		_, _ = s.Login(ctx, "a@b.com", "wrong")
	}
	_, err = s.Login(ctx, "a@b.com", "password123")
	assert.NoError(t, err, "the failure count restarted after the successful login")
}
