package application

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/oksasatya/go-diagram-workspace/internal/domain/entity"
	"github.com/oksasatya/go-diagram-workspace/internal/domain/errs"
	"github.com/oksasatya/go-diagram-workspace/internal/infrastructure/memory"
	"github.com/oksasatya/go-diagram-workspace/pkg/helpers"
	"github.com/oksasatya/go-diagram-workspace/pkg/mailer"
)

type mockPublisher struct{ mock.Mock }

func (m *mockPublisher) PublishJSON(ctx context.Context, body any) error {
	return m.Called(ctx, body).Error(0)
}

func newAuth(t *testing.T) (*AuthService, *memory.Store) {
	t.Helper()
	store := memory.NewStore()
	require.NoError(t, store.Roles().EnsureDefaults(context.Background()))
	svc, err := NewAuthService(store.Users(), store.Roles(), bcrypt.MinCost, helpers.NopLogger())
	require.NoError(t, err)
	return svc, store
}

func register(t *testing.T, svc *AuthService, username string) *entity.User {
	t.Helper()
	u, err := svc.Register(context.Background(), RegisterInput{
		Username: username,
		Email:    username + "@example.com",
		Password: "secret1",
	})
	require.NoError(t, err)
	return u
}

func TestRegister_AssignsUserRoleAndHashes(t *testing.T) {
	svc, store := newAuth(t)
	u := register(t, svc, "alice")

	assert.NotEmpty(t, u.ID)
	assert.Equal(t, []entity.RoleName{entity.RoleUser}, u.RoleNames())
	assert.NotEqual(t, "secret1", u.PasswordHash)
	assert.True(t, helpers.CompareHashAndPassword(u.PasswordHash, "secret1"))

	stored, err := store.Users().GetByUsername(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, u.ID, stored.ID)
}

func TestRegister_LengthBoundaries(t *testing.T) {
	svc, _ := newAuth(t)
	ctx := context.Background()

	cases := []struct {
		name    string
		in      RegisterInput
		field   string
		wantErr bool
	}{
		{"password 6", RegisterInput{"pw6user", "pw6@example.com", "abcdef"}, "", false},
		{"password 5", RegisterInput{"pw5user", "pw5@example.com", "abcde"}, "password", true},
		{"password 41", RegisterInput{"pw41user", "pw41@example.com", strings.Repeat("a", 41)}, "password", true},
		{"password 36 two-byte runes", RegisterInput{"pw72user", "pw72@example.com", strings.Repeat("é", 36)}, "", false},
		{"password 40 two-byte runes", RegisterInput{"pw80user", "pw80@example.com", strings.Repeat("é", 40)}, "password", true},
		{"username 20", RegisterInput{strings.Repeat("u", 20), "u20@example.com", "secret1"}, "", false},
		{"username 21", RegisterInput{strings.Repeat("v", 21), "u21@example.com", "secret1"}, "username", true},
		{"username 2", RegisterInput{"ab", "ab@example.com", "secret1"}, "username", true},
		{"bad email", RegisterInput{"mailless", "not-an-email", "secret1"}, "email", true},
		{"blank username", RegisterInput{"   ", "blank@example.com", "secret1"}, "username", true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Register(ctx, tc.in)
			if !tc.wantErr {
				require.NoError(t, err)
				return
			}
			var ve *errs.ValidationError
			require.True(t, errors.As(err, &ve), "got %v", err)
			assert.Equal(t, tc.field, ve.Field)
		})
	}
}

func TestRegister_Conflicts(t *testing.T) {
	svc, _ := newAuth(t)
	register(t, svc, "alice")
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterInput{"alice", "other@example.com", "secret1"})
	var ce *errs.ConflictError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, "Username is already taken", ce.Error())

	_, err = svc.Register(ctx, RegisterInput{"alice2", "alice@example.com", "secret1"})
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, "Email is already in use", ce.Error())
}

func TestRegister_MissingDefaultRole(t *testing.T) {
	store := memory.NewStore()
	svc, err := NewAuthService(store.Users(), store.Roles(), bcrypt.MinCost, helpers.NopLogger())
	require.NoError(t, err)

	_, err = svc.Register(context.Background(), RegisterInput{"alice", "alice@example.com", "secret1"})
	var cfg *errs.ConfigurationError
	require.True(t, errors.As(err, &cfg))

	exists, err := store.Users().ExistsByUsername(context.Background(), "alice")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestRegister_EnqueuesWelcome(t *testing.T) {
	svc, _ := newAuth(t)
	pub := &mockPublisher{}
	pub.On("PublishJSON", mock.Anything, mock.MatchedBy(func(job mailer.EmailJob) bool {
		return job.To == "alice@example.com" && job.Data["Username"] == "alice"
	})).Return(nil).Once()
	svc.Publisher = pub

	register(t, svc, "alice")
	pub.AssertExpectations(t)
}

func TestRegister_PublishFailureDoesNotFail(t *testing.T) {
	svc, _ := newAuth(t)
	pub := &mockPublisher{}
	pub.On("PublishJSON", mock.Anything, mock.Anything).Return(errors.New("broker down")).Once()
	svc.Publisher = pub

	u := register(t, svc, "alice")
	assert.NotEmpty(t, u.ID)
}

func TestAuthenticate(t *testing.T) {
	svc, _ := newAuth(t)
	u := register(t, svc, "alice")
	ctx := context.Background()

	p, err := svc.Authenticate(ctx, "alice", "secret1")
	require.NoError(t, err)
	assert.Equal(t, u.ID, p.UserID)
	assert.Equal(t, "alice@example.com", p.Email)
	assert.Equal(t, []entity.RoleName{entity.RoleUser}, p.Roles)

	_, err = svc.Authenticate(ctx, "alice", "wrong-pass")
	assert.ErrorIs(t, err, errs.ErrAuthentication)

	_, err = svc.Authenticate(ctx, "nobody", "secret1")
	assert.ErrorIs(t, err, errs.ErrAuthentication)
}

func TestAuthenticate_TrimsUsernameLikeRegister(t *testing.T) {
	svc, _ := newAuth(t)
	ctx := context.Background()

	u, err := svc.Register(ctx, RegisterInput{" carol ", "carol@example.com", "secret1"})
	require.NoError(t, err)
	assert.Equal(t, "carol", u.Username)

	for _, name := range []string{" carol ", "carol"} {
		p, err := svc.Authenticate(ctx, name, "secret1")
		require.NoError(t, err, name)
		assert.Equal(t, u.ID, p.UserID)
	}
}

func TestPromoteToAdmin(t *testing.T) {
	svc, store := newAuth(t)
	u := register(t, svc, "root")

	require.NoError(t, svc.PromoteToAdmin(context.Background(), u.ID))
	require.NoError(t, svc.PromoteToAdmin(context.Background(), u.ID))

	got, err := store.Users().GetByID(context.Background(), u.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []entity.RoleName{entity.RoleUser, entity.RoleAdmin}, got.RoleNames())
}
