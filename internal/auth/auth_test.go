package auth

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SamuelFlet/hpdb/internal/domain"
)

type stubUserRepo struct {
	users map[int64]*domain.User
}

func (s *stubUserRepo) Init(ctx context.Context) error { return nil }

func (s *stubUserRepo) Create(ctx context.Context, user *domain.User) (int64, error) {
	return 0, fmt.Errorf("not implemented")
}

func (s *stubUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return nil, fmt.Errorf("user not found")
}

func (s *stubUserRepo) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	if user, ok := s.users[id]; ok {
		return user, nil
	}
	return nil, fmt.Errorf("user not found")
}

const testSecret = "test-secret"

func newTestVerifier(users ...*domain.User) *Verifier {
	repo := &stubUserRepo{users: make(map[int64]*domain.User)}
	for _, u := range users {
		repo.users[u.ID] = u
	}
	return NewVerifier(testSecret, repo)
}

func TestSignVerifyRoundTrip(t *testing.T) {
	token, err := Sign(testSecret, 42, time.Hour)
	require.NoError(t, err)

	v := newTestVerifier()
	userID, err := v.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, int64(42), userID)
}

func TestVerifyRejectsExpiredToken(t *testing.T) {
	token, err := Sign(testSecret, 42, -time.Minute)
	require.NoError(t, err)

	v := newTestVerifier()
	_, err = v.Verify(token)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyRejectsMalformedToken(t *testing.T) {
	v := newTestVerifier()
	_, err := v.Verify("not.a.token")
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	token, err := Sign("other-secret", 42, time.Hour)
	require.NoError(t, err)

	v := newTestVerifier()
	_, err = v.Verify(token)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestAuthenticateMissingHeaderIsAnonymous(t *testing.T) {
	v := newTestVerifier()
	user, err := v.Authenticate(context.Background(), "")
	require.NoError(t, err)
	assert.Nil(t, user)
}

func TestAuthenticateResolvesUser(t *testing.T) {
	want := &domain.User{ID: 7, Name: "A", Email: "a@x.com"}
	v := newTestVerifier(want)

	token, err := Sign(testSecret, 7, time.Hour)
	require.NoError(t, err)

	got, err := v.Authenticate(context.Background(), "Bearer "+token)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestAuthenticateBadTokenIsErrorNotNil(t *testing.T) {
	v := newTestVerifier()

	_, err := v.Authenticate(context.Background(), "Bearer garbage")
	require.ErrorIs(t, err, ErrInvalidToken)

	_, err = v.Authenticate(context.Background(), "Bearer")
	require.ErrorIs(t, err, ErrInvalidToken)
}
