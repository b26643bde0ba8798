package service

import (
	"context"
	"errors"
	"regexp"
	"sync"
	"testing"
	"time"

	"anoa.com/yamdb/internal/modules/user/dto"
	"anoa.com/yamdb/pkg/apperror"
	"anoa.com/yamdb/pkg/mailer"
	"anoa.com/yamdb/pkg/token"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

var codePattern = regexp.MustCompile(`code: ([0-9a-f]{32})`)

type captureMailer struct {
	mu   sync.Mutex
	sent []mailer.Message
	err  error
}

func (m *captureMailer) Send(_ context.Context, msg mailer.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, msg)
	return m.err
}

func (m *captureMailer) lastCode(t *testing.T) string {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	require.NotEmpty(t, m.sent)
	match := codePattern.FindStringSubmatch(m.sent[len(m.sent)-1].Body)
	require.Len(t, match, 2)
	return match[1]
}

type authFixture struct {
	svc    AuthService
	repo   *fakeUserRepo
	mail   *captureMailer
	issuer *token.JWTIssuer
	clock  *time.Time
}

func newAuthFixture() *authFixture {
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	f := &authFixture{
		repo:   seededUsers(),
		mail:   &captureMailer{},
		issuer: token.NewJWTIssuer("test-secret", time.Hour),
		clock:  &now,
	}
	codes := &token.CodeGenerator{TTL: time.Hour, Now: func() time.Time { return *f.clock }, Cost: bcrypt.MinCost}
	f.svc = NewAuthService(f.repo, AuthOptions{Codes: codes, Tokens: f.issuer, Mailer: f.mail})
	return f
}

func TestSignUp_CreatesUserAndMailsCode(t *testing.T) {
	f := newAuthFixture()

	res, err := f.svc.SignUp(context.Background(), dto.SignUpRequest{Email: "new@example.com", Username: "newbie"})
	require.NoError(t, err)
	assert.Equal(t, &dto.SignUpResponse{Email: "new@example.com", Username: "newbie"}, res)

	stored := f.repo.byUsername("newbie")
	require.NotNil(t, stored)
	assert.Equal(t, "user", string(stored.Role))
	assert.NotEmpty(t, stored.ConfirmationCode)

	code := f.mail.lastCode(t)
	assert.NotEqual(t, code, stored.ConfirmationCode)
	assert.Equal(t, "new@example.com", f.mail.sent[0].To)
}

func TestSignUp_ExistingPairReissues(t *testing.T) {
	f := newAuthFixture()
	ctx := context.Background()
	req := dto.SignUpRequest{Email: "zed@example.com", Username: "zed"}

	_, err := f.svc.SignUp(ctx, req)
	require.NoError(t, err)
	first := f.mail.lastCode(t)

	_, err = f.svc.SignUp(ctx, req)
	require.NoError(t, err)
	second := f.mail.lastCode(t)

	assert.NotEqual(t, first, second)
	assert.Len(t, f.repo.users, 2)

	// Only the latest code is accepted.
	_, err = f.svc.Token(ctx, dto.TokenRequest{Username: "zed", ConfirmationCode: first})
	assert.ErrorIs(t, err, apperror.ErrInvalidInput)
	_, err = f.svc.Token(ctx, dto.TokenRequest{Username: "zed", ConfirmationCode: second})
	assert.NoError(t, err)
}

func TestSignUp_Conflicts(t *testing.T) {
	f := newAuthFixture()
	ctx := context.Background()

	_, err := f.svc.SignUp(ctx, dto.SignUpRequest{Email: "other@example.com", Username: "zed"})
	var vErr *apperror.ValidationError
	require.True(t, errors.As(err, &vErr))
	assert.ErrorIs(t, err, apperror.ErrConflict)
	assert.Equal(t, []string{"username already taken"}, vErr.Fields["username"])

	_, err = f.svc.SignUp(ctx, dto.SignUpRequest{Email: "zed@example.com", Username: "someone"})
	require.True(t, errors.As(err, &vErr))
	assert.Equal(t, []string{"email already in use"}, vErr.Fields["email"])

	assert.Empty(t, f.mail.sent)
}

func TestSignUp_MailFailureStillSucceeds(t *testing.T) {
	f := newAuthFixture()
	f.mail.err = errors.New("smtp down")

	_, err := f.svc.SignUp(context.Background(), dto.SignUpRequest{Email: "x@example.com", Username: "x"})
	require.NoError(t, err)
	assert.NotNil(t, f.repo.byUsername("x"))
}

func TestToken(t *testing.T) {
	f := newAuthFixture()
	ctx := context.Background()

	_, err := f.svc.SignUp(ctx, dto.SignUpRequest{Email: "new@example.com", Username: "newbie"})
	require.NoError(t, err)
	code := f.mail.lastCode(t)

	_, err = f.svc.Token(ctx, dto.TokenRequest{Username: "ghost", ConfirmationCode: code})
	assert.ErrorIs(t, err, apperror.ErrNotFound)

	_, err = f.svc.Token(ctx, dto.TokenRequest{Username: "newbie", ConfirmationCode: "wrong"})
	assert.ErrorIs(t, err, apperror.ErrInvalidInput)

	res, err := f.svc.Token(ctx, dto.TokenRequest{Username: "newbie", ConfirmationCode: code})
	require.NoError(t, err)

	id, err := f.issuer.Parse(res.Token)
	require.NoError(t, err)
	assert.Equal(t, f.repo.byUsername("newbie").ID, id)

	// Codes are single use.
	_, err = f.svc.Token(ctx, dto.TokenRequest{Username: "newbie", ConfirmationCode: code})
	assert.ErrorIs(t, err, apperror.ErrInvalidInput)
}

func TestToken_ExpiredCode(t *testing.T) {
	f := newAuthFixture()
	ctx := context.Background()

	_, err := f.svc.SignUp(ctx, dto.SignUpRequest{Email: "new@example.com", Username: "newbie"})
	require.NoError(t, err)
	code := f.mail.lastCode(t)

	*f.clock = f.clock.Add(2 * time.Hour)

	_, err = f.svc.Token(ctx, dto.TokenRequest{Username: "newbie", ConfirmationCode: code})
	assert.ErrorIs(t, err, apperror.ErrInvalidInput)
}
