package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"anoa.com/yamdb/internal/entity"
	"anoa.com/yamdb/internal/modules/user/dto"
	"anoa.com/yamdb/internal/modules/user/repository"
	"anoa.com/yamdb/pkg/apperror"
	"anoa.com/yamdb/pkg/mailer"
	"anoa.com/yamdb/pkg/metrics"
	"anoa.com/yamdb/pkg/ratelimiter"
	"anoa.com/yamdb/pkg/token"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const confirmationSubject = "YaMDb confirmation code"

// TokenIssuer mints access tokens for a user id.
type TokenIssuer interface {
	Issue(userID uint) (string, time.Time, error)
}

type AuthService interface {
	SignUp(ctx context.Context, req dto.SignUpRequest) (*dto.SignUpResponse, error)
	Token(ctx context.Context, req dto.TokenRequest) (*dto.TokenResponse, error)
}

type AuthOptions struct {
	Codes       *token.CodeGenerator
	Tokens      TokenIssuer
	Mailer      mailer.Mailer
	Limiter     *ratelimiter.Limiter
	SendTimeout time.Duration
}

type authService struct {
	repo        repository.UserRepository
	codes       *token.CodeGenerator
	tokens      TokenIssuer
	mailer      mailer.Mailer
	limiter     *ratelimiter.Limiter
	sendTimeout time.Duration
}

func NewAuthService(repo repository.UserRepository, opts AuthOptions) AuthService {
	timeout := opts.SendTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &authService{
		repo:        repo,
		codes:       opts.Codes,
		tokens:      opts.Tokens,
		mailer:      opts.Mailer,
		limiter:     opts.Limiter,
		sendTimeout: timeout,
	}
}

// SignUp registers the (username, email) pair, or re-issues a code when the
// exact pair already exists, and emails a fresh confirmation code.
func (s *authService) SignUp(ctx context.Context, req dto.SignUpRequest) (*dto.SignUpResponse, error) {
	user, err := s.resolveSignUp(ctx, req)
	if err != nil {
		return nil, err
	}

	if err := s.limiter.Check(ctx, req.Email, "a confirmation code was sent recently, try again later"); err != nil {
		return nil, err
	}

	code, hash, err := s.codes.Generate()
	if err != nil {
		return nil, err
	}
	sentAt := s.codes.Now()

	kind := "reissue"
	if user == nil {
		kind = "new"
		user = &entity.User{
			Username:           req.Username,
			Email:              req.Email,
			Role:               entity.RoleUser,
			IsActive:           true,
			ConfirmationCode:   hash,
			ConfirmationSentAt: &sentAt,
		}
		if err := s.repo.Create(ctx, user); err != nil {
			_ = s.limiter.Clear(ctx, req.Email)
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return nil, apperror.Conflict("username", "user with this username or email already exists")
			}
			return nil, err
		}
	} else {
		if err := s.repo.Update(ctx, user, map[string]any{
			"confirmation_code":    hash,
			"confirmation_sent_at": sentAt,
		}); err != nil {
			return nil, err
		}
	}
	metrics.SignupsTotal.WithLabelValues(kind).Inc()

	s.sendCode(ctx, user, code)

	return &dto.SignUpResponse{Email: user.Email, Username: user.Username}, nil
}

func (s *authService) resolveSignUp(ctx context.Context, req dto.SignUpRequest) (*entity.User, error) {
	byName, err := s.repo.FindByUsername(ctx, req.Username)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	byEmail, err := s.repo.FindByEmail(ctx, req.Email)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	if byName != nil && byEmail != nil && byName.ID == byEmail.ID {
		return byName, nil
	}

	conflicts := &apperror.ValidationError{Kind: apperror.ErrConflict}
	if byName != nil {
		conflicts.Add("username", usernameTakenMessage)
	}
	if byEmail != nil {
		conflicts.Add("email", emailInUseMessage)
	}
	if conflicts.HasErrors() {
		return nil, conflicts
	}
	return nil, nil
}

// sendCode delivers the code. The user row is already stored, so a delivery
// failure is logged and the client may simply sign up again.
func (s *authService) sendCode(ctx context.Context, user *entity.User, code string) {
	sendCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.sendTimeout)
	defer cancel()

	msg := mailer.Message{
		To:      user.Email,
		Subject: confirmationSubject,
		Body:    fmt.Sprintf("Hello %s,\n\nyour confirmation code: %s\n", user.Username, code),
	}
	if err := s.mailer.Send(sendCtx, msg); err != nil {
		metrics.MailFailures.Inc()
		logrus.WithError(err).
			WithField("username", user.Username).
			Error("failed to send confirmation code")
	}
}

func (s *authService) Token(ctx context.Context, req dto.TokenRequest) (*dto.TokenResponse, error) {
	user, err := s.repo.FindByUsername(ctx, req.Username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("user not found")
		}
		return nil, err
	}

	if !user.IsActive || !s.codes.Verify(user.ConfirmationCode, user.ConfirmationSentAt, req.ConfirmationCode) {
		return nil, apperror.Invalid("confirmation_code", "invalid confirmation code")
	}

	if err := s.repo.Update(ctx, user, map[string]any{
		"confirmation_code":    "",
		"confirmation_sent_at": nil,
	}); err != nil {
		return nil, err
	}

	access, _, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, err
	}
	metrics.TokensIssued.Inc()

	return &dto.TokenResponse{Token: access}, nil
}
