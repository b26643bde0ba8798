package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"anoa.com/yamdb/internal/entity"
	"anoa.com/yamdb/internal/permission"
	"anoa.com/yamdb/pkg/apperror"
	"anoa.com/yamdb/pkg/response"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type TokenParser interface {
	Parse(token string) (uint, error)
}

type UserFinder interface {
	FindByID(ctx context.Context, id uint) (*entity.User, error)
}

type AuthMiddleware struct {
	tokens TokenParser
	users  UserFinder
}

func NewAuthMiddleware(tokens TokenParser, users UserFinder) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens, users: users}
}

// Authenticate resolves the bearer token into the request actor. Requests
// without an Authorization header continue anonymously; a header carrying a
// bad or expired token is rejected.
func (m *AuthMiddleware) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.Next()
			return
		}

		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
			response.ResponseError(c, apperror.New(http.StatusUnauthorized, "invalid authorization header", apperror.ErrUnauthorized))
			return
		}

		userID, err := m.tokens.Parse(strings.TrimSpace(parts[1]))
		if err != nil {
			response.ResponseError(c, apperror.New(http.StatusUnauthorized, "invalid or expired token", apperror.ErrUnauthorized))
			return
		}

		user, err := m.users.FindByID(c.Request.Context(), userID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) || errors.Is(err, apperror.ErrNotFound) {
				response.ResponseError(c, apperror.New(http.StatusUnauthorized, "user not found", apperror.ErrUnauthorized))
				return
			}
			logrus.WithError(err).WithField("user_id", userID).Error("failed to load token user")
			response.ResponseError(c, err)
			return
		}
		if !user.IsActive {
			response.ResponseError(c, apperror.New(http.StatusUnauthorized, "user is inactive", apperror.ErrUnauthorized))
			return
		}

		c.Set(response.ActorKey, user)
		c.Next()
	}
}

// Require enforces a request level rule. Anonymous actors are told to
// authenticate, authenticated ones are forbidden.
func Require(rule permission.Rule) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor := response.GetActor(c)
		if rule(c.Request.Method, actor) {
			c.Next()
			return
		}
		if actor == nil {
			response.ResponseError(c, apperror.ErrUnauthorized)
			return
		}
		response.ResponseError(c, apperror.ErrForbidden)
	}
}
