package response

import (
	"errors"
	"fmt"
	"net/http"

	"anoa.com/yamdb/internal/entity"
	"anoa.com/yamdb/pkg/apperror"
	"anoa.com/yamdb/pkg/ratelimiter"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// ActorKey is the gin context key holding the authenticated *entity.User.
const ActorKey = "actor"

// GetActor returns the authenticated user or nil for anonymous requests.
func GetActor(c *gin.Context) *entity.User {
	v, exists := c.Get(ActorKey)
	if !exists {
		return nil
	}
	user, _ := v.(*entity.User)
	return user
}

// RequireActor is GetActor for handlers mounted behind authentication.
func RequireActor(c *gin.Context) (*entity.User, error) {
	user := GetActor(c)
	if user == nil {
		return nil, apperror.ErrUnauthorized
	}
	return user, nil
}

// ResponseError standardized error response
func ResponseError(c *gin.Context, err error) {
	code := apperror.MapErrorToStatus(err)

	if code == http.StatusInternalServerError {
		logrus.WithError(err).
			WithField("path", c.Request.URL.Path).
			WithField("method", c.Request.Method).
			Error("internal error")
		c.AbortWithStatusJSON(code, gin.H{"error": apperror.ErrInternal.Error()})
		return
	}

	var rlErr *ratelimiter.RateLimitError
	if errors.As(err, &rlErr) {
		c.Header("Retry-After", fmt.Sprintf("%.0f", rlErr.RetryAfter.Seconds()))
	}

	var vErr *apperror.ValidationError
	if errors.As(err, &vErr) {
		message := "validation failed"
		if code == http.StatusConflict {
			message = "conflict"
		}
		c.AbortWithStatusJSON(code, gin.H{"error": message, "fields": vErr.Fields})
		return
	}

	c.AbortWithStatusJSON(code, gin.H{"error": err.Error()})
}

// MethodNotAllowed answers 405 for a verb the matched path does not serve.
func MethodNotAllowed(c *gin.Context) {
	ResponseError(c, apperror.New(http.StatusMethodNotAllowed,
		fmt.Sprintf("method %q not allowed", c.Request.Method), apperror.ErrMethodNotAllowed))
}
