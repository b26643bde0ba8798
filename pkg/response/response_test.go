package response

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"anoa.com/yamdb/internal/entity"
	"anoa.com/yamdb/pkg/apperror"
	"anoa.com/yamdb/pkg/ratelimiter"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func render(err error) (*httptest.ResponseRecorder, map[string]any) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/x", nil)
	ResponseError(c, err)

	var body map[string]any
	_ = json.Unmarshal(w.Body.Bytes(), &body)
	return w, body
}

func TestResponseError_Validation(t *testing.T) {
	w, body := render(apperror.Invalid("score", "score must be between 1 and 10"))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "validation failed", body["error"])
	assert.Equal(t, map[string]any{"score": []any{"score must be between 1 and 10"}}, body["fields"])
}

func TestResponseError_Conflict(t *testing.T) {
	w, body := render(apperror.Conflict("title", "you have already reviewed this title"))

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "conflict", body["error"])
}

func TestResponseError_InternalIsMasked(t *testing.T) {
	w, body := render(errors.New("pq: connection refused"))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, apperror.ErrInternal.Error(), body["error"])
}

func TestGetActor(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	assert.Nil(t, GetActor(c))
	_, err := RequireActor(c)
	require.ErrorIs(t, err, apperror.ErrUnauthorized)

	c.Set(ActorKey, &entity.User{ID: 7})
	actor, err := RequireActor(c)
	require.NoError(t, err)
	assert.Equal(t, uint(7), actor.ID)
}

func TestResponseError_RateLimitSetsRetryAfter(t *testing.T) {
	w, body := render(&ratelimiter.RateLimitError{Message: "try again later", RetryAfter: 30 * time.Second})

	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "30", w.Header().Get("Retry-After"))
	assert.Equal(t, "try again later", body["error"])
}

func TestMethodNotAllowed(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodDelete, "/v1/users/me/", nil)
	MethodNotAllowed(c)

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
	assert.Equal(t, `method "DELETE" not allowed`, body["error"])
}
