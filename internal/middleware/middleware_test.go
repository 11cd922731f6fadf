package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"github.com/zhanserikAmangeldi/taskmate-service/pkg/jwt"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubRevocations struct {
	revoked map[string]bool
	err     error
}

func (s *stubRevocations) IsRevoked(_ context.Context, id string) (bool, error) {
	return s.revoked[id], s.err
}

func newAuthRouter(t *testing.T, rev RevocationChecker) (*gin.Engine, *jwt.TokenManager) {
	t.Helper()
	tm := jwt.NewTokenManager(jwt.TokenManagerConfig{SecretKey: "secret", AccessDuration: time.Hour})
	r := gin.New()
	r.Use(NewAuthMiddleware(tm, rev).RequireAuth())
	r.GET("/me", func(c *gin.Context) {
		id, ok := GetUserID(c)
		require.True(t, ok)
		claims, ok := GetClaims(c)
		require.True(t, ok)
		c.JSON(http.StatusOK, gin.H{"id": id, "email": GetEmail(c), "jti": claims.ID})
	})
	return r, tm
}

func doGet(r http.Handler, path string, header http.Header) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for k, values := range header {
		for _, v := range values {
			req.Header.Add(k, v)
		}
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func bearer(token string) http.Header {
	return http.Header{AuthorizationHeader: []string{"Bearer " + token}}
}

func TestRequireAuth(t *testing.T) {
	rev := &stubRevocations{revoked: map[string]bool{}}
	r, tm := newAuthRouter(t, rev)
	userID := uuid.New()
	token, _, err := tm.GenerateAccessToken(userID, "a@example.com")
	require.NoError(t, err)

	w := doGet(r, "/me", bearer(token))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), userID.String())
	assert.Contains(t, w.Body.String(), "a@example.com")

	assert.Equal(t, http.StatusUnauthorized, doGet(r, "/me", nil).Code)
	assert.Equal(t, http.StatusUnauthorized, doGet(r, "/me", http.Header{AuthorizationHeader: []string{"Token " + token}}).Code)
	assert.Equal(t, http.StatusUnauthorized, doGet(r, "/me", bearer("garbage")).Code)

	claims, err := tm.ValidateToken(token)
	require.NoError(t, err)
	rev.revoked[claims.ID] = true
	w = doGet(r, "/me", bearer(token))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "revoked")
}

func TestRequireAuthFailsOpenOnRevocationError(t *testing.T) {
	r, tm := newAuthRouter(t, &stubRevocations{err: errors.New("redis down")})
	token, _, err := tm.GenerateAccessToken(uuid.New(), "a@example.com")
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, doGet(r, "/me", bearer(token)).Code)
}

func TestRequestLoggerSetsRequestID(t *testing.T) {
	r := gin.New()
	r.Use(RequestLogger())
	r.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, GetRequestID(c)) })

	w := doGet(r, "/ping", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get(RequestIDHeader))
	assert.Equal(t, w.Header().Get(RequestIDHeader), w.Body.String())

	w = doGet(r, "/ping", http.Header{RequestIDHeader: []string{"req-1"}})
	assert.Equal(t, "req-1", w.Body.String())
}

func TestRecoveryWithLogger(t *testing.T) {
	r := gin.New()
	r.Use(RecoveryWithLogger())
	r.GET("/boom", func(c *gin.Context) { panic("boom") })

	w := doGet(r, "/boom", nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "internal_server_error")
}

func TestIPRateLimiter(t *testing.T) {
	limiter := NewIPRateLimiter(rate.Limit(0.001), 2)
	r := gin.New()
	r.Use(limiter.Middleware())
	r.GET("/confirm", func(c *gin.Context) { c.Status(http.StatusOK) })

	assert.Equal(t, http.StatusOK, doGet(r, "/confirm", nil).Code)
	assert.Equal(t, http.StatusOK, doGet(r, "/confirm", nil).Code)
	assert.Equal(t, http.StatusTooManyRequests, doGet(r, "/confirm", nil).Code)

	assert.Same(t, limiter.GetLimiter("10.0.0.1"), limiter.GetLimiter("10.0.0.1"))
	assert.NotSame(t, limiter.GetLimiter("10.0.0.1"), limiter.GetLimiter("10.0.0.2"))
}

func TestRequireInternalKey(t *testing.T) {
	r := gin.New()
	r.POST("/internal", RequireInternalKey("s3cret"), func(c *gin.Context) { c.Status(http.StatusNoContent) })

	req := httptest.NewRequest(http.MethodPost, "/internal", nil)
	req.Header.Set(InternalKeyHeader, "s3cret")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)

	req = httptest.NewRequest(http.MethodPost, "/internal", nil)
	req.Header.Set(InternalKeyHeader, "wrong")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)

	open := gin.New()
	open.POST("/internal", RequireInternalKey(""), func(c *gin.Context) { c.Status(http.StatusNoContent) })
	w = httptest.NewRecorder()
	open.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/internal", nil))
	assert.Equal(t, http.StatusForbidden, w.Code)
}
