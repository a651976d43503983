package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/markelira/elira-insight/api"
	"github.com/markelira/elira-insight/constant"
)

const testSecret = "test-secret"

type stubRoleLookup struct {
	roles map[string]string
}

func (s *stubRoleLookup) Role(ctx context.Context, uid string) (string, error) {
	role, ok := s.roles[uid]
	if !ok {
		return "", api.ErrResourceNotFound
	}
	return role, nil
}

func signToken(t *testing.T, secret, sub string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": sub,
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	raw, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return raw
}

func newTestRouter(m *Middleware) *gin.Engine {
	gin.SetMode(gin.TestMode)
	eng := gin.New()
	grp := eng.Group("/v1")
	grp.Use(m.Authenticate())
	grp.GET("/whoami", func(ctx *gin.Context) {
		api.ResponseWithSuccess(ctx, gin.H{
			"user_id": ctx.GetString(constant.ContextUserID),
			"role":    ctx.GetString(constant.ContextUserRole),
		})
	})
	admin := grp.Group("/admin")
	admin.Use(m.RequireAdmin())
	admin.POST("/jobs", func(ctx *gin.Context) {
		api.ResponseWithSuccess(ctx, nil)
	})
	return eng
}

func do(eng *gin.Engine, method, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	eng.ServeHTTP(rec, req)
	return rec
}

func TestAuthenticate_MissingToken(t *testing.T) {
	m := NewMiddleware(Config{Secret: testSecret}, &stubRoleLookup{})
	rec := do(newTestRouter(m), http.MethodGet, "/v1/whoami", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthenticate_WrongSecret(t *testing.T) {
	m := NewMiddleware(Config{Secret: testSecret}, &stubRoleLookup{
		roles: map[string]string{"user-1": constant.RoleStudent},
	})
	token := signToken(t, "another-secret", "user-1")
	rec := do(newTestRouter(m), http.MethodGet, "/v1/whoami", token)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthenticate_ExpiredToken(t *testing.T) {
	m := NewMiddleware(Config{Secret: testSecret}, &stubRoleLookup{
		roles: map[string]string{"user-1": constant.RoleStudent},
	})
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "user-1",
		"exp": time.Now().Add(-time.Hour).Unix(),
	})
	raw, err := token.SignedString([]byte(testSecret))
	require.NoError(t, err)
	rec := do(newTestRouter(m), http.MethodGet, "/v1/whoami", raw)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthenticate_UnknownSubject(t *testing.T) {
	m := NewMiddleware(Config{Secret: testSecret}, &stubRoleLookup{})
	token := signToken(t, testSecret, "ghost")
	rec := do(newTestRouter(m), http.MethodGet, "/v1/whoami", token)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthenticate_ValidTokenSetsIdentity(t *testing.T) {
	m := NewMiddleware(Config{Secret: testSecret}, &stubRoleLookup{
		roles: map[string]string{"user-1": constant.RoleStudent},
	})
	token := signToken(t, testSecret, "user-1")
	rec := do(newTestRouter(m), http.MethodGet, "/v1/whoami", token)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"user_id":"user-1"`)
	assert.Contains(t, rec.Body.String(), `"role":"student"`)
}

func TestRequireAdmin_NonAdminForbidden(t *testing.T) {
	m := NewMiddleware(Config{Secret: testSecret}, &stubRoleLookup{
		roles: map[string]string{"user-1": constant.RoleStudent},
	})
	token := signToken(t, testSecret, "user-1")
	rec := do(newTestRouter(m), http.MethodPost, "/v1/admin/jobs", token)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRequireAdmin_AdminPasses(t *testing.T) {
	m := NewMiddleware(Config{Secret: testSecret}, &stubRoleLookup{
		roles: map[string]string{"admin-1": constant.RoleAdmin},
	})
	token := signToken(t, testSecret, "admin-1")
	rec := do(newTestRouter(m), http.MethodPost, "/v1/admin/jobs", token)
	assert.Equal(t, http.StatusOK, rec.Code)
}
