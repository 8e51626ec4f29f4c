package middleware

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ItsEgzix/Tasto-backend/internal/core/appctx"
	"github.com/ItsEgzix/Tasto-backend/internal/core/apperror"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func perform(router *gin.Engine, method, path string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestTrace_GeneratesIDs(t *testing.T) {
	router := gin.New()
	router.Use(Trace())

	var gotTrace *appctx.TraceContext
	router.GET("/", func(c *gin.Context) {
		gotTrace = appctx.GetTrace(c.Request.Context())
		c.Status(http.StatusOK)
	})

	w := perform(router, http.MethodGet, "/", nil)

	require.NotNil(t, gotTrace)
	assert.NotEmpty(t, gotTrace.TraceID)
	assert.NotEmpty(t, gotTrace.RequestID)
	assert.Equal(t, gotTrace.RequestID, w.Header().Get(HeaderRequestID))
	assert.Equal(t, gotTrace.TraceID, w.Header().Get(HeaderTraceID))
}

func TestTrace_PropagatesIncomingIDs(t *testing.T) {
	router := gin.New()
	router.Use(Trace())
	router.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := perform(router, http.MethodGet, "/", map[string]string{
		HeaderRequestID: "req-123",
		HeaderTraceID:   "trace-456",
	})

	assert.Equal(t, "req-123", w.Header().Get(HeaderRequestID))
	assert.Equal(t, "trace-456", w.Header().Get(HeaderTraceID))
}

func TestErrorHandler_AppError(t *testing.T) {
	router := gin.New()
	router.Use(ErrorHandler())
	router.GET("/", func(c *gin.Context) {
		_ = c.Error(apperror.NewNotFound("ingredient", "abc"))
		c.Abort()
	})

	w := perform(router, http.MethodGet, "/", nil)

	assert.Equal(t, http.StatusNotFound, w.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, apperror.CodeNotFound, body["code"])
	assert.Equal(t, "ingredient not found", body["message"])
}

func TestErrorHandler_UnknownErrorHidden(t *testing.T) {
	router := gin.New()
	router.Use(ErrorHandler())
	router.GET("/", func(c *gin.Context) {
		_ = c.Error(errors.New("pq: connection refused"))
		c.Abort()
	})

	w := perform(router, http.MethodGet, "/", nil)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, apperror.CodeInternal, body["code"])
	assert.NotContains(t, w.Body.String(), "connection refused")
}

func TestErrorHandler_NoErrorPassesThrough(t *testing.T) {
	router := gin.New()
	router.Use(ErrorHandler())
	router.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	w := perform(router, http.MethodGet, "/", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"ok":true}`, w.Body.String())
}

func TestRecovery_PanicBecomes500(t *testing.T) {
	router := gin.New()
	router.Use(Recovery(), ErrorHandler())
	router.GET("/", func(c *gin.Context) {
		panic("boom")
	})

	w := perform(router, http.MethodGet, "/", nil)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, apperror.CodeInternal, body["code"])
	assert.NotContains(t, w.Body.String(), "boom")
}

type stubValidator struct {
	user *appctx.UserContext
	err  error
}

func (s *stubValidator) ValidateToken(tokenString string) (*appctx.UserContext, error) {
	return s.user, s.err
}

func authRouter(v JWTValidator) *gin.Engine {
	router := gin.New()
	router.Use(ErrorHandler(), Auth(v))
	router.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"user":   appctx.GetUserID(c.Request.Context()),
			"tenant": appctx.GetTenantID(c.Request.Context()),
		})
	})
	return router
}

func TestAuth_ValidToken(t *testing.T) {
	router := authRouter(&stubValidator{
		user: &appctx.UserContext{UserID: "u1", TenantID: "t1"},
	})

	w := perform(router, http.MethodGet, "/", map[string]string{
		"Authorization": "Bearer token",
	})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"user":"u1","tenant":"t1"}`, w.Body.String())
}

func TestAuth_MissingHeader(t *testing.T) {
	router := authRouter(&stubValidator{})

	w := perform(router, http.MethodGet, "/", nil)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuth_MalformedHeader(t *testing.T) {
	router := authRouter(&stubValidator{})

	w := perform(router, http.MethodGet, "/", map[string]string{
		"Authorization": "Basic dXNlcjpwYXNz",
	})

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuth_InvalidToken(t *testing.T) {
	router := authRouter(&stubValidator{err: errors.New("expired")})

	w := perform(router, http.MethodGet, "/", map[string]string{
		"Authorization": "Bearer bad",
	})

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestOptionalAuth_NoHeaderContinues(t *testing.T) {
	router := gin.New()
	router.Use(ErrorHandler(), OptionalAuth(&stubValidator{}))
	router.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := perform(router, http.MethodGet, "/", nil)

	assert.Equal(t, http.StatusOK, w.Code)
}
