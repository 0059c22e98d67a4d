package server

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/FleetHub/FleetHub/internal/common/errs"
	"github.com/FleetHub/FleetHub/internal/common/logger"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

func newTestEngine(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	log, err := logger.NewLogger("error", "text", "stdout", "")
	require.NoError(t, err)
	r := gin.New()
	r.Use(Recovery(log), ErrorRenderer(log))
	return r
}

func doGet(r *gin.Engine, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	r.ServeHTTP(w, req)
	return w
}

func TestErrorRendererStatusMapping(t *testing.T) {
	r := newTestEngine(t)

	cases := map[string]struct {
		err    error
		status int
		code   string
	}{
		"/notfound": {errs.NotFound("vehicle", "x"), http.StatusNotFound, "NOT_FOUND"},
		"/dup":      {errs.Duplicate("plate taken"), http.StatusConflict, "DUPLICATE_RESOURCE"},
		"/state":    {errs.InvalidState("bad transition"), http.StatusBadRequest, "INVALID_STATE"},
		"/invalid":  {errs.Invalid("missing field"), http.StatusBadRequest, "INVALID_ARGUMENT"},
		"/internal": {errors.New("db down"), http.StatusInternalServerError, "INTERNAL_ERROR"},
	}
	for path, tc := range cases {
		err := tc.err
		r.GET(path, func(c *gin.Context) {
			_ = c.Error(err)
			c.Abort()
		})
	}

	for path, tc := range cases {
		w := doGet(r, path)
		require.Equalf(t, tc.status, w.Code, "path %s", path)
		require.Containsf(t, w.Body.String(), tc.code, "path %s", path)
	}
}

func TestErrorRendererHidesInternalDetail(t *testing.T) {
	r := newTestEngine(t)
	r.GET("/boom", func(c *gin.Context) {
		_ = c.Error(errs.Internal(errors.New("dial tcp 10.0.0.1: refused")))
		c.Abort()
	})

	w := doGet(r, "/boom")
	require.Equal(t, http.StatusInternalServerError, w.Code)
	require.NotContains(t, w.Body.String(), "10.0.0.1")
}

func TestErrorRendererSkipsWrittenResponse(t *testing.T) {
	r := newTestEngine(t)
	r.GET("/ok", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	w := doGet(r, "/ok")
	require.Equal(t, http.StatusOK, w.Code)
}

func TestRecoveryTurnsPanicInto500(t *testing.T) {
	r := newTestEngine(t)
	r.GET("/panic", func(c *gin.Context) {
		panic("unexpected")
	})

	w := doGet(r, "/panic")
	require.Equal(t, http.StatusInternalServerError, w.Code)
	require.Contains(t, w.Body.String(), "INTERNAL_ERROR")
}
