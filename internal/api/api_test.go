package api_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chessroom/internal/api"
	"chessroom/internal/testutil"
)

func newTestRouter(wsHandler http.Handler) http.Handler {
	return api.NewRouter(api.RouterConfig{
		Logger:    testutil.NopLogger(),
		WSHandler: wsHandler,
	})
}

func TestHealthz(t *testing.T) {
	router := newTestRouter(http.NotFoundHandler())
	server := httptest.NewServer(router)
	defer server.Close()

	resp, err := http.Get(server.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
}

func TestUnknownRoute(t *testing.T) {
	router := newTestRouter(http.NotFoundHandler())
	server := httptest.NewServer(router)
	defer server.Close()

	resp, err := http.Get(server.URL + "/nope")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestRecoveryMiddleware(t *testing.T) {
	panicking := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	})
	router := newTestRouter(panicking)
	server := httptest.NewServer(router)
	defer server.Close()

	resp, err := http.Get(server.URL + "/ws")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
}
