package api

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/npezzotti/support-chat/internal/database"
	"github.com/npezzotti/support-chat/internal/server"
	"github.com/npezzotti/support-chat/internal/stats"
	"github.com/npezzotti/support-chat/internal/support"
	"github.com/npezzotti/support-chat/internal/testutil"
	"github.com/stretchr/testify/assert"
)

func TestNewSupportChatApp(t *testing.T) {
	mux := http.NewServeMux()
	logger := testutil.TestLogger(t)
	n := server.NewNotifier(logger, stats.NopStats{})
	db := &database.MockRepository{}
	svc := support.NewService(logger, db, n, stats.NopStats{}, "admin@novatech.com")
	cfg := testConfig()
	cfg.VerifyIdentity = true

	app := NewSupportChatApp(mux, logger, n, svc, db, cfg)

	assert.NotNil(t, app, "expected app to be initialized")
	assert.NotNil(t, app.mux, "expected mux to be initialized")
	assert.Equal(t, logger, app.log, "expected logger to be set")
	assert.Equal(t, db, app.db, "expected db to be set")
	assert.Equal(t, n, app.notifier, "expected notifier to be set")
	assert.Equal(t, svc, app.svc, "expected service to be set")
	assert.Equal(t, cfg.SigningKey, app.signingKey, "expected signing key to be set")
	assert.True(t, app.verifyIdentity, "expected identity verification to be set")
	assert.Equal(t, cfg.ServerAddr, app.mux.Addr, "expected server address to match config")
	assert.NotNil(t, app.generateRequestId, "expected a request id generator")
}

func TestSupportChatApp_CORS(t *testing.T) {
	app, _ := newTestApp(t, &database.MockRepository{}, testConfig())

	req := httptest.NewRequest(http.MethodOptions, "/api/messages", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	req.Header.Set("Access-Control-Request-Headers", "Content-Type")

	rr := serve(app, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "http://localhost:3000", rr.Header().Get("Access-Control-Allow-Origin"))
}

func TestSupportChatApp_UnknownRoute(t *testing.T) {
	app, _ := newTestApp(t, &database.MockRepository{}, testConfig())

	rr := serve(app, httptest.NewRequest(http.MethodDelete, "/api/messages", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)

	rr = serve(app, httptest.NewRequest(http.MethodGet, "/api/nope", nil))
	assert.Equal(t, http.StatusNotFound, rr.Code)
}
