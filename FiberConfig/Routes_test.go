package FiberConfig

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"Caribou/Config"
	"Caribou/Models"
)

func setupApp(t *testing.T) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	Models.DB = db
	Config.Load()
	Config.Cfg.AttachmentDir = t.TempDir()
}

// Building the app must not panic: fiber rejects credentialed CORS with a
// wildcard origin at construction time, so the origin list has to be
// concrete.
func TestNewAppBoots(t *testing.T) {
	setupApp(t)

	app := NewApp()
	require.NotNil(t, app)

	req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestCORSPreflightAllowsConfiguredOrigin(t *testing.T) {
	setupApp(t)
	app := NewApp()

	req := httptest.NewRequest(http.MethodOptions, "/api/login", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:3000", resp.Header.Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", resp.Header.Get("Access-Control-Allow-Credentials"))
}

func TestCORSPreflightRejectsUnknownOrigin(t *testing.T) {
	setupApp(t)
	app := NewApp()

	req := httptest.NewRequest(http.MethodOptions, "/api/login", nil)
	req.Header.Set("Origin", "http://evil.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)

	assert.Empty(t, resp.Header.Get("Access-Control-Allow-Origin"))
}
