package middleware

import (
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"Caribou/Config"
	"Caribou/Models"
)

func setupAuth(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&Models.Area{}, &Models.Store{}, &Models.User{}, &Models.Profile{},
	))
	Models.DB = db
	Config.Cfg.JWTSecret = "test-secret"
	return db
}

func signToken(t *testing.T, userID uint) string {
	t.Helper()
	claims := jwt.NewWithClaims(jwt.SigningMethodHS256, &jwt.RegisteredClaims{
		Issuer:    strconv.Itoa(int(userID)),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(24 * time.Hour)),
	})
	token, err := claims.SignedString([]byte(Config.Cfg.JWTSecret))
	require.NoError(t, err)
	return token
}

func verifyApp(roles ...string) *fiber.App {
	app := fiber.New()
	app.Get("/protected", Verify(roles...), func(c *fiber.Ctx) error {
		user := CurrentUser(c)
		return c.JSON(fiber.Map{"username": user.Username})
	})
	return app
}

func getWithCookie(t *testing.T, app *fiber.App, token string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if token != "" {
		req.AddCookie(&http.Cookie{Name: "jwt", Value: token})
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func TestVerifyRequiresCookie(t *testing.T) {
	setupAuth(t)
	resp := getWithCookie(t, verifyApp(), "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestVerifyRejectsBadToken(t *testing.T) {
	setupAuth(t)
	resp := getWithCookie(t, verifyApp(), "not-a-token")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestVerifyPassesProfiledUser(t *testing.T) {
	db := setupAuth(t)
	user := Models.User{Username: "am", Password: []byte("x"), IsActive: true}
	require.NoError(t, db.Create(&user).Error)
	require.NoError(t, db.Create(&Models.Profile{UserID: user.ID, Role: Models.RoleAreaManager}).Error)

	resp := getWithCookie(t, verifyApp(), signToken(t, user.ID))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestVerifyRoleGate(t *testing.T) {
	db := setupAuth(t)
	user := Models.User{Username: "am", Password: []byte("x"), IsActive: true}
	require.NoError(t, db.Create(&user).Error)
	require.NoError(t, db.Create(&Models.Profile{UserID: user.ID, Role: Models.RoleAreaManager}).Error)
	token := signToken(t, user.ID)

	resp := getWithCookie(t, verifyApp(Models.RoleAdmin), token)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = getWithCookie(t, verifyApp(Models.RoleAdmin, Models.RoleAreaManager), token)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestVerifyMissingProfileIsForbidden(t *testing.T) {
	db := setupAuth(t)
	user := Models.User{Username: "bare", Password: []byte("x"), IsActive: true}
	require.NoError(t, db.Create(&user).Error)

	resp := getWithCookie(t, verifyApp(), signToken(t, user.ID))
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestVerifyInactiveUserIsUnauthorized(t *testing.T) {
	db := setupAuth(t)
	user := Models.User{Username: "gone", Password: []byte("x"), IsActive: true}
	require.NoError(t, db.Create(&user).Error)
	// update rather than create: the column default would override a zero bool
	require.NoError(t, db.Model(&user).Update("is_active", false).Error)

	resp := getWithCookie(t, verifyApp(), signToken(t, user.ID))
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}
