package Controllers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"Caribou/Models"
)

// two stores, one of which the store manager is assigned to; the other
// carries a visit whose data must stay hidden from them.
func seedStoreScope(t *testing.T, db *gorm.DB) (manager Models.User, assigned, unassigned Models.Store) {
	t.Helper()
	assigned = Models.Store{Name: "Downtown", IsActive: true}
	unassigned = Models.Store{Name: "Harbor", IsActive: true}
	require.NoError(t, db.Create(&assigned).Error)
	require.NoError(t, db.Create(&unassigned).Error)

	manager = Models.User{Username: "sm", FullName: "Kit Doyle", Password: []byte("x"), IsActive: true}
	require.NoError(t, db.Create(&manager).Error)
	profile := Models.Profile{UserID: manager.ID, Role: Models.RoleStoreManager, Stores: []Models.Store{assigned}}
	require.NoError(t, db.Create(&profile).Error)
	manager.Profile = &profile

	owner := Models.User{Username: "am", FullName: "Avery Moss", Password: []byte("x"), IsActive: true}
	require.NoError(t, db.Create(&owner).Error)
	visit := Models.AreaManagerVisit{StoreID: unassigned.ID, ManagerID: owner.ID, Date: time.Now(), TimeIn: "09:00"}
	require.NoError(t, db.Create(&visit).Error)
	return manager, assigned, unassigned
}

func getStore(t *testing.T, app *fiber.App, id uint) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/stores/"+strconv.Itoa(int(id)), nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func TestGetStoreUnassignedIsNotFound(t *testing.T) {
	db := testDB(t)
	manager, assigned, unassigned := seedStoreScope(t, db)

	app := appAs(manager)
	controller := NewStoreController(db)
	app.Get("/stores/:id", controller.GetStore)

	// unassigned store: denied, and indistinguishable from missing
	resp := getStore(t, app, unassigned.ID)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	var denied map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&denied))
	assert.Equal(t, "Store not found", denied["message"])
	assert.NotContains(t, denied, "visits")

	resp = getStore(t, app, 9999)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	var missing map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&missing))
	assert.Equal(t, denied, missing)

	// the assigned store still resolves
	resp = getStore(t, app, assigned.ID)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestGetStoresListScopedToAssignments(t *testing.T) {
	db := testDB(t)
	manager, assigned, _ := seedStoreScope(t, db)

	app := appAs(manager)
	controller := NewStoreController(db)
	app.Get("/stores", controller.GetStores)

	req := httptest.NewRequest(http.MethodGet, "/stores", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var rows []struct {
		Name string `json:"name"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&rows))
	require.Len(t, rows, 1)
	assert.Equal(t, assigned.Name, rows[0].Name)
}
