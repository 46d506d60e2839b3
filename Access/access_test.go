package Access

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"Caribou/Models"
)

func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&Models.Area{}, &Models.Store{}, &Models.User{}, &Models.Profile{},
	))
	return db
}

// seedStores creates two areas with one active store each plus one inactive
// store in the first area.
func seedStores(t *testing.T, db *gorm.DB) (north, south Models.Area, downtown, harbor, closed Models.Store) {
	t.Helper()
	north = Models.Area{Name: "North"}
	south = Models.Area{Name: "South"}
	require.NoError(t, db.Create(&north).Error)
	require.NoError(t, db.Create(&south).Error)

	downtown = Models.Store{Name: "Downtown", IsActive: true, AreaID: &north.ID}
	harbor = Models.Store{Name: "Harbor", IsActive: true, AreaID: &south.ID}
	closed = Models.Store{Name: "Closed", IsActive: true, AreaID: &north.ID}
	require.NoError(t, db.Create(&downtown).Error)
	require.NoError(t, db.Create(&harbor).Error)
	require.NoError(t, db.Create(&closed).Error)
	// column default would override a zero bool on create
	require.NoError(t, db.Model(&closed).Update("is_active", false).Error)
	return
}

func userWithProfile(t *testing.T, db *gorm.DB, username, role string, stores []Models.Store, areas []Models.Area) *Models.User {
	t.Helper()
	user := Models.User{Username: username, FullName: username, Password: []byte("x"), IsActive: true}
	require.NoError(t, db.Create(&user).Error)
	profile := Models.Profile{UserID: user.ID, Role: role, Stores: stores, Areas: areas}
	require.NoError(t, db.Create(&profile).Error)
	user.Profile = &profile
	return &user
}

func storeNames(stores []Models.Store) []string {
	names := make([]string, len(stores))
	for i, s := range stores {
		names[i] = s.Name
	}
	return names
}

func TestVisibleStoresAdminSeesAllActive(t *testing.T) {
	db := testDB(t)
	seedStores(t, db)
	admin := userWithProfile(t, db, "admin", Models.RoleAdmin, nil, nil)

	stores, err := VisibleStores(db, admin)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"Downtown", "Harbor"}, storeNames(stores))
}

func TestVisibleStoresAreaManagerRestrictedToAreas(t *testing.T) {
	db := testDB(t)
	north, _, _, _, _ := seedStores(t, db)
	manager := userWithProfile(t, db, "am", Models.RoleAreaManager, nil, []Models.Area{north})

	stores, err := VisibleStores(db, manager)
	require.NoError(t, err)
	// Closed is in North too but inactive
	assert.Equal(t, []string{"Downtown"}, storeNames(stores))
}

func TestVisibleStoresStoreManagerRestrictedToAssigned(t *testing.T) {
	db := testDB(t)
	_, _, _, harbor, _ := seedStores(t, db)
	manager := userWithProfile(t, db, "sm", Models.RoleStoreManager, []Models.Store{harbor}, nil)

	stores, err := VisibleStores(db, manager)
	require.NoError(t, err)
	assert.Equal(t, []string{"Harbor"}, storeNames(stores))
}

func TestVisibleStoresMissingProfileFailsClosed(t *testing.T) {
	db := testDB(t)
	seedStores(t, db)
	user := Models.User{Username: "bare", Password: []byte("x"), IsActive: true}
	require.NoError(t, db.Create(&user).Error)

	stores, err := VisibleStores(db, &user)
	require.NoError(t, err)
	assert.Empty(t, stores)

	stores, err = VisibleStores(db, nil)
	require.NoError(t, err)
	assert.Empty(t, stores)
}

func TestHasStoreAccess(t *testing.T) {
	db := testDB(t)
	north, _, downtown, harbor, _ := seedStores(t, db)

	admin := userWithProfile(t, db, "admin", Models.RoleAdmin, nil, nil)
	areaManager := userWithProfile(t, db, "am", Models.RoleAreaManager, nil, []Models.Area{north})
	storeManager := userWithProfile(t, db, "sm", Models.RoleStoreManager, []Models.Store{downtown}, nil)
	areaStaff := userWithProfile(t, db, "staff", Models.RoleVisitCreator, nil, []Models.Area{north})

	// admin and area_manager pass outright, even off their assignments
	assert.True(t, HasStoreAccess(db, admin, &harbor))
	assert.True(t, HasStoreAccess(db, areaManager, &harbor))

	// store roles need the store or its area assigned
	assert.True(t, HasStoreAccess(db, storeManager, &downtown))
	assert.False(t, HasStoreAccess(db, storeManager, &harbor))
	assert.True(t, HasStoreAccess(db, areaStaff, &downtown))
	assert.False(t, HasStoreAccess(db, areaStaff, &harbor))

	// missing profile fails closed
	bare := &Models.User{Username: "bare"}
	assert.False(t, HasStoreAccess(db, bare, &downtown))
	assert.False(t, HasStoreAccess(db, nil, &downtown))
}

func TestVisibleAreas(t *testing.T) {
	db := testDB(t)
	north, _, _, _, _ := seedStores(t, db)

	admin := userWithProfile(t, db, "admin", Models.RoleAdmin, nil, nil)
	areaManager := userWithProfile(t, db, "am", Models.RoleAreaManager, nil, []Models.Area{north})
	storeManager := userWithProfile(t, db, "sm", Models.RoleStoreManager, nil, nil)

	areas, err := VisibleAreas(db, admin)
	require.NoError(t, err)
	assert.Len(t, areas, 2)

	areas, err = VisibleAreas(db, areaManager)
	require.NoError(t, err)
	require.Len(t, areas, 1)
	assert.Equal(t, "North", areas[0].Name)

	areas, err = VisibleAreas(db, storeManager)
	require.NoError(t, err)
	assert.Empty(t, areas)
}

func TestIsAdmin(t *testing.T) {
	db := testDB(t)
	admin := userWithProfile(t, db, "admin", Models.RoleAdmin, nil, nil)
	manager := userWithProfile(t, db, "am", Models.RoleAreaManager, nil, nil)

	assert.True(t, IsAdmin(admin))
	assert.False(t, IsAdmin(manager))
	assert.False(t, IsAdmin(nil))
	assert.False(t, IsAdmin(&Models.User{}))
}
