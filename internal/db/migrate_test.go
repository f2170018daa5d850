package db

import (
	"testing"

	"github.com/ikkim/storefront-backend/internal/app/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnsureAdmin(t *testing.T) {
	testDB, err := SetupTestDB()
	require.NoError(t, err)
	defer CleanupTestDB(testDB)

	admin, err := EnsureAdmin(testDB, "Admin", "admin@shop.test", "secret")
	require.NoError(t, err)
	assert.Equal(t, model.RoleAdmin, admin.Role)
	assert.True(t, admin.MatchPassword("secret"))

	again, err := EnsureAdmin(testDB, "Admin", "admin@shop.test", "ignored")
	require.NoError(t, err)
	assert.Equal(t, admin.ID, again.ID)

	var count int64
	testDB.Model(&model.User{}).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestEnsureAdmin_PromotesExistingUser(t *testing.T) {
	testDB, err := SetupTestDB()
	require.NoError(t, err)
	defer CleanupTestDB(testDB)

	user := &model.User{Name: "Ann", Email: "ann@x.com", Password: "pw123", Cart: model.Cart{}}
	require.NoError(t, testDB.Create(user).Error)

	promoted, err := EnsureAdmin(testDB, "Ann", "ann@x.com", "other")
	require.NoError(t, err)
	assert.Equal(t, user.ID, promoted.ID)

	var reloaded model.User
	require.NoError(t, testDB.First(&reloaded, user.ID).Error)
	assert.Equal(t, model.RoleAdmin, reloaded.Role)
	assert.True(t, reloaded.MatchPassword("pw123"))
}

func TestTruncateAllTables(t *testing.T) {
	testDB, err := SetupTestDB()
	require.NoError(t, err)
	defer CleanupTestDB(testDB)

	require.NoError(t, testDB.Create(&model.Item{Name: "Book", Description: "d", Category: "Books"}).Error)
	require.NoError(t, TruncateAllTables(testDB))

	var count int64
	testDB.Model(&model.Item{}).Count(&count)
	assert.Zero(t, count)
}
