package database

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/charlesng35/coffeeshop/internal/models"
)

func TestOpenSQLiteMemory(t *testing.T) {
	db := openTestDB(t)

	require.NoError(t, db.Exec("SELECT 1").Error)
	require.NoError(t, Ping(context.Background(), db))
}

func TestOpenRejectsUnknownDriver(t *testing.T) {
	_, err := Open(Config{Driver: "oracle"})
	require.ErrorContains(t, err, `unsupported database driver "oracle"`)
}

func TestAutoMigrateAndSeedIsIdempotent(t *testing.T) {
	db := openTestDB(t)

	require.NoError(t, AutoMigrateAndSeed(db))
	require.NoError(t, AutoMigrateAndSeed(db))

	var drinks []models.Drink
	require.NoError(t, db.Find(&drinks).Error)
	require.Len(t, drinks, 1)
	require.Equal(t, SeedDrinkTitle, drinks[0].Title)
	require.Equal(t, models.Ingredient{Name: "water", Color: "blue", Parts: 1}, drinks[0].Recipe[0])
}

func TestResetAndSeedDiscardsExistingDrinks(t *testing.T) {
	db := openTestDB(t)
	require.NoError(t, AutoMigrate(db))

	for _, title := range []string{"latte", "mocha"} {
		drink := models.NewDrink(title, models.Recipe{{Name: "espresso", Color: "brown", Parts: 1}})
		require.NoError(t, db.Create(drink).Error)
	}

	require.NoError(t, ResetAndSeed(db))

	var drinks []models.Drink
	require.NoError(t, db.Find(&drinks).Error)
	require.Len(t, drinks, 1)
	require.Equal(t, SeedDrinkTitle, drinks[0].Title)
	require.Equal(t, uint(1), drinks[0].ID)
}

func TestResetAndSeedOnEmptyDatabase(t *testing.T) {
	db := openTestDB(t)

	require.NoError(t, ResetAndSeed(db))

	var count int64
	require.NoError(t, db.Model(&models.Drink{}).Count(&count).Error)
	require.EqualValues(t, 1, count)
}

func TestNilHandle(t *testing.T) {
	require.Error(t, AutoMigrateAndSeed(nil))
	require.Error(t, ResetAndSeed(nil))
	require.Error(t, Ping(context.Background(), nil))
	require.NoError(t, Close(nil))
}

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := Open(Config{
		Driver: "sqlite",
		DSN:    "file:" + uuid.NewString() + "?mode=memory&cache=shared&_foreign_keys=1",
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = Close(db)
	})

	return db
}
