package database

import (
	"gorm.io/gorm"

	"github.com/charlesng35/coffeeshop/internal/models"
)

// SeedDrinkTitle names the drink inserted by SeedData.
const SeedDrinkTitle = "water"

func allModels() []any {
	return []any{
		&models.Drink{},
	}
}

// AutoMigrate creates or updates the database schema for all models.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(allModels()...)
}

// DropAll removes every table managed by AutoMigrate.
func DropAll(db *gorm.DB) error {
	return db.Migrator().DropTable(allModels()...)
}

// SeedDrink returns the drink every fresh catalog starts with.
func SeedDrink() *models.Drink {
	return models.NewDrink(SeedDrinkTitle, models.Recipe{
		{Name: "water", Color: "blue", Parts: 1},
	})
}

// SeedData inserts the seed drink unless a drink with the same title exists.
func SeedData(db *gorm.DB) error {
	seed := SeedDrink()
	return db.Where(models.Drink{Title: seed.Title}).Attrs(*seed).FirstOrCreate(&models.Drink{}).Error
}
