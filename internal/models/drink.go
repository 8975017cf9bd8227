package models

import (
	"bytes"
	"encoding/json"
	"strings"

	"gorm.io/datatypes"
)

// MaxTitleLength mirrors the title column width.
const MaxTitleLength = 80

// Ingredient is one component of a drink recipe.
type Ingredient struct {
	Name  string `json:"name" validate:"notblank"`
	Color string `json:"color" validate:"notblank"`
	Parts int    `json:"parts" validate:"gte=1"`
}

// Recipe is an ordered list of ingredients. It decodes from either a JSON array
// or a single ingredient object.
type Recipe []Ingredient

// UnmarshalJSON accepts both `[{...}, ...]` and `{...}`.
func (r *Recipe) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '{' {
		var single Ingredient
		if err := json.Unmarshal(trimmed, &single); err != nil {
			return err
		}
		*r = Recipe{single}
		return nil
	}

	var list []Ingredient
	if err := json.Unmarshal(trimmed, &list); err != nil {
		return err
	}
	*r = Recipe(list)
	return nil
}

// Drink is a menu entry.
type Drink struct {
	BaseModel

	Title  string                       `gorm:"type:varchar(80);not null;uniqueIndex" json:"title"`
	Recipe datatypes.JSONSlice[Ingredient] `gorm:"not null" json:"recipe"`
}

// ShortIngredient is the public projection of an ingredient: proportions are withheld.
type ShortIngredient struct {
	Name  string `json:"name"`
	Color string `json:"color"`
}

// ShortDrink is the public view of a drink.
type ShortDrink struct {
	ID     uint              `json:"id"`
	Title  string            `json:"title"`
	Recipe []ShortIngredient `json:"recipe"`
}

// LongDrink is the detailed view of a drink including ingredient parts.
type LongDrink struct {
	ID     uint         `json:"id"`
	Title  string       `json:"title"`
	Recipe []Ingredient `json:"recipe"`
}

// NewDrink builds an unsaved drink from a title and recipe.
func NewDrink(title string, recipe Recipe) *Drink {
	return &Drink{
		Title:  strings.TrimSpace(title),
		Recipe: datatypes.JSONSlice[Ingredient](recipe),
	}
}

// SetRecipe replaces the whole recipe.
func (d *Drink) SetRecipe(recipe Recipe) {
	d.Recipe = datatypes.JSONSlice[Ingredient](recipe)
}

// Short renders the public view.
func (d *Drink) Short() ShortDrink {
	recipe := make([]ShortIngredient, 0, len(d.Recipe))
	for _, ingredient := range d.Recipe {
		recipe = append(recipe, ShortIngredient{Name: ingredient.Name, Color: ingredient.Color})
	}
	return ShortDrink{ID: d.ID, Title: d.Title, Recipe: recipe}
}

// Long renders the detailed view.
func (d *Drink) Long() LongDrink {
	recipe := make([]Ingredient, len(d.Recipe))
	copy(recipe, d.Recipe)
	return LongDrink{ID: d.ID, Title: d.Title, Recipe: recipe}
}
