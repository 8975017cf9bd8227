package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/charlesng35/coffeeshop/internal/models"
	"github.com/charlesng35/coffeeshop/pkg/logger"
	"github.com/charlesng35/coffeeshop/pkg/metrics"
	"github.com/charlesng35/coffeeshop/pkg/validator"
)

var (
	// ErrDrinkNotFound indicates the requested drink does not exist.
	ErrDrinkNotFound = errors.New("drink service: drink not found")
	// ErrDrinkTitleTaken indicates another drink already uses the title.
	ErrDrinkTitleTaken = errors.New("drink service: a drink with this title already exists")
	// ErrNoChanges indicates an update that carries neither a title nor a recipe.
	ErrNoChanges = errors.New("drink service: update requires a title or a recipe")
	// ErrInvalidPatch wraps the error returned by a DrinkPatch that could not produce an update.
	ErrInvalidPatch = errors.New("drink service: update could not be read")
)

// ValidationError reports a drink that breaks the menu rules.
type ValidationError struct {
	Failures validator.ValidationErrors
}

func (e *ValidationError) Error() string {
	return "drink service: " + e.Message()
}

// Message returns a client-facing description of the first failure.
func (e *ValidationError) Message() string {
	if e == nil || len(e.Failures) == 0 {
		return "invalid drink"
	}
	return describeFailure(e.Failures[0])
}

func describeFailure(f validator.ValidationError) string {
	name := f.Path
	if name == "" {
		name = f.Field
	}
	switch {
	case f.Tag == "notblank":
		return name + " must not be blank"
	case f.Tag == "max":
		return fmt.Sprintf("%s must be at most %s characters", name, f.Param)
	case f.Tag == "min" && f.Field == "recipe":
		return "recipe must contain at least one ingredient"
	case f.Tag == "gte":
		return fmt.Sprintf("%s must be at least %s", name, f.Param)
	default:
		return name + " is invalid"
	}
}

type drinkRules struct {
	Title  string              `json:"title" validate:"notblank,max=80"`
	Recipe []models.Ingredient `json:"recipe" validate:"min=1,dive"`
}

func validateDrink(drink *models.Drink) error {
	err := validator.ValidateStruct(drinkRules{Title: drink.Title, Recipe: drink.Recipe})
	if err == nil {
		return nil
	}
	var failures validator.ValidationErrors
	if errors.As(err, &failures) {
		return &ValidationError{Failures: failures}
	}
	return err
}

// CreateDrinkInput captures the fields of a new drink.
type CreateDrinkInput struct {
	Title  string
	Recipe models.Recipe
}

// UpdateDrinkInput describes mutable drink fields. A nil pointer keeps the stored value.
type UpdateDrinkInput struct {
	Title  *string
	Recipe *models.Recipe
}

// DrinkPatch produces the update to apply. It runs only once the drink is
// known to exist.
type DrinkPatch func() (UpdateDrinkInput, error)

// DrinkService manages the drinks menu.
type DrinkService struct {
	db  *gorm.DB
	log *zap.Logger
}

// NewDrinkService constructs a drink service once a database handle is supplied.
func NewDrinkService(db *gorm.DB) (*DrinkService, error) {
	if db == nil {
		return nil, errors.New("drink service: db is required")
	}
	return &DrinkService{db: db, log: logger.WithModule("drinks")}, nil
}

func ensuredContext(ctx context.Context) context.Context {
	if ctx == nil {
		return context.Background()
	}
	return ctx
}

// List returns every drink ordered by id.
func (s *DrinkService) List(ctx context.Context) ([]models.Drink, error) {
	if s == nil {
		return nil, errors.New("drink service: service not initialised")
	}
	ctx = ensuredContext(ctx)

	var drinks []models.Drink
	if err := s.db.WithContext(ctx).Order("id").Find(&drinks).Error; err != nil {
		return nil, s.fail("list", err)
	}

	s.record("list", nil)
	return drinks, nil
}

// Count reports how many drinks are on the menu.
func (s *DrinkService) Count(ctx context.Context) (int64, error) {
	if s == nil {
		return 0, errors.New("drink service: service not initialised")
	}
	ctx = ensuredContext(ctx)

	var count int64
	if err := s.db.WithContext(ctx).Model(&models.Drink{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Create validates and persists a new drink.
func (s *DrinkService) Create(ctx context.Context, input CreateDrinkInput) (*models.Drink, error) {
	if s == nil {
		return nil, errors.New("drink service: service not initialised")
	}
	ctx = ensuredContext(ctx)

	drink := models.NewDrink(input.Title, input.Recipe)
	if err := validateDrink(drink); err != nil {
		return nil, s.fail("create", err)
	}

	if err := s.db.WithContext(ctx).Create(drink).Error; err != nil {
		return nil, s.fail("create", s.translate(err))
	}

	s.record("create", nil)
	s.log.Info("drink created", zap.Uint("id", drink.ID), zap.String("title", drink.Title))
	return drink, nil
}

// Patch looks the drink up, then replaces the fields supplied by patch. An
// unknown id is reported before any problem with the patch itself.
func (s *DrinkService) Patch(ctx context.Context, id uint, patch DrinkPatch) (*models.Drink, error) {
	if s == nil {
		return nil, errors.New("drink service: service not initialised")
	}
	ctx = ensuredContext(ctx)

	var updated *models.Drink
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		drink, err := s.find(tx, id)
		if err != nil {
			return err
		}

		var input UpdateDrinkInput
		if patch != nil {
			if input, err = patch(); err != nil {
				return fmt.Errorf("%w: %w", ErrInvalidPatch, err)
			}
		}
		if input.Title == nil && input.Recipe == nil {
			return ErrNoChanges
		}

		if input.Title != nil {
			drink.Title = strings.TrimSpace(*input.Title)
		}
		if input.Recipe != nil {
			drink.SetRecipe(*input.Recipe)
		}
		if err := validateDrink(drink); err != nil {
			return err
		}

		if err := tx.Save(drink).Error; err != nil {
			return s.translate(err)
		}
		updated = drink
		return nil
	})
	if err != nil {
		return nil, s.fail("update", err)
	}

	s.record("update", nil)
	s.log.Info("drink updated", zap.Uint("id", updated.ID), zap.String("title", updated.Title))
	return updated, nil
}

// Delete removes a drink by identifier.
func (s *DrinkService) Delete(ctx context.Context, id uint) error {
	if s == nil {
		return errors.New("drink service: service not initialised")
	}
	ctx = ensuredContext(ctx)

	result := s.db.WithContext(ctx).Delete(&models.Drink{}, id)
	if result.Error != nil {
		return s.fail("delete", result.Error)
	}
	if result.RowsAffected == 0 {
		return s.fail("delete", ErrDrinkNotFound)
	}

	s.record("delete", nil)
	s.log.Info("drink deleted", zap.Uint("id", id))
	return nil
}

func (s *DrinkService) find(db *gorm.DB, id uint) (*models.Drink, error) {
	if id == 0 {
		return nil, ErrDrinkNotFound
	}

	var drink models.Drink
	if err := db.First(&drink, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDrinkNotFound
		}
		return nil, err
	}
	return &drink, nil
}

func (s *DrinkService) translate(err error) error {
	if isUniqueConstraintError(err) {
		return ErrDrinkTitleTaken
	}
	return err
}

func (s *DrinkService) fail(operation string, err error) error {
	s.record(operation, err)
	if outcome(err) == "error" {
		s.log.Error("drink operation failed", zap.String("operation", operation), zap.Error(err))
	}
	return err
}

func (s *DrinkService) record(operation string, err error) {
	metrics.DrinkOperations.WithLabelValues(operation, outcome(err)).Inc()
}

func outcome(err error) string {
	var validationErr *ValidationError
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrDrinkNotFound):
		return "not_found"
	case errors.Is(err, ErrDrinkTitleTaken), errors.Is(err, ErrNoChanges), errors.Is(err, ErrInvalidPatch), errors.As(err, &validationErr):
		return "invalid"
	default:
		return "error"
	}
}
