package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/charlesng35/coffeeshop/internal/models"
	"github.com/charlesng35/coffeeshop/internal/services"
	appErrors "github.com/charlesng35/coffeeshop/pkg/errors"
	"github.com/charlesng35/coffeeshop/pkg/response"
)

// DrinkHandler exposes the drinks menu over HTTP.
type DrinkHandler struct {
	svc *services.DrinkService
}

// NewDrinkHandler constructs a drink handler.
func NewDrinkHandler(svc *services.DrinkService) *DrinkHandler {
	return &DrinkHandler{svc: svc}
}

type createDrinkRequest struct {
	Title  *string        `json:"title" validate:"required"`
	Recipe *models.Recipe `json:"recipe" validate:"required"`
}

type updateDrinkRequest struct {
	Title  *string        `json:"title"`
	Recipe *models.Recipe `json:"recipe"`
}

// List handles GET /drinks
func (h *DrinkHandler) List(c *gin.Context) {
	drinks, err := h.svc.List(c.Request.Context())
	if err != nil {
		response.Error(c, drinkError(err))
		return
	}

	views := make([]models.ShortDrink, 0, len(drinks))
	for i := range drinks {
		views = append(views, drinks[i].Short())
	}
	response.Success(c, http.StatusOK, gin.H{"drinks": views})
}

// ListDetailed handles GET /drinks-detail
func (h *DrinkHandler) ListDetailed(c *gin.Context) {
	drinks, err := h.svc.List(c.Request.Context())
	if err != nil {
		response.Error(c, drinkError(err))
		return
	}

	views := make([]models.LongDrink, 0, len(drinks))
	for i := range drinks {
		views = append(views, drinks[i].Long())
	}
	response.Success(c, http.StatusOK, gin.H{"drinks": views})
}

// Create handles POST /drinks
func (h *DrinkHandler) Create(c *gin.Context) {
	var req createDrinkRequest
	if !bindAndValidate(c, &req) {
		return
	}

	drink, err := h.svc.Create(c.Request.Context(), services.CreateDrinkInput{
		Title:  *req.Title,
		Recipe: *req.Recipe,
	})
	if err != nil {
		response.Error(c, drinkError(err))
		return
	}

	response.Success(c, http.StatusOK, gin.H{"drinks": drink.Long()})
}

// Update handles PATCH /drinks/:id
func (h *DrinkHandler) Update(c *gin.Context) {
	id, ok := parseDrinkID(c)
	if !ok {
		response.Error(c, drinkError(services.ErrDrinkNotFound))
		return
	}

	// The body is read only after the drink is found, so an unknown id is a
	// 404 whatever the payload.
	drink, err := h.svc.Patch(c.Request.Context(), id, func() (services.UpdateDrinkInput, error) {
		var req updateDrinkRequest
		if err := decodeAndValidate(c, &req); err != nil {
			return services.UpdateDrinkInput{}, err
		}
		return services.UpdateDrinkInput{Title: req.Title, Recipe: req.Recipe}, nil
	})
	if err != nil {
		response.Error(c, drinkError(err))
		return
	}

	response.Success(c, http.StatusOK, gin.H{"drinks": []models.LongDrink{drink.Long()}})
}

// Delete handles DELETE /drinks/:id
func (h *DrinkHandler) Delete(c *gin.Context) {
	id, ok := parseDrinkID(c)
	if !ok {
		response.Error(c, drinkError(services.ErrDrinkNotFound))
		return
	}

	if err := h.svc.Delete(c.Request.Context(), id); err != nil {
		response.Error(c, drinkError(err))
		return
	}

	response.Success(c, http.StatusOK, gin.H{"delete": id})
}

func drinkError(err error) error {
	var (
		validationErr *services.ValidationError
		appErr        *appErrors.AppError
	)
	switch {
	case errors.Is(err, services.ErrInvalidPatch) && errors.As(err, &appErr):
		return appErr
	case errors.Is(err, services.ErrDrinkNotFound):
		return appErrors.ErrNotFound.WithMessage("drink not found").WithInternal(err)
	case errors.Is(err, services.ErrDrinkTitleTaken):
		return appErrors.NewUnprocessable("a drink with this title already exists").WithInternal(err)
	case errors.Is(err, services.ErrNoChanges):
		return appErrors.NewBadRequest("title or recipe is required").WithInternal(err)
	case errors.As(err, &validationErr):
		return appErrors.NewUnprocessable(validationErr.Message()).WithInternal(err)
	default:
		return appErrors.ErrInternalServer.WithInternal(err)
	}
}
