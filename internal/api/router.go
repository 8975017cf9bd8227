package api

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/charlesng35/coffeeshop/internal/app"
	"github.com/charlesng35/coffeeshop/internal/middleware"
	"github.com/charlesng35/coffeeshop/internal/services"
)

// NewRouter builds the Gin engine, wires middleware and registers the drinks,
// health and metrics routes. db backs the health check; drinks serves the menu.
func NewRouter(db *gorm.DB, drinks *services.DrinkService, guard middleware.Authorizer, cfg *app.Config) (*gin.Engine, error) {
	if db == nil {
		return nil, fmt.Errorf("database handle must be provided")
	}
	if drinks == nil {
		return nil, fmt.Errorf("drink service must be provided")
	}
	if guard == nil {
		return nil, fmt.Errorf("authorization guard must be provided")
	}
	if cfg == nil {
		return nil, fmt.Errorf("config must be provided")
	}

	r := gin.New()
	r.HandleMethodNotAllowed = true

	// Global middleware
	r.Use(middleware.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Metrics())
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS(middleware.CORSConfig{
		AllowedOrigins: cfg.Server.CORS.AllowedOrigins,
	}))

	registerHealthRoutes(r, db, cfg)
	registerMetricsRoutes(r, cfg)

	registerDrinkRoutes(r, drinks, guard)

	r.NoRoute(middleware.NotFoundHandler)
	r.NoMethod(middleware.MethodNotAllowedHandler)

	return r, nil
}
