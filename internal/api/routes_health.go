package api

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/charlesng35/coffeeshop/internal/app"
	"github.com/charlesng35/coffeeshop/internal/handlers"
)

func registerHealthRoutes(r gin.IRouter, db *gorm.DB, cfg *app.Config) {
	if !cfg.Monitoring.Health.Enabled {
		return
	}
	r.GET("/health", handlers.Health(db))
}
