package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/charlesng35/coffeeshop/internal/database"
	appErrors "github.com/charlesng35/coffeeshop/pkg/errors"
	"github.com/charlesng35/coffeeshop/pkg/logger"
	"github.com/charlesng35/coffeeshop/pkg/response"
)

const healthTimeout = 2 * time.Second

// Health reports whether the database answers a ping.
func Health(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), healthTimeout)
		defer cancel()

		if err := database.Ping(ctx, db); err != nil {
			logger.WithModule("health").Warn("database ping failed", zap.Error(err))
			response.Error(c, appErrors.ErrServiceUnavailable.WithInternal(err))
			return
		}
		response.Success(c, http.StatusOK, gin.H{"status": "ok"})
	}
}
