package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/charlesng35/coffeeshop/internal/api"
	"github.com/charlesng35/coffeeshop/internal/app"
	"github.com/charlesng35/coffeeshop/internal/app/maintenance"
	"github.com/charlesng35/coffeeshop/internal/auth"
	"github.com/charlesng35/coffeeshop/internal/database"
	"github.com/charlesng35/coffeeshop/internal/services"
)

type runtimeStack struct {
	DB      *gorm.DB
	Guard   *auth.Guard
	Drinks  *services.DrinkService
	Monitor *maintenance.CatalogMonitor
	Router  *gin.Engine
}

func bootstrapRuntime(ctx context.Context, cfg *app.Config, log *zap.Logger) (_ *runtimeStack, err error) {
	if strings.EqualFold(os.Getenv("GIN_DEBUG"), "true") {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	stack := &runtimeStack{}
	defer func() {
		if err != nil {
			_ = stack.Shutdown()
		}
	}()

	keys, err := auth.LoadKeySet(ctx, cfg.Auth.KeySource())
	if err != nil {
		return nil, fmt.Errorf("load signing keys: %w", err)
	}

	stack.Guard, err = auth.NewGuard(keys, cfg.Auth.GuardConfig())
	if err != nil {
		return nil, fmt.Errorf("initialise guard: %w", err)
	}

	stack.DB, err = initialiseDatabase(cfg, log)
	if err != nil {
		return nil, err
	}

	stack.Drinks, err = services.NewDrinkService(stack.DB)
	if err != nil {
		return nil, fmt.Errorf("initialise drink service: %w", err)
	}

	stack.Monitor, err = maintenance.NewCatalogMonitor(stack.Drinks, maintenance.WithSchedule(cfg.Monitoring.CatalogSchedule))
	if err != nil {
		return nil, fmt.Errorf("initialise catalog monitor: %w", err)
	}
	if err := stack.Monitor.Start(ctx); err != nil {
		return nil, fmt.Errorf("start catalog monitor: %w", err)
	}

	stack.Router, err = api.NewRouter(stack.DB, stack.Drinks, stack.Guard, cfg)
	if err != nil {
		return nil, fmt.Errorf("build api router: %w", err)
	}

	return stack, nil
}

// Shutdown stops background jobs and releases the database handle. It is safe
// to call on a partially built stack.
func (s *runtimeStack) Shutdown() error {
	if s == nil {
		return nil
	}

	var errs error
	if s.Monitor != nil {
		<-s.Monitor.Stop().Done()
		s.Monitor = nil
	}
	if s.DB != nil {
		if err := database.Close(s.DB); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("close database: %w", err))
		}
		s.DB = nil
	}
	return errs
}

func initialiseDatabase(cfg *app.Config, log *zap.Logger) (*gorm.DB, error) {
	dbCfg := cfg.Database.DatabaseOptions()
	db, err := database.Open(dbCfg)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if cfg.Database.ResetOnStart {
		err = database.ResetAndSeed(db)
	} else {
		err = database.AutoMigrateAndSeed(db)
	}
	if err != nil {
		_ = database.Close(db)
		return nil, fmt.Errorf("prepare database: %w", err)
	}

	log.Info("database ready",
		zap.String("driver", dbCfg.Driver),
		zap.Bool("reset", cfg.Database.ResetOnStart),
	)
	return db, nil
}
