package api

import (
	"github.com/gin-gonic/gin"

	iauth "github.com/charlesng35/coffeeshop/internal/auth"
	"github.com/charlesng35/coffeeshop/internal/handlers"
	"github.com/charlesng35/coffeeshop/internal/middleware"
	"github.com/charlesng35/coffeeshop/internal/services"
)

func registerDrinkRoutes(r gin.IRouter, svc *services.DrinkService, guard middleware.Authorizer) {
	handler := handlers.NewDrinkHandler(svc)

	r.GET("/drinks", handler.List)
	r.GET("/drinks-detail", middleware.RequirePermission(guard, iauth.PermissionGetDrinksDetail), handler.ListDetailed)
	r.POST("/drinks", middleware.RequirePermission(guard, iauth.PermissionPostDrinks), handler.Create)
	r.PATCH("/drinks/:id", middleware.RequirePermission(guard, iauth.PermissionPatchDrinks), handler.Update)
	r.DELETE("/drinks/:id", middleware.RequirePermission(guard, iauth.PermissionDeleteDrinks), handler.Delete)
}
