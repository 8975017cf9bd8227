package auth

// Permissions granted by the identity provider for the drinks API.
const (
	PermissionGetDrinksDetail = "get:drinks-detail"
	PermissionPostDrinks      = "post:drinks"
	PermissionPatchDrinks     = "patch:drinks"
	PermissionDeleteDrinks    = "delete:drinks"
)
