package routes

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	directoryController "schoolportal_backend/internals/features/school/directory/controller"
	settingController "schoolportal_backend/internals/features/settings/controller"
	authController "schoolportal_backend/internals/features/users/auth/controller"
	authService "schoolportal_backend/internals/features/users/auth/service"
	userController "schoolportal_backend/internals/features/users/user/controller"
	authMiddleware "schoolportal_backend/internals/middlewares/auth"
	routeDetails "schoolportal_backend/internals/route/details"
)

type Deps struct {
	DB      *gorm.DB
	Env     string
	AuthSvc *authService.AuthService
	Log     *zap.Logger

	Auth      *authController.AuthController
	Users     *userController.UserController
	Directory *directoryController.DirectoryController
	Settings  *settingController.SettingController
	Finance   routeDetails.FinanceControllers
}

// SetupRoutes mounts everything. Public routes go first: fiber runs handlers
// in registration order, so the auth middleware below never sees them.
func SetupRoutes(app *fiber.App, d Deps) {
	log := d.Log.Named("routes")

	BaseRoutes(app, d.DB, d.Env)

	api := app.Group("/api")

	// ===================== PUBLIC =====================
	routeDetails.AuthPublicRoutes(api, d.Auth)
	routeDetails.FinancePublicRoutes(api, d.Finance)

	// ===================== AUTHENTICATED =====================
	api.Use(authMiddleware.AuthMiddleware(d.AuthSvc, d.Log))

	routeDetails.AuthProtectedRoutes(api, d.Auth)
	routeDetails.UserRoutes(api, d.Users)
	routeDetails.SchoolRoutes(api, d.Directory)
	routeDetails.SettingsRoutes(api, d.Settings)
	routeDetails.FinanceRoutes(api, d.Finance)

	log.Info("routes mounted", zap.Int("handlers", int(app.HandlersCount())))
}
