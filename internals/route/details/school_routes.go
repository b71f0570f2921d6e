package details

import (
	"github.com/gofiber/fiber/v2"

	"schoolportal_backend/internals/constants"
	directoryController "schoolportal_backend/internals/features/school/directory/controller"
	directoryRoute "schoolportal_backend/internals/features/school/directory/route"
	settingController "schoolportal_backend/internals/features/settings/controller"
	settingRoute "schoolportal_backend/internals/features/settings/route"
	authMiddleware "schoolportal_backend/internals/middlewares/auth"
)

// SchoolRoutes: staff read, admin write.
func SchoolRoutes(api fiber.Router, ctl *directoryController.DirectoryController) {
	guard := authMiddleware.StaffReadAdminWrite("the school directory")
	for _, prefix := range []string{"/levels", "/grades", "/parents", "/students"} {
		api.Use(prefix, guard)
	}
	directoryRoute.DirectoryRoutes(api, ctl)
}

// SettingsRoutes: admin only.
func SettingsRoutes(api fiber.Router, ctl *settingController.SettingController) {
	api.Use("/settings", authMiddleware.OnlyRoles(constants.RoleErrorAdmin("settings"), constants.AdminOnly...))
	settingRoute.SettingRoutes(api, ctl)
}
