package route

import (
	"github.com/gofiber/fiber/v2"

	"schoolportal_backend/internals/features/school/directory/controller"
)

// DirectoryRoutes mounts the directory shell under an admin-guarded /api group.
func DirectoryRoutes(r fiber.Router, ctl *controller.DirectoryController) {
	r.Get("/levels", ctl.ListLevels)
	r.Post("/levels", ctl.CreateLevel)

	r.Get("/grades", ctl.ListGrades)
	r.Post("/grades", ctl.CreateGrade)

	r.Get("/parents", ctl.ListParents)
	r.Post("/parents", ctl.CreateParent)

	r.Get("/students", ctl.ListStudents)
	r.Post("/students", ctl.CreateStudent)
}
