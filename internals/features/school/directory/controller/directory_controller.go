package controller

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"schoolportal_backend/internals/features/school/directory/dto"
	"schoolportal_backend/internals/features/school/directory/service"
	helper "schoolportal_backend/internals/helpers"
)

type DirectoryController struct {
	Svc       *service.DirectoryService
	Validator *helper.Validator
	Log       *zap.Logger
}

func NewDirectoryController(svc *service.DirectoryService, v *helper.Validator, log *zap.Logger) *DirectoryController {
	return &DirectoryController{Svc: svc, Validator: v, Log: log}
}

// POST /api/levels
func (h *DirectoryController) CreateLevel(c *fiber.Ctx) error {
	var req dto.CreateLevelRequest
	if err := h.Validator.Bind(c, &req); err != nil {
		return helper.FromError(c, h.Log, err)
	}
	m, err := h.Svc.CreateLevel(c.UserContext(), req)
	if err != nil {
		return helper.FromError(c, h.Log, err)
	}
	return helper.JsonCreated(c, "level created", m.LevelID, m)
}

// GET /api/levels
func (h *DirectoryController) ListLevels(c *fiber.Ctx) error {
	rows, err := h.Svc.ListLevels(c.UserContext())
	if err != nil {
		return helper.FromError(c, h.Log, err)
	}
	return helper.JsonList(c, "levels", rows, nil)
}

// POST /api/grades
func (h *DirectoryController) CreateGrade(c *fiber.Ctx) error {
	var req dto.CreateGradeRequest
	if err := h.Validator.Bind(c, &req); err != nil {
		return helper.FromError(c, h.Log, err)
	}
	m, err := h.Svc.CreateGrade(c.UserContext(), req)
	if err != nil {
		return helper.FromError(c, h.Log, err)
	}
	return helper.JsonCreated(c, "grade created", m.GradeID, m)
}

// GET /api/grades?levelId=
func (h *DirectoryController) ListGrades(c *fiber.Ctx) error {
	rows, err := h.Svc.ListGrades(c.UserContext(), queryInt64(c, "levelId"))
	if err != nil {
		return helper.FromError(c, h.Log, err)
	}
	return helper.JsonList(c, "grades", rows, nil)
}

// POST /api/parents
func (h *DirectoryController) CreateParent(c *fiber.Ctx) error {
	var req dto.CreateParentRequest
	if err := h.Validator.Bind(c, &req); err != nil {
		return helper.FromError(c, h.Log, err)
	}
	m, err := h.Svc.CreateParent(c.UserContext(), req)
	if err != nil {
		return helper.FromError(c, h.Log, err)
	}
	return helper.JsonCreated(c, "parent created", m.ParentID, m)
}

// GET /api/parents
func (h *DirectoryController) ListParents(c *fiber.Ctx) error {
	rows, err := h.Svc.ListParents(c.UserContext())
	if err != nil {
		return helper.FromError(c, h.Log, err)
	}
	return helper.JsonList(c, "parents", rows, nil)
}

// POST /api/students
func (h *DirectoryController) CreateStudent(c *fiber.Ctx) error {
	var req dto.CreateStudentRequest
	if err := h.Validator.Bind(c, &req); err != nil {
		return helper.FromError(c, h.Log, err)
	}
	m, err := h.Svc.CreateStudent(c.UserContext(), req)
	if err != nil {
		return helper.FromError(c, h.Log, err)
	}
	return helper.JsonCreated(c, "student created", m.StudentID, m)
}

// GET /api/students?levelId=&gradeId=&parentId=&active=
func (h *DirectoryController) ListStudents(c *fiber.Ctx) error {
	f := dto.StudentFilter{
		LevelID:  queryInt64(c, "levelId"),
		GradeID:  queryInt64(c, "gradeId"),
		ParentID: queryInt64(c, "parentId"),
	}
	if v := c.Query("active"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			f.Active = &b
		}
	}
	rows, err := h.Svc.ListStudents(c.UserContext(), f)
	if err != nil {
		return helper.FromError(c, h.Log, err)
	}
	return helper.JsonList(c, "students", rows, nil)
}

func queryInt64(c *fiber.Ctx, key string) *int64 {
	v := c.Query(key)
	if v == "" {
		return nil
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil || n <= 0 {
		return nil
	}
	return &n
}
