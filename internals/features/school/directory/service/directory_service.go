package service

import (
	"context"
	"strings"

	"github.com/pkg/errors"

	"schoolportal_backend/internals/databases"
	"schoolportal_backend/internals/features/school/directory/dto"
	"schoolportal_backend/internals/features/school/directory/model"
	"schoolportal_backend/internals/helpers/apperr"
)

type DirectoryService struct {
	gw *databases.Gateway
}

func NewDirectoryService(gw *databases.Gateway) *DirectoryService {
	return &DirectoryService{gw: gw}
}

/* ===================== Levels ===================== */

func (s *DirectoryService) CreateLevel(ctx context.Context, req dto.CreateLevelRequest) (*model.LevelModel, error) {
	m := &model.LevelModel{LevelName: strings.TrimSpace(req.Name)}
	if err := s.gw.DB(ctx).Create(m).Error; err != nil {
		return nil, apperr.From(err)
	}
	return m, nil
}

func (s *DirectoryService) ListLevels(ctx context.Context) ([]model.LevelModel, error) {
	var out []model.LevelModel
	err := s.gw.DB(ctx).Order("level_name ASC").Find(&out).Error
	return out, errors.Wrap(err, "list levels")
}

/* ===================== Grades ===================== */

func (s *DirectoryService) CreateGrade(ctx context.Context, req dto.CreateGradeRequest) (*model.GradeModel, error) {
	if err := s.mustExist(ctx, "levels", "level_id", req.LevelID, "level not found"); err != nil {
		return nil, err
	}
	m := &model.GradeModel{GradeLevelID: req.LevelID, GradeName: strings.TrimSpace(req.Name)}
	if err := s.gw.DB(ctx).Create(m).Error; err != nil {
		return nil, apperr.From(err)
	}
	return m, nil
}

func (s *DirectoryService) ListGrades(ctx context.Context, levelID *int64) ([]model.GradeModel, error) {
	var out []model.GradeModel
	q := s.gw.DB(ctx).Order("grade_level_id ASC, grade_name ASC")
	if levelID != nil {
		q = q.Where("grade_level_id = ?", *levelID)
	}
	err := q.Find(&out).Error
	return out, errors.Wrap(err, "list grades")
}

// LevelOfGrade resolves the level a grade belongs to.
func (s *DirectoryService) LevelOfGrade(ctx context.Context, gradeID int64) (int64, error) {
	var levelID int64
	found, err := s.gw.FetchOne(ctx, &levelID, `SELECT grade_level_id FROM grades WHERE grade_id = ?`, gradeID)
	if err != nil {
		return 0, errors.Wrap(err, "level of grade")
	}
	if !found {
		return 0, apperr.NotFound("grade not found")
	}
	return levelID, nil
}

/* ===================== Parents ===================== */

func (s *DirectoryService) CreateParent(ctx context.Context, req dto.CreateParentRequest) (*model.ParentModel, error) {
	m := &model.ParentModel{
		ParentFullName: strings.TrimSpace(req.FullName),
		ParentEmail:    req.Email,
		ParentPhone:    req.Phone,
	}
	if err := s.gw.DB(ctx).Create(m).Error; err != nil {
		return nil, apperr.From(err)
	}
	return m, nil
}

func (s *DirectoryService) ListParents(ctx context.Context) ([]model.ParentModel, error) {
	var out []model.ParentModel
	err := s.gw.DB(ctx).Order("parent_full_name ASC").Find(&out).Error
	return out, errors.Wrap(err, "list parents")
}

func (s *DirectoryService) GetParent(ctx context.Context, id int64) (*model.ParentModel, error) {
	var m model.ParentModel
	if err := s.gw.DB(ctx).Where("parent_id = ?", id).Take(&m).Error; err != nil {
		return nil, apperr.From(err)
	}
	return &m, nil
}

/* ===================== Students ===================== */

func (s *DirectoryService) CreateStudent(ctx context.Context, req dto.CreateStudentRequest) (*model.StudentModel, error) {
	if err := s.mustExist(ctx, "parents", "parent_id", req.ParentID, "parent not found"); err != nil {
		return nil, err
	}
	if err := s.mustExist(ctx, "grades", "grade_id", req.GradeID, "grade not found"); err != nil {
		return nil, err
	}
	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}
	m := &model.StudentModel{
		StudentParentID: req.ParentID,
		StudentGradeID:  req.GradeID,
		StudentFullName: strings.TrimSpace(req.FullName),
		StudentIsActive: active,
	}
	if err := s.gw.DB(ctx).Create(m).Error; err != nil {
		return nil, apperr.From(err)
	}
	return m, nil
}

func (s *DirectoryService) ListStudents(ctx context.Context, f dto.StudentFilter) ([]dto.StudentRow, error) {
	var (
		sb   strings.Builder
		args []any
	)
	sb.WriteString(`
SELECT s.student_id, s.student_full_name AS full_name, s.student_is_active AS is_active,
       p.parent_id, p.parent_full_name AS parent_name,
       g.grade_id, g.grade_name,
       l.level_id, l.level_name
FROM students s
JOIN parents p ON p.parent_id = s.student_parent_id
JOIN grades g  ON g.grade_id  = s.student_grade_id
JOIN levels l  ON l.level_id  = g.grade_level_id
WHERE 1=1`)
	if f.LevelID != nil {
		sb.WriteString(` AND l.level_id = ?`)
		args = append(args, *f.LevelID)
	}
	if f.GradeID != nil {
		sb.WriteString(` AND g.grade_id = ?`)
		args = append(args, *f.GradeID)
	}
	if f.ParentID != nil {
		sb.WriteString(` AND p.parent_id = ?`)
		args = append(args, *f.ParentID)
	}
	if f.Active != nil {
		sb.WriteString(` AND s.student_is_active = ?`)
		args = append(args, *f.Active)
	}
	sb.WriteString(` ORDER BY s.student_full_name ASC`)

	out := []dto.StudentRow{}
	if err := s.gw.FetchMany(ctx, &out, sb.String(), args...); err != nil {
		return nil, errors.Wrap(err, "list students")
	}
	return out, nil
}

// mustExist maps a missing referenced row to a ValidationError.
func (s *DirectoryService) mustExist(ctx context.Context, table, pk string, id int64, msg string) error {
	var n int64
	if _, err := s.gw.FetchOne(ctx, &n, `SELECT COUNT(*) FROM `+table+` WHERE `+pk+` = ?`, id); err != nil {
		return errors.Wrap(err, "check reference")
	}
	if n == 0 {
		return apperr.Validation(msg)
	}
	return nil
}
