package dto

type CreateLevelRequest struct {
	Name string `json:"name" validate:"required,max=80"`
}

type CreateGradeRequest struct {
	LevelID int64  `json:"levelId" validate:"required,gt=0"`
	Name    string `json:"name" validate:"required,max=80"`
}

type CreateParentRequest struct {
	FullName string  `json:"fullName" validate:"required,max=120"`
	Email    *string `json:"email" validate:"omitempty,email,max=160"`
	Phone    *string `json:"phone" validate:"omitempty,max=40"`
}

type CreateStudentRequest struct {
	ParentID int64  `json:"parentId" validate:"required,gt=0"`
	GradeID  int64  `json:"gradeId" validate:"required,gt=0"`
	FullName string `json:"fullName" validate:"required,max=120"`
	IsActive *bool  `json:"isActive"`
}

type StudentFilter struct {
	LevelID  *int64
	GradeID  *int64
	ParentID *int64
	Active   *bool
}

// StudentRow is a student joined with grade, level and parent names.
type StudentRow struct {
	StudentID  int64  `json:"studentId"`
	FullName   string `json:"fullName"`
	IsActive   bool   `json:"isActive"`
	ParentID   int64  `json:"parentId"`
	ParentName string `json:"parentName"`
	GradeID    int64  `json:"gradeId"`
	GradeName  string `json:"gradeName"`
	LevelID    int64  `json:"levelId"`
	LevelName  string `json:"levelName"`
}
