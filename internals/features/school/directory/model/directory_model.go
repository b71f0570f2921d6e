// file: internals/features/school/directory/model/directory_model.go
package model

import "time"

/*
Directory shell: levels (e.g. Primaria), grades inside a level (e.g. 3rd grade),
parents and their students. Billing reads these for display names and scoping.
*/

type LevelModel struct {
	LevelID   int64     `gorm:"column:level_id;primaryKey;autoIncrement" json:"levelId"`
	LevelName string    `gorm:"column:level_name;type:varchar(80);not null;uniqueIndex:uq_levels_name" json:"levelName"`
	CreatedAt time.Time `gorm:"column:level_created_at;autoCreateTime" json:"createdAt"`
}

func (LevelModel) TableName() string { return "levels" }

type GradeModel struct {
	GradeID      int64     `gorm:"column:grade_id;primaryKey;autoIncrement" json:"gradeId"`
	GradeLevelID int64     `gorm:"column:grade_level_id;not null;index:ix_grades_level" json:"levelId"`
	GradeName    string    `gorm:"column:grade_name;type:varchar(80);not null" json:"gradeName"`
	CreatedAt    time.Time `gorm:"column:grade_created_at;autoCreateTime" json:"createdAt"`
}

func (GradeModel) TableName() string { return "grades" }

type ParentModel struct {
	ParentID       int64     `gorm:"column:parent_id;primaryKey;autoIncrement" json:"parentId"`
	ParentFullName string    `gorm:"column:parent_full_name;type:varchar(120);not null" json:"fullName"`
	ParentEmail    *string   `gorm:"column:parent_email;type:varchar(160)" json:"email,omitempty"`
	ParentPhone    *string   `gorm:"column:parent_phone;type:varchar(40)" json:"phone,omitempty"`
	CreatedAt      time.Time `gorm:"column:parent_created_at;autoCreateTime" json:"createdAt"`
	UpdatedAt      time.Time `gorm:"column:parent_updated_at;autoUpdateTime" json:"updatedAt"`
}

func (ParentModel) TableName() string { return "parents" }

type StudentModel struct {
	StudentID       int64     `gorm:"column:student_id;primaryKey;autoIncrement" json:"studentId"`
	StudentParentID int64     `gorm:"column:student_parent_id;not null;index:ix_students_parent" json:"parentId"`
	StudentGradeID  int64     `gorm:"column:student_grade_id;not null;index:ix_students_grade" json:"gradeId"`
	StudentFullName string    `gorm:"column:student_full_name;type:varchar(120);not null" json:"fullName"`
	StudentIsActive bool      `gorm:"column:student_is_active;not null" json:"isActive"`
	CreatedAt       time.Time `gorm:"column:student_created_at;autoCreateTime" json:"createdAt"`
	UpdatedAt       time.Time `gorm:"column:student_updated_at;autoUpdateTime" json:"updatedAt"`
}

func (StudentModel) TableName() string { return "students" }
