package model

import (
	"time"
)

// The grading tables are owned by the grading system. The poller reads
// assignments and people from them and writes submissions.

type Assignment struct {
	ID   int64  `gorm:"primaryKey;autoIncrement"`
	Name string `gorm:"uniqueIndex;not null"`
}

func (Assignment) TableName() string { return "assignment" }

type AssignmentIn struct {
	AssignmentID int64  `gorm:"primaryKey"`
	Name         string `gorm:"primaryKey"`
}

func (AssignmentIn) TableName() string { return "assignment_in" }

type Person struct {
	ID    int64  `gorm:"primaryKey;autoIncrement"`
	Login string `gorm:"uniqueIndex;not null"`
	Name  string
	// IsTeacher is filled in by the store, it is not a column.
	IsTeacher bool `gorm:"-"`
}

func (Person) TableName() string { return "person" }

type Enrollment struct {
	Student int64 `gorm:"primaryKey"`
}

func (Enrollment) TableName() string { return "enrollment" }

type TeacherList struct {
	Teacher int64 `gorm:"primaryKey"`
}

func (TeacherList) TableName() string { return "teacher_list" }

type Submission struct {
	ID           int64     `gorm:"primaryKey;autoIncrement"`
	Author       int64     `gorm:"uniqueIndex:submission_author_assignment_stamp;not null"`
	AssignmentID int64     `gorm:"uniqueIndex:submission_author_assignment_stamp;not null"`
	Stamp        time.Time `gorm:"uniqueIndex:submission_author_assignment_stamp;not null"`
}

func (Submission) TableName() string { return "submission" }

type Content struct {
	Sha  []byte `gorm:"primaryKey"`
	Data []byte `gorm:"not null"`
}

func (Content) TableName() string { return "content" }

type SubmissionIn struct {
	SubmissionID int64  `gorm:"primaryKey"`
	AssignmentID int64  `gorm:"not null"`
	Name         string `gorm:"primaryKey"`
	ContentSha   []byte `gorm:"not null"`
}

func (SubmissionIn) TableName() string { return "submission_in" }

type CurrentSuite struct {
	ID           int64 `gorm:"primaryKey;autoIncrement"`
	AssignmentID int64 `gorm:"not null"`
	Active       bool
}

func (CurrentSuite) TableName() string { return "current_suite" }

type EvalReq struct {
	SubmissionID int64 `gorm:"primaryKey"`
	SuiteID      int64 `gorm:"primaryKey"`
}

func (EvalReq) TableName() string { return "eval_req" }

// File is a named piece of submitted content.
type File struct {
	Name string
	Data []byte
}
