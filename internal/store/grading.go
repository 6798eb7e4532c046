package store

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"time"

	"github.com/frag-eval/frag-poll/internal/store/model"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const stampRetries = 10

// EvalReq decides whether a stored submission asks for an evaluation run.
type EvalReq int

const (
	EvalReqTeacherInactiveOnly EvalReq = iota
	EvalReqYes
	EvalReqNo
)

// Grading is the part of the grading database the pollers read from and
// submit to.
type Grading interface {
	AssignmentID(ctx context.Context, name string) (*int64, error)
	AssignmentFiles(ctx context.Context, assignmentID int64) ([]string, error)
	People(ctx context.Context) ([]model.Person, error)
	Submit(ctx context.Context, assignmentID, author int64, files []model.File, stamp time.Time, evalReq EvalReq) (int64, error)
}

type GradingStore struct {
	db *gorm.DB
}

// Make sure we conform to Grading interface
var _ Grading = (*GradingStore)(nil)

func NewGradingStore(db *gorm.DB) Grading {
	return &GradingStore{db: db}
}

// AssignmentID returns nil when no assignment of that name exists.
func (g *GradingStore) AssignmentID(ctx context.Context, name string) (*int64, error) {
	var asgn model.Assignment
	err := getDB(ctx, g.db).Where("name = ?", name).First(&asgn).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &asgn.ID, nil
}

func (g *GradingStore) AssignmentFiles(ctx context.Context, assignmentID int64) ([]string, error) {
	var names []string
	err := getDB(ctx, g.db).Model(&model.AssignmentIn{}).
		Where("assignment_id = ?", assignmentID).
		Order("name").
		Pluck("name", &names).Error
	if err != nil {
		return nil, err
	}
	return names, nil
}

// People returns teachers followed by enrolled students.
func (g *GradingStore) People(ctx context.Context) ([]model.Person, error) {
	db := getDB(ctx, g.db)

	var teachers []model.Person
	if err := db.Joins("JOIN teacher_list ON teacher_list.teacher = person.id").Order("person.id").Find(&teachers).Error; err != nil {
		return nil, fmt.Errorf("failed to list teachers: %w", err)
	}
	for i := range teachers {
		teachers[i].IsTeacher = true
	}

	var students []model.Person
	if err := db.Joins("JOIN enrollment ON enrollment.student = person.id").Order("person.id").Find(&students).Error; err != nil {
		return nil, fmt.Errorf("failed to list students: %w", err)
	}

	return append(teachers, students...), nil
}

// Submit stores one submission with its files and optionally requests its
// evaluation. It returns the id of the new submission.
func (g *GradingStore) Submit(ctx context.Context, assignmentID, author int64, files []model.File, stamp time.Time, evalReq EvalReq) (int64, error) {
	db := getDB(ctx, g.db)
	logger := zap.S().Named("grading_store")

	sub := model.Submission{Author: author, AssignmentID: assignmentID, Stamp: normalizeTime(stamp)}
	stored := false
	for retry := 0; retry < stampRetries; retry++ {
		result := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&sub)
		if result.Error != nil {
			return 0, fmt.Errorf("failed to insert submission: %w", result.Error)
		}
		if result.RowsAffected > 0 {
			stored = true
			break
		}
		next := normalizeTime(stamp).Add(time.Duration(retry+1) * time.Microsecond)
		logger.Warnf("Retrying %d for %d, %s → %s", assignmentID, author, sub.Stamp, next)
		sub = model.Submission{Author: author, AssignmentID: assignmentID, Stamp: next}
	}
	if !stored {
		return 0, fmt.Errorf("submission of %d for %d at %s: %w", assignmentID, author, stamp, ErrDuplicateKey)
	}

	for _, f := range files {
		sha := sha256.Sum256(f.Data)
		content := model.Content{Sha: sha[:], Data: f.Data}
		if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&content).Error; err != nil {
			return 0, fmt.Errorf("failed to store content of %s: %w", f.Name, err)
		}
		link := model.SubmissionIn{
			SubmissionID: sub.ID,
			AssignmentID: assignmentID,
			Name:         f.Name,
			ContentSha:   sha[:],
		}
		if err := db.Create(&link).Error; err != nil {
			return 0, fmt.Errorf("failed to link %s: %w", f.Name, err)
		}
	}

	if evalReq == EvalReqTeacherInactiveOnly {
		isTeacher, err := g.isTeacher(db, author)
		if err != nil {
			return 0, err
		}
		if isTeacher {
			evalReq = EvalReqYes
		}
	}
	if evalReq == EvalReqYes {
		if err := g.requestEvaluation(db, assignmentID, sub.ID); err != nil {
			return 0, err
		}
	}
	return sub.ID, nil
}

func (g *GradingStore) isTeacher(db *gorm.DB, author int64) (bool, error) {
	var count int64
	if err := db.Model(&model.TeacherList{}).Where("teacher = ?", author).Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check teachers: %w", err)
	}
	return count > 0, nil
}

// requestEvaluation queues the submission for the inactive test suite of the
// assignment, if there is one.
func (g *GradingStore) requestEvaluation(db *gorm.DB, assignmentID, submissionID int64) error {
	var suite model.CurrentSuite
	err := db.Where("assignment_id = ? AND NOT active", assignmentID).First(&suite).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to find test suite: %w", err)
	}

	if err := db.Create(&model.EvalReq{SubmissionID: submissionID, SuiteID: suite.ID}).Error; err != nil {
		return fmt.Errorf("failed to request evaluation: %w", err)
	}
	if db.Dialector.Name() == "postgres" {
		return db.Exec("NOTIFY eval_req").Error
	}
	return nil
}
