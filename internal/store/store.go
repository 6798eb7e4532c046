package store

import (
	"context"

	"github.com/frag-eval/frag-poll/internal/store/model"
	"github.com/frag-eval/frag-poll/pkg/migrations"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type Store interface {
	NewTransactionContext(ctx context.Context) (context.Context, error)
	Processed(poller string) Processed
	Grading() Grading
	InitialMigration() error
	Close() error
}

type DataStore struct {
	db      *gorm.DB
	log     logrus.FieldLogger
	grading Grading
}

func NewStore(db *gorm.DB, log logrus.FieldLogger) Store {
	return &DataStore{
		db:      db,
		log:     log,
		grading: NewGradingStore(db),
	}
}

func (s *DataStore) NewTransactionContext(ctx context.Context) (context.Context, error) {
	return newTransactionContext(ctx, s.db, s.log)
}

// Processed returns the processed-set tracker of one poller.
func (s *DataStore) Processed(poller string) Processed {
	return NewProcessedStore(s.db, poller)
}

func (s *DataStore) Grading() Grading {
	return s.grading
}

// InitialMigration creates the poller schema. On PostgreSQL the grading
// tables belong to the grading system and only the poller tables are
// migrated; a sqlite database is standalone and gets the whole schema.
func (s *DataStore) InitialMigration() error {
	if s.db.Dialector.Name() == "postgres" {
		return migrations.MigrateStore(s.db)
	}
	return s.db.AutoMigrate(
		&model.Identity{},
		&model.Processed{},
		&model.Assignment{},
		&model.AssignmentIn{},
		&model.Person{},
		&model.Enrollment{},
		&model.TeacherList{},
		&model.Submission{},
		&model.Content{},
		&model.SubmissionIn{},
		&model.CurrentSuite{},
		&model.EvalReq{},
	)
}

func (s *DataStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func getDB(ctx context.Context, db *gorm.DB) *gorm.DB {
	tx := FromContext(ctx)
	if tx != nil {
		return tx
	}
	return db.WithContext(ctx)
}
