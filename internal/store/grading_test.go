package store_test

import (
	"context"
	"crypto/sha256"
	"errors"
	"time"

	"github.com/frag-eval/frag-poll/internal/config"
	st "github.com/frag-eval/frag-poll/internal/store"
	"github.com/frag-eval/frag-poll/internal/store/model"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const (
	insertAssignmentStm   = "INSERT INTO assignment (id, name) VALUES (?, ?);"
	insertAssignmentInStm = "INSERT INTO assignment_in (assignment_id, name) VALUES (?, ?);"
	insertPersonStm       = "INSERT INTO person (id, login, name) VALUES (?, ?, ?);"
	insertStudentStm      = "INSERT INTO enrollment (student) VALUES (?);"
	insertTeacherStm      = "INSERT INTO teacher_list (teacher) VALUES (?);"
	insertSuiteStm        = "INSERT INTO current_suite (id, assignment_id, active) VALUES (?, ?, ?);"
)

var _ = Describe("grading store", Ordered, func() {
	var (
		store  st.Store
		gormDB *gorm.DB
		stamp  time.Time
	)

	BeforeAll(func() {
		db, err := st.InitDB(config.NewDefault(), logrus.New())
		Expect(err).To(BeNil())
		gormDB = db

		store = st.NewStore(db, logrus.New())
		Expect(store.InitialMigration()).To(Succeed())
		stamp = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	})

	AfterAll(func() {
		store.Close()
	})

	BeforeEach(func() {
		Expect(gormDB.Exec(insertAssignmentStm, 1, "hw01").Error).To(BeNil())
		Expect(gormDB.Exec(insertAssignmentInStm, 1, "util.c").Error).To(BeNil())
		Expect(gormDB.Exec(insertAssignmentInStm, 1, "main.c").Error).To(BeNil())
		Expect(gormDB.Exec(insertPersonStm, 10, "alice", "Alice Novak").Error).To(BeNil())
		Expect(gormDB.Exec(insertPersonStm, 20, "tom", "Tom Teacher").Error).To(BeNil())
		Expect(gormDB.Exec(insertStudentStm, 10).Error).To(BeNil())
		Expect(gormDB.Exec(insertTeacherStm, 20).Error).To(BeNil())
	})

	Context("assignments", func() {
		It("resolves the assignment id", func() {
			id, err := store.Grading().AssignmentID(context.TODO(), "hw01")
			Expect(err).To(BeNil())
			Expect(id).ToNot(BeNil())
			Expect(*id).To(Equal(int64(1)))
		})

		It("returns nil for an unknown assignment", func() {
			id, err := store.Grading().AssignmentID(context.TODO(), "hw99")
			Expect(err).To(BeNil())
			Expect(id).To(BeNil())
		})

		It("lists expected files in name order", func() {
			names, err := store.Grading().AssignmentFiles(context.TODO(), 1)
			Expect(err).To(BeNil())
			Expect(names).To(Equal([]string{"main.c", "util.c"}))
		})
	})

	Context("people", func() {
		It("lists teachers and students", func() {
			people, err := store.Grading().People(context.TODO())
			Expect(err).To(BeNil())
			Expect(people).To(HaveLen(2))
			Expect(people[0].Login).To(Equal("tom"))
			Expect(people[0].IsTeacher).To(BeTrue())
			Expect(people[1].Login).To(Equal("alice"))
			Expect(people[1].IsTeacher).To(BeFalse())
		})
	})

	Context("submit", func() {
		It("stores the submission with deduplicated content", func() {
			files := []model.File{
				{Name: "main.c", Data: []byte("int main(void) { return 0; }")},
				{Name: "util.c", Data: []byte("int main(void) { return 0; }")},
			}
			id, err := store.Grading().Submit(context.TODO(), 1, 10, files, stamp, st.EvalReqTeacherInactiveOnly)
			Expect(err).To(BeNil())
			Expect(id).ToNot(BeZero())

			count := 0
			Expect(gormDB.Raw("SELECT COUNT(*) FROM content;").Scan(&count).Error).To(BeNil())
			Expect(count).To(Equal(1))
			Expect(gormDB.Raw("SELECT COUNT(*) FROM submission_in WHERE submission_id = ?;", id).Scan(&count).Error).To(BeNil())
			Expect(count).To(Equal(2))

			var link struct{ ContentSha []byte }
			Expect(gormDB.Raw("SELECT content_sha FROM submission_in WHERE name = 'main.c';").Scan(&link).Error).To(BeNil())
			sum := sha256.Sum256(files[0].Data)
			Expect(link.ContentSha).To(Equal(sum[:]))

			Expect(gormDB.Raw("SELECT COUNT(*) FROM eval_req;").Scan(&count).Error).To(BeNil())
			Expect(count).To(Equal(0))
		})

		It("moves the stamp on collision", func() {
			first, err := store.Grading().Submit(context.TODO(), 1, 10, nil, stamp, st.EvalReqNo)
			Expect(err).To(BeNil())
			second, err := store.Grading().Submit(context.TODO(), 1, 10, nil, stamp, st.EvalReqNo)
			Expect(err).To(BeNil())
			Expect(second).ToNot(Equal(first))

			count := 0
			Expect(gormDB.Raw("SELECT COUNT(*) FROM submission;").Scan(&count).Error).To(BeNil())
			Expect(count).To(Equal(2))
		})

		It("gives up after repeated collisions", func() {
			for i := 0; i < 10; i++ {
				_, err := store.Grading().Submit(context.TODO(), 1, 10, nil, stamp, st.EvalReqNo)
				Expect(err).To(BeNil())
			}
			_, err := store.Grading().Submit(context.TODO(), 1, 10, nil, stamp, st.EvalReqNo)
			Expect(errors.Is(err, st.ErrDuplicateKey)).To(BeTrue())
		})

		It("requests evaluation of teacher submissions", func() {
			Expect(gormDB.Exec(insertSuiteStm, 5, 1, false).Error).To(BeNil())

			id, err := store.Grading().Submit(context.TODO(), 1, 20, nil, stamp, st.EvalReqTeacherInactiveOnly)
			Expect(err).To(BeNil())

			var suite int64
			Expect(gormDB.Raw("SELECT suite_id FROM eval_req WHERE submission_id = ?;", id).Scan(&suite).Error).To(BeNil())
			Expect(suite).To(Equal(int64(5)))
		})

		It("skips evaluation without an inactive suite", func() {
			Expect(gormDB.Exec(insertSuiteStm, 5, 1, true).Error).To(BeNil())

			_, err := store.Grading().Submit(context.TODO(), 1, 20, nil, stamp, st.EvalReqYes)
			Expect(err).To(BeNil())

			count := 0
			Expect(gormDB.Raw("SELECT COUNT(*) FROM eval_req;").Scan(&count).Error).To(BeNil())
			Expect(count).To(Equal(0))
		})
	})

	AfterEach(func() {
		for _, table := range []string{"eval_req", "current_suite", "submission_in", "content", "submission",
			"teacher_list", "enrollment", "person", "assignment_in", "assignment"} {
			gormDB.Exec("DELETE FROM " + table + ";")
		}
	})
})
