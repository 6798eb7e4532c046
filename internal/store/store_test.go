package store_test

import (
	"context"
	"errors"
	"time"

	"github.com/frag-eval/frag-poll/internal/config"
	st "github.com/frag-eval/frag-poll/internal/store"
	"github.com/frag-eval/frag-poll/internal/submission"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var _ = Describe("Store", Ordered, func() {
	var (
		store  st.Store
		gormDB *gorm.DB
		obj    object
	)

	BeforeAll(func() {
		cfg := config.NewDefault()
		db, err := st.InitDB(cfg, logrus.New())
		Expect(err).To(BeNil())
		gormDB = db

		store = st.NewStore(db, logrus.New())
		Expect(store).ToNot(BeNil())
		Expect(store.InitialMigration()).To(Succeed())

		obj = object{id: "hw01/task01.py", author: "alice", changed: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)}
	})

	AfterAll(func() {
		store.Close()
	})

	Context("transaction", func() {
		It("confirms an object successfully", func() {
			ctx, err := store.NewTransactionContext(context.TODO())
			Expect(err).To(BeNil())

			err = store.Processed("file").Confirm(ctx, obj, submission.Submitted)
			Expect(err).To(BeNil())

			// commit
			_, cerr := st.Commit(ctx)
			Expect(cerr).To(BeNil())

			count := 0
			err = gormDB.Raw("SELECT COUNT(*) from poll_processed;").Scan(&count).Error
			Expect(err).To(BeNil())
			Expect(count).To(Equal(1))
		})

		It("rollback a confirmation successfully", func() {
			ctx, err := store.NewTransactionContext(context.TODO())
			Expect(err).To(BeNil())

			err = store.Processed("git").Confirm(ctx, obj, submission.Ignored)
			Expect(err).To(BeNil())

			// read in the same transaction
			done, err := store.Processed("git").IsProcessed(ctx, obj, submission.Ignored)
			Expect(err).To(BeNil())
			Expect(done).To(BeTrue())

			// rollback
			_, cerr := st.Rollback(ctx)
			Expect(cerr).To(BeNil())

			count := 0
			err = gormDB.Raw("SELECT COUNT(*) from poll_identities WHERE poller = 'git';").Scan(&count).Error
			Expect(err).To(BeNil())
			Expect(count).To(Equal(0))
		})

		It("reuses the transaction already in the context", func() {
			ctx, err := store.NewTransactionContext(context.TODO())
			Expect(err).To(BeNil())

			nested, err := store.NewTransactionContext(ctx)
			Expect(err).To(BeNil())
			Expect(st.FromContext(nested)).To(BeIdenticalTo(st.FromContext(ctx)))

			_, cerr := st.Rollback(ctx)
			Expect(cerr).To(BeNil())
		})

		It("finishes a dry run with a rollback", func() {
			ctx, err := store.NewTransactionContext(context.TODO())
			Expect(err).To(BeNil())
			Expect(store.Processed("file").Confirm(ctx, obj, submission.Superseded)).To(Succeed())

			Expect(st.Finish(ctx, false, nil)).To(Succeed())

			done, err := store.Processed("file").IsProcessed(context.TODO(), obj, submission.Superseded)
			Expect(err).To(BeNil())
			Expect(done).To(BeFalse())
		})

		It("returns the failure and rolls back", func() {
			ctx, err := store.NewTransactionContext(context.TODO())
			Expect(err).To(BeNil())
			Expect(store.Processed("file").Confirm(ctx, obj, submission.Ignored)).To(Succeed())

			failure := errors.New("fetch failed")
			Expect(st.Finish(ctx, true, failure)).To(MatchError(failure))

			count := 0
			Expect(gormDB.Raw("SELECT COUNT(*) from poll_processed;").Scan(&count).Error).To(BeNil())
			Expect(count).To(Equal(0))
		})

		AfterEach(func() {
			gormDB.Exec("DELETE FROM poll_processed;")
			gormDB.Exec("DELETE FROM poll_identities;")
		})
	})
})
