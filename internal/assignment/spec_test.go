package assignment_test

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/frag-eval/frag-poll/internal/assignment"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("spec", func() {
	Context("validate", func() {
		It("rejects disabled multifile with several file names", func() {
			s := assignment.Spec{Name: "hw01", FileNames: []string{"a.c", "b.c"}}
			err := s.Validate()
			Expect(err).ToNot(BeNil())
			Expect(errors.Is(err, assignment.ErrSlotCount)).To(BeTrue())
		})

		It("rejects disabled multifile without file names", func() {
			s := assignment.Spec{Name: "hw01"}
			Expect(errors.Is(s.Validate(), assignment.ErrSlotCount)).To(BeTrue())
		})

		It("accepts several file names with multifile all", func() {
			s := assignment.Spec{Name: "hw01", FileNames: []string{"a.c", "b.c"}, Multifile: assignment.MultifileAll}
			Expect(s.Validate()).To(BeNil())
		})
	})

	Context("enabled", func() {
		It("parses a boolean", func() {
			var e assignment.Enabled
			Expect(json.Unmarshal([]byte(`false`), &e)).To(Succeed())
			Expect(e.At(time.Now())).To(BeFalse())
		})

		It("parses a date window", func() {
			var e assignment.Enabled
			Expect(json.Unmarshal([]byte(`{"from": "2024-02-01", "to": "2024-02-29"}`), &e)).To(Succeed())

			Expect(e.At(time.Date(2024, 1, 31, 23, 0, 0, 0, time.UTC))).To(BeFalse())
			Expect(e.At(time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC))).To(BeTrue())
			Expect(e.At(time.Date(2024, 2, 29, 18, 0, 0, 0, time.UTC))).To(BeTrue())
			Expect(e.At(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC))).To(BeFalse())
		})

		It("treats an open window as enabled", func() {
			var e assignment.Enabled
			Expect(json.Unmarshal([]byte(`{"from": "2024-02-01"}`), &e)).To(Succeed())
			Expect(e.At(time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC))).To(BeTrue())
		})

		It("fails on a malformed date", func() {
			var e assignment.Enabled
			Expect(json.Unmarshal([]byte(`{"from": "yesterday"}`), &e)).ToNot(Succeed())
		})
	})

	Context("multifile", func() {
		It("parses strings and booleans", func() {
			var m assignment.Multifile
			Expect(json.Unmarshal([]byte(`"all"`), &m)).To(Succeed())
			Expect(m).To(Equal(assignment.MultifileAll))
			Expect(json.Unmarshal([]byte(`true`), &m)).To(Succeed())
			Expect(m).To(Equal(assignment.MultifileAny))
			Expect(json.Unmarshal([]byte(`"sometimes"`), &m)).ToNot(Succeed())
		})
	})
})
