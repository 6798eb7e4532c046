package filestore_test

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/frag-eval/frag-poll/internal/assignment"
	"github.com/frag-eval/frag-poll/internal/filestore"
	"github.com/frag-eval/frag-poll/internal/reconcile"
	"github.com/frag-eval/frag-poll/internal/submission"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

type memoryBucket struct {
	entries []filestore.Entry
	data    map[string][]byte
}

func (b *memoryBucket) Name() string { return "submissions" }

func (b *memoryBucket) List(_ context.Context, prefix string) ([]filestore.Entry, error) {
	var result []filestore.Entry
	for _, e := range b.entries {
		if strings.HasPrefix(e.Key, prefix) {
			result = append(result, e)
		}
	}
	return result, nil
}

func (b *memoryBucket) Get(_ context.Context, key string) ([]byte, error) {
	data, ok := b.data[key]
	if !ok {
		return nil, submission.ErrNotFound
	}
	return data, nil
}

var _ = Describe("file storage source", func() {
	var (
		bucket   *memoryBucket
		source   *filestore.Source
		modified time.Time
		spec     *assignment.Spec
	)

	BeforeEach(func() {
		modified = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
		bucket = &memoryBucket{
			entries: []filestore.Entry{
				{Key: "hw01/task01.py", Modified: modified, Metadata: map[string]string{"X-Amz-Meta-Author": "alice"}},
				{Key: "hw01/notes.txt", Modified: modified, Metadata: map[string]string{"author": " bob "}},
				{Key: "hw01/orphan.py", Modified: modified},
				{Key: "hw01/old/", Modified: modified, Metadata: map[string]string{"author": "alice"}},
				{Key: "hw02/task.c", Modified: modified, Metadata: map[string]string{"author": "alice"}},
			},
			data: map[string][]byte{"hw01/task01.py": []byte("print(1)")},
		}
		source = filestore.NewSource(bucket)
		spec = &assignment.Spec{Name: "hw01", Locations: []string{"hw01", "extra/"}}
	})

	It("returns one location per configured folder", func() {
		locations, err := source.Locations(context.TODO(), spec, nil)
		Expect(err).To(BeNil())
		Expect(locations).To(Equal([]reconcile.Location{{Path: "hw01"}, {Path: "extra/"}}))
	})

	It("lists files with their author", func() {
		objects, err := source.List(context.TODO(), spec, reconcile.Location{Path: "hw01"})
		Expect(err).To(BeNil())
		Expect(objects).To(HaveLen(2))

		Expect(objects[0].Identity()).To(Equal("hw01/task01.py"))
		Expect(objects[0].Author()).To(Equal("alice"))
		Expect(objects[0].DisplayName()).To(Equal("task01.py"))
		Expect(objects[0].ChangedAt()).To(Equal(modified))
		Expect(objects[0].Location()).To(Equal("submissions/hw01/task01.py"))

		Expect(objects[1].Author()).To(Equal("bob"))
	})

	It("reports an empty folder as not found", func() {
		_, err := source.List(context.TODO(), spec, reconcile.Location{Path: "extra/"})
		Expect(errors.Is(err, submission.ErrNotFound)).To(BeTrue())
	})

	It("fetches content by key", func() {
		objects, err := source.List(context.TODO(), spec, reconcile.Location{Path: "hw01"})
		Expect(err).To(BeNil())

		data, err := source.Fetch(context.TODO(), objects[0])
		Expect(err).To(BeNil())
		Expect(data).To(Equal([]byte("print(1)")))

		_, err = source.Fetch(context.TODO(), objects[1])
		Expect(errors.Is(err, submission.ErrNotFound)).To(BeTrue())
	})
})
