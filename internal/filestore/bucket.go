package filestore

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/frag-eval/frag-poll/internal/submission"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// Entry is a listed file with its user metadata.
type Entry struct {
	Key      string
	Modified time.Time
	Metadata map[string]string
}

// Bucket is the narrow view of the storage API used by the source.
type Bucket interface {
	Name() string
	List(ctx context.Context, prefix string) ([]Entry, error)
	Get(ctx context.Context, key string) ([]byte, error)
}

type MinioOption func(m *minioBucket)

func WithEndpoint(endpoint string) MinioOption {
	return func(m *minioBucket) {
		m.endpoint = endpoint
	}
}

func WithBucket(bucket string) MinioOption {
	return func(m *minioBucket) {
		m.bucket = bucket
	}
}

func WithAccessKey(key string) MinioOption {
	return func(m *minioBucket) {
		m.accessKey = key
	}
}

func WithSecretKey(key string) MinioOption {
	return func(m *minioBucket) {
		m.secretKey = key
	}
}

func WithSSL(useSSL bool) MinioOption {
	return func(m *minioBucket) {
		m.useSSL = useSSL
	}
}

type minioBucket struct {
	client    *minio.Client
	endpoint  string
	bucket    string
	accessKey string
	secretKey string
	useSSL    bool
}

func NewMinioBucket(opts ...MinioOption) (Bucket, error) {
	m := &minioBucket{}
	for _, o := range opts {
		o(m)
	}
	if m.endpoint == "" || m.bucket == "" {
		return nil, fmt.Errorf("minio bucket requires an endpoint and a bucket name")
	}

	client, err := minio.New(m.endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(m.accessKey, m.secretKey, ""),
		Secure: m.useSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}
	m.client = client
	return m, nil
}

func (m *minioBucket) Name() string {
	return m.bucket
}

func (m *minioBucket) List(ctx context.Context, prefix string) ([]Entry, error) {
	exists, err := m.client.BucketExists(ctx, m.bucket)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, fmt.Errorf("bucket %s: %w", m.bucket, submission.ErrNotFound)
	}

	var entries []Entry
	for obj := range m.client.ListObjects(ctx, m.bucket, minio.ListObjectsOptions{
		Prefix:       prefix,
		Recursive:    false,
		WithMetadata: true,
	}) {
		if obj.Err != nil {
			return nil, obj.Err
		}
		entries = append(entries, Entry{
			Key:      obj.Key,
			Modified: obj.LastModified,
			Metadata: obj.UserMetadata,
		})
	}
	return entries, nil
}

func (m *minioBucket) Get(ctx context.Context, key string) ([]byte, error) {
	obj, err := m.client.GetObject(ctx, m.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, translate(key, err)
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		return nil, translate(key, err)
	}
	return data, nil
}

func translate(key string, err error) error {
	switch minio.ToErrorResponse(err).Code {
	case "NoSuchKey", "NoSuchBucket":
		return fmt.Errorf("%s: %w", key, submission.ErrNotFound)
	}
	return err
}
