// Package miniostore persists the merged record set as one JSON object in
// MinIO or any S3-compatible object store.
package miniostore

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/JonMunkholm/sheetmerge/internal/record"
	"github.com/JonMunkholm/sheetmerge/internal/store"
)

// DefaultObject is the object name used when none is configured.
const DefaultObject = "data.json"

// Config describes how to reach the object store.
type Config struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	Object    string
	UseSSL    bool
	Region    string
}

// Store implements store.Store on a single object. PutObject replaces the object
// in one step, so readers never see a partial set.
type Store struct {
	client *minio.Client
	bucket string
	object string
}

var _ store.Store = (*Store)(nil)

// New connects a client for cfg and wraps it in a Store.
func New(cfg Config) (*Store, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}
	return NewStore(client, cfg.Bucket, cfg.Object), nil
}

// NewStore wraps an existing client. An empty object means DefaultObject.
func NewStore(client *minio.Client, bucket, object string) *Store {
	if object == "" {
		object = DefaultObject
	}
	return &Store{client: client, bucket: bucket, object: object}
}

// Name implements store.Store.
func (s *Store) Name() string { return "minio" }

// EnsureBucket creates the bucket if it does not exist.
func (s *Store) EnsureBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("check bucket %s: %w", s.bucket, err)
	}
	if exists {
		return nil
	}
	if err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{}); err != nil {
		return fmt.Errorf("create bucket %s: %w", s.bucket, err)
	}
	return nil
}

// Load implements store.Store. A missing object is an empty set.
func (s *Store) Load(ctx context.Context) (record.Set, error) {
	obj, err := s.client.GetObject(ctx, s.bucket, s.object, minio.GetObjectOptions{})
	if err != nil {
		if isNotFound(err) {
			return record.Set{}, nil
		}
		return nil, fmt.Errorf("%w: get %s/%s: %v", store.ErrRead, s.bucket, s.object, err)
	}
	defer obj.Close()

	set, err := record.DecodeSet(obj)
	if err != nil {
		if isNotFound(err) {
			return record.Set{}, nil
		}
		return nil, fmt.Errorf("%w: read %s/%s: %v", store.ErrRead, s.bucket, s.object, err)
	}
	return set, nil
}

// Save implements store.Store.
func (s *Store) Save(ctx context.Context, set record.Set) error {
	data, err := record.MarshalSet(set)
	if err != nil {
		return fmt.Errorf("%w: %v", store.ErrWrite, err)
	}

	_, err = s.client.PutObject(ctx, s.bucket, s.object, bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{ContentType: "application/json"})
	if err != nil {
		return fmt.Errorf("%w: put %s/%s: %v", store.ErrWrite, s.bucket, s.object, err)
	}
	return nil
}

func isNotFound(err error) bool {
	var resp minio.ErrorResponse
	if !errors.As(err, &resp) {
		resp = minio.ToErrorResponse(err)
	}
	return resp.Code == "NoSuchKey" || resp.Code == "NotFound"
}
