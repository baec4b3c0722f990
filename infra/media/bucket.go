package media

import (
	"context"

	"mutsamarket/pkg/aws"
)

// BucketStore keeps images in an S3 bucket using the same keys as LocalStore.
type BucketStore struct {
	bucket *aws.S3
}

func NewBucketStore(bucket *aws.S3) *BucketStore {
	return &BucketStore{bucket: bucket}
}

// Prepare is a no-op: object stores have no directories.
func (s *BucketStore) Prepare(context.Context, string) error {
	return nil
}

func (s *BucketStore) Put(_ context.Context, key string, data []byte) error {
	return s.bucket.Upload(key, data)
}

func (s *BucketStore) Get(_ context.Context, key string) ([]byte, error) {
	data, err := s.bucket.Download(key)
	if err != nil {
		return nil, err
	}
	if data == nil {
		return nil, ErrNotFound
	}
	return data, nil
}

func (s *BucketStore) Delete(_ context.Context, key string) error {
	return s.bucket.Delete(key)
}
