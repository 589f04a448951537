package port

import "context"

// ObjectStorage abstracts cloud object storage, used to resolve s3://
// document references.
type ObjectStorage interface {
	Download(ctx context.Context, bucket, key string) ([]byte, error)
}
