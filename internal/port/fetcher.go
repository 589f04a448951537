package port

import "context"

// DocumentFetcher resolves a remote document reference into raw bytes.
type DocumentFetcher interface {
	Fetch(ctx context.Context, ref string) ([]byte, error)
}
