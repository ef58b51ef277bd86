package storage

import "io"

// BlobStore holds uploaded question media. Keys are slash-separated paths
// relative to the store root, e.g. "exam-questions/abc.png".
type BlobStore interface {
	Put(key string, r io.Reader) (string, error) // returns canonical key
	Get(key string) (io.ReadCloser, error)
}
