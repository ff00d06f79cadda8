package interfaces

import (
	"context"
	"time"
)

// FileStore persists raw uploaded files under a date-sharded layout
// (YYYY/MM/DD/<id><ext>) and manages the staging area used for short-lived
// conversion files.
type FileStore interface {
	// Save writes content under today's shard and returns the relative path
	Save(ctx context.Context, id string, filename string, content []byte) (string, error)

	// Read returns the content stored at a previously returned relative path
	Read(ctx context.Context, relPath string) ([]byte, error)

	// Delete removes the stored file; missing files are not an error
	Delete(ctx context.Context, relPath string) error

	// SweepStaging removes staged files older than the given age and
	// returns how many were removed
	SweepStaging(olderThan time.Duration) (int, error)
}
