// -----------------------------------------------------------------------
// File Store - date-sharded local storage for uploaded documents
// -----------------------------------------------------------------------

package files

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/lectio/internal/common"
	"github.com/ternarybob/lectio/internal/interfaces"
)

// Store keeps raw uploads on the local filesystem under the configured
// root, sharded by upload date (YYYY/MM/DD/<id><ext>). A separate staging
// directory holds short-lived conversion files.
type Store struct {
	root    string
	staging string
	logger  arbor.ILogger
}

var _ interfaces.FileStore = (*Store)(nil)

// NewStore creates the file store, ensuring both directories exist.
func NewStore(config *common.FilesConfig, logger arbor.ILogger) (*Store, error) {
	root := config.Root
	if root == "" {
		root = filepath.Join("data", "files")
	}
	staging := config.StagingDir
	if staging == "" {
		staging = filepath.Join(os.TempDir(), "lectio-staging")
	}

	for _, dir := range []string{root, staging} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	return &Store{
		root:    root,
		staging: staging,
		logger:  logger,
	}, nil
}

// StagingDir returns the staging directory path for callers that need to
// place temporary conversion files.
func (s *Store) StagingDir() string {
	return s.staging
}

// Save writes content under today's date shard and returns the relative
// path to store on the document record.
func (s *Store) Save(ctx context.Context, id string, filename string, content []byte) (string, error) {
	if id == "" {
		return "", fmt.Errorf("file id cannot be empty")
	}

	ext := strings.ToLower(filepath.Ext(filename))
	now := time.Now().UTC()
	relPath := filepath.Join(now.Format("2006"), now.Format("01"), now.Format("02"), id+ext)

	absPath := filepath.Join(s.root, relPath)
	if err := os.MkdirAll(filepath.Dir(absPath), 0755); err != nil {
		return "", fmt.Errorf("failed to create shard directory: %w", err)
	}
	if err := os.WriteFile(absPath, content, 0644); err != nil {
		return "", fmt.Errorf("failed to write file %s: %w", relPath, err)
	}

	s.logger.Debug().
		Str("path", relPath).
		Int("size", len(content)).
		Msg("File stored")
	return filepath.ToSlash(relPath), nil
}

// Read returns the content stored at a previously returned relative path.
func (s *Store) Read(ctx context.Context, relPath string) ([]byte, error) {
	absPath, err := s.resolve(relPath)
	if err != nil {
		return nil, err
	}
	content, err := os.ReadFile(absPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", relPath, err)
	}
	return content, nil
}

// Delete removes the stored file. A missing file is not an error: delete
// must be idempotent so record cleanup can always proceed.
func (s *Store) Delete(ctx context.Context, relPath string) error {
	absPath, err := s.resolve(relPath)
	if err != nil {
		return err
	}
	if err := os.Remove(absPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete file %s: %w", relPath, err)
	}
	return nil
}

// SweepStaging removes staged files older than the given age.
func (s *Store) SweepStaging(olderThan time.Duration) (int, error) {
	entries, err := os.ReadDir(s.staging)
	if err != nil {
		return 0, fmt.Errorf("failed to read staging directory: %w", err)
	}

	cutoff := time.Now().Add(-olderThan)
	removed := 0
	for _, entry := range entries {
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.ModTime().After(cutoff) {
			continue
		}
		path := filepath.Join(s.staging, entry.Name())
		if err := os.RemoveAll(path); err != nil {
			s.logger.Warn().Err(err).Str("path", path).Msg("Failed to remove staged file")
			continue
		}
		removed++
	}

	if removed > 0 {
		s.logger.Info().Int("removed", removed).Msg("Staging sweep completed")
	}
	return removed, nil
}

// resolve maps a relative path to an absolute one, rejecting anything
// that would escape the storage root.
func (s *Store) resolve(relPath string) (string, error) {
	if relPath == "" {
		return "", fmt.Errorf("file path cannot be empty")
	}
	cleaned := filepath.Clean(filepath.FromSlash(relPath))
	if filepath.IsAbs(cleaned) || cleaned == ".." || strings.HasPrefix(cleaned, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("invalid file path: %s", relPath)
	}
	return filepath.Join(s.root, cleaned), nil
}
