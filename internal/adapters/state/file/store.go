package file

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/bnema/taskguard/internal/domain"
	"github.com/bnema/taskguard/internal/ports"
)

const (
	storeDirMode   = 0o700
	recordFileMode = 0o600
	tempPattern    = ".record-*.tmp"
)

// Store keeps one record per file under a per-session runtime directory.
type Store struct {
	root string
	mu   sync.RWMutex
}

var _ ports.RecordStore = (*Store)(nil)

func NewStore(root string) *Store {
	return &Store{root: filepath.Clean(root)}
}

func (s *Store) Put(ctx context.Context, key string, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	path, err := s.pathForKey(key)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(path), storeDirMode); err != nil {
		return fmt.Errorf("create runtime directory: %w", err)
	}

	return writeAtomic(path, []byte(value+"\n"))
}

func (s *Store) Get(ctx context.Context, key string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	path, err := s.pathForKey(key)
	if err != nil {
		return "", err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("record %q: %w", key, domain.ErrRecordNotFound)
		}
		return "", fmt.Errorf("read record %q: %w", key, err)
	}

	return strings.TrimSpace(string(data)), nil
}

// Create publishes a fully written temp file with a hard link, which fails
// when the record already exists, also against other processes.
func (s *Store) Create(ctx context.Context, key string, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	path, err := s.pathForKey(key)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(path), storeDirMode); err != nil {
		return fmt.Errorf("create runtime directory: %w", err)
	}

	tempName, err := writeTemp(filepath.Dir(path), []byte(value+"\n"))
	if err != nil {
		return err
	}
	defer func() { _ = os.Remove(tempName) }()

	if err := os.Link(tempName, path); err != nil {
		if errors.Is(err, os.ErrExist) {
			return fmt.Errorf("record %q: %w", key, domain.ErrRecordExists)
		}
		return fmt.Errorf("create record %q: %w", key, err)
	}

	return nil
}

// Delete succeeds when the record is already absent. It ignores context
// cancellation so that shutdown cleanup always runs.
func (s *Store) Delete(_ context.Context, key string) error {
	path, err := s.pathForKey(key)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	err = os.Remove(path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("delete record %q: %w", key, err)
	}

	return nil
}

func (s *Store) pathForKey(key string) (string, error) {
	trimmed := strings.TrimSpace(key)
	if trimmed == "" {
		return "", errors.New("record key is empty")
	}

	cleaned := filepath.Clean(trimmed)
	if filepath.IsAbs(cleaned) || strings.HasPrefix(cleaned, "..") || cleaned == "." {
		return "", fmt.Errorf("invalid record key %q", key)
	}

	return filepath.Join(s.root, cleaned), nil
}

func writeAtomic(path string, data []byte) error {
	tempName, err := writeTemp(filepath.Dir(path), data)
	if err != nil {
		return err
	}

	if err := os.Rename(tempName, path); err != nil {
		_ = os.Remove(tempName)
		return fmt.Errorf("replace record: %w", err)
	}

	return nil
}

// writeTemp leaves a complete record file in dir and returns its name.
func writeTemp(dir string, data []byte) (string, error) {
	tempFile, err := os.CreateTemp(dir, tempPattern)
	if err != nil {
		return "", fmt.Errorf("create temp record: %w", err)
	}

	tempName := tempFile.Name()
	if _, err := tempFile.Write(data); err != nil {
		_ = tempFile.Close()
		_ = os.Remove(tempName)
		return "", fmt.Errorf("write temp record: %w", err)
	}
	if err := tempFile.Chmod(recordFileMode); err != nil {
		_ = tempFile.Close()
		_ = os.Remove(tempName)
		return "", fmt.Errorf("chmod temp record: %w", err)
	}
	if err := tempFile.Close(); err != nil {
		_ = os.Remove(tempName)
		return "", fmt.Errorf("close temp record: %w", err)
	}

	return tempName, nil
}
