package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"
)

// FileStore keeps the destination set in a JSON file.
type FileStore struct {
	path         string
	destinations map[string]bool
	mu           sync.Mutex
	logger       *slog.Logger
}

// NewFileStore creates a file-backed store, loading any existing content.
func NewFileStore(path string, logger *slog.Logger) (*FileStore, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create storage dir: %w", err)
	}

	s := &FileStore{
		path:         path,
		destinations: make(map[string]bool),
		logger:       logger.With("component", "file_store"),
	}
	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *FileStore) Name() string { return "file" }

func (s *FileStore) load() error {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read store file: %w", err)
	}

	var list []string
	if err := json.Unmarshal(data, &list); err != nil {
		return fmt.Errorf("decode store file: %w", err)
	}
	for _, d := range list {
		s.destinations[d] = true
	}
	return nil
}

// save writes the full set; callers hold the mutex.
func (s *FileStore) save() error {
	list := make([]string, 0, len(s.destinations))
	for d := range s.destinations {
		list = append(list, d)
	}
	sort.Strings(list)

	data, err := json.MarshalIndent(list, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("write store file: %w", err)
	}
	return nil
}

func (s *FileStore) List(ctx context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	list := make([]string, 0, len(s.destinations))
	for d := range s.destinations {
		list = append(list, d)
	}
	sort.Strings(list)
	return list, nil
}

func (s *FileStore) Add(ctx context.Context, destination string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.destinations[destination] {
		return nil
	}
	s.destinations[destination] = true
	if err := s.save(); err != nil {
		delete(s.destinations, destination)
		return err
	}
	s.logger.Info("destination subscribed", "destination", destination)
	return nil
}

func (s *FileStore) Remove(ctx context.Context, destination string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.destinations[destination] {
		return nil
	}
	delete(s.destinations, destination)
	if err := s.save(); err != nil {
		s.destinations[destination] = true
		return err
	}
	s.logger.Info("destination unsubscribed", "destination", destination)
	return nil
}

func (s *FileStore) Close(ctx context.Context) error { return nil }
