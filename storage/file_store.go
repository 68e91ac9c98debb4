package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

const (
	schemaVersion = "1.0"
	lockTimeout   = 5 * time.Second
)

// Artifact file names within the store directory.
const (
	subscriptionsFile      = "subscriptions.json"
	subscriptionTitlesFile = "subscriptions.txt"
	subscriptionURLsFile   = "subscription_urls.txt"
)

// FileStore implements Store on top of a directory of JSON and text files.
// All writes go through a temp file and rename, so readers never observe
// a half-written artifact.
type FileStore struct {
	dir  string
	lock *FileLock
	mu   sync.RWMutex
}

// NewFileStore opens a store rooted at dir, creating the directory if
// needed. The store holds an advisory lock until Close is called so
// concurrent runs do not clobber each other's artifacts.
func NewFileStore(dir string) (*FileStore, error) {
	if dir == "" {
		return nil, &StorageError{Op: "open", Entity: "store", Err: ErrInvalidInput}
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, &StorageError{Op: "open", Entity: "store", ID: dir, Err: err}
	}

	s := &FileStore{
		dir:  dir,
		lock: NewFileLock(filepath.Join(dir, ".ytscout")),
	}
	if err := s.lock.Lock(lockTimeout); err != nil {
		return nil, err
	}
	return s, nil
}

// Dir returns the directory the store writes into.
func (s *FileStore) Dir() string {
	return s.dir
}

// Close releases the store's directory lock.
func (s *FileStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lock.Unlock()
}

// SaveSubscriptions writes subscriptions.json plus the title and URL
// text companions. The list's version, count, and timestamp are filled
// in and descriptions are truncated before writing.
func (s *FileStore) SaveSubscriptions(ctx context.Context, list *SubscriptionList) error {
	if list == nil {
		return &StorageError{Op: "write", Entity: "subscriptions", Err: ErrInvalidInput}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	list.Version = schemaVersion
	if list.GeneratedAt.IsZero() {
		list.GeneratedAt = time.Now()
	}
	list.Count = len(list.Subscriptions)
	for i := range list.Subscriptions {
		list.Subscriptions[i].Description = truncateDescription(list.Subscriptions[i].Description)
	}

	if err := s.writeJSON(subscriptionsFile, list); err != nil {
		return &StorageError{Op: "write", Entity: "subscriptions", Err: err}
	}

	var titles, urls strings.Builder
	for _, sub := range list.Subscriptions {
		titles.WriteString(sub.Title)
		titles.WriteByte('\n')
		fmt.Fprintf(&urls, "%s: %s\n", sub.Title, sub.URL)
	}
	if err := s.writeText(subscriptionTitlesFile, titles.String()); err != nil {
		return &StorageError{Op: "write", Entity: "subscriptions", Err: err}
	}
	if err := s.writeText(subscriptionURLsFile, urls.String()); err != nil {
		return &StorageError{Op: "write", Entity: "subscriptions", Err: err}
	}
	return nil
}

// LoadSubscriptions reads subscriptions.json from the store directory.
func (s *FileStore) LoadSubscriptions(ctx context.Context) (*SubscriptionList, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, err := os.ReadFile(filepath.Join(s.dir, subscriptionsFile))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, &StorageError{Op: "read", Entity: "subscriptions", Err: ErrNotFound}
		}
		return nil, &StorageError{Op: "read", Entity: "subscriptions", Err: err}
	}

	list := &SubscriptionList{}
	if err := json.Unmarshal(data, list); err != nil {
		return nil, &StorageError{Op: "read", Entity: "subscriptions", Err: ErrStorageCorrupt}
	}
	return list, nil
}

// SaveReport writes the report to its kind- and seed-derived file name
// and returns the path written. A zero run ID is assigned, missing ranks
// are filled from position, and descriptions are truncated.
func (s *FileStore) SaveReport(ctx context.Context, report *Report) (string, error) {
	if report == nil {
		return "", &StorageError{Op: "write", Entity: "report", Err: ErrInvalidInput}
	}
	if !report.Kind.Valid() {
		return "", &StorageError{Op: "write", Entity: "report", ID: string(report.Kind), Err: ErrInvalidInput}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if report.ID == uuid.Nil {
		report.ID = uuid.New()
	}
	if report.GeneratedAt.IsZero() {
		report.GeneratedAt = time.Now()
	}
	for i := range report.Results {
		if report.Results[i].Rank == 0 {
			report.Results[i].Rank = i + 1
		}
		report.Results[i].Description = truncateDescription(report.Results[i].Description)
	}

	name := report.Filename()
	if err := s.writeJSON(name, report); err != nil {
		return "", &StorageError{Op: "write", Entity: "report", ID: name, Err: err}
	}
	return filepath.Join(s.dir, name), nil
}

// LoadReport reads a report. A bare file name is resolved inside the
// store directory; anything else is read as given.
func (s *FileStore) LoadReport(ctx context.Context, path string) (*Report, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if filepath.Base(path) == path {
		path = filepath.Join(s.dir, path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, &StorageError{Op: "read", Entity: "report", ID: path, Err: ErrNotFound}
		}
		return nil, &StorageError{Op: "read", Entity: "report", ID: path, Err: err}
	}

	report := &Report{}
	if err := json.Unmarshal(data, report); err != nil {
		return nil, &StorageError{Op: "read", Entity: "report", ID: path, Err: ErrStorageCorrupt}
	}
	return report, nil
}

func (s *FileStore) writeJSON(name string, v any) error {
	writer, err := NewAtomicWriter(filepath.Join(s.dir, name))
	if err != nil {
		return err
	}
	encoder := json.NewEncoder(writer)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(v); err != nil {
		writer.Abort()
		return err
	}
	return writer.Commit()
}

func (s *FileStore) writeText(name, content string) error {
	writer, err := NewAtomicWriter(filepath.Join(s.dir, name))
	if err != nil {
		return err
	}
	if _, err := io.WriteString(writer, content); err != nil {
		writer.Abort()
		return err
	}
	return writer.Commit()
}
