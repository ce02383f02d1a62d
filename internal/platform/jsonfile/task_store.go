// Package jsonfile implements the store.TaskStore interface on top of
// a single JSON file. The file holds an array of task records; array
// order is the collection's iteration order.
//
// All read-modify-write sequences are serialized by a mutex scoped to
// the store instance, and every write lands in a temporary file that
// is renamed over the backing file, so concurrent callers within one
// process never observe a half-written file. The backing file is
// exclusively owned by one store instance per process; this is a
// single-process concurrency model, not a distributed one.
package jsonfile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
	"github.com/phrazzld/task-api/internal/domain"
	"github.com/phrazzld/task-api/internal/store"
)

// TaskStore is a file-backed implementation of store.TaskStore.
type TaskStore struct {
	path   string
	mu     sync.Mutex
	logger *slog.Logger
}

// Ensure TaskStore implements store.TaskStore interface
var _ store.TaskStore = (*TaskStore)(nil)

// New creates a file-backed TaskStore at the given path. If the file
// does not exist it is created containing an empty collection.
// If logger is nil, the default logger is used.
func New(path string, logger *slog.Logger) (*TaskStore, error) {
	if logger == nil {
		logger = slog.Default()
	}

	s := &TaskStore{
		path:   path,
		logger: logger.With(slog.String("component", "jsonfile_task_store")),
	}

	if err := s.ensureFile(); err != nil {
		return nil, err
	}

	return s, nil
}

// ensureFile creates the backing file with an empty array if it is missing.
func (s *TaskStore) ensureFile() error {
	if _, err := os.Stat(s.path); err == nil {
		return nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return store.NewStoreError("task", "init", "stat backing file",
			fmt.Errorf("%w: %v", store.ErrStorageIO, err))
	}

	if err := s.persist([]domain.TaskRecord{}); err != nil {
		return err
	}

	s.logger.Info("created empty task file", slog.String("path", s.path))
	return nil
}

// load reads the backing file and returns its records.
// An unparsable file is treated as "no data": the store logs a warning
// and returns an empty collection without touching the file; the file
// is only rewritten to a valid state by the next successful mutation.
// The caller must hold s.mu.
func (s *TaskStore) load() ([]domain.TaskRecord, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []domain.TaskRecord{}, nil
		}
		return nil, store.NewStoreError("task", "load", "read backing file",
			fmt.Errorf("%w: %v", store.ErrStorageIO, err))
	}

	var records []domain.TaskRecord
	if err := json.Unmarshal(data, &records); err != nil {
		s.logger.Warn("backing file is not parsable, treating as empty",
			slog.String("path", s.path),
			slog.String("error", err.Error()))
		return []domain.TaskRecord{}, nil
	}

	return records, nil
}

// persist writes the full record set to a temporary file in the same
// directory and renames it over the backing file. The rename is the
// single visible switch; a crash mid-write leaves the previous content
// intact. The caller must hold s.mu (except during construction).
func (s *TaskStore) persist(records []domain.TaskRecord) error {
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return store.NewStoreError("task", "persist", "encode records", err)
	}

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, ".tasks-*.json")
	if err != nil {
		return store.NewStoreError("task", "persist", "create temp file",
			fmt.Errorf("%w: %v", store.ErrStorageIO, err))
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return store.NewStoreError("task", "persist", "write temp file",
			fmt.Errorf("%w: %v", store.ErrStorageIO, err))
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return store.NewStoreError("task", "persist", "close temp file",
			fmt.Errorf("%w: %v", store.ErrStorageIO, err))
	}

	if err := os.Rename(tmpName, s.path); err != nil {
		_ = os.Remove(tmpName)
		return store.NewStoreError("task", "persist", "swap backing file",
			fmt.Errorf("%w: %v", store.ErrStorageIO, err))
	}

	return nil
}

// GetAll implements store.TaskStore.GetAll.
// Malformed individual records are skipped with a warning; well-formed
// records around them are still returned, in file order.
func (s *TaskStore) GetAll(ctx context.Context) ([]*domain.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.load()
	if err != nil {
		return nil, err
	}

	tasks := make([]*domain.Task, 0, len(records))
	for _, rec := range records {
		task, err := domain.TaskFromRecord(rec)
		if err != nil {
			s.logger.Warn("skipping malformed task record",
				slog.String("record_id", rec.ID),
				slog.String("error", err.Error()))
			continue
		}
		tasks = append(tasks, task)
	}

	return tasks, nil
}

// GetByID implements store.TaskStore.GetByID.
// Returns store.ErrTaskNotFound if no record has the given ID. A record
// that matches the ID but can no longer be decoded is treated the same
// as absent.
func (s *TaskStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.load()
	if err != nil {
		return nil, err
	}

	want := id.String()
	for _, rec := range records {
		if rec.ID != want {
			continue
		}
		task, err := domain.TaskFromRecord(rec)
		if err != nil {
			s.logger.Warn("matching task record is malformed",
				slog.String("record_id", rec.ID),
				slog.String("error", err.Error()))
			break
		}
		return task, nil
	}

	return nil, store.ErrTaskNotFound
}

// Save implements store.TaskStore.Save.
// The task is validated before any file access; an invalid task is
// rejected with its validation error and the file is left untouched.
// An existing record with the same ID is replaced in place so it keeps
// its original position; otherwise the record is appended.
func (s *TaskStore) Save(ctx context.Context, task *domain.Task) error {
	if err := task.Validate(); err != nil {
		s.logger.Warn("task validation failed during save",
			slog.String("task_id", task.ID.String()),
			slog.String("error", err.Error()))
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.load()
	if err != nil {
		return err
	}

	rec := task.ToRecord()
	replaced := false
	for i := range records {
		if records[i].ID == rec.ID {
			records[i] = rec
			replaced = true
			break
		}
	}
	if !replaced {
		records = append(records, rec)
	}

	if err := s.persist(records); err != nil {
		return err
	}

	s.logger.Debug("task saved",
		slog.String("task_id", rec.ID),
		slog.Bool("replaced", replaced))
	return nil
}

// Delete implements store.TaskStore.Delete.
// Reports whether a record was removed; absence is not an error.
func (s *TaskStore) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.load()
	if err != nil {
		return false, err
	}

	want := id.String()
	kept := records[:0]
	for _, rec := range records {
		if rec.ID != want {
			kept = append(kept, rec)
		}
	}

	if len(kept) == len(records) {
		return false, nil
	}

	if err := s.persist(kept); err != nil {
		return false, err
	}

	s.logger.Debug("task deleted", slog.String("task_id", want))
	return true, nil
}
