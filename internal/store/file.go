package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"sync"
	"time"

	"meetme/internal/models"

	"github.com/google/uuid"
)

// DefaultFilePath is where the file store keeps its document when no path is configured.
const DefaultFilePath = "meetings.json"

// FileStore keeps all meetings in a single JSON document keyed by id.
type FileStore struct {
	mu      sync.Mutex
	logger  *slog.Logger
	path    string
	records map[string]*models.MeetingRecord
}

// NewFileStore loads the document at path, starting empty if it doesn't exist.
func NewFileStore(logger *slog.Logger, path string) (*FileStore, error) {
	if path == "" {
		path = DefaultFilePath
	}
	s := &FileStore{logger: logger, path: path}

	records, err := s.load()
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to load meetings: %w", err)
		}
		logger.Info("No meetings file found, starting fresh.", "file", path)
		records = make(map[string]*models.MeetingRecord)
	}
	s.records = records
	return s, nil
}

func (s *FileStore) Create(_ context.Context, rec *models.MeetingRecord) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := *rec
	stored.ID = uuid.New().String()
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = time.Now().UTC()
	}
	s.records[stored.ID] = &stored
	if err := s.save(); err != nil {
		delete(s.records, stored.ID)
		return "", err
	}
	s.logger.Debug("Stored meeting", "id", stored.ID, "name", stored.Name)
	return stored.ID, nil
}

func (s *FileStore) Get(_ context.Context, id string) (*models.MeetingRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.records[id]
	if !ok {
		return nil, ErrNotFound
	}
	out := *rec
	return &out, nil
}

// List returns all meetings, oldest first.
func (s *FileStore) List(_ context.Context) ([]*models.MeetingRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]*models.MeetingRecord, 0, len(s.records))
	for _, rec := range s.records {
		cp := *rec
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *FileStore) Update(_ context.Context, rec *models.MeetingRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev, ok := s.records[rec.ID]
	if !ok {
		return ErrNotFound
	}
	stored := *rec
	s.records[rec.ID] = &stored
	if err := s.save(); err != nil {
		s.records[rec.ID] = prev
		return err
	}
	return nil
}

func (s *FileStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev, ok := s.records[id]
	if !ok {
		return ErrNotFound
	}
	delete(s.records, id)
	if err := s.save(); err != nil {
		s.records[id] = prev
		return err
	}
	s.logger.Debug("Deleted meeting", "id", id)
	return nil
}

func (s *FileStore) Close() error {
	return nil
}

// load reads the meetings document.
func (s *FileStore) load() (map[string]*models.MeetingRecord, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, err
	}
	records := make(map[string]*models.MeetingRecord)
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, err
	}
	return records, nil
}

// save writes the meetings document through a temporary file.
func (s *FileStore) save() error {
	data, err := json.MarshalIndent(s.records, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal meetings: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return fmt.Errorf("failed to write meetings: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("failed to replace meetings file: %w", err)
	}
	return nil
}
