// Package store persists meeting records.
package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"meetme/internal/models"

	"golang.org/x/crypto/bcrypt"
)

var (
	// ErrNotFound is returned when no meeting has the requested id.
	ErrNotFound = errors.New("meeting not found")
	// ErrBadPassword is returned when a meeting password does not match.
	ErrBadPassword = errors.New("wrong meeting password")
)

// Store keeps meeting records.
type Store interface {
	Create(ctx context.Context, rec *models.MeetingRecord) (string, error)
	Get(ctx context.Context, id string) (*models.MeetingRecord, error)
	List(ctx context.Context) ([]*models.MeetingRecord, error)
	Update(ctx context.Context, rec *models.MeetingRecord) error
	Delete(ctx context.Context, id string) error
	Close() error
}

// Open returns the store selected by driver: "file" or "postgres".
func Open(ctx context.Context, logger *slog.Logger, driver, path, databaseURL string) (Store, error) {
	switch driver {
	case "", "file":
		s, err := NewFileStore(logger, path)
		if err != nil {
			return nil, err
		}
		return s, nil
	case "postgres":
		s, err := OpenPostgres(ctx, logger, databaseURL)
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", driver)
	}
}

// HashPassword returns the bcrypt hash of a meeting password. An empty
// password yields an empty hash, meaning the meeting is open.
func HashPassword(password string) (string, error) {
	if password == "" {
		return "", nil
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckPassword returns ErrBadPassword unless password opens the record.
func CheckPassword(rec *models.MeetingRecord, password string) error {
	if rec.PasswordHash == "" {
		return nil
	}
	if err := bcrypt.CompareHashAndPassword([]byte(rec.PasswordHash), []byte(password)); err != nil {
		return ErrBadPassword
	}
	return nil
}
