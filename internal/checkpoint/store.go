package checkpoint

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/osse101/MentionBot_Go/internal/domain"
)

const (
	// FileName is the plaintext checkpoint file inside the state directory.
	// Non-secret by design: a cursor id and timestamps only.
	FileName   = "checkpoint.json"
	tempSuffix = ".tmp"
)

// Checkpoint is the engine's durable state between cycles.
type Checkpoint struct {
	// LastProcessedID is the id of the newest mention whose processing is
	// confirmed (replied or skippable). Only ever moves forward.
	LastProcessedID string `json:"last_processed_id"`

	// BackoffDeadline, when set, blocks all fetch/reply work until it passes.
	BackoffDeadline *time.Time `json:"backoff_deadline,omitempty"`

	// SelfID caches the bot's own account id so cycles don't refetch it.
	SelfID string `json:"self_id,omitempty"`

	// LastRunAt records when a cycle last completed, for cooldown enforcement.
	LastRunAt *time.Time `json:"last_run_at,omitempty"`
}

// InBackoff reports whether the backoff window is still open at now, and the
// remaining wait if so.
func (c Checkpoint) InBackoff(now time.Time) (bool, time.Duration) {
	if c.BackoffDeadline == nil || !now.Before(*c.BackoffDeadline) {
		return false, 0
	}
	return true, c.BackoffDeadline.Sub(now)
}

// Store persists the checkpoint as a small JSON file with atomic replacement,
// so a crash mid-write can never leave a half-written cursor.
type Store struct {
	path string
}

// NewStore creates a Store rooted at dir.
func NewStore(dir string) *Store {
	return &Store{path: filepath.Join(dir, FileName)}
}

// Load reads the persisted checkpoint. A missing file is the first-run case
// and returns a zero checkpoint, not an error.
func (s *Store) Load() (Checkpoint, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return Checkpoint{}, nil
		}
		return Checkpoint{}, fmt.Errorf("%w: read checkpoint: %v", domain.ErrStorage, err)
	}

	var cp Checkpoint
	if err := json.Unmarshal(data, &cp); err != nil {
		return Checkpoint{}, fmt.Errorf("%w: malformed checkpoint: %v", domain.ErrStorage, err)
	}
	return cp, nil
}

// Save atomically replaces the checkpoint file.
func (s *Store) Save(cp Checkpoint) error {
	data, err := json.MarshalIndent(cp, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: encode checkpoint: %v", domain.ErrStorage, err)
	}

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, FileName+tempSuffix+"-*")
	if err != nil {
		return fmt.Errorf("%w: create temp file: %v", domain.ErrStorage, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("%w: write temp file: %v", domain.ErrStorage, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("%w: close temp file: %v", domain.ErrStorage, err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("%w: replace checkpoint: %v", domain.ErrStorage, err)
	}
	return nil
}

// Reset deletes the checkpoint, reporting whether one was present.
// Called alongside credential reset: a different account may authorize next,
// so the old cursor and cached identity must not survive.
func (s *Store) Reset() (bool, error) {
	err := os.Remove(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("%w: reset checkpoint: %v", domain.ErrStorage, err)
	}
	return true, nil
}
