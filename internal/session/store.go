// Package session persists per-session conversation history so the chat
// command can resume and inspect prior exchanges.
package session

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.etcd.io/bbolt"
	"go.uber.org/zap"
)

var bucketName = []byte("sessions")

// Message is one stored conversation entry.
type Message struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// Store keeps session transcripts in a BBolt database keyed by session ID.
type Store struct {
	db  *bbolt.DB
	log *zap.Logger
}

// NewStore opens (creating if needed) the database at path.
func NewStore(path string, log *zap.Logger) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("os.MkdirAll failed: %w", err)
		}
	}

	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("bbolt.Open failed: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketName)
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("bucket create failed: %w", err)
	}

	log.Info("session store opened", zap.String("path", path))
	return &Store{db: db, log: log}, nil
}

// Append adds one message to the session's transcript.
func (s *Store) Append(sessionID string, msg Message) error {
	if msg.Timestamp.IsZero() {
		msg.Timestamp = time.Now().UTC()
	}

	return s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketName)

		var history []Message
		if data := b.Get([]byte(sessionID)); data != nil {
			if err := json.Unmarshal(data, &history); err != nil {
				return fmt.Errorf("history decode failed: %w", err)
			}
		}

		history = append(history, msg)
		data, err := json.Marshal(history)
		if err != nil {
			return fmt.Errorf("history encode failed: %w", err)
		}

		return b.Put([]byte(sessionID), data)
	})
}

// History returns the session's transcript, oldest first. A session with no
// stored messages returns an empty slice.
func (s *Store) History(sessionID string) ([]Message, error) {
	var history []Message

	err := s.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketName)
		data := b.Get([]byte(sessionID))
		if data == nil {
			return nil
		}
		return json.Unmarshal(data, &history)
	})
	if err != nil {
		return nil, fmt.Errorf("history read failed: %w", err)
	}

	return history, nil
}

// Clear removes the session's transcript.
func (s *Store) Clear(sessionID string) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketName).Delete([]byte(sessionID))
	})
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}
