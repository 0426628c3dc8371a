package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"
)

// Draft is a persisted compose form. ThreadID is "" for a new-thread
// compose, otherwise the reply target. One draft per thread: a failed send
// or cancelled compose survives process restarts.
type Draft struct {
	ThreadID     string
	RecipientIDs []string
	Subject      string
	Body         string
	UpdatedAt    int64
}

// SaveDraft inserts or replaces the draft for its thread.
func (db *DB) SaveDraft(d *Draft) error {
	recipients, err := json.Marshal(d.RecipientIDs)
	if err != nil {
		return fmt.Errorf("encode recipients: %w", err)
	}
	now := time.Now().UnixMilli()
	_, err = db.Exec(`
		INSERT INTO drafts (thread_id, recipients, subject, body, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(thread_id) DO UPDATE SET
			recipients = excluded.recipients,
			subject = excluded.subject,
			body = excluded.body,
			updated_at = excluded.updated_at`,
		d.ThreadID, string(recipients), d.Subject, d.Body, now)
	return err
}

// GetDraft returns the draft for a thread, or nil if none exists.
func (db *DB) GetDraft(threadID string) (*Draft, error) {
	var d Draft
	var recipients string
	err := db.QueryRow(`
		SELECT thread_id, recipients, subject, body, updated_at
		FROM drafts WHERE thread_id = ?`, threadID).
		Scan(&d.ThreadID, &recipients, &d.Subject, &d.Body, &d.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(recipients), &d.RecipientIDs); err != nil {
		return nil, fmt.Errorf("decode recipients: %w", err)
	}
	return &d, nil
}

// DeleteDraft removes the draft for a thread. Missing drafts are not an
// error; the delete after a successful send is unconditional.
func (db *DB) DeleteDraft(threadID string) error {
	_, err := db.Exec(`DELETE FROM drafts WHERE thread_id = ?`, threadID)
	return err
}

// ListDrafts returns all drafts, most recently updated first.
func (db *DB) ListDrafts() ([]Draft, error) {
	rows, err := db.Query(`
		SELECT thread_id, recipients, subject, body, updated_at
		FROM drafts ORDER BY updated_at DESC`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var drafts []Draft
	for rows.Next() {
		var d Draft
		var recipients string
		if err := rows.Scan(&d.ThreadID, &recipients, &d.Subject, &d.Body, &d.UpdatedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(recipients), &d.RecipientIDs); err != nil {
			return nil, fmt.Errorf("decode recipients: %w", err)
		}
		drafts = append(drafts, d)
	}
	return drafts, rows.Err()
}
