package outbox

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"kai/internal/config"
	"kai/internal/logging"
)

// Store provides durable persistence for the offline queue. Each sub-queue
// (messages, uploads, actions) is bounded: inserting beyond capacity evicts
// the oldest entries in the same transaction.
type Store struct {
	db               *sql.DB
	path             string
	capacity         int
	maxUploadRetries int
	logger           *slog.Logger
}

// Open creates or opens the queue database described by cfg. A database that
// cannot be opened or whose schema version mismatches is moved aside and
// recreated empty, so a corrupt queue never blocks the client.
func Open(cfg *config.Config, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = logging.NewNop()
	}
	logger = logging.WithComponent(logger, "outbox")

	path := cfg.QueueDBPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create state directory: %w", err)
	}

	store, err := open(path, cfg, logger)
	if err == nil {
		return store, nil
	}

	moved := fmt.Sprintf("%s.corrupt-%s", path, time.Now().UTC().Format("20060102T150405"))
	logger.Warn("queue database unusable, starting empty",
		logging.Error(err),
		slog.String("moved_to", moved))
	if renameErr := os.Rename(path, moved); renameErr != nil {
		return nil, fmt.Errorf("move corrupt queue database: %w", renameErr)
	}

	return open(path, cfg, logger)
}

func open(path string, cfg *config.Config, logger *slog.Logger) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open queue database: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys=ON",
		"PRAGMA busy_timeout=5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("apply %s: %w", pragma, err)
		}
	}

	store := &Store{
		db:               db,
		path:             path,
		capacity:         cfg.Queue.Capacity,
		maxUploadRetries: cfg.Queue.MaxUploadRetries,
		logger:           logger,
	}

	if err := store.initSchema(context.Background()); err != nil {
		db.Close()
		return nil, err
	}

	return store, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file location.
func (s *Store) Path() string {
	return s.path
}

// Capacity returns the per-sub-queue size bound.
func (s *Store) Capacity() int {
	return s.capacity
}

// MaxUploadRetries returns the configured upload retry budget.
func (s *Store) MaxUploadRetries() int {
	return s.maxUploadRetries
}

// ErrNotFound indicates the requested queue entry does not exist.
var ErrNotFound = errors.New("queue entry not found")

// EnqueueMessage appends a chat message to the message queue, evicting the
// oldest entries if the queue is at capacity.
func (s *Store) EnqueueMessage(ctx context.Context, payload, conversationID string, origin Origin) (*Message, error) {
	msg := &Message{
		ID:             uuid.NewString(),
		Payload:        payload,
		ConversationID: conversationID,
		Origin:         origin,
		CreatedAt:      time.Now().UTC(),
	}

	err := s.withTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
            INSERT INTO queued_messages (id, payload, conversation_id, origin, created_at)
            VALUES (?, ?, ?, ?, ?)`,
			msg.ID,
			msg.Payload,
			nullableString(msg.ConversationID),
			string(msg.Origin),
			msg.CreatedAt.Format(time.RFC3339Nano),
		)
		if err != nil {
			return fmt.Errorf("insert message: %w", err)
		}
		return s.evict(ctx, tx, "queued_messages")
	})
	if err != nil {
		return nil, err
	}
	return msg, nil
}

// EnqueueUpload appends a meeting upload to the upload queue in pending
// status, evicting the oldest entries if the queue is at capacity.
func (s *Store) EnqueueUpload(ctx context.Context, filePath, meetingID, eventTitle string, eventStart, eventEnd *time.Time) (*Upload, error) {
	up := &Upload{
		ID:         uuid.NewString(),
		FilePath:   filePath,
		MeetingID:  meetingID,
		EventTitle: eventTitle,
		EventStart: eventStart,
		EventEnd:   eventEnd,
		Status:     UploadPending,
		CreatedAt:  time.Now().UTC(),
	}

	err := s.withTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
            INSERT INTO queued_uploads (id, file_path, meeting_id, event_title, event_start, event_end, status, retry_count, last_error, created_at)
            VALUES (?, ?, ?, ?, ?, ?, ?, 0, NULL, ?)`,
			up.ID,
			up.FilePath,
			nullableString(up.MeetingID),
			nullableString(up.EventTitle),
			nullableTime(up.EventStart),
			nullableTime(up.EventEnd),
			string(up.Status),
			up.CreatedAt.Format(time.RFC3339Nano),
		)
		if err != nil {
			return fmt.Errorf("insert upload: %w", err)
		}
		return s.evict(ctx, tx, "queued_uploads")
	})
	if err != nil {
		return nil, err
	}
	return up, nil
}

// EnqueueAction appends a deferred mutation to the action queue, evicting the
// oldest entries if the queue is at capacity.
func (s *Store) EnqueueAction(ctx context.Context, kind ActionKind, payload []byte) (*Action, error) {
	act := &Action{
		ID:        uuid.NewString(),
		Kind:      kind,
		Payload:   payload,
		CreatedAt: time.Now().UTC(),
	}

	err := s.withTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
            INSERT INTO queued_actions (id, kind, payload, created_at)
            VALUES (?, ?, ?, ?)`,
			act.ID,
			string(act.Kind),
			act.Payload,
			act.CreatedAt.Format(time.RFC3339Nano),
		)
		if err != nil {
			return fmt.Errorf("insert action: %w", err)
		}
		return s.evict(ctx, tx, "queued_actions")
	})
	if err != nil {
		return nil, err
	}
	return act, nil
}

// evict removes the oldest rows beyond the capacity bound. Runs inside the
// insert transaction so the queue is never observed above capacity.
func (s *Store) evict(ctx context.Context, tx *sql.Tx, table string) error {
	if s.capacity <= 0 {
		return nil
	}
	query := fmt.Sprintf(`
        DELETE FROM %s WHERE seq NOT IN (
            SELECT seq FROM %s ORDER BY seq DESC LIMIT ?
        )`, table, table)
	result, err := tx.ExecContext(ctx, query, s.capacity)
	if err != nil {
		return fmt.Errorf("evict from %s: %w", table, err)
	}
	if evicted, err := result.RowsAffected(); err == nil && evicted > 0 {
		s.logger.Warn("queue at capacity, dropped oldest entries",
			slog.String(logging.FieldQueue, table),
			slog.Int64(logging.FieldCount, evicted))
	}
	return nil
}

// Messages returns all queued messages in enqueue order.
func (s *Store) Messages(ctx context.Context) ([]*Message, error) {
	rows, err := s.db.QueryContext(ctx, `
        SELECT id, payload, conversation_id, origin, created_at
        FROM queued_messages ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	defer rows.Close()

	var messages []*Message
	for rows.Next() {
		msg, err := scanMessage(rows)
		if err != nil {
			return nil, err
		}
		messages = append(messages, msg)
	}
	return messages, rows.Err()
}

// Uploads returns all queued uploads in enqueue order.
func (s *Store) Uploads(ctx context.Context) ([]*Upload, error) {
	rows, err := s.db.QueryContext(ctx, uploadColumns+` FROM queued_uploads ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("list uploads: %w", err)
	}
	defer rows.Close()

	var uploads []*Upload
	for rows.Next() {
		up, err := scanUpload(rows)
		if err != nil {
			return nil, err
		}
		uploads = append(uploads, up)
	}
	return uploads, rows.Err()
}

// Actions returns all queued actions in enqueue order.
func (s *Store) Actions(ctx context.Context) ([]*Action, error) {
	rows, err := s.db.QueryContext(ctx, `
        SELECT id, kind, payload, created_at
        FROM queued_actions ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("list actions: %w", err)
	}
	defer rows.Close()

	var actions []*Action
	for rows.Next() {
		act, err := scanAction(rows)
		if err != nil {
			return nil, err
		}
		actions = append(actions, act)
	}
	return actions, rows.Err()
}

// GetUpload fetches a single queued upload by id.
func (s *Store) GetUpload(ctx context.Context, id string) (*Upload, error) {
	row := s.db.QueryRowContext(ctx, uploadColumns+` FROM queued_uploads WHERE id = ?`, id)
	up, err := scanUpload(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return up, err
}

// RemoveMessage deletes a queued message. Removing an absent entry is a no-op.
func (s *Store) RemoveMessage(ctx context.Context, id string) error {
	return s.remove(ctx, "queued_messages", id)
}

// RemoveUpload deletes a queued upload. Removing an absent entry is a no-op.
func (s *Store) RemoveUpload(ctx context.Context, id string) error {
	return s.remove(ctx, "queued_uploads", id)
}

// RemoveAction deletes a queued action. Removing an absent entry is a no-op.
func (s *Store) RemoveAction(ctx context.Context, id string) error {
	return s.remove(ctx, "queued_actions", id)
}

func (s *Store) remove(ctx context.Context, table, id string) error {
	_, err := s.db.ExecContext(ctx, fmt.Sprintf("DELETE FROM %s WHERE id = ?", table), id)
	if err != nil {
		return fmt.Errorf("remove from %s: %w", table, err)
	}
	return nil
}

// UpdateUploadStatus transitions a queued upload. The retry count increments
// only when the upload moves into failed from a non-failed status, so
// repeated failure marks never inflate it.
func (s *Store) UpdateUploadStatus(ctx context.Context, id string, status UploadStatus, lastError string) error {
	result, err := s.db.ExecContext(ctx, `
        UPDATE queued_uploads SET
            retry_count = retry_count + (CASE WHEN status != ? AND ? = ? THEN 1 ELSE 0 END),
            status = ?,
            last_error = ?
        WHERE id = ?`,
		string(UploadFailed), string(status), string(UploadFailed),
		string(status),
		nullableString(lastError),
		id,
	)
	if err != nil {
		return fmt.Errorf("update upload status: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update upload status: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// ResetUpload returns a failed upload to pending so the next drain retries
// it. The retry count is preserved; only uploads within the retry budget may
// be reset.
func (s *Store) ResetUpload(ctx context.Context, id string) error {
	up, err := s.GetUpload(ctx, id)
	if err != nil {
		return err
	}
	if !up.CanRetry(s.maxUploadRetries) {
		return fmt.Errorf("upload %s cannot be retried (status %s, %d/%d attempts)",
			id, up.Status, up.RetryCount, s.maxUploadRetries)
	}
	_, err = s.db.ExecContext(ctx, `
        UPDATE queued_uploads SET status = ?, last_error = NULL WHERE id = ?`,
		string(UploadPending), id)
	if err != nil {
		return fmt.Errorf("reset upload: %w", err)
	}
	return nil
}

// Counts reports the number of entries in each sub-queue.
func (s *Store) Counts(ctx context.Context) (Counts, error) {
	var counts Counts
	row := s.db.QueryRowContext(ctx, `
        SELECT
            (SELECT COUNT(1) FROM queued_messages),
            (SELECT COUNT(1) FROM queued_uploads),
            (SELECT COUNT(1) FROM queued_actions)`)
	if err := row.Scan(&counts.Messages, &counts.Uploads, &counts.Actions); err != nil {
		return Counts{}, fmt.Errorf("count queues: %w", err)
	}
	return counts, nil
}

// HasPending reports whether any sub-queue holds entries.
func (s *Store) HasPending(ctx context.Context) (bool, error) {
	counts, err := s.Counts(ctx)
	if err != nil {
		return false, err
	}
	return counts.Total() > 0, nil
}

// Clear removes every entry from all sub-queues.
func (s *Store) Clear(ctx context.Context) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		for _, table := range []string{"queued_messages", "queued_uploads", "queued_actions"} {
			if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
				return fmt.Errorf("clear %s: %w", table, err)
			}
		}
		return nil
	})
}

func (s *Store) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}

const uploadColumns = `
    SELECT id, file_path, meeting_id, event_title, event_start, event_end, status, retry_count, last_error, created_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMessage(row rowScanner) (*Message, error) {
	var (
		msg            Message
		conversationID sql.NullString
		origin         string
		createdAt      string
	)
	if err := row.Scan(&msg.ID, &msg.Payload, &conversationID, &origin, &createdAt); err != nil {
		return nil, fmt.Errorf("scan message: %w", err)
	}
	msg.ConversationID = conversationID.String
	msg.Origin = Origin(origin)
	msg.CreatedAt = parseTimestamp(createdAt)
	return &msg, nil
}

func scanUpload(row rowScanner) (*Upload, error) {
	var (
		up         Upload
		meetingID  sql.NullString
		eventTitle sql.NullString
		eventStart sql.NullString
		eventEnd   sql.NullString
		status     string
		lastError  sql.NullString
		createdAt  string
	)
	if err := row.Scan(&up.ID, &up.FilePath, &meetingID, &eventTitle, &eventStart, &eventEnd, &status, &up.RetryCount, &lastError, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan upload: %w", err)
	}
	up.MeetingID = meetingID.String
	up.EventTitle = eventTitle.String
	up.EventStart = parseOptionalTimestamp(eventStart)
	up.EventEnd = parseOptionalTimestamp(eventEnd)
	up.Status = UploadStatus(status)
	up.LastError = lastError.String
	up.CreatedAt = parseTimestamp(createdAt)
	return &up, nil
}

func scanAction(row rowScanner) (*Action, error) {
	var (
		act       Action
		kind      string
		createdAt string
	)
	if err := row.Scan(&act.ID, &kind, &act.Payload, &createdAt); err != nil {
		return nil, fmt.Errorf("scan action: %w", err)
	}
	act.Kind = ActionKind(kind)
	act.CreatedAt = parseTimestamp(createdAt)
	return &act, nil
}

func parseTimestamp(value string) time.Time {
	ts, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return time.Time{}
	}
	return ts
}

func parseOptionalTimestamp(value sql.NullString) *time.Time {
	if !value.Valid || value.String == "" {
		return nil
	}
	ts, err := time.Parse(time.RFC3339Nano, value.String)
	if err != nil {
		return nil
	}
	return &ts
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func nullableTime(value *time.Time) any {
	if value == nil {
		return nil
	}
	return value.UTC().Format(time.RFC3339Nano)
}
