package storage

import (
	"context"
	"database/sql"
	"fmt"

	"research-chatbot/internal/rag"
)

// TurnRepo stores conversation turns in SQLite so sessions survive restarts.
// It implements conversation.Store.
type TurnRepo struct {
	db *sql.DB
}

// NewTurnRepo creates a new TurnRepo.
func NewTurnRepo(db *sql.DB) *TurnRepo {
	return &TurnRepo{db: db}
}

// Add appends a turn to the session, creating the session if needed.
// The position is assigned inside the transaction, so concurrent writers to one session never collide.
func (r *TurnRepo) Add(ctx context.Context, sessionID string, turn rag.Turn) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx, "INSERT OR IGNORE INTO sessions (id) VALUES (?)", sessionID); err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}

	var next int
	err = tx.QueryRowContext(ctx,
		"SELECT COALESCE(MAX(position), 0) + 1 FROM turns WHERE session_id = ?",
		sessionID,
	).Scan(&next)
	if err != nil {
		return fmt.Errorf("failed to read turn position: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		"INSERT INTO turns (session_id, position, question, answer) VALUES (?, ?, ?, ?)",
		sessionID, next, turn.UserQuestion, turn.AIAnswer,
	)
	if err != nil {
		return fmt.Errorf("failed to insert turn: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit turn: %w", err)
	}
	return nil
}

// Get returns all turns of the session, oldest first. Unknown sessions have no turns.
func (r *TurnRepo) Get(ctx context.Context, sessionID string) ([]rag.Turn, error) {
	return r.Recent(ctx, sessionID, 0)
}

// Recent returns at most the last n turns of the session, oldest first. n <= 0 returns every turn.
func (r *TurnRepo) Recent(ctx context.Context, sessionID string, n int) ([]rag.Turn, error) {
	limit := -1
	if n > 0 {
		limit = n
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT question, answer FROM (
			SELECT question, answer, position FROM turns
			WHERE session_id = ?
			ORDER BY position DESC
			LIMIT ?
		) ORDER BY position ASC`,
		sessionID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query turns: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	turns := []rag.Turn{}
	for rows.Next() {
		var t rag.Turn
		if err := rows.Scan(&t.UserQuestion, &t.AIAnswer); err != nil {
			return nil, fmt.Errorf("failed to scan turn: %w", err)
		}
		turns = append(turns, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate turns: %w", err)
	}
	return turns, nil
}

// Reset deletes all turns of the session. The session itself is kept.
func (r *TurnRepo) Reset(ctx context.Context, sessionID string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx, "INSERT OR IGNORE INTO sessions (id) VALUES (?)", sessionID); err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM turns WHERE session_id = ?", sessionID); err != nil {
		return fmt.Errorf("failed to delete turns: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit reset: %w", err)
	}
	return nil
}
