package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	commands "plantwatch/internal/commands/domain"
)

// CommandRepository is a Postgres repository for queued commands.
type CommandRepository struct {
	db *sql.DB
}

// NewCommandRepository constructs a repository.
func NewCommandRepository(db *sql.DB) *CommandRepository {
	return &CommandRepository{db: db}
}

// Create inserts a queued command.
func (r *CommandRepository) Create(ctx context.Context, cmd *commands.Command) error {
	if r == nil || r.db == nil {
		return errors.New("command repo: nil db")
	}
	if cmd == nil {
		return errors.New("command repo: nil command")
	}
	if cmd.CreatedAt.IsZero() {
		cmd.CreatedAt = time.Now().UTC()
	}
	if err := cmd.Validate(); err != nil {
		return err
	}
	_, err := r.db.ExecContext(ctx, `
INSERT INTO commands (id, type, target, issued_by, created_at)
VALUES ($1, $2, $3, $4, $5)`,
		cmd.ID, string(cmd.Type), cmd.Target, cmd.IssuedBy, cmd.CreatedAt)
	return err
}
