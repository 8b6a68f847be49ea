package postgres

import (
	"context"
	"errors"
	"fmt"

	squirrel "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"github.com/chinobetoska/nenemi-a-html/internal/core/domain"
	"github.com/chinobetoska/nenemi-a-html/internal/core/port"
	"github.com/chinobetoska/nenemi-a-html/internal/repository"
)

const sessionsTable = "sesiones"

// SessionRepository implements port.SessionRepository backed by PostgreSQL.
type SessionRepository struct {
	exec    pgExecutor
	builder squirrel.StatementBuilderType
}

// NewSessionRepository constructs a repository backed by any executor that satisfies pgExecutor.
func NewSessionRepository(exec pgExecutor) *SessionRepository {
	return &SessionRepository{
		exec:    exec,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// Upsert inserts the tracking row or, when the id already exists, extends its expiry.
func (r *SessionRepository) Upsert(ctx context.Context, record domain.SessionRecord) error {
	stmt, args, err := r.builder.Insert(sessionsTable).
		Columns(
			"id",
			"usuario_id",
			"ip_address",
			"user_agent",
			"fecha_expiracion",
		).
		Values(
			record.ID,
			record.UserID,
			optionalString(record.IP),
			optionalString(record.UserAgent),
			record.ExpiresAt,
		).
		Suffix("ON CONFLICT (id) DO UPDATE SET fecha_expiracion = EXCLUDED.fecha_expiracion").
		ToSql()
	if err != nil {
		return fmt.Errorf("build upsert session sql: %w", err)
	}

	if _, err := r.exec.Exec(ctx, stmt, args...); err != nil {
		return fmt.Errorf("upsert session: %w", err)
	}

	return nil
}

// GetByID fetches a tracking row by its identifier.
func (r *SessionRepository) GetByID(ctx context.Context, id string) (*domain.SessionRecord, error) {
	stmt, args, err := r.builder.
		Select("id", "usuario_id", "ip_address", "user_agent", "fecha_expiracion").
		From(sessionsTable).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select session sql: %w", err)
	}

	var (
		record    domain.SessionRecord
		ip        *string
		userAgent *string
	)
	if err := r.exec.QueryRow(ctx, stmt, args...).Scan(
		&record.ID,
		&record.UserID,
		&ip,
		&userAgent,
		&record.ExpiresAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("scan session: %w", err)
	}

	if ip != nil {
		record.IP = *ip
	}
	if userAgent != nil {
		record.UserAgent = *userAgent
	}

	return &record, nil
}

var _ port.SessionRepository = (*SessionRepository)(nil)
