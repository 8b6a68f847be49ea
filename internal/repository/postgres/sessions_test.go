package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	pgxmock "github.com/pashagolub/pgxmock/v2"

	"github.com/chinobetoska/nenemi-a-html/internal/core/domain"
	"github.com/chinobetoska/nenemi-a-html/internal/repository"
)

func TestSessionRepository_Upsert(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	defer mock.Close()

	repo := NewSessionRepository(mock)

	expiresAt := time.Now().UTC().Add(time.Hour)
	record := domain.SessionRecord{
		ID:        "3f1c",
		UserID:    "user-1",
		IP:        "198.51.100.10",
		UserAgent: "Mozilla/5.0",
		ExpiresAt: expiresAt,
	}

	mock.ExpectExec(`INSERT INTO sesiones .* ON CONFLICT \(id\) DO UPDATE SET fecha_expiracion = EXCLUDED\.fecha_expiracion`).
		WithArgs("3f1c", "user-1", "198.51.100.10", "Mozilla/5.0", expiresAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	if err := repo.Upsert(context.Background(), record); err != nil {
		t.Fatalf("Upsert returned error: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestSessionRepository_UpsertEmptyMetadata(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	defer mock.Close()

	repo := NewSessionRepository(mock)
	expiresAt := time.Now().UTC().Add(time.Hour)

	mock.ExpectExec(`INSERT INTO sesiones`).
		WithArgs("abc", "user-1", nil, nil, expiresAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	if err := repo.Upsert(context.Background(), domain.SessionRecord{ID: "abc", UserID: "user-1", ExpiresAt: expiresAt}); err != nil {
		t.Fatalf("Upsert returned error: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestSessionRepository_GetByID(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	defer mock.Close()

	repo := NewSessionRepository(mock)

	expiresAt := time.Now().UTC().Add(time.Hour)
	ip := "198.51.100.10"
	rows := pgxmock.NewRows([]string{"id", "usuario_id", "ip_address", "user_agent", "fecha_expiracion"}).
		AddRow("abc", "user-1", &ip, nil, expiresAt)

	mock.ExpectQuery(`SELECT .*FROM sesiones`).WithArgs("abc").WillReturnRows(rows)
	mock.ExpectQuery(`SELECT .*FROM sesiones`).WithArgs("missing").
		WillReturnRows(pgxmock.NewRows([]string{"id", "usuario_id", "ip_address", "user_agent", "fecha_expiracion"}))

	record, err := repo.GetByID(context.Background(), "abc")
	if err != nil {
		t.Fatalf("GetByID returned error: %v", err)
	}
	if record.IP != ip || record.UserAgent != "" {
		t.Fatalf("unexpected record metadata: %+v", record)
	}
	if !record.IsActive(time.Now()) {
		t.Fatalf("expected record to be active")
	}

	if _, err := repo.GetByID(context.Background(), "missing"); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
