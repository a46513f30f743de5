package repositories

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestAuditEnsureSchemaCreatesTable(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery("information_schema\\.tables").WithArgs("gateway_audit").
		WillReturnRows(sqlmock.NewRows([]string{"table_name"}))
	mock.ExpectExec("CREATE TABLE IF NOT EXISTS gateway_audit").
		WillReturnResult(sqlmock.NewResult(0, 0))

	if err := (AuditRepository{DB: db}).EnsureSchema(context.Background()); err != nil {
		t.Fatalf("ensure schema: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestAuditEnsureSchemaAddsMissingColumn(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery("information_schema\\.tables").WithArgs("gateway_audit").
		WillReturnRows(sqlmock.NewRows([]string{"table_name"}).AddRow("gateway_audit"))
	mock.ExpectQuery("information_schema\\.columns").WithArgs("gateway_audit", "request_id").
		WillReturnRows(sqlmock.NewRows([]string{"column_name"}))
	mock.ExpectExec("ALTER TABLE gateway_audit ADD COLUMN request_id").
		WillReturnResult(sqlmock.NewResult(0, 0))

	if err := (AuditRepository{DB: db}).EnsureSchema(context.Background()); err != nil {
		t.Fatalf("ensure schema: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestAuditRecord(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	at := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	mock.ExpectExec("INSERT INTO gateway_audit").
		WithArgs("req-1", "fp", nil, "admin", "loan.reject", "POST", "/api/loans/7/reject", int64(7), 200, nil, at).
		WillReturnResult(sqlmock.NewResult(12, 1))

	id, err := AuditRepository{DB: db}.Record(context.Background(), AuditEntry{
		RequestID:        "req-1",
		TokenFingerprint: "fp",
		Role:             "admin",
		Action:           "loan.reject",
		Method:           "POST",
		Path:             "/api/loans/7/reject",
		TargetID:         7,
		Status:           200,
		CreatedAt:        at,
	})
	if err != nil {
		t.Fatalf("record: %v", err)
	}
	if id != 12 {
		t.Fatalf("expected id 12, got %d", id)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestAuditRecordTruncatesOnRuneBoundary(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	at := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	msg := strings.Repeat("a", 499) + "₱₱₱"
	mock.ExpectExec("INSERT INTO gateway_audit").
		WithArgs(nil, "fp", nil, nil, "payment.record", "POST", "/api/payments", sqlmock.AnyArg(), 422, strings.Repeat("a", 499)+"₱", at).
		WillReturnResult(sqlmock.NewResult(1, 1))

	_, err = AuditRepository{DB: db}.Record(context.Background(), AuditEntry{
		TokenFingerprint: "fp",
		Action:           "payment.record",
		Method:           "POST",
		Path:             "/api/payments",
		Status:           422,
		Message:          msg,
		CreatedAt:        at,
	})
	if err != nil {
		t.Fatalf("record: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestAuditRecordRequiresAction(t *testing.T) {
	db, _, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()
	if _, err := (AuditRepository{DB: db}).Record(context.Background(), AuditEntry{}); err == nil {
		t.Fatalf("expected error for empty action")
	}
}

func TestAuditListRecentFiltersByAction(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	at := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	cols := []string{"id", "request_id", "token_fingerprint", "user_id", "role", "action", "method", "path", "target_id", "status", "message", "created_at"}
	mock.ExpectQuery("FROM gateway_audit WHERE action = \\? ORDER BY id DESC LIMIT \\?").
		WithArgs("loan.approve", 50).
		WillReturnRows(sqlmock.NewRows(cols).
			AddRow(3, "r3", "fp", "9", "admin", "loan.approve", "POST", "/api/loans/2/approve", 2, 200, "", at).
			AddRow(1, "", "fp", "", "", "loan.approve", "POST", "/api/loans/1/approve", 1, 422, "Invalid amount", at))

	got, err := AuditRepository{DB: db}.ListRecent(context.Background(), "loan.approve", 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 2 || got[0].ID != 3 || got[1].Message != "Invalid amount" || got[1].Status != 422 {
		t.Fatalf("unexpected entries %+v", got)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
