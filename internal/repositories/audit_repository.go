package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	intconfig "cashloan/internal/config"
	intdb "cashloan/internal/db"
)

// AuditEntry is one mutating call forwarded by the gateway. The raw token is
// never stored, only its fingerprint.
type AuditEntry struct {
	ID               int64     `json:"id"`
	RequestID        string    `json:"request_id"`
	TokenFingerprint string    `json:"token_fingerprint"`
	UserID           string    `json:"user_id,omitempty"`
	Role             string    `json:"role,omitempty"`
	Action           string    `json:"action"`
	Method           string    `json:"method"`
	Path             string    `json:"path"`
	TargetID         int64     `json:"target_id,omitempty"`
	Status           int       `json:"status"`
	Message          string    `json:"message,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
}

type AuditRepository struct {
	DB *sql.DB
}

func (r AuditRepository) db() *sql.DB {
	if r.DB != nil {
		return r.DB
	}
	return intconfig.DB
}

func (r AuditRepository) table() string {
	return "gateway_audit"
}

// Enabled is false when no database is configured.
func (r AuditRepository) Enabled() bool {
	return r.db() != nil
}

// EnsureSchema creates the audit table, or adds request_id to a table created
// before that column existed.
func (r AuditRepository) EnsureSchema(ctx context.Context) error {
	db := r.db()
	if db == nil {
		return nil
	}
	table := r.table()
	if !intdb.HasTable(ctx, db, table) {
		_, err := db.ExecContext(ctx, `
			CREATE TABLE IF NOT EXISTS `+table+` (
				id BIGINT AUTO_INCREMENT PRIMARY KEY,
				request_id VARCHAR(64) NULL,
				token_fingerprint VARCHAR(64) NOT NULL,
				user_id VARCHAR(64) NULL,
				role VARCHAR(32) NULL,
				action VARCHAR(64) NOT NULL,
				method VARCHAR(8) NOT NULL,
				path VARCHAR(255) NOT NULL,
				target_id BIGINT NULL,
				status INT NOT NULL,
				message VARCHAR(500) NULL,
				created_at DATETIME NOT NULL,
				INDEX idx_gateway_audit_action (action),
				INDEX idx_gateway_audit_created (created_at)
			)`)
		if err != nil {
			return fmt.Errorf("create %s: %w", table, err)
		}
		return nil
	}
	if !intdb.HasColumn(ctx, db, table, "request_id") {
		if _, err := db.ExecContext(ctx, `ALTER TABLE `+table+` ADD COLUMN request_id VARCHAR(64) NULL AFTER id`); err != nil {
			return fmt.Errorf("alter %s: %w", table, err)
		}
	}
	return nil
}

// maxAuditMessage matches the message column, which counts characters.
const maxAuditMessage = 500

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}

// Record inserts e. Without a database it is a no-op returning 0.
func (r AuditRepository) Record(ctx context.Context, e AuditEntry) (int64, error) {
	db := r.db()
	if db == nil {
		return 0, nil
	}
	if strings.TrimSpace(e.Action) == "" {
		return 0, fmt.Errorf("audit action is required")
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
	e.Message = truncateRunes(e.Message, maxAuditMessage)
	res, err := db.ExecContext(ctx, `
		INSERT INTO `+r.table()+`
			(request_id, token_fingerprint, user_id, role, action, method, path, target_id, status, message, created_at)
		VALUES (?,?,?,?,?,?,?,?,?,?,?)`,
		intdb.NullIfEmpty(e.RequestID),
		e.TokenFingerprint,
		intdb.NullIfEmpty(e.UserID),
		intdb.NullIfEmpty(e.Role),
		e.Action,
		e.Method,
		e.Path,
		intdb.NullIfZero(e.TargetID),
		e.Status,
		intdb.NullIfEmpty(e.Message),
		e.CreatedAt,
	)
	if err != nil {
		return 0, fmt.Errorf("insert audit entry: %w", err)
	}
	return res.LastInsertId()
}

// ListRecent returns the newest entries first, optionally for one action.
func (r AuditRepository) ListRecent(ctx context.Context, action string, limit int) ([]AuditEntry, error) {
	db := r.db()
	if db == nil {
		return []AuditEntry{}, nil
	}
	if limit <= 0 || limit > 500 {
		limit = 50
	}
	query := `
		SELECT id,
		       COALESCE(request_id,''),
		       token_fingerprint,
		       COALESCE(user_id,''),
		       COALESCE(role,''),
		       action,
		       method,
		       path,
		       COALESCE(target_id,0),
		       status,
		       COALESCE(message,''),
		       created_at
		FROM ` + r.table()
	args := []any{}
	if action = strings.TrimSpace(action); action != "" {
		query += ` WHERE action = ?`
		args = append(args, action)
	}
	query += ` ORDER BY id DESC LIMIT ?`
	args = append(args, limit)

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []AuditEntry{}
	for rows.Next() {
		var e AuditEntry
		if err := rows.Scan(
			&e.ID,
			&e.RequestID,
			&e.TokenFingerprint,
			&e.UserID,
			&e.Role,
			&e.Action,
			&e.Method,
			&e.Path,
			&e.TargetID,
			&e.Status,
			&e.Message,
			&e.CreatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
