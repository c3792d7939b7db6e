package observability

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"github.com/helios-labs/tokenops/migrations"
)

// Flavor selects the SQL placeholder style of the backing database.
type Flavor string

const (
	FlavorSQLite   Flavor = "sqlite"
	FlavorPostgres Flavor = "postgres"
)

// PersistentLogger implements OperationLogger over a SQL database. The
// local default is a SQLite file next to the config; shared deployments
// point it at PostgreSQL. Audit entries must survive process restart.
type PersistentLogger struct {
	db     *sql.DB
	flavor Flavor
	writer io.Writer // optional: also write JSON lines for debugging
}

// OpenSQLite opens (creating if needed) the local SQLite audit log and
// applies migrations.
func OpenSQLite(path string) (*PersistentLogger, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("observability: failed to open audit db: %w", err)
	}
	if err := RunMigrations(db); err != nil {
		db.Close()
		return nil, err
	}
	return &PersistentLogger{db: db, flavor: FlavorSQLite}, nil
}

// OpenPostgres connects to a PostgreSQL audit log and applies migrations.
func OpenPostgres(dsn string) (*PersistentLogger, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("observability: failed to open audit db: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("observability: audit db unreachable: %w", err)
	}
	if err := RunMigrations(db); err != nil {
		db.Close()
		return nil, err
	}
	return &PersistentLogger{db: db, flavor: FlavorPostgres}, nil
}

// OpenAuditBackend opens the configured audit backend. Both the CLI and
// the sentinel runner go through here so they agree on backend names and
// on failure behavior: audit entries must survive process restart, so a
// broken persistent backend is a configuration error, never a downgrade
// to a process stream. The returned close function is nil for backends
// with nothing to release.
func OpenAuditBackend(backend, sqlitePath, postgresDSN string) (OperationLogger, func() error, error) {
	switch backend {
	case "", "sqlite":
		if dir := filepath.Dir(sqlitePath); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, nil, fmt.Errorf("observability: failed to create audit directory: %w", err)
			}
		}
		pl, err := OpenSQLite(sqlitePath)
		if err != nil {
			return nil, nil, err
		}
		return pl, pl.Close, nil
	case "postgres":
		pl, err := OpenPostgres(postgresDSN)
		if err != nil {
			return nil, nil, err
		}
		return pl, pl.Close, nil
	case "stdout":
		return NewJSONLogger(os.Stdout), nil, nil
	default:
		return nil, nil, fmt.Errorf("observability: unknown audit backend %q (supported: sqlite, postgres, stdout)", backend)
	}
}

// NewPersistentLogger wraps an existing database connection.
func NewPersistentLogger(db *sql.DB, flavor Flavor) (*PersistentLogger, error) {
	if db == nil {
		return nil, fmt.Errorf("observability: database connection is required for persistent logging")
	}
	return &PersistentLogger{db: db, flavor: flavor}, nil
}

// WithWriter additionally mirrors entries as JSON lines to w.
func (l *PersistentLogger) WithWriter(w io.Writer) *PersistentLogger {
	l.writer = w
	return l
}

// Close releases the underlying database connection.
func (l *PersistentLogger) Close() error {
	return l.db.Close()
}

// RunMigrations applies the embedded migration files in name order. The
// migration SQL is restricted to the dialect both backends accept.
func RunMigrations(db *sql.DB) error {
	names, err := fs.Glob(migrations.FS, "*.sql")
	if err != nil {
		return fmt.Errorf("observability: failed to list migrations: %w", err)
	}
	sort.Strings(names)
	for _, name := range names {
		data, err := migrations.FS.ReadFile(name)
		if err != nil {
			return fmt.Errorf("observability: failed to read migration %s: %w", name, err)
		}
		if _, err := db.Exec(string(data)); err != nil {
			return fmt.Errorf("observability: migration %s failed: %w", name, err)
		}
	}
	return nil
}

// LogOperation persists one submission.
func (l *PersistentLogger) LogOperation(ctx context.Context, entry OperationLogEntry) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("observability: context error: %w", err)
	}
	if err := entry.Validate(); err != nil {
		return err
	}

	capsJSON, err := json.Marshal(entry.Capabilities)
	if err != nil {
		capsJSON = []byte("[]")
	}

	query := fmt.Sprintf(`
		INSERT INTO operation_log (
			operation_id, signer, kind, capabilities_json, amount_base_units,
			recipient, digest, execution_time_ms, outcome, error_kind, error_message
		) VALUES (%s)
	`, l.placeholders(11))

	_, err = l.db.ExecContext(ctx, query,
		entry.OperationID,
		entry.Signer,
		entry.Kind,
		string(capsJSON),
		int64(entry.AmountBaseUnits),
		nullableString(entry.Recipient),
		nullableString(entry.Digest),
		entry.ExecutionTime.Milliseconds(),
		nullableString(entry.Outcome),
		nullableString(entry.ErrorKind),
		nullableString(entry.Error),
	)
	if err != nil {
		return fmt.Errorf("observability: failed to persist audit entry: %w", err)
	}

	if l.writer != nil {
		if data, err := json.Marshal(toOutput(entry)); err == nil {
			l.writer.Write(append(data, '\n'))
		}
	}
	return nil
}

// GetAuditSummary returns aggregated audit statistics from the database.
func (l *PersistentLogger) GetAuditSummary() *AuditSummary {
	summary := &AuditSummary{
		TopRejectionReasons: []RejectionReasonStat{},
		OperationCounts:     []OperationStat{},
	}

	ctx := context.Background()

	row := l.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM operation_log WHERE error_message IS NULL OR error_message = ''
	`)
	row.Scan(&summary.SucceededCount)

	row = l.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM operation_log WHERE error_message IS NOT NULL AND error_message != ''
	`)
	row.Scan(&summary.RejectedCount)

	rows, err := l.db.QueryContext(ctx, `
		SELECT COALESCE(NULLIF(error_kind, ''), error_message), COUNT(*) as cnt
		FROM operation_log
		WHERE error_message IS NOT NULL AND error_message != ''
		GROUP BY 1
		ORDER BY cnt DESC
		LIMIT 5
	`)
	if err == nil {
		defer rows.Close()
		for rows.Next() {
			var reason string
			var count int
			if rows.Scan(&reason, &count) == nil {
				summary.TopRejectionReasons = append(summary.TopRejectionReasons, RejectionReasonStat{Reason: reason, Count: count})
			}
		}
	}

	rows, err = l.db.QueryContext(ctx, `
		SELECT kind, COUNT(*) as cnt
		FROM operation_log
		GROUP BY kind
		ORDER BY cnt DESC, kind ASC
	`)
	if err == nil {
		defer rows.Close()
		for rows.Next() {
			var kind string
			var count int
			if rows.Scan(&kind, &count) == nil {
				summary.OperationCounts = append(summary.OperationCounts, OperationStat{Kind: kind, Count: count})
			}
		}
	}

	return summary
}

func (l *PersistentLogger) placeholders(n int) string {
	parts := make([]string, n)
	for i := range parts {
		if l.flavor == FlavorPostgres {
			parts[i] = fmt.Sprintf("$%d", i+1)
		} else {
			parts[i] = "?"
		}
	}
	return strings.Join(parts, ", ")
}

// nullableString converts empty strings to nil for SQL NULL.
func nullableString(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
