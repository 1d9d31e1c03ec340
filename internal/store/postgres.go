package store

import (
	"context"
	_ "embed"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/JonMunkholm/rosterimport/internal/core"
	"github.com/JonMunkholm/rosterimport/internal/dedupe"
	"github.com/JonMunkholm/rosterimport/internal/transform"
)

//go:embed schema.sql
var schemaSQL string

// DBTX is the interface for database operations.
// Satisfied by *pgxpool.Pool, *pgx.Conn and pgx.Tx.
type DBTX interface {
	Exec(context.Context, string, ...any) (pgconn.CommandTag, error)
	Query(context.Context, string, ...any) (pgx.Rows, error)
	QueryRow(context.Context, string, ...any) pgx.Row
	CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error)
}

// TxDB is a DBTX that can open transactions. *pgxpool.Pool satisfies it.
type TxDB interface {
	DBTX
	Begin(ctx context.Context) (pgx.Tx, error)
	Ping(ctx context.Context) error
}

// clientColumns lists the COPY columns in the order copyRow emits values.
var clientColumns = []string{
	"id", "name", "email", "phone", "budget_min", "budget_max",
	"bedrooms", "neighborhoods", "amenities", "vibes", "priorities",
	"move_in_date", "status", "pre_approved", "has_pets", "notes",
	"created_at", "updated_at",
}

const listRefsSQL = `SELECT id::text, name, COALESCE(email, '') FROM clients ORDER BY created_at, id`

const overwriteSQL = `UPDATE clients SET
    name = $2, email = $3, phone = $4, budget_min = $5, budget_max = $6,
    bedrooms = $7, neighborhoods = $8, amenities = $9, vibes = $10, priorities = $11,
    move_in_date = $12, status = COALESCE($13, status), pre_approved = $14, has_pets = $15,
    notes = $16, updated_at = $17
WHERE id = $1`

const insertAuditSQL = `INSERT INTO import_audit
    (id, import_id, file_name, operator, ip_address,
     created_count, overwritten_count, skipped_count, invalid_count, committed_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

// Postgres stores clients in PostgreSQL.
type Postgres struct {
	db  TxDB
	now func() time.Time
}

// NewPostgres creates a store on db, typically a *pgxpool.Pool.
func NewPostgres(db TxDB) *Postgres {
	return &Postgres{db: db, now: time.Now}
}

// EnsureSchema creates the clients table and its indexes if missing.
func (p *Postgres) EnsureSchema(ctx context.Context) error {
	if _, err := p.db.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

// Ping checks the database connection.
func (p *Postgres) Ping(ctx context.Context) error {
	return p.db.Ping(ctx)
}

// ListExistingRefs returns every stored client's id, name and email.
func (p *Postgres) ListExistingRefs(ctx context.Context) ([]dedupe.ExistingRecordRef, error) {
	rows, err := p.db.Query(ctx, listRefsSQL)
	if err != nil {
		return nil, fmt.Errorf("list clients: %w", err)
	}

	refs, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (dedupe.ExistingRecordRef, error) {
		var ref dedupe.ExistingRecordRef
		err := row.Scan(&ref.ID, &ref.Name, &ref.Email)
		return ref, err
	})
	if err != nil {
		return nil, fmt.Errorf("scan clients: %w", err)
	}
	return refs, nil
}

// ApplyImport creates and overwrites clients in one transaction and records
// the import in import_audit. New rows are written with COPY. An overwrite
// of a missing client rolls back the whole batch with ErrClientNotFound.
func (p *Postgres) ApplyImport(ctx context.Context, batch core.ImportBatch) (core.CommitCounts, error) {
	var counts core.CommitCounts

	tx, err := p.db.Begin(ctx)
	if err != nil {
		return counts, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx) // No-op if already committed

	now := p.now().UTC()

	if len(batch.Create) > 0 {
		n, err := insertClients(ctx, tx, batch.Create, batch.DefaultStatus, now)
		if err != nil {
			return counts, err
		}
		counts.Created = n
	}

	for _, ow := range batch.Overwrite {
		if err := overwriteClient(ctx, tx, ow, now); err != nil {
			return counts, err
		}
		counts.Overwritten++
	}

	if err := insertAudit(ctx, tx, batch.Audit, counts, now); err != nil {
		return counts, err
	}

	if err := tx.Commit(ctx); err != nil {
		return core.CommitCounts{}, fmt.Errorf("commit: %w", err)
	}
	return counts, nil
}

func insertClients(ctx context.Context, db DBTX, rows []transform.ParsedClientRow, defaultStatus string, now time.Time) (int, error) {
	values := make([][]any, len(rows))
	for i, r := range rows {
		status := r.Status
		if status == "" {
			status = defaultStatus
		}
		values[i] = []any{
			uuid.New(), r.Name, nullable(r.Email), nullable(r.Phone), r.BudgetMin, r.BudgetMax,
			textArray(r.Bedrooms), textArray(r.Neighborhoods), textArray(r.Amenities),
			textArray(r.Vibes), textArray(r.Priorities),
			r.MoveInDate, status, r.PreApproved, r.HasPets, nullable(r.Notes),
			now, now,
		}
	}

	n, err := db.CopyFrom(ctx, pgx.Identifier{"clients"}, clientColumns, pgx.CopyFromRows(values))
	if err != nil {
		return 0, fmt.Errorf("copy clients: %w", err)
	}
	return int(n), nil
}

func overwriteClient(ctx context.Context, db DBTX, ow dedupe.OverwritePair, now time.Time) error {
	id, err := uuid.Parse(ow.ExistingID)
	if err != nil {
		return fmt.Errorf("overwrite client %q: %w", ow.ExistingID, ErrClientNotFound)
	}

	r := ow.Row
	tag, err := db.Exec(ctx, overwriteSQL,
		id, r.Name, nullable(r.Email), nullable(r.Phone), r.BudgetMin, r.BudgetMax,
		textArray(r.Bedrooms), textArray(r.Neighborhoods), textArray(r.Amenities),
		textArray(r.Vibes), textArray(r.Priorities),
		r.MoveInDate, nullable(r.Status), r.PreApproved, r.HasPets, nullable(r.Notes),
		now,
	)
	if err != nil {
		return fmt.Errorf("overwrite client %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("overwrite client %s: %w", id, ErrClientNotFound)
	}
	return nil
}

func insertAudit(ctx context.Context, db DBTX, entry core.AuditEntry, counts core.CommitCounts, now time.Time) error {
	_, err := db.Exec(ctx, insertAuditSQL,
		uuid.New(), entry.ImportID, entry.FileName, nullable(entry.Operator), nullable(entry.IPAddress),
		counts.Created, counts.Overwritten, entry.Skipped, entry.Invalid, now,
	)
	if err != nil {
		return fmt.Errorf("record import audit: %w", err)
	}
	return nil
}

// nullable maps "" to SQL NULL.
func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// textArray maps nil to an empty array for NOT NULL array columns.
func textArray(v []string) []string {
	if v == nil {
		return []string{}
	}
	return v
}
