package store

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/JonMunkholm/rosterimport/internal/core"
	"github.com/JonMunkholm/rosterimport/internal/dedupe"
	"github.com/JonMunkholm/rosterimport/internal/transform"
)

// Client is a stored client record.
type Client struct {
	ID string `json:"id"`
	transform.ParsedClientRow
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// AuditRecord is a committed import as the store recorded it.
type AuditRecord struct {
	core.AuditEntry
	Created     int       `json:"created"`
	Overwritten int       `json:"overwritten"`
	CommittedAt time.Time `json:"committedAt"`
}

// Memory is an in-process ClientStore. The zero value is not usable; call
// NewMemory.
type Memory struct {
	mu      sync.RWMutex
	clients []Client
	byID    map[string]int
	audits  []AuditRecord
	now     func() time.Time
}

// NewMemory creates a store holding the given existing clients. Refs with
// an empty ID get a fresh one.
func NewMemory(seed ...dedupe.ExistingRecordRef) *Memory {
	m := &Memory{
		byID: make(map[string]int),
		now:  time.Now,
	}

	now := m.now().UTC()
	for _, ref := range seed {
		id := ref.ID
		if id == "" {
			id = uuid.New().String()
		}
		m.add(Client{
			ID:              id,
			ParsedClientRow: transform.ParsedClientRow{Name: ref.Name, Email: ref.Email},
			CreatedAt:       now,
			UpdatedAt:       now,
		})
	}
	return m
}

func (m *Memory) add(c Client) {
	m.byID[c.ID] = len(m.clients)
	m.clients = append(m.clients, c)
}

// ListExistingRefs returns every client in insertion order.
func (m *Memory) ListExistingRefs(ctx context.Context) ([]dedupe.ExistingRecordRef, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	refs := make([]dedupe.ExistingRecordRef, len(m.clients))
	for i, c := range m.clients {
		refs[i] = dedupe.ExistingRecordRef{ID: c.ID, Name: c.Name, Email: c.Email}
	}
	return refs, nil
}

// ApplyImport creates and overwrites clients atomically and appends an
// audit record. Every overwrite id is checked before anything is written.
func (m *Memory) ApplyImport(ctx context.Context, batch core.ImportBatch) (core.CommitCounts, error) {
	if err := ctx.Err(); err != nil {
		return core.CommitCounts{}, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	for _, ow := range batch.Overwrite {
		if _, ok := m.byID[ow.ExistingID]; !ok {
			return core.CommitCounts{}, fmt.Errorf("overwrite client %s: %w", ow.ExistingID, ErrClientNotFound)
		}
	}

	now := m.now().UTC()
	for _, row := range batch.Create {
		if row.Status == "" {
			row.Status = batch.DefaultStatus
		}
		m.add(Client{ID: uuid.New().String(), ParsedClientRow: row, CreatedAt: now, UpdatedAt: now})
	}

	for _, ow := range batch.Overwrite {
		c := &m.clients[m.byID[ow.ExistingID]]
		row := ow.Row
		if row.Status == "" {
			row.Status = c.Status
		}
		c.ParsedClientRow = row
		c.UpdatedAt = now
	}

	counts := core.CommitCounts{Created: len(batch.Create), Overwritten: len(batch.Overwrite)}
	m.audits = append(m.audits, AuditRecord{
		AuditEntry:  batch.Audit,
		Created:     counts.Created,
		Overwritten: counts.Overwritten,
		CommittedAt: now,
	})
	return counts, nil
}

// Audits returns the recorded imports, oldest first.
func (m *Memory) Audits() []AuditRecord {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]AuditRecord(nil), m.audits...)
}

// Clients returns a copy of every stored client in insertion order.
func (m *Memory) Clients() []Client {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]Client(nil), m.clients...)
}

// Get returns the client with id.
func (m *Memory) Get(id string) (Client, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	i, ok := m.byID[id]
	if !ok {
		return Client{}, false
	}
	return m.clients[i], true
}
