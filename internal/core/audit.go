package core

import "context"

// AuditEntry describes a committed import. Stores write it in the same
// transaction as the client rows so the trail never disagrees with the data.
type AuditEntry struct {
	ImportID  string `json:"importId"`
	FileName  string `json:"fileName"`
	Operator  string `json:"operator,omitempty"`
	IPAddress string `json:"ipAddress,omitempty"`
	Skipped   int    `json:"skipped"`
	Invalid   int    `json:"invalid"`
}

// newAuditEntry fills the operator and IP from request metadata in ctx.
func newAuditEntry(ctx context.Context, id, fileName string, skipped, invalid int) AuditEntry {
	return AuditEntry{
		ImportID:  id,
		FileName:  fileName,
		Operator:  OperatorFromContext(ctx),
		IPAddress: IPAddressFromContext(ctx),
		Skipped:   skipped,
		Invalid:   invalid,
	}
}
