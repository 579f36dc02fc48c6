package tracking

// =============================================================================
// AUDIT LOG - Append-only workflow trail
// =============================================================================

// AuditLog records workflow transitions. Append-only; no update, no delete.
type AuditLog struct {
	records []AuditRecord
}

func NewAuditLog() *AuditLog { return &AuditLog{} }

func (l *AuditLog) Append(r AuditRecord) { l.records = append(l.records, r) }

func (l *AuditLog) All() []AuditRecord {
	return append([]AuditRecord(nil), l.records...)
}
