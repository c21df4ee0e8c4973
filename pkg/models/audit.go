package models

// AuditQueryRequest is the request body for a read-only auditor query
type AuditQueryRequest struct {
	Query string `json:"query" validate:"required"`
}

// AuditScanRequest is the request body for a leak scan of model output text
type AuditScanRequest struct {
	Text string `json:"text" validate:"required"`
	// MatchRecords also checks the text against the actual stored field
	// values, not just PII shapes.
	MatchRecords bool `json:"match_records"`
}
