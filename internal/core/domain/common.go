package domain

import "time"

// AuditFields holds standard provenance information for domain entities.
// CreatedBy/LastUpdatedBy reference the operator that performed the change.
type AuditFields struct {
	CreatedAt     time.Time `json:"createdAt"`
	CreatedBy     string    `json:"createdBy"`
	LastUpdatedAt time.Time `json:"lastUpdatedAt"`
	LastUpdatedBy string    `json:"lastUpdatedBy"`
}
