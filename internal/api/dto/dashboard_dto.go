package dto

// CountRowResponse is one grouped count.
type CountRowResponse struct {
	Key   string `json:"key"`
	Label string `json:"label"`
	Count int    `json:"count"`
}

// DashboardResponse aggregates ticket and SLA counts.
type DashboardResponse struct {
	Total          int                `json:"total"`
	OpenCount      int                `json:"open_count"`
	ResolvedCount  int                `json:"resolved_count"`
	EscalatedCount int                `json:"escalated_count"`
	ByStatus       []CountRowResponse `json:"by_status"`
	ByPriority     []CountRowResponse `json:"by_priority"`
	WithSLACount   int                `json:"with_sla_count"`
	BreachedCount  int                `json:"breached_count"`
	SLAOKCount     int                `json:"sla_ok_count"`
	SLARate        *float64           `json:"sla_rate"`
}
