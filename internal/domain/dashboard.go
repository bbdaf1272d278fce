package domain

// CountRow is one grouped count on the dashboard.
type CountRow struct {
	Key   string
	Label string
	Count int
}

// DashboardStats aggregates ticket counts and SLA compliance.
type DashboardStats struct {
	Total          int
	OpenCount      int
	ResolvedCount  int
	EscalatedCount int
	ByStatus       []CountRow
	ByPriority     []CountRow
	WithSLACount   int
	BreachedCount  int
	SLAOKCount     int
	// SLARate is nil when no ticket carries an SLA deadline.
	SLARate *float64
}
