package domain

import "time"

// TicketStatus enumerates lifecycle states for tickets.
type TicketStatus string

const (
	TicketStatusNew        TicketStatus = "new"
	TicketStatusInProgress TicketStatus = "in_progress"
	TicketStatusWaiting    TicketStatus = "waiting"
	TicketStatusResolved   TicketStatus = "resolved"
	TicketStatusEscalated  TicketStatus = "escalated"
)

// TicketPriority enumerates SLA urgency.
type TicketPriority string

const (
	TicketPriorityLow    TicketPriority = "low"
	TicketPriorityMedium TicketPriority = "medium"
	TicketPriorityHigh   TicketPriority = "high"
	TicketPriorityUrgent TicketPriority = "urgent"
)

// DefaultSLAWindow applies to priorities missing from the SLA table.
const DefaultSLAWindow = 24 * time.Hour

var slaWindows = map[TicketPriority]time.Duration{
	TicketPriorityLow:    72 * time.Hour,
	TicketPriorityMedium: 48 * time.Hour,
	TicketPriorityHigh:   24 * time.Hour,
	TicketPriorityUrgent: 8 * time.Hour,
}

var statusLabels = map[TicketStatus]string{
	TicketStatusNew:        "New",
	TicketStatusInProgress: "In Progress",
	TicketStatusWaiting:    "Waiting on User",
	TicketStatusResolved:   "Resolved",
	TicketStatusEscalated:  "Escalated",
}

var priorityLabels = map[TicketPriority]string{
	TicketPriorityLow:    "Low",
	TicketPriorityMedium: "Medium",
	TicketPriorityHigh:   "High",
	TicketPriorityUrgent: "Urgent",
}

// Ticket is the aggregate for support requests.
type Ticket struct {
	ID             string
	Title          string
	Description    string
	Status         TicketStatus
	Priority       TicketPriority
	CreatedAt      time.Time
	UpdatedAt      time.Time
	AssignedTo     *string
	RequesterEmail *string
	SLADue         *time.Time
}

// OpenStatuses are the states the escalation sweep scans.
func OpenStatuses() []TicketStatus {
	return []TicketStatus{TicketStatusNew, TicketStatusInProgress, TicketStatusWaiting}
}

// ClosedStatuses never breach and never escalate again.
func ClosedStatuses() []TicketStatus {
	return []TicketStatus{TicketStatusResolved, TicketStatusEscalated}
}

// Valid reports whether s is a known status.
func (s TicketStatus) Valid() bool {
	_, ok := statusLabels[s]
	return ok
}

// Closed reports whether s is resolved or escalated.
func (s TicketStatus) Closed() bool {
	return s == TicketStatusResolved || s == TicketStatusEscalated
}

// Valid reports whether p is a known priority.
func (p TicketPriority) Valid() bool {
	_, ok := priorityLabels[p]
	return ok
}

// StatusLabel returns the display label for a raw status value.
func StatusLabel(status string) string {
	if label, ok := statusLabels[TicketStatus(status)]; ok {
		return label
	}
	return status
}

// PriorityLabel returns the display label for a raw priority value.
func PriorityLabel(priority string) string {
	if label, ok := priorityLabels[TicketPriority(priority)]; ok {
		return label
	}
	return priority
}

// SLAWindow returns how long a ticket of the given priority may stay open.
func SLAWindow(priority TicketPriority) time.Duration {
	if window, ok := slaWindows[priority]; ok {
		return window
	}
	return DefaultSLAWindow
}

// ApplyDefaults fills the initial status and priority.
func (t *Ticket) ApplyDefaults() {
	if t.Status == "" {
		t.Status = TicketStatusNew
	}
	if t.Priority == "" {
		t.Priority = TicketPriorityMedium
	}
}

// ApplySLADefault sets SLADue from the priority table when it is unset.
// It runs before every persist and is a no-op once SLADue is non-nil.
func (t *Ticket) ApplySLADefault(now time.Time) {
	if t.SLADue != nil {
		return
	}
	due := now.Add(SLAWindow(t.Priority))
	t.SLADue = &due
}

// IsBreached reports whether the ticket is past its SLA deadline at now.
// Tickets without a deadline are never breached.
func (t *Ticket) IsBreached(now time.Time) bool {
	if t.SLADue == nil {
		return false
	}
	return !t.Status.Closed() && now.After(*t.SLADue)
}
