package helpdesk

const (
	StatusOpen       = "Open"
	StatusInProgress = "In Progress"
	StatusResolved   = "Resolved"
	StatusClosed     = "Closed"
)

const (
	PriorityLow    = "Low"
	PriorityMedium = "Medium"
	PriorityHigh   = "High"
)

const (
	ActionCreated      = "CREATED"
	ActionStatusChange = "STATUS_CHANGE"
	ActionAssignment   = "ASSIGNMENT"
)

const (
	DefaultCategoryIcon = "📋"
	UnassignedLabel     = "Unassigned"
)

var Statuses = []string{StatusOpen, StatusInProgress, StatusResolved, StatusClosed}

var Priorities = []string{PriorityLow, PriorityMedium, PriorityHigh}
