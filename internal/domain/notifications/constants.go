package notifications

const (
	TypeInfo    = "info"
	TypeSuccess = "success"
	TypeWarning = "warning"
)

const (
	TitleTicketUpdated  = "Ticket Updated"
	TitleTicketAssigned = "Ticket Assigned"
	TitleReviewShared   = "Performance Review Completed"
	TitleGoalAssigned   = "New Goal Assigned"
)
