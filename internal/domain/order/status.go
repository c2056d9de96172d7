package order

// Status is an order's position in the fulfillment lifecycle. The set is
// closed; persistence constrains the column to these values and the display
// language is the frontend's concern.
type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusShipping  Status = "shipping"
	StatusDelivered Status = "delivered"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
	StatusReturned  Status = "returned"
	StatusRefunded  Status = "refunded"
)

// transitions is the full forward-only graph of allowed status moves.
// Completed, Cancelled and Refunded are terminal. Any pair not listed here
// is rejected, including self-transitions.
var transitions = map[Status][]Status{
	StatusPending:   {StatusConfirmed, StatusCancelled},
	StatusConfirmed: {StatusShipping, StatusCancelled},
	StatusShipping:  {StatusDelivered},
	StatusDelivered: {StatusCompleted, StatusReturned},
	StatusCompleted: {},
	StatusCancelled: {},
	StatusReturned:  {StatusRefunded},
	StatusRefunded:  {},
}

// Valid reports whether s is a member of the status enum.
func (s Status) Valid() bool {
	_, ok := transitions[s]
	return ok
}

// Terminal reports whether s has no outgoing transitions.
func (s Status) Terminal() bool {
	next, ok := transitions[s]
	return ok && len(next) == 0
}

// ValidTransition reports whether an order may move from one status to
// another. It is total over strings: any pair outside the graph is false.
func ValidTransition(from, to Status) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}
