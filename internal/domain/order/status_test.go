package order

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

var allStatuses = []Status{
	StatusPending, StatusConfirmed, StatusShipping, StatusDelivered,
	StatusCompleted, StatusCancelled, StatusReturned, StatusRefunded,
}

// The complete set of allowed edges. Everything else must be rejected.
var allowedEdges = map[[2]Status]bool{
	{StatusPending, StatusConfirmed}:   true,
	{StatusPending, StatusCancelled}:   true,
	{StatusConfirmed, StatusShipping}:  true,
	{StatusConfirmed, StatusCancelled}: true,
	{StatusShipping, StatusDelivered}:  true,
	{StatusDelivered, StatusCompleted}: true,
	{StatusDelivered, StatusReturned}:  true,
	{StatusReturned, StatusRefunded}:   true,
}

func TestValidTransition_Closure(t *testing.T) {
	for _, from := range allStatuses {
		for _, to := range allStatuses {
			want := allowedEdges[[2]Status{from, to}]
			assert.Equal(t, want, ValidTransition(from, to),
				"transition %s -> %s", from, to)
		}
	}
}

func TestValidTransition_UnknownStatus(t *testing.T) {
	assert.False(t, ValidTransition("shipped", StatusDelivered))
	assert.False(t, ValidTransition(StatusPending, "archived"))
	assert.False(t, ValidTransition("", ""))
}

func TestStatus_Terminal(t *testing.T) {
	terminal := map[Status]bool{
		StatusCompleted: true,
		StatusCancelled: true,
		StatusRefunded:  true,
	}
	for _, s := range allStatuses {
		assert.Equal(t, terminal[s], s.Terminal(), "status %s", s)
	}
}

func TestStatus_Valid(t *testing.T) {
	for _, s := range allStatuses {
		assert.True(t, s.Valid(), "status %s", s)
	}
	assert.False(t, Status("unknown").Valid())
	assert.False(t, Status("").Valid())
}
