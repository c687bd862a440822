package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanTransition(t *testing.T) {
	cases := []struct {
		name    string
		from    TicketStatus
		to      TicketStatus
		allowed bool
	}{
		{"booked to cancelled", TicketStatusBooked, TicketStatusCancelled, true},
		{"booked to completed", TicketStatusBooked, TicketStatusCompleted, true},
		{"cancelled is terminal", TicketStatusCancelled, TicketStatusBooked, false},
		{"cancelled to completed", TicketStatusCancelled, TicketStatusCompleted, false},
		{"completed is terminal", TicketStatusCompleted, TicketStatusCancelled, false},
		{"no self transition", TicketStatusBooked, TicketStatusBooked, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.allowed, CanTransition(tc.from, tc.to))
		})
	}
}

func TestIsTerminal(t *testing.T) {
	assert.False(t, TicketStatusBooked.IsTerminal())
	assert.True(t, TicketStatusCancelled.IsTerminal())
	assert.True(t, TicketStatusCompleted.IsTerminal())
}
