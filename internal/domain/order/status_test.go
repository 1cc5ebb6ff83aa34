package order

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/vietcart/logistics/internal/domain/shared"
)

func TestCanTransition(t *testing.T) {
	tests := []struct {
		name    string
		from    SubStatus
		to      SubStatus
		allowed bool
	}{
		{"pending to confirmed", SubPending, SubConfirmed, true},
		{"pending to cancelled", SubPending, SubCancelled, true},
		{"pending skips to shipping", SubPending, SubShipping, false},
		{"confirmed to processing", SubConfirmed, SubProcessing, true},
		{"processing to ready_to_ship", SubProcessing, SubReadyToShip, true},
		{"ready_to_ship to shipping", SubReadyToShip, SubShipping, true},
		{"ready_to_ship cannot cancel", SubReadyToShip, SubCancelled, false},
		{"shipping to delivered", SubShipping, SubDelivered, true},
		{"shipping cannot cancel", SubShipping, SubCancelled, false},
		{"delivered to completed", SubDelivered, SubCompleted, true},
		{"delivered to return_requested", SubDelivered, SubReturnRequested, true},
		{"return_requested approved", SubReturnRequested, SubReturnApproved, true},
		{"return_requested rejected to completed", SubReturnRequested, SubCompleted, true},
		{"return_approved to returned", SubReturnApproved, SubReturned, true},
		{"returned to refunded", SubReturned, SubRefunded, true},
		{"completed is terminal", SubCompleted, SubReturnRequested, false},
		{"cancelled is terminal", SubCancelled, SubConfirmed, false},
		{"refunded is terminal", SubRefunded, SubCompleted, false},
		{"no backwards move", SubDelivered, SubShipping, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.allowed, CanTransition(tt.from, tt.to))
		})
	}
}

func TestValidateTransition(t *testing.T) {
	assert.NoError(t, ValidateTransition(SubPending, SubConfirmed))

	err := ValidateTransition(SubShipping, SubCancelled)
	assert.Error(t, err)
	assert.True(t, shared.IsKind(err, shared.KindInvalidStatusTransition))
}

func TestIsSubTerminal(t *testing.T) {
	assert.True(t, IsSubTerminal(SubCompleted))
	assert.True(t, IsSubTerminal(SubCancelled))
	assert.True(t, IsSubTerminal(SubRefunded))

	assert.False(t, IsSubTerminal(SubShipping))
	assert.False(t, IsSubTerminal(SubDelivered))
	assert.False(t, IsSubTerminal(SubReturnRequested))
}
