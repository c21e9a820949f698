package subscription

import (
	"errors"
	"fmt"
	"testing"

	apperrors "subscription-manager/internal/common/errors"

	"github.com/stretchr/testify/assert"
)

func TestMessage(t *testing.T) {
	tests := []struct {
		direction Direction
		outcome   Outcome
		want      string
	}{
		{Upgrade, AlreadyAtTarget, "Customer already has a premium subscription."},
		{Upgrade, Success, "Subscription upgraded successfully."},
		{Downgrade, Success, "Subscription downgraded successfully."},
		{Downgrade, NotFound, "Customer with ID C9 not found."},
		{Upgrade, InvalidTransition, "Upgrade failed: Invalid subscription level."},
		{Downgrade, InvalidTransition, "Downgrade failed: Invalid subscription level."},
		{Upgrade, BackendFailure, "Subscription upgrade failed."},
		{Downgrade, BackendFailure, "Subscription downgrade failed."},
		{Downgrade, Outcome(503), "Downgrade failed with status code: 503"},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%s_%s", tt.direction, tt.outcome), func(t *testing.T) {
			assert.Equal(t, tt.want, Message(tt.direction, tt.outcome, "C9", "premium"))
		})
	}
}

func TestErrorMessage(t *testing.T) {
	connErr := apperrors.NewRecordStoreUnreachableError("http://store/C1/", errors.New("dial tcp: refused"))
	assert.Equal(t, "Connection error: Unable to connect to server.", ErrorMessage(Upgrade, connErr))

	_, tierErr := ParseTier("gold")
	assert.Equal(t, "Downgrade failed: Invalid subscription level 'gold'.", ErrorMessage(Downgrade, tierErr))

	assert.Equal(t, "Upgrade failed: boom", ErrorMessage(Upgrade, errors.New("boom")))
}
