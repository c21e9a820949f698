package subscription

import (
	"fmt"

	apperrors "subscription-manager/internal/common/errors"
)

// Message renders an Outcome as the single line shown to the caller.
func Message(direction Direction, outcome Outcome, customerID, level string) string {
	switch outcome {
	case AlreadyAtTarget:
		return fmt.Sprintf("Customer already has a %s subscription.", level)
	case Success:
		return fmt.Sprintf("Subscription %sd successfully.", direction.String())
	case NotFound:
		return fmt.Sprintf("Customer with ID %s not found.", customerID)
	case InvalidTransition:
		return fmt.Sprintf("%s failed: Invalid subscription level.", direction.title())
	case BackendFailure:
		return fmt.Sprintf("Subscription %s failed.", direction.String())
	default:
		return fmt.Sprintf("%s failed with status code: %d", direction.title(), outcome.Code())
	}
}

// ErrorMessage renders an error returned by ChangeSubscription. Connectivity failures get the
// connection message; everything else names the failed direction.
func ErrorMessage(direction Direction, err error) string {
	if apperrors.HasCode(err, apperrors.ErrCodeRecordStoreUnreachable) {
		return "Connection error: Unable to connect to server."
	}
	if stdErr, ok := apperrors.AsStandardError(err); ok {
		return fmt.Sprintf("%s failed: %s", direction.title(), stdErr.Message)
	}
	return fmt.Sprintf("%s failed: %v", direction.title(), err)
}
