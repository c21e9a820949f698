package journal

import (
	"context"

	"subscription-manager/internal/subscription"
)

type recordingChanger struct {
	next    subscription.Changer
	journal *Journal
}

// Wrap returns a Changer that journals every attempt made through next. A journal failure is
// logged and does not affect the returned outcome or error.
func Wrap(next subscription.Changer, j *Journal) subscription.Changer {
	return &recordingChanger{next: next, journal: j}
}

func (c *recordingChanger) ChangeSubscription(ctx context.Context, direction subscription.Direction, customerID, level string) (subscription.Outcome, error) {
	outcome, err := c.next.ChangeSubscription(ctx, direction, customerID, level)

	entry := c.journal.NewEntry(direction, customerID, level, outcome, err)
	if jerr := c.journal.Record(context.WithoutCancel(ctx), entry); jerr != nil {
		c.journal.logger.Warn("failed to journal subscription change", map[string]interface{}{
			"customerId": customerID,
			"entryId":    entry.ID,
			"error":      jerr.Error(),
		})
	}
	return outcome, err
}
