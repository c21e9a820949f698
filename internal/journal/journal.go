// Package journal keeps a bounded per-customer history of subscription change attempts in Redis.
package journal

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	apperrors "subscription-manager/internal/common/errors"
	"subscription-manager/internal/common/logger"
	"subscription-manager/internal/subscription"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "subscription:journal:"

// Entry is one change attempt. Code is zero and Error set when the attempt failed with an error.
type Entry struct {
	ID         string    `json:"id"`
	CustomerID string    `json:"customerId"`
	Direction  string    `json:"direction"`
	TargetTier string    `json:"targetTier"`
	Outcome    string    `json:"outcome,omitempty"`
	Code       int       `json:"code,omitempty"`
	Error      string    `json:"error,omitempty"`
	At         time.Time `json:"at"`
}

type Journal struct {
	client     *redis.Client
	maxEntries int64
	logger     logger.Logger
	now        func() time.Time
}

func New(client *redis.Client, maxEntries int64, log logger.Logger) *Journal {
	if maxEntries < 1 {
		maxEntries = 1
	}
	return &Journal{
		client:     client,
		maxEntries: maxEntries,
		logger:     log,
		now:        time.Now,
	}
}

// Key is the Redis list holding customerID's entries, newest first.
func Key(customerID string) string {
	return keyPrefix + customerID
}

// NewEntry describes the result of one ChangeSubscription call.
func (j *Journal) NewEntry(direction subscription.Direction, customerID, level string, outcome subscription.Outcome, err error) Entry {
	e := Entry{
		ID:         uuid.NewString(),
		CustomerID: customerID,
		Direction:  direction.String(),
		TargetTier: level,
		At:         j.now().UTC(),
	}
	if err != nil {
		e.Error = err.Error()
		return e
	}
	e.Outcome = outcome.String()
	e.Code = outcome.Code()
	return e
}

// Record prepends e and trims the list to the configured size.
func (j *Journal) Record(ctx context.Context, e Entry) error {
	payload, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("encode journal entry: %w", err)
	}

	key := Key(e.CustomerID)
	_, err = j.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.LPush(ctx, key, payload)
		pipe.LTrim(ctx, key, 0, j.maxEntries-1)
		return nil
	})
	if err != nil {
		return apperrors.NewJournalUnavailableError(err)
	}
	return nil
}

// Recent returns up to limit entries for customerID, newest first. limit <= 0 means all kept entries.
func (j *Journal) Recent(ctx context.Context, customerID string, limit int64) ([]Entry, error) {
	stop := int64(-1)
	if limit > 0 {
		stop = limit - 1
	}

	raw, err := j.client.LRange(ctx, Key(customerID), 0, stop).Result()
	if err != nil {
		return nil, apperrors.NewJournalUnavailableError(err)
	}

	entries := make([]Entry, 0, len(raw))
	for _, item := range raw {
		var e Entry
		if err := json.Unmarshal([]byte(item), &e); err != nil {
			j.logger.Warn("skipping unreadable journal entry", map[string]interface{}{
				"customerId": customerID,
				"error":      err.Error(),
			})
			continue
		}
		entries = append(entries, e)
	}
	return entries, nil
}
