package subscription

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	apperrors "subscription-manager/internal/common/errors"
	"subscription-manager/internal/common/logger"
	"subscription-manager/internal/common/metrics"
	"subscription-manager/internal/common/validation"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "subscription-manager/internal/subscription"

// RecordStore is the remote store holding customer records. A non-2xx status is returned as-is
// with a nil record; only transport and decoding failures are errors.
type RecordStore interface {
	Fetch(ctx context.Context, customerID string) (int, *CustomerRecord, error)
	Write(ctx context.Context, customerID string, record *CustomerRecord) (int, *CustomerRecord, error)
}

// Changer applies a subscription change and reports its Outcome.
type Changer interface {
	ChangeSubscription(ctx context.Context, direction Direction, customerID, level string) (Outcome, error)
}

// Updater fetches a customer record, validates the requested transition and writes the
// changed record back. It holds no state between calls.
type Updater struct {
	store     RecordStore
	logger    logger.Logger
	validator *validation.Validator
	tracer    trace.Tracer
	now       func() time.Time
}

type Option func(*Updater)

// WithClock overrides the time source used for change dates.
func WithClock(now func() time.Time) Option {
	return func(u *Updater) { u.now = now }
}

// WithTracerProvider sets the provider spans are created from. Defaults to the global one.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(u *Updater) { u.tracer = tp.Tracer(tracerName) }
}

func NewUpdater(store RecordStore, log logger.Logger, opts ...Option) *Updater {
	u := &Updater{
		store:     store,
		logger:    log,
		validator: recordValidator,
		tracer:    otel.Tracer(tracerName),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

// Upgrade is ChangeSubscription with the Upgrade direction.
func (u *Updater) Upgrade(ctx context.Context, customerID, level string) (Outcome, error) {
	return u.ChangeSubscription(ctx, Upgrade, customerID, level)
}

// Downgrade is ChangeSubscription with the Downgrade direction.
func (u *Updater) Downgrade(ctx context.Context, customerID, level string) (Outcome, error) {
	return u.ChangeSubscription(ctx, Downgrade, customerID, level)
}

// ChangeSubscription moves customerID to level in the given direction. Business results are
// returned as an Outcome; an undefined level or direction and record store connectivity
// failures are returned as errors. Nothing is retried.
func (u *Updater) ChangeSubscription(ctx context.Context, direction Direction, customerID, level string) (Outcome, error) {
	if !direction.Valid() {
		return 0, apperrors.NewInvalidDirectionError(direction.String())
	}
	target, err := ParseTier(level)
	if err != nil {
		return 0, err
	}

	ctx, span := u.tracer.Start(ctx, "subscription.change", trace.WithAttributes(
		attribute.String("subscription.direction", direction.String()),
		attribute.String("subscription.customer_id", customerID),
		attribute.String("subscription.target_tier", target.String()),
	))
	defer span.End()

	log := u.logger.WithFields(map[string]interface{}{
		"customerId": customerID,
		"direction":  direction.String(),
		"targetTier": target.String(),
	})

	outcome, err := u.change(ctx, log, direction, customerID, target)
	if err != nil {
		stdErr := apperrors.Normalize(err)
		metrics.SubscriptionChangeErrors.WithLabelValues(direction.String(), string(stdErr.Code)).Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, string(stdErr.Code))
		log.Error("subscription change failed", map[string]interface{}{
			"errorCode": string(stdErr.Code),
			"error":     err.Error(),
		})
		return 0, err
	}

	metrics.SubscriptionChanges.WithLabelValues(direction.String(), outcome.String()).Inc()
	span.SetAttributes(
		attribute.String("subscription.outcome", outcome.String()),
		attribute.Int("subscription.outcome_code", outcome.Code()),
	)
	log.Info("subscription change finished", map[string]interface{}{
		"outcome":     outcome.String(),
		"outcomeCode": outcome.Code(),
	})
	return outcome, nil
}

func (u *Updater) change(ctx context.Context, log logger.Logger, direction Direction, customerID string, target Tier) (Outcome, error) {
	status, record, err := u.store.Fetch(ctx, customerID)
	if err != nil {
		return 0, err
	}
	if !statusOK(status) {
		log.Warn("record store fetch returned non-success status", map[string]interface{}{
			"status": status,
		})
		return Outcome(status), nil
	}

	if record == nil || record.Subscription == "" {
		return NotFound, nil
	}

	current := record.Subscription
	log = log.WithFields(map[string]interface{}{"currentTier": current.String()})

	if current == target {
		return AlreadyAtTarget, nil
	}
	if current == direction.Terminal() {
		log.Info("no further tier reachable in this direction", nil)
		return InvalidTransition, nil
	}
	if !IsReachable(direction, current, target) {
		log.Info("requested tier not reachable", map[string]interface{}{
			"reachable": direction.Reachable(current),
		})
		return InvalidTransition, nil
	}

	record.apply(direction, target, u.now())
	if err := u.checkRecord(customerID, record); err != nil {
		return 0, err
	}

	status, echoed, err := u.store.Write(ctx, customerID, record)
	if err != nil {
		return 0, err
	}
	if !statusOK(status) {
		log.Warn("record store write returned non-success status", map[string]interface{}{
			"status": status,
		})
		return Outcome(status), nil
	}

	if echoed == nil || echoed.Subscription != target {
		echoedTier := ""
		if echoed != nil {
			echoedTier = echoed.Subscription.String()
		}
		log.Error("record store accepted the write but did not apply it", map[string]interface{}{
			"echoedTier": echoedTier,
		})
		return BackendFailure, nil
	}
	return Success, nil
}

// checkRecord refuses to write a record that breaks the tier or free-feature invariants.
func (u *Updater) checkRecord(customerID string, record *CustomerRecord) error {
	doc, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("encode record: %w", err)
	}
	result, err := u.validator.ValidateJSON(doc)
	if err != nil {
		return err
	}
	if !result.Valid {
		return apperrors.NewRecordSchemaViolationError(customerID, result.GetErrorMessages())
	}
	return nil
}

func statusOK(status int) bool {
	return status >= 200 && status < 300
}
