package subscription

import (
	"encoding/json"
	"fmt"
	"time"
)

// Record store field names.
const (
	FieldSubscription    = "SUBSCRIPTION"
	FieldEnabledFeatures = "ENABLED_FEATURES"
	FieldUpgradeDate     = "UPGRADE_DATE"
	FieldDowngradeDate   = "DOWNGRADE_DATE"
)

// ChangeDateLayout is the layout of UPGRADE_DATE and DOWNGRADE_DATE values.
const ChangeDateLayout = "2006-01-02 15:04:05.000000"

var disabledFeature = json.RawMessage("false")

// CustomerRecord is the "data" object the record store keeps per customer. Every received
// field is kept as raw JSON and written back as received unless a change rewrites it.
type CustomerRecord struct {
	Subscription Tier
	fields       map[string]json.RawMessage
}

// UnmarshalJSON decodes a record store data object. SUBSCRIPTION may be null or missing but
// must otherwise be a string.
func (r *CustomerRecord) UnmarshalJSON(b []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}

	*r = CustomerRecord{fields: raw}
	if value, ok := raw[FieldSubscription]; ok {
		var s *string
		if err := json.Unmarshal(value, &s); err != nil {
			return fmt.Errorf("decode %s: %w", FieldSubscription, err)
		}
		if s != nil {
			r.Subscription = Tier(*s)
		}
	}
	return nil
}

// MarshalJSON encodes every kept field, with SUBSCRIPTION taken from Subscription when set.
func (r CustomerRecord) MarshalJSON() ([]byte, error) {
	out := make(map[string]json.RawMessage, len(r.fields)+1)
	for key, value := range r.fields {
		out[key] = value
	}
	if r.Subscription != "" {
		tier, err := json.Marshal(r.Subscription)
		if err != nil {
			return nil, err
		}
		out[FieldSubscription] = tier
	}
	return json.Marshal(out)
}

// Field returns the raw JSON of a received or rewritten field.
func (r *CustomerRecord) Field(name string) (json.RawMessage, bool) {
	value, ok := r.fields[name]
	return value, ok
}

// apply moves the record to target and stamps the change date for direction. Moving down to
// free switches every enabled feature off in the same write.
func (r *CustomerRecord) apply(direction Direction, target Tier, at time.Time) {
	r.Subscription = target
	r.setString(direction.DateField(), at.Format(ChangeDateLayout))

	if direction == Downgrade && target == TierFree {
		r.disableFeatures()
	}
}

func (r *CustomerRecord) setString(name, value string) {
	if r.fields == nil {
		r.fields = make(map[string]json.RawMessage)
	}
	encoded, _ := json.Marshal(value)
	r.fields[name] = encoded
}

// disableFeatures sets every ENABLED_FEATURES entry to false. A missing, null or non-object
// value is left as received.
func (r *CustomerRecord) disableFeatures() {
	var features map[string]json.RawMessage
	if err := json.Unmarshal(r.fields[FieldEnabledFeatures], &features); err != nil || features == nil {
		return
	}
	for name := range features {
		features[name] = disabledFeature
	}
	encoded, err := json.Marshal(features)
	if err != nil {
		return
	}
	r.fields[FieldEnabledFeatures] = encoded
}
