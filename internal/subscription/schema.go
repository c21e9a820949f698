package subscription

import "subscription-manager/internal/common/validation"

// recordSchema is checked against every record before it is written: the tier must be defined
// and a free record carries no enabled feature.
const recordSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["SUBSCRIPTION"],
  "properties": {
    "SUBSCRIPTION": {"enum": ["free", "basic", "premium"]}
  },
  "if": {"properties": {"SUBSCRIPTION": {"const": "free"}}},
  "then": {
    "properties": {
      "ENABLED_FEATURES": {"additionalProperties": {"const": false}}
    }
  }
}`

var recordValidator = validation.MustCompile(recordSchema)
