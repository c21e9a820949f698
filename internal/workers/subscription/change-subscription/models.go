package changesubscription

// Input is the job variables a subscription.change task reads.
type Input struct {
	CustomerID        string `json:"customerId"`
	SubscriptionLevel string `json:"subscriptionLevel"`
	Direction         string `json:"direction"`
}

// Output is written back to the process instance on completion.
type Output struct {
	Outcome     string `json:"subscriptionOutcome"`
	OutcomeCode int    `json:"subscriptionOutcomeCode"`
	Message     string `json:"subscriptionMessage"`
}

const inputSchema = `{
	"$schema": "http://json-schema.org/draft-07/schema#",
	"type": "object",
	"required": ["customerId", "subscriptionLevel", "direction"],
	"properties": {
		"customerId": {"type": "string", "minLength": 1},
		"subscriptionLevel": {"type": "string", "minLength": 1},
		"direction": {"type": "string", "enum": ["upgrade", "downgrade"]}
	}
}`
