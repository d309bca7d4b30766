package domain

import "encoding/json"

// PayLink is the normalized create-pay-link result. ExternalReference is
// what a payer consumes (a bolt11 payment request or a hosted invoice);
// ChargeID is what check-status consumes later. Raw keeps the gateway's
// full response for callers that need provider-specific fields.
type PayLink struct {
	ExternalReference string          `json:"external_reference"`
	ChargeID          string          `json:"charge_id"`
	HostedURL         string          `json:"hosted_url,omitempty"`
	Raw               json.RawMessage `json:"raw,omitempty"`
}

type Balance struct {
	Balance float64 `json:"balance"`
}

type PaymentResult struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

type Transaction struct {
	ID        string  `json:"id"`
	Status    string  `json:"status"`
	Amount    float64 `json:"amount"`
	Timestamp string  `json:"timestamp"`
}

type StatusResult struct {
	ChargeID string `json:"chargeId"`
	Status   string `json:"status"`
}
