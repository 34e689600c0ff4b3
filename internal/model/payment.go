package model

// Provider statuses reported by the mobile-money network.
const (
	ProviderPending    = "PENDING"
	ProviderSuccessful = "SUCCESSFUL"
	ProviderFailed     = "FAILED"
)

// PaymentResult is what the payment provider returns for an accepted request.
// Status may be PENDING: the network accepted the request but has not settled it.
type PaymentResult struct {
	ReferenceID string `json:"referenceId"`
	Status      string `json:"status"`
}

// PaymentStatus is the provider's current view of a submitted payment. It is
// looked up on demand and never written back into an execution record.
type PaymentStatus struct {
	ReferenceID            string `json:"referenceId"`
	Status                 string `json:"status"`
	Reason                 string `json:"reason,omitempty"`
	FinancialTransactionID string `json:"financialTransactionId,omitempty"`
	Amount                 string `json:"amount,omitempty"`
	Currency               string `json:"currency,omitempty"`
}
