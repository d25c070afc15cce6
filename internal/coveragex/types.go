package coveragex

import "encoding/json"

// PlanQuery is the vehicle/plan selection needed to price a plan.
type PlanQuery struct {
	State      string `json:"state"`
	Year       string `json:"year"`
	Make       string `json:"make"`
	Model      string `json:"model"`
	Trim       string `json:"trim,omitempty"`
	Class      string `json:"class"`
	VINPattern string `json:"vinPattern"`
	Odometer   int    `json:"odometer"`
}

// PricedPlan is a priced protection plan returned by the quoting backend.
// Raw preserves the full upstream payload for replay into the model context.
type PricedPlan struct {
	PlanCode     string          `json:"planCode"`
	Name         string          `json:"name"`
	MonthlyPrice float64         `json:"monthlyPrice"`
	TermMonths   int             `json:"termMonths"`
	Raw          json.RawMessage `json:"-"`
}

// Customer is the identity/contact/address block of a contract submission.
type Customer struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Address   string `json:"address"`
	City      string `json:"city"`
	State     string `json:"state"`
	Zip       string `json:"zip"`
}

// Card holds payment-card details for deposit processing.
type Card struct {
	Number string `json:"number"`
	Expiry string `json:"expiry"`
	CVV    string `json:"cvv"`
}

// QuoteRequest is the quote-submission payload (PUT).
type QuoteRequest struct {
	PlanCode string    `json:"planCode"`
	Vehicle  PlanQuery `json:"vehicle"`
	VIN      string    `json:"vin"`
	Customer Customer  `json:"customer"`
}

// QuoteResult is the outcome of a quote submission.
type QuoteResult struct {
	QuoteID string `json:"quoteId"`
	Status  string `json:"status"`
}

// PaymentRequest is the deposit/payment-processing payload (POST).
type PaymentRequest struct {
	QuoteID string  `json:"quoteId"`
	Amount  float64 `json:"amount"`
	Card    Card    `json:"card"`
}

// PaymentResult is the outcome of deposit processing.
type PaymentResult struct {
	PaymentID string `json:"paymentId"`
	Status    string `json:"status"`
}

// ContractRequest finalizes a contract with the deal manager.
type ContractRequest struct {
	Reference string `json:"reference"`
	QuoteID   string `json:"quoteId"`
	PaymentID string `json:"paymentId"`
}

// ContractResult is the saved contract record.
type ContractResult struct {
	ContractID string `json:"contractId"`
	Status     string `json:"status"`
}
