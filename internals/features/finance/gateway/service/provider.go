package service

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"schoolportal_backend/internals/features/finance/gateway/model"
)

// Outcome is the provider status collapsed to what the invoice cares about.
type Outcome string

const (
	OutcomeApproved Outcome = "approved"
	OutcomeRejected Outcome = "rejected"
	OutcomePending  Outcome = "pending"
)

type Checkout struct {
	OrderID       string
	Amount        decimal.Decimal
	Currency      string
	Description   string
	CustomerName  string
	CustomerEmail string
}

type CheckoutResult struct {
	Token       string
	RedirectURL string
}

// TxStatus is the authoritative transaction state read back from the provider.
type TxStatus struct {
	TransactionID string
	OrderID       string
	RawStatus     string
	Outcome       Outcome
	GrossAmount   decimal.Decimal
}

// Provider is a hosted checkout. The token is resolved per call.
type Provider interface {
	Name() model.GatewayProvider
	CreateCheckout(ctx context.Context, token string, co Checkout) (*CheckoutResult, error)
	FetchStatus(ctx context.Context, token, ref string) (*TxStatus, error)
}

// ProviderError carries the provider's error body back to the caller.
type ProviderError struct {
	StatusCode int
	Message    string
	Payload    any
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("provider error (%d): %s", e.StatusCode, e.Message)
}
