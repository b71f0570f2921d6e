package service

import (
	"context"
	"strings"

	midtrans "github.com/midtrans/midtrans-go"
	"github.com/midtrans/midtrans-go/coreapi"
	"github.com/midtrans/midtrans-go/snap"
	"github.com/shopspring/decimal"

	"schoolportal_backend/internals/features/finance/gateway/model"
)

// MidtransProvider uses Snap for checkout and the Core API for status checks.
// Midtrans settles in IDR only.
type MidtransProvider struct {
	env midtrans.EnvironmentType
}

func NewMidtransProvider(production bool) *MidtransProvider {
	env := midtrans.Sandbox
	if production {
		env = midtrans.Production
	}
	return &MidtransProvider{env: env}
}

func (p *MidtransProvider) Name() model.GatewayProvider { return model.GatewayProviderMidtrans }

func (p *MidtransProvider) CreateCheckout(_ context.Context, token string, co Checkout) (*CheckoutResult, error) {
	if !strings.EqualFold(co.Currency, "IDR") {
		return nil, &ProviderError{
			StatusCode: 400,
			Message:    "currency not supported",
			Payload:    map[string]any{"currency": co.Currency},
		}
	}

	var client snap.Client
	client.New(token, p.env)

	req := &snap.Request{
		TransactionDetails: midtrans.TransactionDetails{
			OrderID:  co.OrderID,
			GrossAmt: co.Amount.Ceil().IntPart(),
		},
		CustomerDetail: &midtrans.CustomerDetails{
			FName: co.CustomerName,
			Email: co.CustomerEmail,
		},
		Items: &[]midtrans.ItemDetails{{
			ID:    co.OrderID,
			Name:  truncate(co.Description, 50),
			Price: co.Amount.Ceil().IntPart(),
			Qty:   1,
		}},
	}

	resp, mErr := client.CreateTransaction(req)
	if mErr != nil {
		return nil, fromMidtrans(mErr)
	}
	return &CheckoutResult{Token: resp.Token, RedirectURL: resp.RedirectURL}, nil
}

func (p *MidtransProvider) FetchStatus(_ context.Context, token, ref string) (*TxStatus, error) {
	var client coreapi.Client
	client.New(token, p.env)

	resp, mErr := client.CheckTransaction(ref)
	if mErr != nil {
		return nil, fromMidtrans(mErr)
	}
	gross, _ := decimal.NewFromString(resp.GrossAmount)
	return &TxStatus{
		TransactionID: resp.TransactionID,
		OrderID:       resp.OrderID,
		RawStatus:     resp.TransactionStatus,
		Outcome:       MapMidtransStatus(resp.TransactionStatus, resp.FraudStatus),
		GrossAmount:   gross,
	}, nil
}

// MapMidtransStatus: capture flagged as challenge stays pending until review.
func MapMidtransStatus(txStatus, fraudStatus string) Outcome {
	txStatus = strings.ToLower(strings.TrimSpace(txStatus))
	switch txStatus {
	case "capture", "settlement", "success":
		if txStatus == "capture" && strings.EqualFold(fraudStatus, "challenge") {
			return OutcomePending
		}
		return OutcomeApproved
	case "pending", "authorize":
		return OutcomePending
	case "expire", "expired", "cancel", "canceled", "deny", "failure", "failed", "refund", "partial_refund":
		return OutcomeRejected
	default:
		return ""
	}
}

func fromMidtrans(e *midtrans.Error) *ProviderError {
	return &ProviderError{
		StatusCode: e.StatusCode,
		Message:    e.Message,
		Payload:    map[string]any{"status_code": e.StatusCode, "message": e.Message},
	}
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
