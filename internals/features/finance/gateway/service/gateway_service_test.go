package service

import (
	"context"
	"crypto/sha512"
	"encoding/hex"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"schoolportal_backend/internals/databases"
	"schoolportal_backend/internals/databases/dbtest"
	"schoolportal_backend/internals/features/finance/gateway/dto"
	"schoolportal_backend/internals/features/finance/gateway/model"
	invoiceDto "schoolportal_backend/internals/features/finance/invoices/dto"
	invoiceModel "schoolportal_backend/internals/features/finance/invoices/model"
	invoiceService "schoolportal_backend/internals/features/finance/invoices/service"
	paymentService "schoolportal_backend/internals/features/finance/payments/service"
	settingModel "schoolportal_backend/internals/features/settings/model"
	settingService "schoolportal_backend/internals/features/settings/service"
	directoryModel "schoolportal_backend/internals/features/school/directory/model"
	"schoolportal_backend/internals/helpers/apperr"
	"schoolportal_backend/internals/helpers/dbtime"
)

/* ===================== fake provider ===================== */

type fakeProvider struct {
	currencies map[string]bool
	statuses   map[string]*TxStatus
	checkouts  []Checkout
	tokens     []string
	fetches    int
}

func (f *fakeProvider) Name() model.GatewayProvider { return model.GatewayProviderMidtrans }

func (f *fakeProvider) CreateCheckout(_ context.Context, token string, co Checkout) (*CheckoutResult, error) {
	f.tokens = append(f.tokens, token)
	f.checkouts = append(f.checkouts, co)
	if !f.currencies[co.Currency] {
		return nil, &ProviderError{StatusCode: 400, Message: "bad currency", Payload: map[string]any{"currency": co.Currency}}
	}
	return &CheckoutResult{Token: "snap-token", RedirectURL: "https://pay.example/" + co.OrderID}, nil
}

func (f *fakeProvider) FetchStatus(_ context.Context, token, ref string) (*TxStatus, error) {
	f.tokens = append(f.tokens, token)
	f.fetches++
	st, ok := f.statuses[ref]
	if !ok {
		return nil, &ProviderError{StatusCode: 404, Message: "transaction not found"}
	}
	return st, nil
}

/* ===================== fixture ===================== */

type fixture struct {
	gw       *databases.Gateway
	provider *fakeProvider
	invoices *invoiceService.InvoiceService
	settings *settingService.SettingService
	svc      *GatewayService
	parentID int64
	student  int64
}

func newFixture(t *testing.T, cfg Config) *fixture {
	t.Helper()
	gw := dbtest.Gateway(t)
	log := zap.NewNop()
	inv := invoiceService.NewInvoiceService(gw, dbtime.Fixed(time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)), nil, log)
	pay := paymentService.NewPaymentService(gw, inv, log)
	set := settingService.NewSettingService(gw)
	p := &fakeProvider{currencies: map[string]bool{"IDR": true}, statuses: map[string]*TxStatus{}}

	db := gw.DB(context.Background())
	lvl := directoryModel.LevelModel{LevelName: "Primaria"}
	require.NoError(t, db.Create(&lvl).Error)
	g := directoryModel.GradeModel{GradeLevelID: lvl.LevelID, GradeName: "3ro"}
	require.NoError(t, db.Create(&g).Error)
	par := directoryModel.ParentModel{ParentFullName: "Ana Torres"}
	require.NoError(t, db.Create(&par).Error)
	st := directoryModel.StudentModel{StudentParentID: par.ParentID, StudentGradeID: g.GradeID, StudentFullName: "Luis", StudentIsActive: true}
	require.NoError(t, db.Create(&st).Error)

	return &fixture{
		gw: gw, provider: p, invoices: inv, settings: set,
		svc:      NewGatewayService(gw, p, inv, pay, set, nil, cfg, log),
		parentID: par.ParentID, student: st.StudentID,
	}
}

func (f *fixture) invoice(t *testing.T, total string) int64 {
	t.Helper()
	d := decimal.RequireFromString(total)
	id, err := f.invoices.Create(context.Background(), invoiceDto.CreateInvoiceRequest{ParentID: f.parentID, StudentID: f.student, Total: &d})
	require.NoError(t, err)
	return id
}

func (f *fixture) event(t *testing.T, key string) model.GatewayEventModel {
	t.Helper()
	var ev model.GatewayEventModel
	require.NoError(t, f.gw.DB(context.Background()).Where("gateway_event_key = ?", key).First(&ev).Error)
	return ev
}

func (f *fixture) eventCount(t *testing.T) int64 {
	t.Helper()
	var n int64
	require.NoError(t, f.gw.DB(context.Background()).Model(&model.GatewayEventModel{}).Count(&n).Error)
	return n
}

/* ===================== order ids & status mapping ===================== */

func TestOrderIDRoundTrip(t *testing.T) {
	id := GenOrderID(42, time.Date(2025, 3, 10, 14, 5, 9, 0, time.UTC))
	assert.True(t, strings.HasPrefix(id, "INV-42-20250310-140509-"), id)
	assert.Len(t, id, len("INV-42-20250310-140509-")+8)

	got, err := ParseOrderID(id)
	require.NoError(t, err)
	assert.Equal(t, int64(42), got)

	for _, bad := range []string{"", "DONATION-1", "INV-x-1", "INV--3"} {
		_, err := ParseOrderID(bad)
		assert.Error(t, err, bad)
	}
}

func TestMapMidtransStatus(t *testing.T) {
	cases := []struct {
		tx, fraud string
		want      Outcome
	}{
		{"settlement", "", OutcomeApproved},
		{"capture", "accept", OutcomeApproved},
		{"capture", "challenge", OutcomePending},
		{"pending", "", OutcomePending},
		{"expire", "", OutcomeRejected},
		{"deny", "", OutcomeRejected},
		{"cancel", "", OutcomeRejected},
		{"refund", "", OutcomeRejected},
		{"weird", "", ""},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, MapMidtransStatus(tc.tx, tc.fraud), tc.tx+"/"+tc.fraud)
	}
}

func TestValidSignature(t *testing.T) {
	sum := sha512.Sum512([]byte("INV-1-x" + "200" + "250.00" + "key"))
	sig := hex.EncodeToString(sum[:])
	assert.True(t, ValidSignature("INV-1-x", "200", "250.00", "key", sig))
	assert.False(t, ValidSignature("INV-1-x", "200", "250.00", "other", sig))
}

/* ===================== preference ===================== */

func TestCreatePreferenceTokenResolution(t *testing.T) {
	ctx := context.Background()

	f := newFixture(t, Config{})
	id := f.invoice(t, "250")
	_, err := f.svc.CreatePreference(ctx, dto.PreferenceRequest{InvoiceID: id})
	assert.True(t, apperr.Is(err, apperr.KindValidation))
	assert.Empty(t, f.provider.checkouts)

	f = newFixture(t, Config{ServerKey: "env-key"})
	id = f.invoice(t, "250")
	_, err = f.svc.CreatePreference(ctx, dto.PreferenceRequest{InvoiceID: id})
	require.NoError(t, err)

	require.NoError(t, f.settings.Upsert(ctx, settingModel.KeyGatewayAccessToken, "stored-key"))
	_, err = f.svc.CreatePreference(ctx, dto.PreferenceRequest{InvoiceID: id})
	require.NoError(t, err)

	explicit := "explicit-key"
	_, err = f.svc.CreatePreference(ctx, dto.PreferenceRequest{InvoiceID: id, AccessToken: &explicit})
	require.NoError(t, err)

	assert.Equal(t, []string{"env-key", "stored-key", "explicit-key"}, f.provider.tokens)
}

func TestCreatePreferenceCurrencyFallback(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, Config{ServerKey: "k", Currencies: []string{"USD", "IDR"}})
	id := f.invoice(t, "250")

	res, err := f.svc.CreatePreference(ctx, dto.PreferenceRequest{InvoiceID: id})
	require.NoError(t, err)
	assert.True(t, res.OK)
	assert.Equal(t, "IDR", res.Currency)
	assert.Equal(t, "https://pay.example/"+res.OrderID, res.RedirectURL)

	require.Len(t, f.provider.checkouts, 2)
	assert.True(t, f.provider.checkouts[1].Amount.Equal(decimal.NewFromInt(250)))
	assert.Equal(t, "Ana Torres", f.provider.checkouts[1].CustomerName)

	got, err := ParseOrderID(res.OrderID)
	require.NoError(t, err)
	assert.Equal(t, id, got)
}

func TestCreatePreferenceAllCurrenciesFail(t *testing.T) {
	f := newFixture(t, Config{ServerKey: "k", Currencies: []string{"USD", "EUR"}})
	id := f.invoice(t, "250")

	_, err := f.svc.CreatePreference(context.Background(), dto.PreferenceRequest{InvoiceID: id})
	require.Error(t, err)
	ae := apperr.From(err)
	assert.Equal(t, apperr.KindUpstream, ae.Kind)
	assert.Equal(t, map[string]any{"currency": "EUR"}, ae.Payload)
}

func TestCreatePreferenceRequiresPendingInvoice(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, Config{ServerKey: "k"})
	id := f.invoice(t, "250")
	require.NoError(t, f.invoices.SetStatus(ctx, id, invoiceModel.InvoiceStatusCancelled))

	_, err := f.svc.CreatePreference(ctx, dto.PreferenceRequest{InvoiceID: id})
	assert.True(t, apperr.Is(err, apperr.KindConflict))

	_, err = f.svc.CreatePreference(ctx, dto.PreferenceRequest{InvoiceID: 999})
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}

/* ===================== webhook ===================== */

func midtransBody(orderID, txID, status string) map[string]any {
	return map[string]any{
		"order_id":           orderID,
		"transaction_id":     txID,
		"transaction_status": status,
		"status_code":        "200",
		"gross_amount":       "250.00",
	}
}

func TestWebhookApprovedRecordsPaymentOnce(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, Config{ServerKey: "k"})
	id := f.invoice(t, "250")
	orderID := GenOrderID(id, time.Now())
	f.provider.statuses[orderID] = &TxStatus{
		TransactionID: "tx-1", OrderID: orderID, RawStatus: "settlement",
		Outcome: OutcomeApproved, GrossAmount: decimal.NewFromInt(250),
	}

	body := midtransBody(orderID, "tx-1", "settlement")
	f.svc.HandleWebhook(ctx, body)
	f.svc.HandleWebhook(ctx, body)

	assert.Equal(t, 1, f.provider.fetches)
	assert.Equal(t, int64(1), f.eventCount(t))

	got, err := f.invoices.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, invoiceModel.InvoiceStatusPaid, got.Status)
	require.Len(t, got.Payments, 1)
	assert.Equal(t, "gateway", got.Payments[0].Method)
	require.NotNil(t, got.Payments[0].Reference)
	assert.Equal(t, "tx-1", *got.Payments[0].Reference)

	ev := f.event(t, "tx-1:settlement")
	assert.Equal(t, model.GatewayEventStatusSuccess, ev.GatewayEventStatus)
	assert.Equal(t, model.GatewayProviderMidtrans, ev.GatewayEventProvider)
	require.NotNil(t, ev.GatewayEventInvoiceID)
	assert.Equal(t, id, *ev.GatewayEventInvoiceID)
	assert.NotNil(t, ev.GatewayEventProcessedAt)
	assert.Contains(t, string(ev.GatewayEventPayload), orderID)
}

func TestWebhookApprovedPartialGrossStillSettles(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, Config{ServerKey: "k"})
	id := f.invoice(t, "250")
	orderID := GenOrderID(id, time.Now())
	f.provider.statuses[orderID] = &TxStatus{
		TransactionID: "tx-2", OrderID: orderID, RawStatus: "capture",
		Outcome: OutcomeApproved, GrossAmount: decimal.NewFromInt(200),
	}

	f.svc.HandleWebhook(ctx, midtransBody(orderID, "tx-2", "capture"))

	got, err := f.invoices.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, invoiceModel.InvoiceStatusPaid, got.Status)
	require.Len(t, got.Payments, 1)
	assert.True(t, got.Payments[0].Amount.Equal(decimal.NewFromInt(200)))
}

func TestWebhookRejectedCancelsInvoice(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, Config{ServerKey: "k"})
	id := f.invoice(t, "250")
	orderID := GenOrderID(id, time.Now())
	f.provider.statuses[orderID] = &TxStatus{TransactionID: "tx-3", OrderID: orderID, RawStatus: "expire", Outcome: OutcomeRejected}

	f.svc.HandleWebhook(ctx, midtransBody(orderID, "tx-3", "expire"))

	got, err := f.invoices.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, invoiceModel.InvoiceStatusCancelled, got.Status)
	assert.Equal(t, model.GatewayEventStatusSuccess, f.event(t, "tx-3:expire").GatewayEventStatus)
}

func TestWebhookPendingAndUnknownTopicAreIgnored(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, Config{ServerKey: "k"})
	id := f.invoice(t, "250")
	orderID := GenOrderID(id, time.Now())
	f.provider.statuses[orderID] = &TxStatus{TransactionID: "tx-4", OrderID: orderID, RawStatus: "pending", Outcome: OutcomePending}

	f.svc.HandleWebhook(ctx, midtransBody(orderID, "tx-4", "pending"))
	assert.Equal(t, model.GatewayEventStatusIgnored, f.event(t, "tx-4:pending").GatewayEventStatus)

	f.svc.HandleWebhook(ctx, map[string]any{"type": "merchant_order", "data": map[string]any{"id": "77"}})
	ev := f.event(t, "merchant_order:77")
	assert.Equal(t, model.GatewayProviderGeneric, ev.GatewayEventProvider)
	assert.Equal(t, model.GatewayEventStatusIgnored, ev.GatewayEventStatus)
	assert.Equal(t, 1, f.provider.fetches)

	got, err := f.invoices.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, invoiceModel.InvoiceStatusPending, got.Status)
}

func TestWebhookGenericPaymentShape(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, Config{ServerKey: "k"})
	id := f.invoice(t, "250")
	orderID := GenOrderID(id, time.Now())
	f.provider.statuses["9001"] = &TxStatus{
		TransactionID: "9001", OrderID: orderID, RawStatus: "approved",
		Outcome: OutcomeApproved, GrossAmount: decimal.NewFromInt(250),
	}

	f.svc.HandleWebhook(ctx, map[string]any{"topic": "payment", "id": float64(9001)})

	got, err := f.invoices.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, invoiceModel.InvoiceStatusPaid, got.Status)
	assert.Equal(t, model.GatewayEventStatusSuccess, f.event(t, "payment:9001").GatewayEventStatus)
}

func TestWebhookBadSignatureOrUnknownOrderFails(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, Config{ServerKey: "k"})
	id := f.invoice(t, "250")
	orderID := GenOrderID(id, time.Now())

	body := midtransBody(orderID, "tx-5", "settlement")
	body["signature_key"] = "deadbeef"
	f.svc.HandleWebhook(ctx, body)

	ev := f.event(t, "tx-5:settlement")
	assert.Equal(t, model.GatewayEventStatusFailed, ev.GatewayEventStatus)
	require.NotNil(t, ev.GatewayEventError)
	assert.Contains(t, *ev.GatewayEventError, "signature")
	assert.Zero(t, f.provider.fetches)

	// valid signature but the provider does not know the order
	sum := sha512.Sum512([]byte(orderID + "200" + "250.00" + "k"))
	body = midtransBody(orderID, "tx-6", "settlement")
	body["signature_key"] = hex.EncodeToString(sum[:])
	f.svc.HandleWebhook(ctx, body)
	assert.Equal(t, model.GatewayEventStatusFailed, f.event(t, "tx-6:settlement").GatewayEventStatus)

	got, err := f.invoices.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, invoiceModel.InvoiceStatusPending, got.Status)
	assert.Empty(t, got.Payments)
}

func TestWebhookWithoutIDStoresNothing(t *testing.T) {
	f := newFixture(t, Config{ServerKey: "k"})
	f.svc.HandleWebhook(context.Background(), map[string]any{"type": "payment"})
	assert.Equal(t, int64(0), f.eventCount(t))
	assert.Zero(t, f.provider.fetches)
}

func TestWebhookRedeliveryAfterFailureSettlesInvoice(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, Config{ServerKey: "k"})
	id := f.invoice(t, "250")
	orderID := GenOrderID(id, time.Now())
	body := midtransBody(orderID, "tx-7", "settlement")

	// provider does not know the order yet
	f.svc.HandleWebhook(ctx, body)
	ev := f.event(t, "tx-7:settlement")
	assert.Equal(t, model.GatewayEventStatusFailed, ev.GatewayEventStatus)
	require.NotNil(t, ev.GatewayEventError)

	f.provider.statuses[orderID] = &TxStatus{
		TransactionID: "tx-7", OrderID: orderID, RawStatus: "settlement",
		Outcome: OutcomeApproved, GrossAmount: decimal.NewFromInt(250),
	}
	f.svc.HandleWebhook(ctx, body)
	f.svc.HandleWebhook(ctx, body)

	assert.Equal(t, 2, f.provider.fetches)
	assert.Equal(t, int64(1), f.eventCount(t))
	ev = f.event(t, "tx-7:settlement")
	assert.Equal(t, model.GatewayEventStatusSuccess, ev.GatewayEventStatus)
	assert.Nil(t, ev.GatewayEventError)

	got, err := f.invoices.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, invoiceModel.InvoiceStatusPaid, got.Status)
	assert.Len(t, got.Payments, 1)
}

func TestWebhookInFlightEventIsNotProcessedTwice(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, Config{ServerKey: "k"})
	id := f.invoice(t, "250")
	orderID := GenOrderID(id, time.Now())
	body := midtransBody(orderID, "tx-8", "settlement")

	f.svc.HandleWebhook(ctx, body)
	require.Equal(t, 1, f.provider.fetches)
	f.provider.statuses[orderID] = &TxStatus{
		TransactionID: "tx-8", OrderID: orderID, RawStatus: "settlement",
		Outcome: OutcomeApproved, GrossAmount: decimal.NewFromInt(250),
	}

	hold := func(at time.Time) {
		require.NoError(t, f.gw.DB(ctx).Model(&model.GatewayEventModel{}).
			Where("gateway_event_key = ?", "tx-8:settlement").
			Updates(map[string]any{"gateway_event_status": model.GatewayEventStatusProcessing, "gateway_event_updated_at": at}).Error)
	}

	hold(time.Now())
	f.svc.HandleWebhook(ctx, body)
	assert.Equal(t, 1, f.provider.fetches)
	assert.Equal(t, model.GatewayEventStatusProcessing, f.event(t, "tx-8:settlement").GatewayEventStatus)

	// an abandoned claim is taken over
	hold(time.Now().Add(-processingLease - time.Minute))
	f.svc.HandleWebhook(ctx, body)
	assert.Equal(t, 2, f.provider.fetches)
	assert.Equal(t, model.GatewayEventStatusSuccess, f.event(t, "tx-8:settlement").GatewayEventStatus)

	got, err := f.invoices.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, invoiceModel.InvoiceStatusPaid, got.Status)
}

func TestStrFormatsNumbers(t *testing.T) {
	body := map[string]any{"a": float64(9001), "b": 12.5, "c": 1e17, "d": " x ", "e": int64(7)}
	assert.Equal(t, "9001", str(body, "a"))
	assert.Equal(t, "12.5", str(body, "b"))
	assert.Equal(t, "100000000000000000", str(body, "c"))
	assert.Equal(t, "x", str(body, "d"))
	assert.Equal(t, "7", str(body, "e"))
	assert.Equal(t, "", str(body, "missing"))
}
