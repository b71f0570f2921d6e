package service

import (
	"context"
	"crypto/sha512"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"schoolportal_backend/internals/databases"
	"schoolportal_backend/internals/features/finance/gateway/model"
	invoiceModel "schoolportal_backend/internals/features/finance/invoices/model"
	invoiceService "schoolportal_backend/internals/features/finance/invoices/service"
	paymentDto "schoolportal_backend/internals/features/finance/payments/dto"
	paymentModel "schoolportal_backend/internals/features/finance/payments/model"
	"schoolportal_backend/internals/helpers/apperr"
)

const topicPayment = "payment"

// notification is a webhook body reduced to what processing needs.
type notification struct {
	provider  model.GatewayProvider
	key       string
	topic     string
	ref       string
	orderID   string
	txStatus  string
	statusCde string
	gross     string
	signature string
}

// parseNotification accepts Midtrans notifications and the generic
// {type|topic, data:{id}} / {id} shapes.
func parseNotification(body map[string]any) (notification, error) {
	if orderID := str(body, "order_id"); orderID != "" {
		txID := str(body, "transaction_id")
		status := strings.ToLower(str(body, "transaction_status"))
		keyID := txID
		if keyID == "" {
			keyID = orderID
		}
		return notification{
			provider:  model.GatewayProviderMidtrans,
			key:       keyID + ":" + status,
			topic:     topicPayment,
			ref:       orderID,
			orderID:   orderID,
			txStatus:  status,
			statusCde: str(body, "status_code"),
			gross:     str(body, "gross_amount"),
			signature: str(body, "signature_key"),
		}, nil
	}

	topic := strings.ToLower(str(body, "type"))
	if topic == "" {
		topic = strings.ToLower(str(body, "topic"))
	}
	id := ""
	if data, ok := body["data"].(map[string]any); ok {
		id = str(data, "id")
	}
	if id == "" {
		id = str(body, "id")
	}
	if id == "" {
		return notification{}, errors.New("notification carries no id")
	}
	if topic == "" {
		topic = topicPayment
	}
	return notification{
		provider: model.GatewayProviderGeneric,
		key:      topic + ":" + id,
		topic:    topic,
		ref:      id,
	}, nil
}

// str reads a string or number field as text.
func str(m map[string]any, key string) string {
	switch v := m[key].(type) {
	case string:
		return strings.TrimSpace(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int64:
		return fmt.Sprintf("%d", v)
	case nil:
		return ""
	default:
		return fmt.Sprint(v)
	}
}

// ValidSignature checks sha512(order_id + status_code + gross_amount + key).
func ValidSignature(orderID, statusCode, grossAmount, key, signature string) bool {
	sum := sha512.Sum512([]byte(orderID + statusCode + grossAmount + key))
	return strings.EqualFold(hex.EncodeToString(sum[:]), signature)
}

/* =======================================================================
   Webhook
======================================================================= */

// HandleWebhook never fails towards the provider. Outcomes and errors are
// logged and stored on the event row. A delivery whose earlier attempt failed
// is processed again; a succeeded or ignored one is acked without work.
func (s *GatewayService) HandleWebhook(ctx context.Context, body map[string]any) {
	n, err := parseNotification(body)
	if err != nil {
		s.log.Warn("webhook ignored", zap.Error(err), zap.Any("body", body))
		return
	}
	if !s.firstDelivery(ctx, n) {
		s.log.Info("webhook duplicate (cache)", zap.String("key", n.key))
		return
	}

	eventID, err := s.storeEvent(ctx, n, body)
	if err != nil {
		s.log.Error("store webhook event", zap.String("key", n.key), zap.Error(err))
		s.forget(ctx, n)
		return
	}
	claimed, err := s.claim(ctx, eventID)
	if err != nil {
		s.log.Error("claim webhook event", zap.Int64("event_id", eventID), zap.Error(err))
		s.forget(ctx, n)
		return
	}
	if !claimed {
		s.log.Info("webhook duplicate", zap.String("key", n.key))
		return
	}

	res := s.process(ctx, n)
	s.finish(context.WithoutCancel(ctx), eventID, res)
	if res.status == model.GatewayEventStatusFailed {
		s.forget(ctx, n)
	}
}

// storeEvent inserts the event row, or returns the id of the row a previous
// delivery of the same event left behind.
func (s *GatewayService) storeEvent(ctx context.Context, n notification, body map[string]any) (int64, error) {
	payload, err := sonic.Marshal(body)
	if err != nil {
		payload = []byte("{}")
	}
	ev := model.GatewayEventModel{
		GatewayEventProvider: n.provider,
		GatewayEventKey:      n.key,
		GatewayEventType:     &n.topic,
		GatewayEventPayload:  datatypes.JSON(payload),
		GatewayEventStatus:   model.GatewayEventStatusReceived,
	}
	if n.orderID != "" {
		ev.GatewayEventExternalRef = &n.orderID
	}
	err = s.gw.DB(ctx).Create(&ev).Error
	if err == nil {
		return ev.GatewayEventID, nil
	}
	if !errors.Is(err, gorm.ErrDuplicatedKey) {
		return 0, err
	}

	var id int64
	found, err := s.gw.FetchOne(ctx, &id, `
SELECT gateway_event_id FROM gateway_events
WHERE gateway_event_provider = ? AND gateway_event_key = ?`, n.provider, n.key)
	if err != nil {
		return 0, err
	}
	if !found {
		return 0, errors.Errorf("gateway event %s/%s vanished", n.provider, n.key)
	}
	return id, nil
}

// claim moves a received or failed event to processing. A processing row
// older than processingLease is taken over. false means another delivery
// owns the event or it already reached a final status.
func (s *GatewayService) claim(ctx context.Context, eventID int64) (bool, error) {
	now := time.Now()
	res, err := s.gw.Exec(ctx, `
UPDATE gateway_events
SET gateway_event_status = ?, gateway_event_updated_at = ?
WHERE gateway_event_id = ?
  AND (gateway_event_status IN (?, ?)
       OR (gateway_event_status = ? AND gateway_event_updated_at < ?))`,
		model.GatewayEventStatusProcessing, now, eventID,
		model.GatewayEventStatusReceived, model.GatewayEventStatusFailed,
		model.GatewayEventStatusProcessing, now.Add(-processingLease),
	)
	if err != nil {
		return false, err
	}
	return res.RowsAffected == 1, nil
}

const processingLease = 5 * time.Minute

func dedupeKey(n notification) string {
	return fmt.Sprintf("gw:event:%s:%s", n.provider, n.key)
}

// firstDelivery is the optional redis fast path in front of the event table.
func (s *GatewayService) firstDelivery(ctx context.Context, n notification) bool {
	if s.rdb == nil {
		return true
	}
	ok, err := s.rdb.SetNX(ctx, dedupeKey(n), 1, s.cfg.DedupTTL).Result()
	if err != nil {
		s.log.Warn("redis dedupe unavailable", zap.Error(err))
		return true
	}
	return ok
}

// forget drops the fast-path marker so a redelivery reaches the event table.
func (s *GatewayService) forget(ctx context.Context, n notification) {
	if s.rdb == nil {
		return
	}
	if err := s.rdb.Del(context.WithoutCancel(ctx), dedupeKey(n)).Err(); err != nil {
		s.log.Warn("redis dedupe release", zap.String("key", n.key), zap.Error(err))
	}
}

type result struct {
	status    model.GatewayEventStatus
	invoiceID *int64
	err       error
	paid      bool
}

func ignored(invoiceID *int64, reason string) result {
	return result{status: model.GatewayEventStatusIgnored, invoiceID: invoiceID, err: errors.New(reason)}
}

func failed(invoiceID *int64, err error) result {
	return result{status: model.GatewayEventStatusFailed, invoiceID: invoiceID, err: err}
}

func (s *GatewayService) process(ctx context.Context, n notification) result {
	if n.topic != topicPayment {
		return ignored(nil, "topic "+n.topic+" not handled")
	}

	token, err := s.resolveToken(ctx, "")
	if err != nil {
		return failed(nil, err)
	}
	if n.signature != "" && !ValidSignature(n.orderID, n.statusCde, n.gross, token, n.signature) {
		return failed(nil, errors.New("invalid signature"))
	}

	st, err := s.provider.FetchStatus(ctx, token, n.ref)
	if err != nil {
		return failed(nil, errors.Wrap(err, "fetch status"))
	}
	orderID := st.OrderID
	if orderID == "" {
		orderID = n.orderID
	}
	id, err := ParseOrderID(orderID)
	if err != nil {
		return failed(nil, err)
	}

	switch st.Outcome {
	case OutcomeApproved:
		return s.approve(ctx, id, st)
	case OutcomeRejected:
		return s.reject(ctx, id, st)
	default:
		return ignored(&id, "transaction status "+st.RawStatus)
	}
}

// approve records the gateway payment and settles the invoice.
func (s *GatewayService) approve(ctx context.Context, id int64, st *TxStatus) result {
	res := result{status: model.GatewayEventStatusSuccess, invoiceID: &id}
	err := s.gw.Transaction(ctx, func(tx *databases.Gateway) error {
		inv, err := invoiceService.LockInvoice(ctx, tx, id)
		if err != nil {
			return err
		}
		if inv.InvoiceStatus != invoiceModel.InvoiceStatusPending {
			res = ignored(&id, "invoice already "+string(inv.InvoiceStatus))
			return nil
		}

		amount := st.GrossAmount
		if !amount.IsPositive() {
			paid, err := invoiceService.PaidSum(ctx, tx, id)
			if err != nil {
				return err
			}
			amount = inv.InvoiceTotal.Sub(paid)
		}
		if amount.IsPositive() {
			ref := st.TransactionID
			req := paymentDto.RecordPaymentRequest{
				InvoiceID: id,
				Amount:    &amount,
				Method:    string(paymentModel.PaymentMethodGateway),
				Reference: &ref,
			}
			if _, res.paid, err = s.payments.RecordPaymentTx(ctx, tx, req); err != nil {
				return err
			}
		}
		if !res.paid {
			if res.paid, err = s.invoices.SetStatusTx(ctx, tx, id, invoiceModel.InvoiceStatusPaid); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return failed(&id, err)
	}
	return res
}

func (s *GatewayService) reject(ctx context.Context, id int64, st *TxStatus) result {
	err := s.gw.Transaction(ctx, func(tx *databases.Gateway) error {
		_, err := s.invoices.SetStatusTx(ctx, tx, id, invoiceModel.InvoiceStatusCancelled)
		return err
	})
	switch {
	case apperr.Is(err, apperr.KindConflict):
		return ignored(&id, "invoice no longer pending")
	case err != nil:
		return failed(&id, err)
	}
	s.log.Info("invoice cancelled by gateway", zap.Int64("invoice_id", id), zap.String("status", st.RawStatus))
	return result{status: model.GatewayEventStatusSuccess, invoiceID: &id}
}

func (s *GatewayService) finish(ctx context.Context, eventID int64, res result) {
	var msg *string
	if res.err != nil {
		m := res.err.Error()
		msg = &m
	}

	fields := []zap.Field{zap.Int64("event_id", eventID), zap.String("status", string(res.status))}
	if res.invoiceID != nil {
		fields = append(fields, zap.Int64("invoice_id", *res.invoiceID))
	}
	if res.status == model.GatewayEventStatusFailed {
		s.log.Error("webhook processing failed", append(fields, zap.Error(res.err))...)
	} else {
		s.log.Info("webhook processed", fields...)
	}

	now := time.Now()
	if _, err := s.gw.Exec(ctx, `
UPDATE gateway_events
SET gateway_event_status = ?, gateway_event_error = ?, gateway_event_invoice_id = ?,
    gateway_event_processed_at = ?, gateway_event_updated_at = ?
WHERE gateway_event_id = ?`,
		res.status, msg, res.invoiceID, now, now, eventID,
	); err != nil {
		s.log.Error("update webhook event", zap.Int64("event_id", eventID), zap.Error(err))
	}

	if res.paid && res.invoiceID != nil {
		s.invoices.NotifyPaid(ctx, *res.invoiceID)
	}
}
