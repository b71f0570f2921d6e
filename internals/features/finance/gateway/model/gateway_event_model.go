package model

import (
	"time"

	"gorm.io/datatypes"
)

/*
gateway_events = log of every webhook notification received from the provider.
(provider, event key) is unique: a second delivery of a succeeded or ignored
event is acked without reprocessing, a failed one is processed again.
processing marks the delivery currently working on the event.
*/

type GatewayProvider string

const (
	GatewayProviderMidtrans GatewayProvider = "midtrans"
	GatewayProviderGeneric  GatewayProvider = "generic"
)

type GatewayEventStatus string

const (
	GatewayEventStatusReceived   GatewayEventStatus = "received"
	GatewayEventStatusProcessing GatewayEventStatus = "processing"
	GatewayEventStatusSuccess    GatewayEventStatus = "success"
	GatewayEventStatusIgnored    GatewayEventStatus = "ignored"
	GatewayEventStatusFailed     GatewayEventStatus = "failed"
)

type GatewayEventModel struct {
	GatewayEventID int64 `gorm:"column:gateway_event_id;primaryKey;autoIncrement" json:"eventId"`

	GatewayEventProvider GatewayProvider `gorm:"column:gateway_event_provider;type:varchar(20);not null;uniqueIndex:uq_gateway_events_key,priority:1" json:"provider"`
	GatewayEventKey      string          `gorm:"column:gateway_event_key;type:varchar(160);not null;uniqueIndex:uq_gateway_events_key,priority:2" json:"eventKey"`
	GatewayEventType     *string         `gorm:"column:gateway_event_type;type:varchar(40)" json:"type,omitempty"`

	// order id / external reference resolved from the payload
	GatewayEventExternalRef *string `gorm:"column:gateway_event_external_ref;type:varchar(160)" json:"externalRef,omitempty"`
	GatewayEventInvoiceID   *int64  `gorm:"column:gateway_event_invoice_id;index:ix_gateway_events_invoice" json:"invoiceId,omitempty"`

	GatewayEventPayload datatypes.JSON `gorm:"column:gateway_event_payload" json:"payload"`

	GatewayEventStatus      GatewayEventStatus `gorm:"column:gateway_event_status;type:varchar(20);not null;default:'received'" json:"status"`
	GatewayEventError       *string            `gorm:"column:gateway_event_error;type:text" json:"error,omitempty"`
	GatewayEventProcessedAt *time.Time         `gorm:"column:gateway_event_processed_at" json:"processedAt,omitempty"`

	CreatedAt time.Time `gorm:"column:gateway_event_created_at;autoCreateTime" json:"receivedAt"`
	UpdatedAt time.Time `gorm:"column:gateway_event_updated_at;autoUpdateTime" json:"updatedAt"`
}

func (GatewayEventModel) TableName() string { return "gateway_events" }
