package model

type PaymentMethod string

// Method is free-form; these are the values the portal itself writes.
const (
	PaymentMethodGateway      PaymentMethod = "gateway"
	PaymentMethodCash         PaymentMethod = "cash"
	PaymentMethodBankTransfer PaymentMethod = "bank_transfer"
	PaymentMethodOther        PaymentMethod = "other"
)
