package dto

type PreferenceRequest struct {
	InvoiceID   int64   `json:"invoiceId" validate:"required,gt=0"`
	AccessToken *string `json:"accessToken"`
}

type PreferenceResponse struct {
	OK          bool   `json:"ok"`
	RedirectURL string `json:"redirectUrl"`
	Token       string `json:"token,omitempty"`
	OrderID     string `json:"orderId"`
	Currency    string `json:"currency"`
}

type PreferenceFailure struct {
	OK      bool   `json:"ok"`
	Message string `json:"message"`
	Error   any    `json:"error,omitempty"`
}

type WebhookAck struct {
	OK bool `json:"ok"`
}
