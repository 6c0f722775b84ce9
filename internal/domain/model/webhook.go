package model

// Webhook event types published by the Payment Link API.
const (
	EventPaymentSuccess = "payment_link.payment.success"
	EventPaymentFailed  = "payment_link.payment.failed"
	EventPaymentExpired = "payment_link.payment.expired"
)

// Metadata keys stamped onto every payment link created by this gateway.
// The source tag distinguishes our notifications from unrelated traffic on
// a shared webhook endpoint.
const (
	MetadataSourceKey   = "source"
	MetadataSourceValue = "whmcs"
	MetadataInvoiceKey  = "invoiceid"
	MetadataClientKey   = "clientid"
)

// Settlement is the provider's post-fee accounting of a completed payment.
type Settlement struct {
	NetAmount string `json:"netAmount"`
	FeeAmount string `json:"feeAmount"`
}

// WebhookNotification is the decoded webhook payload. Amount is the
// pre-fee total and acts as a fallback when settlement is absent.
type WebhookNotification struct {
	EventType  string            `json:"eventType"`
	ID         string            `json:"id"`
	Amount     string            `json:"amount"`
	Metadata   map[string]string `json:"metadata"`
	Settlement *Settlement       `json:"settlement"`
}

// FromThisGateway reports whether the notification carries our source tag.
func (n *WebhookNotification) FromThisGateway() bool {
	return n.Metadata[MetadataSourceKey] == MetadataSourceValue
}

// InvoiceID returns the WHMCS invoice id from metadata, "" when absent.
func (n *WebhookNotification) InvoiceID() string {
	return n.Metadata[MetadataInvoiceKey]
}

// ClientID returns the WHMCS client id from metadata, "" when absent.
func (n *WebhookNotification) ClientID() string {
	return n.Metadata[MetadataClientKey]
}
