package domain

import "errors"

var (
	// Outbound API path
	ErrInvalidKey          = errors.New("unusable EC private key")
	ErrPaymentLinkCreation = errors.New("payment link request failed")
	ErrInvalidResponse     = errors.New("invalid response from payment link API")

	// Webhook verification
	ErrMalformedSignature = errors.New("malformed signature header")
	ErrStaleSignature     = errors.New("signature timestamp outside tolerance")
	ErrSignatureMismatch  = errors.New("signature mismatch")

	// Webhook dispatch
	ErrSourceMismatch  = errors.New("notification source is not whmcs")
	ErrMissingMetadata = errors.New("invoice id or client id missing from metadata")
	ErrOrderNotFound   = errors.New("order not found")
	ErrOrderOwnership  = errors.New("order does not belong to client")

	// Billing datastore
	ErrDuplicateTransaction = errors.New("transaction already recorded")
	ErrOperationFailed      = errors.New("datastore operation failed")
)
