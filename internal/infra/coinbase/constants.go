package coinbase

import "time"

// Payment Link API endpoint. The host is also baked into the signed uri
// claim of every token, independent of the request URL.
const (
	apiBase         = "https://business.coinbase.com"
	apiHost         = "business.coinbase.com"
	paymentLinkPath = "/api/v1/payment-links"
)

// Token authentication.
const (
	tokenIssuer = "cdp"
	tokenTTL    = 120 * time.Second
)

// The Payment Link API only supports USDC on the Base network.
const (
	paymentCurrency = "USDC"
	paymentNetwork  = "base"
)

// Webhook signature verification.
const (
	// SignatureHeader is the lowercase header carrying t=<ts>;v1=<hmac>.
	SignatureHeader    = "x-hook0-signature"
	signatureTolerance = 300 * time.Second
)

const (
	// API limit on the description field.
	maxDescriptionLen = 500

	requestTimeout = 30 * time.Second
)
