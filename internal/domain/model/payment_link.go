package model

// PaymentLinkRequest carries everything needed to create a hosted payment
// page. Currency and network are fixed by the API (USDC on Base) and are
// filled in by the client, not the caller.
type PaymentLinkRequest struct {
	Amount      string
	Description string
	Metadata    map[string]string
	SuccessURL  string
	FailURL     string
}

// PaymentLink is the provider's view of a payment link. Unknown fields in
// the API response are ignored for forward compatibility.
type PaymentLink struct {
	ID         string            `json:"id"`
	URL        string            `json:"url"`
	Status     string            `json:"status"`
	Amount     string            `json:"amount"`
	Currency   string            `json:"currency"`
	Network    string            `json:"network"`
	Metadata   map[string]string `json:"metadata"`
	CreatedAt  string            `json:"createdAt"`
	ExpiresAt  string            `json:"expiresAt"`
	SettledAt  string            `json:"settledAt"`
	Settlement *Settlement       `json:"settlement"`
}

// Invoice is the slice of a WHMCS invoice the checkout flow needs: owner,
// total, the first line item's description and the client contact fields
// forwarded as payment link metadata.
type Invoice struct {
	ID          string
	ClientID    string
	Total       string
	Description string
	FirstName   string
	LastName    string
	Email       string
}
