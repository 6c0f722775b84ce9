package adapter

import (
	"context"

	"github.com/coinbase/coinbase-business-whmcs/internal/domain/model"
)

// PaymentLinkAPI is the outbound port to the hosted payment page provider.
type PaymentLinkAPI interface {
	// CreatePaymentLink creates a hosted payment page and returns it with
	// the redirect URL populated.
	CreatePaymentLink(ctx context.Context, req *model.PaymentLinkRequest) (*model.PaymentLink, error)
	// GetPaymentLink fetches the current state of an existing payment link.
	GetPaymentLink(ctx context.Context, id string) (*model.PaymentLink, error)
}
