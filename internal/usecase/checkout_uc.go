package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/coinbase/coinbase-business-whmcs/internal/domain"
	"github.com/coinbase/coinbase-business-whmcs/internal/domain/model"
	"github.com/coinbase/coinbase-business-whmcs/internal/domain/ports/adapter"
	"github.com/coinbase/coinbase-business-whmcs/internal/domain/ports/repository"
)

// Compile-time check
var _ CheckoutUseCase = (*checkoutUC)(nil)

type CheckoutUseCase interface {
	// CreateLink creates a hosted payment page for the invoice and returns
	// the URL to redirect the payer to.
	CreateLink(ctx context.Context, invoiceID, clientID string) (string, error)
}

// Line-item descriptions are trimmed well below the API's hard cap to
// keep the hosted page readable.
const storefrontDescriptionLimit = 200

type checkoutUC struct {
	billing   repository.BillingRepository
	links     adapter.PaymentLinkAPI
	returnURL string
	log       *zerolog.Logger
}

// NewCheckoutUseCase wires the checkout flow. returnURL is the storefront
// invoice page prefix the invoice id gets appended to, e.g.
// "https://billing.example.com/viewinvoice.php?id=".
func NewCheckoutUseCase(billing repository.BillingRepository, links adapter.PaymentLinkAPI, returnURL string, logger *zerolog.Logger) *checkoutUC {
	return &checkoutUC{billing: billing, links: links, returnURL: returnURL, log: logger}
}

func (u *checkoutUC) CreateLink(ctx context.Context, invoiceID, clientID string) (string, error) {
	inv, err := u.billing.InvoiceForCheckout(ctx, invoiceID)
	if err != nil {
		if errors.Is(err, domain.ErrOrderNotFound) {
			return "", err
		}
		return "", fmt.Errorf("load invoice: %w", err)
	}
	if inv.ClientID != clientID {
		return "", fmt.Errorf("%w: invoice %s client %s", domain.ErrOrderOwnership, invoiceID, clientID)
	}

	desc := trimDescription(inv.Description)
	if desc == "" {
		desc = "Invoice #" + invoiceID
	}

	metadata := map[string]string{
		model.MetadataSourceKey:  model.MetadataSourceValue,
		model.MetadataInvoiceKey: invoiceID,
		model.MetadataClientKey:  inv.ClientID,
	}
	if inv.FirstName != "" {
		metadata["firstName"] = inv.FirstName
	}
	if inv.LastName != "" {
		metadata["lastName"] = inv.LastName
	}
	if inv.Email != "" {
		metadata["email"] = inv.Email
	}

	returnURL := u.returnURL + invoiceID
	link, err := u.links.CreatePaymentLink(ctx, &model.PaymentLinkRequest{
		Amount:      inv.Total,
		Description: desc,
		Metadata:    metadata,
		SuccessURL:  returnURL + "&paymentsuccess=true",
		FailURL:     returnURL + "&paymentfailed=true",
	})
	if err != nil {
		return "", err
	}

	u.log.Info().
		Str("invoice_id", invoiceID).
		Str("payment_link_id", link.ID).
		Str("amount", inv.Total).
		Msg("checkout link created")
	return link.URL, nil
}

func trimDescription(s string) string {
	if len(s) > storefrontDescriptionLimit {
		return s[:storefrontDescriptionLimit-3] + "..."
	}
	return s
}
