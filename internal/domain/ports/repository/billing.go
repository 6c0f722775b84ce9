package repository

import (
	"context"

	"github.com/coinbase/coinbase-business-whmcs/internal/domain/model"
)

// BillingRepository is the billing-system collaborator. Duplicate detection
// and order ownership are checked here before any payment state mutates;
// idempotency rests on the datastore's uniqueness guarantee for
// transaction ids.
type BillingRepository interface {
	// OrderExists reports whether an invoice exists and belongs to the client.
	OrderExists(ctx context.Context, invoiceID, clientID string) (bool, error)
	// TransactionRecorded reports whether a payment with this external
	// transaction id has already been applied.
	TransactionRecorded(ctx context.Context, transactionID string) (bool, error)
	// RecordPayment applies a payment of amount net of fee against the
	// invoice, keyed by the external transaction id.
	RecordPayment(ctx context.Context, invoiceID, transactionID, amount, fee string) error
	// InvoiceForCheckout loads the invoice fields the checkout flow needs.
	InvoiceForCheckout(ctx context.Context, invoiceID string) (*model.Invoice, error)
}
