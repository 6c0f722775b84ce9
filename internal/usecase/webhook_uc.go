package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/coinbase/coinbase-business-whmcs/internal/domain"
	"github.com/coinbase/coinbase-business-whmcs/internal/domain/model"
	"github.com/coinbase/coinbase-business-whmcs/internal/domain/ports/repository"
)

// Compile-time check
var _ WebhookUseCase = (*webhookUC)(nil)

type WebhookUseCase interface {
	// Dispatch interprets a verified notification and records payment
	// state with the billing collaborator. A nil return acknowledges the
	// delivery; any error maps to a retryable failure for the provider.
	Dispatch(ctx context.Context, n *model.WebhookNotification) error
}

type webhookUC struct {
	billing repository.BillingRepository
	log     *zerolog.Logger
}

func NewWebhookUseCase(billing repository.BillingRepository, logger *zerolog.Logger) *webhookUC {
	return &webhookUC{billing: billing, log: logger}
}

func (u *webhookUC) Dispatch(ctx context.Context, n *model.WebhookNotification) error {
	// The endpoint may receive traffic from other integrations sharing the
	// same webhook subscription.
	if !n.FromThisGateway() {
		return domain.ErrSourceMismatch
	}

	invoiceID, clientID := n.InvoiceID(), n.ClientID()
	if invoiceID == "" || clientID == "" {
		return domain.ErrMissingMetadata
	}

	ok, err := u.billing.OrderExists(ctx, invoiceID, clientID)
	if err != nil {
		return fmt.Errorf("order lookup: %w", err)
	}
	if !ok {
		return fmt.Errorf("%w: invoice %s client %s", domain.ErrOrderNotFound, invoiceID, clientID)
	}

	// Idempotency guard against duplicate delivery.
	recorded, err := u.billing.TransactionRecorded(ctx, n.ID)
	if err != nil {
		return fmt.Errorf("transaction lookup: %w", err)
	}
	if recorded {
		u.log.Info().Str("invoice_id", invoiceID).Str("payment_link_id", n.ID).
			Msg("duplicate delivery, payment already recorded")
		return nil
	}

	switch n.EventType {
	case model.EventPaymentSuccess:
		return u.recordSuccess(ctx, n, invoiceID)
	case model.EventPaymentFailed:
		u.log.Info().Str("invoice_id", invoiceID).Str("payment_link_id", n.ID).
			Msg("payment failed")
	case model.EventPaymentExpired:
		u.log.Info().Str("invoice_id", invoiceID).Str("payment_link_id", n.ID).
			Msg("payment link expired")
	default:
		u.log.Warn().Str("invoice_id", invoiceID).Str("event_type", n.EventType).
			Msg("unknown event type")
	}
	return nil
}

func (u *webhookUC) recordSuccess(ctx context.Context, n *model.WebhookNotification, invoiceID string) error {
	if n.ID == "" {
		return fmt.Errorf("%w: no payment link id in payload", domain.ErrMissingMetadata)
	}

	// Net-of-fees settlement amount; the top-level total is the documented
	// fallback when settlement is absent.
	amount := n.Amount
	fee := "0"
	if n.Settlement != nil {
		if n.Settlement.NetAmount != "" {
			amount = n.Settlement.NetAmount
		}
		if n.Settlement.FeeAmount != "" {
			fee = n.Settlement.FeeAmount
		}
	}
	if amount == "" {
		amount = "0"
	}

	if err := u.billing.RecordPayment(ctx, invoiceID, n.ID, amount, fee); err != nil {
		if errors.Is(err, domain.ErrDuplicateTransaction) {
			// Lost a race with a concurrent delivery; the datastore's
			// uniqueness guarantee already holds.
			u.log.Info().Str("invoice_id", invoiceID).Str("payment_link_id", n.ID).
				Msg("payment already recorded by concurrent delivery")
			return nil
		}
		return fmt.Errorf("record payment: %w", err)
	}

	u.log.Info().
		Str("invoice_id", invoiceID).
		Str("payment_link_id", n.ID).
		Str("amount", amount).
		Str("fee", fee).
		Msg("payment recorded")
	return nil
}
