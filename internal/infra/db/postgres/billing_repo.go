package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"github.com/coinbase/coinbase-business-whmcs/internal/domain"
	"github.com/coinbase/coinbase-business-whmcs/internal/domain/model"
	"github.com/coinbase/coinbase-business-whmcs/internal/domain/ports/repository"
)

var _ repository.BillingRepository = (*billingRepo)(nil)

// billingRepo implements the billing collaborator over a WHMCS-style
// schema: tblinvoices, tblinvoiceitems, tblclients and tblaccounts.
// Idempotency rests on the unique index over (gateway, transid) in
// tblaccounts.
type billingRepo struct {
	pool    *pgxpool.Pool
	gateway string
}

func NewBillingRepo(pool *pgxpool.Pool) *billingRepo {
	return &billingRepo{pool: pool, gateway: "coinbase"}
}

func (r *billingRepo) OrderExists(ctx context.Context, invoiceID, clientID string) (bool, error) {
	const q = `SELECT EXISTS (SELECT 1 FROM tblinvoices WHERE id = $1 AND userid = $2);`
	var exists bool
	if err := r.pool.QueryRow(ctx, q, invoiceID, clientID).Scan(&exists); err != nil {
		return false, fmt.Errorf("%w: %v", domain.ErrOperationFailed, err)
	}
	return exists, nil
}

func (r *billingRepo) TransactionRecorded(ctx context.Context, transactionID string) (bool, error) {
	const q = `SELECT EXISTS (SELECT 1 FROM tblaccounts WHERE gateway = $1 AND transid = $2);`
	var exists bool
	if err := r.pool.QueryRow(ctx, q, r.gateway, transactionID).Scan(&exists); err != nil {
		return false, fmt.Errorf("%w: %v", domain.ErrOperationFailed, err)
	}
	return exists, nil
}

func (r *billingRepo) RecordPayment(ctx context.Context, invoiceID, transactionID, amount, fee string) error {
	const insert = `
INSERT INTO tblaccounts (userid, gateway, date, description, amountin, fees, transid, invoiceid)
SELECT userid, $2, NOW(), 'Payment link payment', $3::numeric, $4::numeric, $5, id
FROM tblinvoices WHERE id = $1;`
	const markPaid = `
UPDATE tblinvoices
SET status = 'Paid', datepaid = NOW()
WHERE id = $1
  AND (SELECT COALESCE(SUM(amountin), 0) FROM tblaccounts WHERE invoiceid = $1) >= total;`

	err := r.pool.BeginFunc(ctx, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, insert, invoiceID, r.gateway, amount, fee, transactionID)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return domain.ErrOrderNotFound
		}
		_, err = tx.Exec(ctx, markPaid, invoiceID)
		return err
	})
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return domain.ErrDuplicateTransaction
		}
		if errors.Is(err, domain.ErrOrderNotFound) {
			return err
		}
		return fmt.Errorf("%w: %v", domain.ErrOperationFailed, err)
	}
	return nil
}

func (r *billingRepo) InvoiceForCheckout(ctx context.Context, invoiceID string) (*model.Invoice, error) {
	const q = `
SELECT i.id::text, i.userid::text, i.total::text,
       COALESCE(item.description, ''),
       COALESCE(c.firstname, ''), COALESCE(c.lastname, ''), COALESCE(c.email, '')
FROM tblinvoices i
LEFT JOIN LATERAL (
  SELECT description FROM tblinvoiceitems WHERE invoiceid = i.id ORDER BY id LIMIT 1
) item ON TRUE
LEFT JOIN tblclients c ON c.id = i.userid
WHERE i.id = $1;`

	inv := &model.Invoice{}
	err := r.pool.QueryRow(ctx, q, invoiceID).Scan(
		&inv.ID, &inv.ClientID, &inv.Total, &inv.Description,
		&inv.FirstName, &inv.LastName, &inv.Email,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrOrderNotFound
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrOperationFailed, err)
	}
	return inv, nil
}
