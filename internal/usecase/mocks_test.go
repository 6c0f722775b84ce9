package usecase_test

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/coinbase/coinbase-business-whmcs/internal/domain"
	"github.com/coinbase/coinbase-business-whmcs/internal/domain/model"
)

func newTestLogger() *zerolog.Logger {
	l := zerolog.Nop()
	return &l
}

type recordedPayment struct {
	InvoiceID     string
	TransactionID string
	Amount        string
	Fee           string
}

// MockBillingRepo is a small in-memory billing collaborator used by unit
// tests. Error hooks simulate datastore failures.
type MockBillingRepo struct {
	mu           sync.Mutex
	invoices     map[string]*model.Invoice // by invoice id
	transactions map[string]bool           // recorded transaction ids
	payments     []recordedPayment

	errOrderExists error
	errRecorded    error
	errRecord      error
}

func NewMockBillingRepo() *MockBillingRepo {
	return &MockBillingRepo{
		invoices:     make(map[string]*model.Invoice),
		transactions: make(map[string]bool),
	}
}

func (m *MockBillingRepo) AddInvoice(inv *model.Invoice) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *inv
	m.invoices[inv.ID] = &cp
}

func (m *MockBillingRepo) OrderExists(ctx context.Context, invoiceID, clientID string) (bool, error) {
	if m.errOrderExists != nil {
		return false, m.errOrderExists
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	inv, ok := m.invoices[invoiceID]
	return ok && inv.ClientID == clientID, nil
}

func (m *MockBillingRepo) TransactionRecorded(ctx context.Context, transactionID string) (bool, error) {
	if m.errRecorded != nil {
		return false, m.errRecorded
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.transactions[transactionID], nil
}

func (m *MockBillingRepo) RecordPayment(ctx context.Context, invoiceID, transactionID, amount, fee string) error {
	if m.errRecord != nil {
		return m.errRecord
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.transactions[transactionID] {
		return domain.ErrDuplicateTransaction
	}
	m.transactions[transactionID] = true
	m.payments = append(m.payments, recordedPayment{
		InvoiceID:     invoiceID,
		TransactionID: transactionID,
		Amount:        amount,
		Fee:           fee,
	})
	return nil
}

func (m *MockBillingRepo) InvoiceForCheckout(ctx context.Context, invoiceID string) (*model.Invoice, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	inv, ok := m.invoices[invoiceID]
	if !ok {
		return nil, domain.ErrOrderNotFound
	}
	cp := *inv
	return &cp, nil
}

func (m *MockBillingRepo) Payments() []recordedPayment {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]recordedPayment(nil), m.payments...)
}

// MockPaymentLinkAPI captures the last create request and returns a canned
// link, or fails via CreateErr.
type MockPaymentLinkAPI struct {
	LastRequest *model.PaymentLinkRequest
	Link        *model.PaymentLink
	CreateErr   error
}

func (m *MockPaymentLinkAPI) CreatePaymentLink(ctx context.Context, req *model.PaymentLinkRequest) (*model.PaymentLink, error) {
	m.LastRequest = req
	if m.CreateErr != nil {
		return nil, m.CreateErr
	}
	if m.Link != nil {
		return m.Link, nil
	}
	return &model.PaymentLink{ID: "pl_mock", URL: "https://pay.example/pl_mock"}, nil
}

func (m *MockPaymentLinkAPI) GetPaymentLink(ctx context.Context, id string) (*model.PaymentLink, error) {
	if m.Link != nil {
		return m.Link, nil
	}
	return &model.PaymentLink{ID: id, URL: "https://pay.example/" + id}, nil
}
