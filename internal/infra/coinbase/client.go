package coinbase

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/coinbase/coinbase-business-whmcs/internal/domain"
	"github.com/coinbase/coinbase-business-whmcs/internal/domain/model"
	"github.com/coinbase/coinbase-business-whmcs/internal/domain/ports/adapter"
	"github.com/coinbase/coinbase-business-whmcs/internal/infra/metrics"
)

var _ adapter.PaymentLinkAPI = (*PaymentLinkClient)(nil)

// PaymentLinkClient issues signed HTTPS calls against the Payment Link
// API. Each call gets a fresh token from the signer; a failed attempt is
// surfaced immediately, retries are the caller's concern.
type PaymentLinkClient struct {
	signer *TokenSigner
	base   string
	client *http.Client
	log    *zerolog.Logger
}

// NewPaymentLinkClient builds a client against baseURL, which defaults to
// the production endpoint when empty.
func NewPaymentLinkClient(signer *TokenSigner, baseURL string, logger *zerolog.Logger) *PaymentLinkClient {
	if baseURL == "" {
		baseURL = apiBase
	}
	return &PaymentLinkClient{
		signer: signer,
		base:   strings.TrimSuffix(baseURL, "/"),
		client: &http.Client{Timeout: requestTimeout},
		log:    logger,
	}
}

type createLinkBody struct {
	Amount             string            `json:"amount"`
	Currency           string            `json:"currency"`
	Network            string            `json:"network"`
	Metadata           map[string]string `json:"metadata"`
	SuccessRedirectURL string            `json:"successRedirectUrl"`
	FailRedirectURL    string            `json:"failRedirectUrl"`
	Description        string            `json:"description,omitempty"`
}

// CreatePaymentLink creates a hosted payment page. Currency and network
// are fixed by the API; the description is capped at the API's 500-char
// limit.
func (c *PaymentLinkClient) CreatePaymentLink(ctx context.Context, req *model.PaymentLinkRequest) (*model.PaymentLink, error) {
	body := createLinkBody{
		Amount:             req.Amount,
		Currency:           paymentCurrency,
		Network:            paymentNetwork,
		Metadata:           req.Metadata,
		SuccessRedirectURL: req.SuccessURL,
		FailRedirectURL:    req.FailURL,
	}
	if body.Metadata == nil {
		body.Metadata = map[string]string{}
	}
	if req.Description != "" {
		body.Description = truncate(req.Description, maxDescriptionLen)
	}

	link, err := c.do(ctx, http.MethodPost, paymentLinkPath, "create", body)
	if err != nil {
		metrics.IncPaymentLink("error")
		return nil, err
	}
	metrics.IncPaymentLink("created")
	c.log.Info().Str("payment_link_id", link.ID).Str("amount", req.Amount).Msg("payment link created")
	return link, nil
}

// GetPaymentLink fetches the current state of a payment link.
func (c *PaymentLinkClient) GetPaymentLink(ctx context.Context, id string) (*model.PaymentLink, error) {
	link, err := c.do(ctx, http.MethodGet, paymentLinkPath+"/"+id, "get", nil)
	if err != nil {
		metrics.IncPaymentLink("error")
		return nil, err
	}
	metrics.IncPaymentLink("fetched")
	return link, nil
}

func (c *PaymentLinkClient) do(ctx context.Context, method, path, operation string, body any) (*model.PaymentLink, error) {
	token, err := c.signer.Sign(method, path)
	if err != nil {
		return nil, err
	}

	var rdr io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal request body: %w", err)
		}
		rdr = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base+path, rdr)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.client.Do(req)
	metrics.ObservePaymentLinkDuration(operation, time.Since(start).Seconds())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrPaymentLinkCreation, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %v", domain.ErrPaymentLinkCreation, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: status %d: %s", domain.ErrPaymentLinkCreation, resp.StatusCode, strings.TrimSpace(string(raw)))
	}

	var link model.PaymentLink
	if err := json.Unmarshal(raw, &link); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidResponse, err)
	}
	return &link, nil
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}
