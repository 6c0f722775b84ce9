package web

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/coinbase/coinbase-business-whmcs/internal/domain"
	"github.com/coinbase/coinbase-business-whmcs/internal/domain/model"
	"github.com/coinbase/coinbase-business-whmcs/internal/infra/coinbase"
	"github.com/coinbase/coinbase-business-whmcs/internal/infra/logging"
	"github.com/coinbase/coinbase-business-whmcs/internal/infra/metrics"
	"github.com/coinbase/coinbase-business-whmcs/internal/usecase"
)

const maxWebhookBody = 1 << 20

// Server exposes the webhook receiver and the storefront checkout
// redirect.
type Server struct {
	verifier   *coinbase.SignatureVerifier
	webhookUC  usecase.WebhookUseCase
	checkoutUC usecase.CheckoutUseCase
	enabled    bool
	log        *zerolog.Logger
}

func NewServer(
	verifier *coinbase.SignatureVerifier,
	webhookUC usecase.WebhookUseCase,
	checkoutUC usecase.CheckoutUseCase,
	enabled bool,
	logger *zerolog.Logger,
) *Server {
	return &Server{
		verifier:   verifier,
		webhookUC:  webhookUC,
		checkoutUC: checkoutUC,
		enabled:    enabled,
		log:        logger,
	}
}

func (s *Server) Router() *chi.Mux {
	r := chi.NewRouter()
	r.Use(TraceID(), RequestLog(s.log), Recover(s.log))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())
	r.Post("/webhook/coinbase", s.handleWebhook)
	r.Post("/checkout/{invoiceID}", s.handleCheckout)
	return r
}

// handleWebhook verifies and dispatches a provider notification. Any
// rejection answers 500 so the provider's delivery system retries and
// flags it; acceptance answers 200 {"status":"ok"} even for non-success
// events.
func (s *Server) handleWebhook(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	l := logging.With(r.Context(), s.log)

	if !s.enabled {
		s.reject(w, l, start, "module_disabled", errors.New("gateway module not activated"))
		return
	}

	// The signature covers the exact bytes as received.
	body, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBody))
	if err != nil {
		s.reject(w, l, start, "bad_payload", err)
		return
	}

	if err := s.verifier.Verify(body, r.Header.Get(coinbase.SignatureHeader)); err != nil {
		s.reject(w, l, start, verifyReason(err), err)
		return
	}

	var n model.WebhookNotification
	if err := json.Unmarshal(body, &n); err != nil {
		s.reject(w, l, start, "bad_json", err)
		return
	}

	ctx := logging.WithLinkID(logging.WithInvoiceID(r.Context(), n.InvoiceID()), n.ID)
	if err := s.webhookUC.Dispatch(ctx, &n); err != nil {
		s.reject(w, logging.With(ctx, s.log), start, dispatchReason(err), err)
		return
	}

	metrics.IncWebhook("ok", "none")
	metrics.ObserveWebhookDuration("ok", time.Since(start).Seconds())
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleCheckout creates a payment link for the invoice and redirects the
// payer to the hosted page. The storefront posts the authenticated
// client's id along with the invoice.
func (s *Server) handleCheckout(w http.ResponseWriter, r *http.Request) {
	invoiceID := chi.URLParam(r, "invoiceID")
	clientID := r.PostFormValue("client_id")
	if invoiceID == "" || clientID == "" {
		http.Error(w, "missing invoice or client id", http.StatusBadRequest)
		return
	}

	ctx := logging.WithInvoiceID(r.Context(), invoiceID)
	l := logging.With(ctx, s.log)

	url, err := s.checkoutUC.CreateLink(ctx, invoiceID, clientID)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrOrderNotFound):
			http.Error(w, "invoice not found", http.StatusNotFound)
		case errors.Is(err, domain.ErrOrderOwnership):
			http.Error(w, "unauthorized access to invoice", http.StatusForbidden)
		default:
			l.Error().Err(err).Msg("checkout failed")
			http.Error(w, "Unable to process payment at this time. Please try again later or contact support.", http.StatusBadGateway)
		}
		return
	}

	http.Redirect(w, r, url, http.StatusSeeOther)
}

func (s *Server) reject(w http.ResponseWriter, l *zerolog.Logger, start time.Time, reason string, err error) {
	l.Warn().Err(err).Str("reason", reason).Msg("webhook rejected")
	metrics.IncWebhook("rejected", reason)
	metrics.ObserveWebhookDuration("rejected", time.Since(start).Seconds())
	writeJSON(w, http.StatusInternalServerError, map[string]string{"status": "error"})
}

func verifyReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrMalformedSignature):
		return "malformed_header"
	case errors.Is(err, domain.ErrStaleSignature):
		return "stale"
	case errors.Is(err, domain.ErrSignatureMismatch):
		return "bad_signature"
	default:
		return "unknown"
	}
}

func dispatchReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrSourceMismatch):
		return "source_mismatch"
	case errors.Is(err, domain.ErrMissingMetadata):
		return "missing_metadata"
	case errors.Is(err, domain.ErrOrderNotFound), errors.Is(err, domain.ErrOrderOwnership):
		return "order_not_found"
	default:
		return "dispatch_error"
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
