package lnbits

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	fundingdomain "github.com/ninjapaylabs/ninjapay/internal/funding/domain"
	"github.com/ninjapaylabs/ninjapay/internal/payment/domain"
)

// Factory creates LNbits adapters.
type Factory struct{}

func NewFactory() *Factory {
	return &Factory{}
}

func (f *Factory) Provider() fundingdomain.ProviderType {
	return fundingdomain.ProviderLNbits
}

func (f *Factory) NewAdapter(cfg domain.AdapterConfig) (domain.GatewayAdapter, error) {
	baseURL := strings.TrimSpace(cfg.BaseURL)
	if baseURL == "" {
		baseURL = strings.TrimSpace(cfg.Credentials.InstanceURL)
	}
	if baseURL == "" || cfg.Credentials.InvoiceKey == "" || cfg.Credentials.AdminKey == "" {
		return nil, domain.ErrInvalidConfig
	}

	return &Adapter{
		baseURL:    strings.TrimRight(baseURL, "/"),
		invoiceKey: cfg.Credentials.InvoiceKey,
		adminKey:   cfg.Credentials.AdminKey,
		client:     &http.Client{Timeout: 10 * time.Second},
	}, nil
}

// Adapter wraps the LNbits wallet REST API. LNbits requires the admin key
// for payment writes and transaction reads but the invoice key for the
// wallet balance read; that asymmetry is the gateway's, not ours.
type Adapter struct {
	baseURL    string
	invoiceKey string
	adminKey   string
	client     *http.Client
}

func (a *Adapter) CreatePayLink(ctx context.Context, amount float64, memo string) (*domain.PayLink, error) {
	body, err := json.Marshal(map[string]any{
		"out":    false,
		"amount": amount,
		"memo":   memo,
	})
	if err != nil {
		return nil, err
	}

	raw, err := a.call(ctx, http.MethodPost, "/api/v1/payments", a.adminKey, body, "createPayLink")
	if err != nil {
		return nil, err
	}

	var resp struct {
		PaymentRequest string `json:"payment_request"`
		PaymentHash    string `json:"payment_hash"`
	}
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("lnbits: decode createPayLink: %w", err)
	}

	return &domain.PayLink{
		ExternalReference: resp.PaymentRequest,
		ChargeID:          resp.PaymentHash,
		Raw:               raw,
	}, nil
}

func (a *Adapter) GetBalance(ctx context.Context) (*domain.Balance, error) {
	raw, err := a.call(ctx, http.MethodGet, "/api/v1/wallet", a.invoiceKey, nil, "getBalance")
	if err != nil {
		return nil, err
	}

	var resp struct {
		Balance float64 `json:"balance"`
	}
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("lnbits: decode getBalance: %w", err)
	}
	return &domain.Balance{Balance: resp.Balance}, nil
}

func (a *Adapter) PayInvoice(ctx context.Context, invoice string) (*domain.PaymentResult, error) {
	if strings.TrimSpace(invoice) == "" {
		return nil, fmt.Errorf("%w: payment request is required", domain.ErrValidation)
	}

	body, err := json.Marshal(map[string]any{
		"out":    true,
		"bolt11": invoice,
	})
	if err != nil {
		return nil, err
	}

	raw, err := a.call(ctx, http.MethodPost, "/api/v1/payments", a.adminKey, body, "payInvoice")
	if err != nil {
		return nil, err
	}

	var resp struct {
		PaymentHash string `json:"payment_hash"`
		Status      string `json:"status"`
	}
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("lnbits: decode payInvoice: %w", err)
	}
	return &domain.PaymentResult{ID: resp.PaymentHash, Status: resp.Status}, nil
}

func (a *Adapter) GetTransactions(ctx context.Context) ([]domain.Transaction, error) {
	raw, err := a.call(ctx, http.MethodGet, "/api/v1/payments", a.adminKey, nil, "getTransactions")
	if err != nil {
		return nil, err
	}

	var payments []struct {
		PaymentHash string  `json:"payment_hash"`
		Status      string  `json:"status"`
		Amount      float64 `json:"amount"`
		Timestamp   string  `json:"timestamp"`
	}
	if err := json.Unmarshal(raw, &payments); err != nil {
		return nil, fmt.Errorf("lnbits: decode getTransactions: %w", err)
	}

	// Upstream ordering is preserved as-is.
	transactions := make([]domain.Transaction, len(payments))
	for i, p := range payments {
		transactions[i] = domain.Transaction{
			ID:        p.PaymentHash,
			Status:    p.Status,
			Amount:    p.Amount,
			Timestamp: p.Timestamp,
		}
	}
	return transactions, nil
}

// CheckStatus fetches the full payment object and reduces it to a status
// string so both gateways surface the same shape.
func (a *Adapter) CheckStatus(ctx context.Context, chargeID string) (string, error) {
	raw, err := a.call(ctx, http.MethodGet, "/api/v1/payments/"+chargeID, a.adminKey, nil, "checkStatus")
	if err != nil {
		return "", err
	}

	var resp struct {
		Paid   bool   `json:"paid"`
		Status string `json:"status"`
	}
	if err := json.Unmarshal(raw, &resp); err != nil {
		return "", fmt.Errorf("lnbits: decode checkStatus: %w", err)
	}
	if resp.Status != "" {
		return resp.Status, nil
	}
	if resp.Paid {
		return "paid", nil
	}
	return "pending", nil
}

func (a *Adapter) call(ctx context.Context, method, path, apiKey string, body []byte, operation string) (json.RawMessage, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, a.baseURL+path, reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("X-Api-Key", apiKey)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &domain.UpstreamError{
			Provider:   fundingdomain.ProviderLNbits,
			Operation:  operation,
			StatusCode: resp.StatusCode,
			Body:       string(payload),
		}
	}
	return payload, nil
}
