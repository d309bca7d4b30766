package opennode

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	fundingdomain "github.com/ninjapaylabs/ninjapay/internal/funding/domain"
	"github.com/ninjapaylabs/ninjapay/internal/payment/domain"
)

const defaultBaseURL = "https://api.opennode.com"

// Factory creates OpenNode adapters.
type Factory struct{}

func NewFactory() *Factory {
	return &Factory{}
}

func (f *Factory) Provider() fundingdomain.ProviderType {
	return fundingdomain.ProviderOpenNode
}

func (f *Factory) NewAdapter(cfg domain.AdapterConfig) (domain.GatewayAdapter, error) {
	if cfg.Credentials.InvoiceKey == "" || cfg.Credentials.ReadAPIKey == "" {
		return nil, domain.ErrInvalidConfig
	}

	baseURL := strings.TrimSpace(cfg.BaseURL)
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	return &Adapter{
		baseURL:    strings.TrimRight(baseURL, "/"),
		invoiceKey: cfg.Credentials.InvoiceKey,
		readAPIKey: cfg.Credentials.ReadAPIKey,
		client:     &http.Client{Timeout: 10 * time.Second},
	}, nil
}

// Adapter wraps the OpenNode charges REST API. Writes authenticate with
// the invoice key, reads with the read-only API key; every response is
// wrapped in a top-level "data" envelope.
type Adapter struct {
	baseURL    string
	invoiceKey string
	readAPIKey string
	client     *http.Client
}

func (a *Adapter) CreatePayLink(ctx context.Context, amount float64, memo string) (*domain.PayLink, error) {
	body, err := json.Marshal(map[string]any{
		"amount":      amount,
		"currency":    "USD",
		"description": memo,
	})
	if err != nil {
		return nil, err
	}

	raw, err := a.call(ctx, http.MethodPost, "/v1/charges", a.invoiceKey, body, "createPayLink")
	if err != nil {
		return nil, err
	}

	var resp struct {
		Data struct {
			ID                string `json:"id"`
			Invoice           string `json:"invoice"`
			HostedCheckoutURL string `json:"hosted_checkout_url"`
		} `json:"data"`
	}
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("opennode: decode createPayLink: %w", err)
	}

	return &domain.PayLink{
		ExternalReference: resp.Data.Invoice,
		ChargeID:          resp.Data.ID,
		HostedURL:         resp.Data.HostedCheckoutURL,
		Raw:               raw,
	}, nil
}

// GetBalance extracts the BTC-denominated balance from the nested
// currency-keyed structure; OpenNode serializes it as a string.
func (a *Adapter) GetBalance(ctx context.Context) (*domain.Balance, error) {
	raw, err := a.call(ctx, http.MethodGet, "/v1/account/balance", a.readAPIKey, nil, "getBalance")
	if err != nil {
		return nil, err
	}

	var resp struct {
		Data struct {
			Balance struct {
				BTC any `json:"BTC"`
			} `json:"balance"`
		} `json:"data"`
	}
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("opennode: decode getBalance: %w", err)
	}

	switch v := resp.Data.Balance.BTC.(type) {
	case string:
		balance, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, fmt.Errorf("opennode: parse balance %q: %w", v, err)
		}
		return &domain.Balance{Balance: balance}, nil
	case float64:
		return &domain.Balance{Balance: v}, nil
	default:
		return nil, fmt.Errorf("opennode: unexpected balance type %T", v)
	}
}

func (a *Adapter) PayInvoice(ctx context.Context, invoice string) (*domain.PaymentResult, error) {
	if strings.TrimSpace(invoice) == "" {
		return nil, fmt.Errorf("%w: invoice is required", domain.ErrValidation)
	}

	body, err := json.Marshal(map[string]any{
		"invoice": invoice,
	})
	if err != nil {
		return nil, err
	}

	raw, err := a.call(ctx, http.MethodPost, "/v1/charges", a.invoiceKey, body, "payInvoice")
	if err != nil {
		return nil, err
	}

	var resp struct {
		Data struct {
			ID     string `json:"id"`
			Status string `json:"status"`
		} `json:"data"`
	}
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("opennode: decode payInvoice: %w", err)
	}
	return &domain.PaymentResult{ID: resp.Data.ID, Status: resp.Data.Status}, nil
}

func (a *Adapter) GetTransactions(ctx context.Context) ([]domain.Transaction, error) {
	raw, err := a.call(ctx, http.MethodGet, "/v1/charges", a.readAPIKey, nil, "getTransactions")
	if err != nil {
		return nil, err
	}

	var resp struct {
		Data []struct {
			ID        string  `json:"id"`
			Status    string  `json:"status"`
			Amount    float64 `json:"amount"`
			CreatedAt string  `json:"created_at"`
		} `json:"data"`
	}
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("opennode: decode getTransactions: %w", err)
	}

	// Upstream ordering is preserved as-is.
	transactions := make([]domain.Transaction, len(resp.Data))
	for i, charge := range resp.Data {
		transactions[i] = domain.Transaction{
			ID:        charge.ID,
			Status:    charge.Status,
			Amount:    charge.Amount,
			Timestamp: charge.CreatedAt,
		}
	}
	return transactions, nil
}

func (a *Adapter) CheckStatus(ctx context.Context, chargeID string) (string, error) {
	raw, err := a.call(ctx, http.MethodGet, "/v1/charges/"+chargeID, a.readAPIKey, nil, "checkStatus")
	if err != nil {
		return "", err
	}

	var resp struct {
		Data struct {
			Status string `json:"status"`
		} `json:"data"`
	}
	if err := json.Unmarshal(raw, &resp); err != nil {
		return "", fmt.Errorf("opennode: decode checkStatus: %w", err)
	}
	return resp.Data.Status, nil
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
	req.Header.Set("Authorization", "Bearer "+apiKey)
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
			Provider:   fundingdomain.ProviderOpenNode,
			Operation:  operation,
			StatusCode: resp.StatusCode,
			Body:       string(payload),
		}
	}
	return payload, nil
}
