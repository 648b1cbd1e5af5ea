package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/telestore/telestore/internal/config"
	"github.com/telestore/telestore/internal/payment/domain"
	"go.uber.org/zap"
)

const (
	createTimeout = 30 * time.Second
	statusTimeout = 20 * time.Second
)

// Client talks to the payment provider's transaction API.
type Client struct {
	cfg      config.Config
	settings *config.SettingsHolder
	log      *zap.Logger
	http     *http.Client
}

func NewClient(cfg config.Config, settings *config.SettingsHolder, log *zap.Logger) domain.Provider {
	return &Client{
		cfg:      cfg,
		settings: settings,
		log:      log.Named("payment.provider"),
		http:     &http.Client{},
	}
}

type createRequest struct {
	PaymentMethod  int            `json:"paymentMethod"`
	ID             string         `json:"id"`
	PaymentDetails paymentDetails `json:"paymentDetails"`
	Description    string         `json:"description"`
	Return         string         `json:"return"`
	FailedURL      string         `json:"failedUrl"`
	Payload        string         `json:"payload"`
}

type paymentDetails struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

type createResponse struct {
	Redirect string `json:"redirect"`
}

type statusResponse struct {
	Status string `json:"status"`
}

func (c *Client) CreateTransaction(ctx context.Context, paymentID string, amount int64) (string, error) {
	settings := c.settings.Get()

	body, err := json.Marshal(createRequest{
		PaymentMethod: settings.PaymentMethod,
		ID:            paymentID,
		PaymentDetails: paymentDetails{
			Amount:   amount,
			Currency: settings.Currency,
		},
		Description: settings.OrderDescription,
		Return:      fmt.Sprintf("%s/payment/%s", c.cfg.SiteURL, paymentID),
		FailedURL:   fmt.Sprintf("%s/payment/%s?failed=1", c.cfg.SiteURL, paymentID),
		Payload:     "ORDER_PAYLOAD",
	})
	if err != nil {
		return "", err
	}

	ctx, cancel := context.WithTimeout(ctx, createTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.ProviderCreateURL, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	c.setHeaders(req)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("create transaction: %w", err)
	}
	defer resp.Body.Close()

	var data createResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return "", fmt.Errorf("decode create response: %w", err)
	}
	if data.Redirect == "" {
		return "", domain.ErrNoRedirect
	}
	return data.Redirect, nil
}

func (c *Client) TransactionStatus(ctx context.Context, paymentID string) (string, error) {
	url := strings.ReplaceAll(c.cfg.ProviderStatusURL, "{payment_id}", paymentID)

	ctx, cancel := context.WithTimeout(ctx, statusTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}
	c.setHeaders(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("transaction status: %w", err)
	}
	defer resp.Body.Close()

	var data statusResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return "", fmt.Errorf("decode status response: %w", err)
	}
	return strings.ToLower(strings.TrimSpace(data.Status)), nil
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("X-MerchantId", c.cfg.ProviderMerchantID)
	req.Header.Set("X-Secret", c.cfg.ProviderAPIKey)
}
