package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/LeventeLantos/recurring-payments/internal/model"
)

type MomoConfig struct {
	BaseURL         string
	SubscriptionKey string
	APIUserID       string
	APIKey          string
	Environment     string
}

// MomoClient talks to an MTN MoMo style disbursement API. Both transfers and
// bill payments are disbursements; a bill payment uses the biller account as payee.
type MomoClient struct {
	cfg    MomoConfig
	client *http.Client

	mu       sync.Mutex
	token    string
	tokenExp time.Time
	now      func() time.Time
}

func NewMomoClient(cfg MomoConfig) *MomoClient {
	if cfg.Environment == "" {
		cfg.Environment = "sandbox"
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	// No client-level timeout: callers bound each request through ctx.
	return &MomoClient{
		cfg:    cfg,
		client: &http.Client{},
		now:    time.Now,
	}
}

type party struct {
	PartyIDType string `json:"partyIdType"`
	PartyID     string `json:"partyId"`
}

type transferRequest struct {
	Amount       string `json:"amount"`
	Currency     string `json:"currency"`
	ExternalID   string `json:"externalId"`
	Payee        party  `json:"payee"`
	PayerMessage string `json:"payerMessage"`
	PayeeNote    string `json:"payeeNote"`
}

type transferStatusResponse struct {
	Amount                 string          `json:"amount"`
	Currency               string          `json:"currency"`
	FinancialTransactionID string          `json:"financialTransactionId"`
	ExternalID             string          `json:"externalId"`
	Status                 string          `json:"status"`
	Reason                 json.RawMessage `json:"reason"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
}

func (c *MomoClient) SubmitTransfer(ctx context.Context, phone string, amount decimal.Decimal, currency, memo string) (model.PaymentResult, error) {
	res, err := c.disburse(ctx, transferRequest{
		Amount:       amount.String(),
		Currency:     currency,
		Payee:        party{PartyIDType: "MSISDN", PartyID: digitsOnly(phone)},
		PayerMessage: memo,
		PayeeNote:    memo,
	})
	if err != nil {
		return model.PaymentResult{}, &model.PaymentError{Op: "submit transfer", Err: err}
	}
	return res, nil
}

func (c *MomoClient) SubmitBillPayment(ctx context.Context, billerType, accountNumber string, amount decimal.Decimal, currency string) (model.PaymentResult, error) {
	res, err := c.disburse(ctx, transferRequest{
		Amount:       amount.String(),
		Currency:     currency,
		Payee:        party{PartyIDType: "MSISDN", PartyID: accountNumber},
		PayerMessage: fmt.Sprintf("%s bill payment", billerType),
		PayeeNote:    fmt.Sprintf("Payment for %s account %s", billerType, accountNumber),
	})
	if err != nil {
		return model.PaymentResult{}, &model.PaymentError{Op: "submit bill payment", Err: err}
	}
	return res, nil
}

func (c *MomoClient) disburse(ctx context.Context, body transferRequest) (model.PaymentResult, error) {
	token, err := c.accessToken(ctx)
	if err != nil {
		return model.PaymentResult{}, err
	}

	refID := uuid.NewString()
	body.ExternalID = refID

	reqBody, err := json.Marshal(body)
	if err != nil {
		return model.PaymentResult{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/disbursement/v1_0/transfer", bytes.NewReader(reqBody))
	if err != nil {
		return model.PaymentResult{}, err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("X-Reference-Id", refID)
	req.Header.Set("X-Target-Environment", c.cfg.Environment)
	req.Header.Set("Ocp-Apim-Subscription-Key", c.cfg.SubscriptionKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return model.PaymentResult{}, err
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)

	if resp.StatusCode != http.StatusAccepted {
		return model.PaymentResult{}, fmt.Errorf("unexpected status code: %d body=%q", resp.StatusCode, string(respBody))
	}

	// 202 only means the network accepted the request; settlement is async.
	return model.PaymentResult{ReferenceID: refID, Status: model.ProviderPending}, nil
}

// TransferStatus asks the provider where a previously accepted transfer stands.
func (c *MomoClient) TransferStatus(ctx context.Context, referenceID string) (model.PaymentStatus, error) {
	if referenceID == "" {
		return model.PaymentStatus{}, model.ErrUnknownReference
	}

	token, err := c.accessToken(ctx)
	if err != nil {
		return model.PaymentStatus{}, &model.PaymentError{Op: "transfer status", Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.BaseURL+"/disbursement/v1_0/transfer/"+url.PathEscape(referenceID), nil)
	if err != nil {
		return model.PaymentStatus{}, err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("X-Target-Environment", c.cfg.Environment)
	req.Header.Set("Ocp-Apim-Subscription-Key", c.cfg.SubscriptionKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return model.PaymentStatus{}, &model.PaymentError{Op: "transfer status", Err: err}
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return model.PaymentStatus{}, fmt.Errorf("%w: %s", model.ErrUnknownReference, referenceID)
	case resp.StatusCode != http.StatusOK:
		return model.PaymentStatus{}, &model.PaymentError{
			Op:  "transfer status",
			Err: fmt.Errorf("unexpected status code: %d body=%q", resp.StatusCode, string(body)),
		}
	}

	var sr transferStatusResponse
	if err := json.Unmarshal(body, &sr); err != nil {
		return model.PaymentStatus{}, &model.PaymentError{Op: "transfer status", Err: fmt.Errorf("failed to decode json: %w body=%q", err, string(body))}
	}

	return model.PaymentStatus{
		ReferenceID:            referenceID,
		Status:                 sr.Status,
		Reason:                 reasonText(sr.Reason),
		FinancialTransactionID: sr.FinancialTransactionID,
		Amount:                 sr.Amount,
		Currency:               sr.Currency,
	}, nil
}

// reasonText flattens the reason field, which is a plain string in some
// environments and a {code, message} object in others.
func reasonText(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var obj struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(raw, &obj); err == nil && (obj.Code != "" || obj.Message != "") {
		if obj.Message == "" {
			return obj.Code
		}
		return obj.Code + ": " + obj.Message
	}
	return string(raw)
}

func (c *MomoClient) accessToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.token != "" && c.now().Before(c.tokenExp) {
		return c.token, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/disbursement/token/", nil)
	if err != nil {
		return "", err
	}
	req.SetBasicAuth(c.cfg.APIUserID, c.cfg.APIKey)
	req.Header.Set("Ocp-Apim-Subscription-Key", c.cfg.SubscriptionKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("token generation failed: %d body=%q", resp.StatusCode, string(body))
	}

	var tr tokenResponse
	if err := json.Unmarshal(body, &tr); err != nil {
		return "", fmt.Errorf("failed to decode json: %w body=%q", err, string(body))
	}
	if tr.AccessToken == "" {
		return "", errors.New("missing access_token in token response")
	}

	ttl := time.Duration(tr.ExpiresIn) * time.Second
	if ttl <= 0 {
		ttl = time.Minute
	}
	c.token = tr.AccessToken
	// Refresh a little early so a request never carries an expiring token.
	c.tokenExp = c.now().Add(ttl - ttl/10)
	return c.token, nil
}

func digitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
