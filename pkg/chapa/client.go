package chapa

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"
)

const DefaultBaseURL = "https://api.chapa.co"

// Client is a client for the Chapa payment API.
type Client struct {
	BaseURL    string
	SecretKey  string
	HTTPClient *http.Client
}

// NewClient creates a new Chapa API client. An empty baseURL falls back
// to the public Chapa endpoint.
func NewClient(baseURL, secretKey string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		BaseURL:   baseURL,
		SecretKey: secretKey,
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// InitializeRequest is the payload for a Chapa checkout session.
type InitializeRequest struct {
	Amount      string `json:"amount"`
	Currency    string `json:"currency"`
	Email       string `json:"email"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	TxRef       string `json:"tx_ref"`
	ReturnURL   string `json:"return_url,omitempty"`
	CallbackURL string `json:"callback_url,omitempty"`
}

// InitializeResponse is the response from Chapa's initialize endpoint.
type InitializeResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Data    struct {
		CheckoutURL string `json:"checkout_url"`
	} `json:"data"`
}

// VerifyResponse is the response from Chapa's verify endpoint.
type VerifyResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Data    struct {
		Status   string      `json:"status"`
		TxRef    string      `json:"tx_ref"`
		Amount   json.Number `json:"amount"`
		Currency string      `json:"currency"`
	} `json:"data"`
}

// APIError represents a non-success response from the Chapa API.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("chapa api error (status %d): %s", e.StatusCode, e.Message)
}

// Initialize creates a checkout session and returns the hosted checkout URL.
func (c *Client) Initialize(ctx context.Context, reqPayload InitializeRequest) (string, error) {
	if reqPayload.Currency == "" {
		reqPayload.Currency = "ETB"
	}

	body, err := json.Marshal(reqPayload)
	if err != nil {
		return "", fmt.Errorf("failed to marshal initialize request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.BaseURL+"/v1/transaction/initialize", bytes.NewBuffer(body))
	if err != nil {
		return "", fmt.Errorf("failed to create initialize request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.SecretKey)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to execute initialize request: %w", err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read initialize response: %w", err)
	}

	var initResp InitializeResponse
	if err := json.Unmarshal(bodyBytes, &initResp); err != nil {
		return "", &APIError{StatusCode: resp.StatusCode, Message: "unparsable response body"}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 || initResp.Status != "success" {
		return "", &APIError{StatusCode: resp.StatusCode, Message: initResp.Message}
	}
	if initResp.Data.CheckoutURL == "" {
		return "", &APIError{StatusCode: resp.StatusCode, Message: "no checkout_url returned"}
	}
	return initResp.Data.CheckoutURL, nil
}

// Verify confirms a transaction's final state with Chapa. It returns true
// only when Chapa reports the transaction as successful.
func (c *Client) Verify(ctx context.Context, txRef string) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", c.BaseURL+"/v1/transaction/verify/"+txRef, nil)
	if err != nil {
		return false, fmt.Errorf("failed to create verify request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.SecretKey)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return false, fmt.Errorf("failed to execute verify request: %w", err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return false, fmt.Errorf("failed to read verify response: %w", err)
	}

	var verifyResp VerifyResponse
	if err := json.Unmarshal(bodyBytes, &verifyResp); err != nil {
		return false, &APIError{StatusCode: resp.StatusCode, Message: "unparsable response body"}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 || verifyResp.Status != "success" {
		return false, &APIError{StatusCode: resp.StatusCode, Message: verifyResp.Message}
	}
	return verifyResp.Data.Status == "success", nil
}

var (
	nameAllowed  = regexp.MustCompile(`[^a-zA-Z\s'-]`)
	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
)

var allowedEmailDomains = map[string]bool{
	"gmail.com":   true,
	"yahoo.com":   true,
	"outlook.com": true,
	"hotmail.com": true,
	"icloud.com":  true,
	"proton.me":   true,
	"rent.com":    true,
}

// SanitizeName strips characters Chapa rejects in payer names and caps
// the length. Empty results fall back to "User".
func SanitizeName(s string) string {
	s = strings.TrimSpace(nameAllowed.ReplaceAllString(s, ""))
	if len(s) > 30 {
		s = s[:30]
	}
	if s == "" {
		return "User"
	}
	return s
}

// SanitizeEmail returns a Chapa-acceptable payer email. Addresses that
// are malformed or on unrecognized domains are replaced with a fixed
// placeholder so checkout initialization never fails on payer data.
func SanitizeEmail(email string) string {
	const fallback = "payer@rent.com"

	email = strings.ToLower(strings.TrimSpace(email))
	if len(email) < 3 || len(email) > 128 || !emailPattern.MatchString(email) {
		return fallback
	}
	parts := strings.Split(email, "@")
	domain := parts[len(parts)-1]
	if !allowedEmailDomains[domain] {
		return fallback
	}
	return email
}
