package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/mail"
	"regexp"
	"strconv"
	"time"

	"github.com/ma-enterprise/storefront-backend/internal/order"
)

var (
	mobileNumberPattern = regexp.MustCompile(`^[0-9]{11}$`)
	postalCodePattern   = regexp.MustCompile(`^[0-9]{5}$`)
)

// Config identifies this merchant to the payment provider.
type Config struct {
	BaseURL     string
	MerchantID  string
	SecretKey   string
	CallbackURL string
}

// Client talks to the provider's initiate/verify endpoints. It never
// navigates anywhere itself; a successful Initiate hands the redirect
// URL back to the caller.
type Client struct {
	cfg  Config
	http *http.Client
}

func NewClient(cfg Config) *Client {
	return &Client{
		cfg:  cfg,
		http: &http.Client{Timeout: 15 * time.Second},
	}
}

// NewClientWithHTTP injects a custom http.Client, used by tests.
func NewClientWithHTTP(cfg Config, httpClient *http.Client) *Client {
	return &Client{cfg: cfg, http: httpClient}
}

type initiateRequest struct {
	MerchantID   string `json:"merchantId"`
	Amount       int    `json:"amount"`
	MobileNumber string `json:"mobileNumber"`
	Email        string `json:"email"`
	OrderID      string `json:"orderId"`
	CallbackURL  string `json:"callbackUrl"`
}

type initiateResponse struct {
	Success    bool   `json:"success"`
	PaymentURL string `json:"paymentUrl"`
	Message    string `json:"message"`
}

type verifyRequest struct {
	MerchantID    string `json:"merchantId"`
	TransactionID string `json:"transactionId"`
}

type verifyResponse struct {
	Success bool   `json:"success"`
	Amount  int    `json:"amount"`
	Message string `json:"message"`
}

// VerifyResult is the outcome of a successful verification call.
type VerifyResult struct {
	Amount int
}

// ValidateBuyer checks the payment form fields locally. It is exported
// so checkout can reject bad input before creating an order.
func ValidateBuyer(b order.Buyer) error {
	if b.FullName == "" {
		return &ValidationError{Field: "fullName", Reason: "must not be empty"}
	}
	if !mobileNumberPattern.MatchString(b.MobileNumber) {
		return &ValidationError{Field: "mobileNumber", Reason: "must be an 11-digit number"}
	}
	if _, err := mail.ParseAddress(b.Email); err != nil {
		return &ValidationError{Field: "email", Reason: "must be a valid email address"}
	}
	if b.Address == "" {
		return &ValidationError{Field: "address", Reason: "must not be empty"}
	}
	if !postalCodePattern.MatchString(b.PostalCode) {
		return &ValidationError{Field: "postalCode", Reason: "must be a 5-digit number"}
	}
	if b.City == "" {
		return &ValidationError{Field: "city", Reason: "must not be empty"}
	}
	return nil
}

// Initiate asks the provider to open a payment for the given order and
// returns the provider-hosted payment URL. Validation happens before
// any network I/O.
func (c *Client) Initiate(ctx context.Context, amount int, buyer order.Buyer, orderID int) (string, error) {
	if err := ValidateBuyer(buyer); err != nil {
		return "", err
	}
	if amount <= 0 {
		return "", &ValidationError{Field: "amount", Reason: "must be positive"}
	}

	var resp initiateResponse
	err := c.post(ctx, "/initiate-payment", initiateRequest{
		MerchantID:   c.cfg.MerchantID,
		Amount:       amount,
		MobileNumber: buyer.MobileNumber,
		Email:        buyer.Email,
		OrderID:      strconv.Itoa(orderID),
		CallbackURL:  c.cfg.CallbackURL,
	}, &resp)
	if err != nil {
		return "", err
	}

	if !resp.Success {
		return "", &GatewayError{Message: orDefault(resp.Message, "payment initiation failed")}
	}
	if resp.PaymentURL == "" {
		return "", &GatewayError{Message: "provider returned empty payment URL"}
	}
	return resp.PaymentURL, nil
}

// Verify asks the provider whether the given transaction completed.
// Safe to call repeatedly with the same transaction id; the provider is
// the source of truth for idempotence.
func (c *Client) Verify(ctx context.Context, transactionID string) (VerifyResult, error) {
	if transactionID == "" {
		return VerifyResult{}, &ValidationError{Field: "transactionId", Reason: "must not be empty"}
	}

	var resp verifyResponse
	err := c.post(ctx, "/verify-payment", verifyRequest{
		MerchantID:    c.cfg.MerchantID,
		TransactionID: transactionID,
	}, &resp)
	if err != nil {
		return VerifyResult{}, err
	}

	if !resp.Success {
		return VerifyResult{}, &GatewayError{Message: orDefault(resp.Message, "payment verification failed")}
	}
	return VerifyResult{Amount: resp.Amount}, nil
}

func (c *Client) post(ctx context.Context, path string, payload, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.cfg.SecretKey)

	res, err := c.http.Do(req)
	if err != nil {
		return &NetworkError{Op: path, Err: err}
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return &GatewayError{Message: fmt.Sprintf("provider returned status %d", res.StatusCode)}
	}
	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		return &NetworkError{Op: path, Err: err}
	}
	return nil
}

func orDefault(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
