package payment

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/ma-enterprise/storefront-backend/internal/order"
)

func validBuyer() order.Buyer {
	return order.Buyer{
		FullName:     "Ali Khan",
		MobileNumber: "03001234567",
		Email:        "ali@example.com",
		Address:      "12 Mall Road",
		PostalCode:   "54000",
		City:         "Lahore",
	}
}

func TestInitiate_Success(t *testing.T) {
	var calls int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&calls, 1)
		if r.URL.Path != "/initiate-payment" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer sk-test" {
			t.Errorf("unexpected auth header %q", got)
		}
		var req map[string]any
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if req["merchantId"] != "m-1" || req["orderId"] != "12" {
			t.Errorf("unexpected request payload %v", req)
		}
		json.NewEncoder(w).Encode(map[string]any{"success": true, "paymentUrl": "https://pay.example.com/txn/1"})
	}))
	defer srv.Close()

	client := NewClient(Config{BaseURL: srv.URL, MerchantID: "m-1", SecretKey: "sk-test", CallbackURL: "http://localhost:8080/api/v1/payment/callback"})

	url, err := client.Initiate(context.Background(), 100000, validBuyer(), 12)
	if err != nil {
		t.Fatalf("Initiate: %v", err)
	}
	if url != "https://pay.example.com/txn/1" {
		t.Fatalf("unexpected payment url %q", url)
	}
	if calls != 1 {
		t.Fatalf("expected 1 gateway call, got %d", calls)
	}
}

func TestInitiate_ValidationBeforeNetwork(t *testing.T) {
	var calls int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&calls, 1)
	}))
	defer srv.Close()
	client := NewClient(Config{BaseURL: srv.URL})

	cases := []struct {
		name  string
		mut   func(b *order.Buyer)
		field string
	}{
		{"short mobile", func(b *order.Buyer) { b.MobileNumber = "0300123" }, "mobileNumber"},
		{"alpha mobile", func(b *order.Buyer) { b.MobileNumber = "0300123456a" }, "mobileNumber"},
		{"bad email", func(b *order.Buyer) { b.Email = "not-an-email" }, "email"},
		{"bad postal", func(b *order.Buyer) { b.PostalCode = "540" }, "postalCode"},
		{"empty name", func(b *order.Buyer) { b.FullName = "" }, "fullName"},
		{"empty city", func(b *order.Buyer) { b.City = "" }, "city"},
	}
	for _, tc := range cases {
		b := validBuyer()
		tc.mut(&b)
		_, err := client.Initiate(context.Background(), 100, b, 1)
		var vErr *ValidationError
		if !errors.As(err, &vErr) {
			t.Fatalf("%s: expected ValidationError, got %v", tc.name, err)
		}
		if vErr.Field != tc.field {
			t.Fatalf("%s: expected field %q, got %q", tc.name, tc.field, vErr.Field)
		}
	}

	if calls != 0 {
		t.Fatalf("validation failures must not hit the network, got %d calls", calls)
	}
}

func TestInitiate_GatewayRejection(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"success": false, "message": "insufficient merchant balance"})
	}))
	defer srv.Close()
	client := NewClient(Config{BaseURL: srv.URL})

	_, err := client.Initiate(context.Background(), 100, validBuyer(), 1)
	var gwErr *GatewayError
	if !errors.As(err, &gwErr) {
		t.Fatalf("expected GatewayError, got %v", err)
	}
	if gwErr.Message != "insufficient merchant balance" {
		t.Fatalf("expected provider message to be preserved, got %q", gwErr.Message)
	}
}

func TestInitiate_ProviderHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()
	client := NewClient(Config{BaseURL: srv.URL})

	_, err := client.Initiate(context.Background(), 100, validBuyer(), 1)
	var gwErr *GatewayError
	if !errors.As(err, &gwErr) {
		t.Fatalf("expected GatewayError, got %v", err)
	}
}

func TestInitiate_NetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()
	client := NewClient(Config{BaseURL: srv.URL})

	_, err := client.Initiate(context.Background(), 100, validBuyer(), 1)
	var netErr *NetworkError
	if !errors.As(err, &netErr) {
		t.Fatalf("expected NetworkError, got %v", err)
	}
	if netErr.Unwrap() == nil {
		t.Fatalf("expected wrapped transport error")
	}
}

func TestVerify(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/verify-payment" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		var req map[string]any
		json.NewDecoder(r.Body).Decode(&req)
		if req["transactionId"] != "TX1" {
			t.Errorf("unexpected payload %v", req)
		}
		json.NewEncoder(w).Encode(map[string]any{"success": true, "amount": 100000})
	}))
	defer srv.Close()
	client := NewClient(Config{BaseURL: srv.URL, MerchantID: "m-1"})

	res, err := client.Verify(context.Background(), "TX1")
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if res.Amount != 100000 {
		t.Fatalf("expected amount 100000, got %d", res.Amount)
	}
}

func TestVerify_Failure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"success": false, "message": "transaction not found"})
	}))
	defer srv.Close()
	client := NewClient(Config{BaseURL: srv.URL})

	_, err := client.Verify(context.Background(), "TX-missing")
	var gwErr *GatewayError
	if !errors.As(err, &gwErr) {
		t.Fatalf("expected GatewayError, got %v", err)
	}
	if gwErr.Message != "transaction not found" {
		t.Fatalf("unexpected message %q", gwErr.Message)
	}
}

func TestVerify_EmptyTransactionID(t *testing.T) {
	client := NewClient(Config{BaseURL: "http://unused"})
	_, err := client.Verify(context.Background(), "")
	var vErr *ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}
