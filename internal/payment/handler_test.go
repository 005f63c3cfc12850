package payment

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"

	"github.com/ma-enterprise/storefront-backend/internal/order"
)

func makeApp(h *Handler) *fiber.App {
	app := fiber.New()
	h.RegisterPublicRoutes(app)
	app.Use(func(c *fiber.Ctx) error {
		if v := c.Get("X-User-ID"); v != "" {
			if id, err := strconv.Atoi(v); err == nil {
				tok := &jwt.Token{Claims: jwt.MapClaims{"user_id": id}}
				c.Locals("user", tok)
			}
		}
		return c.Next()
	})
	h.RegisterProtectedRoutes(app)
	return app
}

const validCheckout = `{
	"fullName": "Ali Khan",
	"mobileNumber": "03001234567",
	"email": "ali@example.com",
	"address": "12 Mall Road",
	"postalCode": "54000",
	"city": "Lahore"
}`

func TestCheckout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req map[string]any
		json.NewDecoder(r.Body).Decode(&req)
		if req["amount"] != float64(100000) {
			t.Errorf("expected server-side amount in request, got %v", req["amount"])
		}
		json.NewEncoder(w).Encode(map[string]any{"success": true, "paymentUrl": "https://pay.example.com/txn/1"})
	}))
	defer srv.Close()

	orders, _, _ := newOrderFixture(t)
	gateway := NewClient(Config{BaseURL: srv.URL, MerchantID: "m-1", CallbackURL: "http://localhost:8080/api/v1/payment/callback"})
	app := makeApp(NewHandler(orders, gateway, NewVerifier(gateway, orders, 0, nil), nil))

	req := httptest.NewRequest("POST", "/api/v1/checkout", strings.NewReader(validCheckout))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User-ID", "7")
	res, _ := app.Test(req)
	if res.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", res.StatusCode)
	}

	var session Session
	json.NewDecoder(res.Body).Decode(&session)
	if session.PaymentURL != "https://pay.example.com/txn/1" {
		t.Fatalf("unexpected session %+v", session)
	}
	if session.OrderID == 0 || session.ID == "" {
		t.Fatalf("expected session with order id, got %+v", session)
	}
	if session.Amount != 100000 {
		t.Fatalf("expected amount 100000, got %d", session.Amount)
	}

	// the order exists and awaits the provider callback
	ord, err := orders.GetByID(session.OrderID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if ord.Status != order.StatusPending {
		t.Fatalf("expected pending order, got %q", ord.Status)
	}
}

func TestCheckout_InvalidFormCreatesNoOrder(t *testing.T) {
	orders, _, _ := newOrderFixture(t)
	gateway := NewClient(Config{BaseURL: "http://unused"})
	app := makeApp(NewHandler(orders, gateway, NewVerifier(gateway, orders, 0, nil), nil))

	body := strings.Replace(validCheckout, "03001234567", "123", 1)
	req := httptest.NewRequest("POST", "/api/v1/checkout", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User-ID", "7")
	res, _ := app.Test(req)
	if res.StatusCode != fiber.StatusBadRequest {
		t.Fatalf("expected 400, got %d", res.StatusCode)
	}

	var payload map[string]any
	json.NewDecoder(res.Body).Decode(&payload)
	if payload["field"] != "mobileNumber" {
		t.Fatalf("expected mobileNumber field error, got %v", payload)
	}

	// the fixture order is the only one; checkout must not have added another
	got, _ := orders.ListByUser(7)
	if len(got) != 1 {
		t.Fatalf("expected no new order on validation failure, got %d", len(got))
	}
}

func TestCheckout_Unauthenticated(t *testing.T) {
	orders, _, _ := newOrderFixture(t)
	gateway := NewClient(Config{BaseURL: "http://unused"})
	app := makeApp(NewHandler(orders, gateway, NewVerifier(gateway, orders, 0, nil), nil))

	req := httptest.NewRequest("POST", "/api/v1/checkout", strings.NewReader(validCheckout))
	req.Header.Set("Content-Type", "application/json")
	res, _ := app.Test(req)
	if res.StatusCode != fiber.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", res.StatusCode)
	}
}

func TestCheckout_GatewayRejectionKeepsOrderPending(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"success": false, "message": "merchant suspended"})
	}))
	defer srv.Close()

	orders, _, _ := newOrderFixture(t)
	gateway := NewClient(Config{BaseURL: srv.URL})
	app := makeApp(NewHandler(orders, gateway, NewVerifier(gateway, orders, 0, nil), nil))

	req := httptest.NewRequest("POST", "/api/v1/checkout", strings.NewReader(validCheckout))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User-ID", "7")
	res, _ := app.Test(req)
	if res.StatusCode != fiber.StatusBadGateway {
		t.Fatalf("expected 502, got %d", res.StatusCode)
	}

	var payload map[string]any
	json.NewDecoder(res.Body).Decode(&payload)
	if payload["message"] != "merchant suspended" {
		t.Fatalf("expected provider message, got %v", payload)
	}
	orderID := int(payload["orderId"].(float64))

	// the pending order survives so the buyer can retry
	ord, err := orders.GetByID(orderID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if ord.Status != order.StatusPending {
		t.Fatalf("expected pending order after rejection, got %q", ord.Status)
	}
}

func TestCallbackRoute(t *testing.T) {
	orders, carts, ord := newOrderFixture(t)
	gateway := &fakeGateway{result: VerifyResult{Amount: 100000}}
	app := makeApp(NewHandler(orders, nil, NewVerifier(gateway, orders, 0, nil), nil))

	res, _ := app.Test(httptest.NewRequest("GET", "/api/v1/payment/callback?transactionId=TX1&orderId=1", nil))
	if res.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", res.StatusCode)
	}

	var result CallbackResult
	json.NewDecoder(res.Body).Decode(&result)
	if result.Status != StatusVerified {
		t.Fatalf("expected verified, got %+v", result)
	}

	paid, _ := orders.GetByID(ord.OrderID)
	if paid.Status != order.StatusPaid {
		t.Fatalf("expected paid order, got %q", paid.Status)
	}
	lines, _ := carts.Lines(7)
	if len(lines) != 0 {
		t.Fatalf("expected cart cleared, got %v", lines)
	}
}

func TestCallbackRoute_MissingParams(t *testing.T) {
	orders, _, _ := newOrderFixture(t)
	gateway := &fakeGateway{}
	app := makeApp(NewHandler(orders, nil, NewVerifier(gateway, orders, 0, nil), nil))

	res, _ := app.Test(httptest.NewRequest("GET", "/api/v1/payment/callback", nil))
	if res.StatusCode != fiber.StatusBadRequest {
		t.Fatalf("expected 400, got %d", res.StatusCode)
	}
	if gateway.calls != 0 {
		t.Fatalf("expected no gateway calls, got %d", gateway.calls)
	}
}

func TestCallbackRoute_VerificationFailure(t *testing.T) {
	orders, _, _ := newOrderFixture(t)
	gateway := &fakeGateway{err: &GatewayError{Message: "transaction not found"}}
	app := makeApp(NewHandler(orders, nil, NewVerifier(gateway, orders, 0, nil), nil))

	res, _ := app.Test(httptest.NewRequest("GET", "/api/v1/payment/callback?transactionId=TXbad&orderId=1", nil))
	if res.StatusCode != fiber.StatusBadGateway {
		t.Fatalf("expected 502, got %d", res.StatusCode)
	}
}
