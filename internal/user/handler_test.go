package user

import (
	"encoding/json"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
)

type fakePurger struct {
	calls []int
	err   error
}

func (p *fakePurger) DeleteByUser(userID int) error {
	p.calls = append(p.calls, userID)
	return p.err
}

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

func seededHandler(t *testing.T) (*Handler, *Service, *fakePurger, *Broadcaster) {
	t.Helper()
	service := NewService(NewInMemoryRepository(nil))
	if _, err := service.Register(User{Email: "ali@example.com", Password: "secret1", DisplayName: "Ali"}); err != nil {
		t.Fatalf("seed register: %v", err)
	}
	purger := &fakePurger{}
	events := NewBroadcaster()
	return NewHandler(service, events, purger), service, purger, events
}

func postJSON(app *fiber.App, path, body, userID string) (int, map[string]any) {
	req := httptest.NewRequest("POST", path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if userID != "" {
		req.Header.Set("X-User-ID", userID)
	}
	res, _ := app.Test(req)
	var payload map[string]any
	json.NewDecoder(res.Body).Decode(&payload)
	return res.StatusCode, payload
}

func TestSignUp(t *testing.T) {
	h, _, _, _ := seededHandler(t)
	app := makeApp(h)

	status, payload := postJSON(app, "/api/v1/sign-up", `{"email":"new@example.com","password":"secret1","displayName":"New User"}`, "")
	if status != fiber.StatusCreated {
		t.Fatalf("expected 201, got %d (%v)", status, payload)
	}
	if payload["token"] == nil || payload["token"] == "" {
		t.Fatalf("expected a token in the response")
	}
	u, ok := payload["user"].(map[string]any)
	if !ok {
		t.Fatalf("expected user in response, got %v", payload)
	}
	if _, leaked := u["password"]; leaked {
		t.Fatalf("password hash must not be returned")
	}
}

func TestSignUp_DuplicateEmail(t *testing.T) {
	h, _, _, _ := seededHandler(t)
	app := makeApp(h)

	status, _ := postJSON(app, "/api/v1/sign-up", `{"email":"ali@example.com","password":"secret1","displayName":"Ali Again"}`, "")
	if status != fiber.StatusConflict {
		t.Fatalf("expected 409, got %d", status)
	}
}

func TestSignUp_ShortPassword(t *testing.T) {
	h, _, _, _ := seededHandler(t)
	app := makeApp(h)

	status, _ := postJSON(app, "/api/v1/sign-up", `{"email":"x@example.com","password":"abc","displayName":"X"}`, "")
	if status != fiber.StatusBadRequest {
		t.Fatalf("expected 400, got %d", status)
	}
}

func TestSignIn(t *testing.T) {
	h, _, _, events := seededHandler(t)
	app := makeApp(h)

	status, payload := postJSON(app, "/api/v1/sign-in", `{"email":"ali@example.com","password":"secret1"}`, "")
	if status != fiber.StatusOK {
		t.Fatalf("expected 200, got %d (%v)", status, payload)
	}
	if payload["token"] == nil {
		t.Fatalf("expected a token, got %v", payload)
	}
	if state := events.Current(); !state.LoggedIn || state.Email != "ali@example.com" {
		t.Fatalf("expected signed-in auth state, got %+v", state)
	}
}

func TestSignIn_WrongPassword(t *testing.T) {
	h, _, _, _ := seededHandler(t)
	app := makeApp(h)

	status, _ := postJSON(app, "/api/v1/sign-in", `{"email":"ali@example.com","password":"wrong"}`, "")
	if status != fiber.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", status)
	}
}

func TestSignOut_PublishesSignedOutState(t *testing.T) {
	h, _, _, events := seededHandler(t)
	app := makeApp(h)

	postJSON(app, "/api/v1/sign-in", `{"email":"ali@example.com","password":"secret1"}`, "")
	status, _ := postJSON(app, "/api/v1/sign-out", `{}`, "1")
	if status != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", status)
	}
	if state := events.Current(); state.LoggedIn {
		t.Fatalf("expected signed-out state, got %+v", state)
	}
}

func TestGetProfile(t *testing.T) {
	h, _, _, _ := seededHandler(t)
	app := makeApp(h)

	req := httptest.NewRequest("GET", "/api/v1/profile", nil)
	req.Header.Set("X-User-ID", "1")
	res, _ := app.Test(req)
	if res.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", res.StatusCode)
	}

	var u User
	json.NewDecoder(res.Body).Decode(&u)
	if u.Email != "ali@example.com" || u.Password != "" {
		t.Fatalf("unexpected profile %+v", u)
	}
}

func TestGetProfile_Unauthenticated(t *testing.T) {
	h, _, _, _ := seededHandler(t)
	app := makeApp(h)

	req := httptest.NewRequest("GET", "/api/v1/profile", nil)
	res, _ := app.Test(req)
	if res.StatusCode != fiber.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", res.StatusCode)
	}
}

func TestUpdateEmail_RequiresCurrentPassword(t *testing.T) {
	h, service, _, _ := seededHandler(t)
	app := makeApp(h)

	req := httptest.NewRequest("PUT", "/api/v1/profile/email", strings.NewReader(`{"currentPassword":"wrong","newEmail":"next@example.com"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User-ID", "1")
	res, _ := app.Test(req)
	if res.StatusCode != fiber.StatusUnauthorized {
		t.Fatalf("expected 401 on wrong password, got %d", res.StatusCode)
	}

	// email unchanged
	u, _ := service.GetByID(1)
	if u.Email != "ali@example.com" {
		t.Fatalf("email must not change on failed re-auth, got %q", u.Email)
	}

	req = httptest.NewRequest("PUT", "/api/v1/profile/email", strings.NewReader(`{"currentPassword":"secret1","newEmail":"next@example.com"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User-ID", "1")
	res, _ = app.Test(req)
	if res.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", res.StatusCode)
	}
	u, _ = service.GetByID(1)
	if u.Email != "next@example.com" {
		t.Fatalf("expected updated email, got %q", u.Email)
	}
}

func TestUpdatePassword(t *testing.T) {
	h, service, _, _ := seededHandler(t)
	app := makeApp(h)

	req := httptest.NewRequest("PUT", "/api/v1/profile/password", strings.NewReader(`{"currentPassword":"secret1","newPassword":"secret2","confirmPassword":"secret2"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User-ID", "1")
	res, _ := app.Test(req)
	if res.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", res.StatusCode)
	}

	if _, err := service.Authenticate("ali@example.com", "secret2"); err != nil {
		t.Fatalf("expected new password to authenticate: %v", err)
	}
	if _, err := service.Authenticate("ali@example.com", "secret1"); err != ErrInvalidCredentials {
		t.Fatalf("expected old password rejected, got %v", err)
	}
}

func TestUpdatePassword_Mismatch(t *testing.T) {
	h, _, _, _ := seededHandler(t)
	app := makeApp(h)

	req := httptest.NewRequest("PUT", "/api/v1/profile/password", strings.NewReader(`{"currentPassword":"secret1","newPassword":"secret2","confirmPassword":"other"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User-ID", "1")
	res, _ := app.Test(req)
	if res.StatusCode != fiber.StatusBadRequest {
		t.Fatalf("expected 400, got %d", res.StatusCode)
	}
}

func TestDeleteAccount_WrongPasswordKeepsOrders(t *testing.T) {
	h, service, purger, _ := seededHandler(t)
	app := makeApp(h)

	req := httptest.NewRequest("DELETE", "/api/v1/profile", strings.NewReader(`{"password":"wrong"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User-ID", "1")
	res, _ := app.Test(req)
	if res.StatusCode != fiber.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", res.StatusCode)
	}
	if len(purger.calls) != 0 {
		t.Fatalf("orders must not be purged on failed re-auth")
	}
	if _, err := service.GetByID(1); err != nil {
		t.Fatalf("account must survive failed re-auth: %v", err)
	}
}

func TestDeleteAccount(t *testing.T) {
	h, service, purger, events := seededHandler(t)
	app := makeApp(h)

	req := httptest.NewRequest("DELETE", "/api/v1/profile", strings.NewReader(`{"password":"secret1"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User-ID", "1")
	res, _ := app.Test(req)
	if res.StatusCode != fiber.StatusNoContent {
		t.Fatalf("expected 204, got %d", res.StatusCode)
	}
	if len(purger.calls) != 1 || purger.calls[0] != 1 {
		t.Fatalf("expected order purge for user 1, got %v", purger.calls)
	}
	if _, err := service.GetByID(1); err != ErrNotFound {
		t.Fatalf("expected account gone, got %v", err)
	}
	if state := events.Current(); state.LoggedIn {
		t.Fatalf("expected signed-out state after deletion, got %+v", state)
	}
}
