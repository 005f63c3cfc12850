package payment

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"github.com/ma-enterprise/storefront-backend/internal/order"
	"github.com/ma-enterprise/storefront-backend/internal/user"
)

// Handler ties checkout and the provider callback together: checkout
// creates a pending order from the cart and initiates payment, the
// callback verifies the transaction and completes the order.
type Handler struct {
	orders   *order.Service
	gateway  *Client
	verifier *Verifier
	log      *logrus.Logger
}

func NewHandler(orders *order.Service, gateway *Client, verifier *Verifier, log *logrus.Logger) *Handler {
	if log == nil {
		log = logrus.New()
	}
	return &Handler{orders: orders, gateway: gateway, verifier: verifier, log: log}
}

func (h *Handler) RegisterPublicRoutes(app *fiber.App) {
	// the provider redirects the user agent here after processing
	app.Get("/api/v1/payment/callback", h.paymentCallback)
}

func (h *Handler) RegisterProtectedRoutes(app *fiber.App) {
	app.Post("/api/v1/checkout", h.checkout)
}

type checkoutRequest struct {
	FullName     string `json:"fullName"`
	MobileNumber string `json:"mobileNumber"`
	Email        string `json:"email"`
	Address      string `json:"address"`
	PostalCode   string `json:"postalCode"`
	City         string `json:"city"`
}

func (h *Handler) checkout(c *fiber.Ctx) error {
	userID, err := user.GetUserIDFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}

	payload := new(checkoutRequest)
	if err := c.BodyParser(payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}

	buyer := order.NormalizeBuyer(order.Buyer{
		FullName:     payload.FullName,
		MobileNumber: payload.MobileNumber,
		Email:        payload.Email,
		Address:      payload.Address,
		PostalCode:   payload.PostalCode,
		City:         payload.City,
	})

	// reject bad form input before creating an order so a typo does not
	// leave an orphaned pending order behind
	if err := ValidateBuyer(buyer); err != nil {
		vErr := err.(*ValidationError)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": vErr.Error(), "field": vErr.Field})
	}

	ord, err := h.orders.Create(userID, buyer)
	if err != nil {
		switch err {
		case order.ErrEmptyCart:
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "cart is empty"})
		case order.ErrUnknownProduct:
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "cart references an unknown product"})
		case order.ErrAuthRequired:
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "sign in required"})
		default:
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"message": "could not create order, please retry"})
		}
	}

	paymentURL, err := h.gateway.Initiate(c.UserContext(), ord.Total, buyer, ord.OrderID)
	if err != nil {
		switch e := err.(type) {
		case *ValidationError:
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": e.Error(), "field": e.Field})
		case *GatewayError:
			// the order stays pending; the buyer can retry from checkout
			h.log.WithError(err).WithField("orderId", ord.OrderID).Warn("payment initiation rejected")
			return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"message": e.Message, "orderId": ord.OrderID})
		default:
			h.log.WithError(err).WithField("orderId", ord.OrderID).Warn("payment gateway unreachable")
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"message": "payment service unavailable, please retry", "orderId": ord.OrderID})
		}
	}

	return c.JSON(NewSession(ord, paymentURL))
}

func (h *Handler) paymentCallback(c *fiber.Ctx) error {
	result := h.verifier.HandleCallback(c.UserContext(), c.Query("transactionId"), c.Query("orderId"))

	status := fiber.StatusOK
	if result.Status == StatusFailed {
		if result.Message == "invalid payment response" {
			status = fiber.StatusBadRequest
		} else {
			status = fiber.StatusBadGateway
		}
	}
	return c.Status(status).JSON(result)
}
