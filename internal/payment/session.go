package payment

import (
	"github.com/google/uuid"

	"github.com/ma-enterprise/storefront-backend/internal/order"
)

// Session is the ephemeral value handed back from checkout. It lives
// only until the user agent follows PaymentURL to the provider; nothing
// persists it.
type Session struct {
	ID         string      `json:"sessionId"`
	OrderID    int         `json:"orderId"`
	Amount     int         `json:"amount"`
	Buyer      order.Buyer `json:"buyer"`
	PaymentURL string      `json:"paymentUrl"`
}

func NewSession(ord order.Order, paymentURL string) Session {
	return Session{
		ID:         uuid.NewString(),
		OrderID:    ord.OrderID,
		Amount:     ord.Total,
		Buyer:      ord.Buyer,
		PaymentURL: paymentURL,
	}
}
