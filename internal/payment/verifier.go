package payment

import (
	"context"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ma-enterprise/storefront-backend/internal/order"
)

// Callback verification outcomes.
const (
	StatusVerified = "verified"
	StatusFailed   = "failed"
)

// Gateway is the slice of the client the verifier needs.
type Gateway interface {
	Verify(ctx context.Context, transactionID string) (VerifyResult, error)
}

// Confirmer is the hand-off into the order lifecycle once a payment is
// verified.
type Confirmer interface {
	ConfirmPayment(orderID int, method string) (order.Order, error)
}

// CallbackResult is the terminal state of one callback invocation.
type CallbackResult struct {
	Status        string `json:"status"`
	OrderID       string `json:"orderId,omitempty"`
	TransactionID string `json:"transactionId,omitempty"`
	Amount        int    `json:"amount,omitempty"`
	Message       string `json:"message,omitempty"`
	// Retry signals the UI to offer a path back to checkout.
	Retry bool `json:"retry,omitempty"`
}

// Verifier resolves the provider's redirect-back into a terminal state.
// It tolerates being re-invoked for the same transaction (page reload):
// verification is re-issued to the gateway and order confirmation is
// idempotent.
type Verifier struct {
	gateway Gateway
	orders  Confirmer
	// delay between verification and order confirmation, so the UI can
	// show the confirmation screen first; cancellable via the request
	// context
	delay time.Duration
	log   *logrus.Logger
}

func NewVerifier(gateway Gateway, orders Confirmer, delay time.Duration, log *logrus.Logger) *Verifier {
	if log == nil {
		log = logrus.New()
	}
	return &Verifier{gateway: gateway, orders: orders, delay: delay, log: log}
}

// HandleCallback runs the verification state machine for one redirect.
func (v *Verifier) HandleCallback(ctx context.Context, transactionID, orderID string) CallbackResult {
	if transactionID == "" || orderID == "" {
		return CallbackResult{
			Status:  StatusFailed,
			Message: "invalid payment response",
			Retry:   true,
		}
	}

	orderNum, err := strconv.Atoi(orderID)
	if err != nil || orderNum <= 0 {
		return CallbackResult{
			Status:  StatusFailed,
			Message: "invalid payment response",
			Retry:   true,
		}
	}

	result, err := v.gateway.Verify(ctx, transactionID)
	if err != nil {
		v.log.WithError(err).WithField("transactionId", transactionID).Warn("payment verification failed")
		message := "failed to verify payment status"
		if gwErr, ok := err.(*GatewayError); ok {
			message = gwErr.Message
		}
		return CallbackResult{
			Status:        StatusFailed,
			OrderID:       orderID,
			TransactionID: transactionID,
			Message:       message,
			Retry:         true,
		}
	}

	verified := CallbackResult{
		Status:        StatusVerified,
		OrderID:       orderID,
		TransactionID: transactionID,
		Amount:        result.Amount,
	}

	// the confirmation hand-off is a scheduled continuation; a client
	// that navigates away cancels it rather than leaving dangling work
	if !v.wait(ctx) {
		v.log.WithField("orderId", orderID).Info("callback abandoned before confirmation")
		return verified
	}

	ord, err := v.orders.ConfirmPayment(orderNum, "easypaisa")
	if err != nil {
		switch err {
		case order.ErrNotFound:
			return CallbackResult{
				Status:        StatusFailed,
				OrderID:       orderID,
				TransactionID: transactionID,
				Message:       "order not found",
			}
		case order.ErrOrderClosed:
			return CallbackResult{
				Status:        StatusFailed,
				OrderID:       orderID,
				TransactionID: transactionID,
				Message:       "order is no longer payable",
			}
		default:
			// payment is verified but the store update failed; the
			// order stays pending so the confirmation can be retried
			return CallbackResult{
				Status:        StatusFailed,
				OrderID:       orderID,
				TransactionID: transactionID,
				Message:       "payment verified but order update failed, please retry or contact support",
				Retry:         true,
			}
		}
	}

	verified.Amount = result.Amount
	verified.Message = "payment confirmed"
	v.log.WithFields(logrus.Fields{
		"orderId":       ord.OrderID,
		"transactionId": transactionID,
		"amount":        result.Amount,
	}).Info("payment confirmed")
	return verified
}

// wait sleeps for the configured delay unless the context ends first.
// Reports whether the delay ran to completion.
func (v *Verifier) wait(ctx context.Context) bool {
	if v.delay <= 0 {
		return true
	}
	timer := time.NewTimer(v.delay)
	defer timer.Stop()
	select {
	case <-timer.C:
		return true
	case <-ctx.Done():
		return false
	}
}
