package order

import (
	"sort"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ma-enterprise/storefront-backend/internal/product"
	"github.com/ma-enterprise/storefront-backend/internal/user"
)

// CartStore is the slice of the cart service the order lifecycle needs:
// reading the raw lines at checkout and clearing them once the order is
// paid.
type CartStore interface {
	Lines(userID int) (map[int]int, error)
	ClearCart(userID int) error
}

// Service is the order lifecycle controller. An order is created pending
// from the buyer's cart, then either confirmed paid (after a verified
// payment) or cancelled; both outcomes are terminal.
type Service struct {
	repo     Repository
	products product.ServiceInterface
	carts    CartStore
	log      *logrus.Logger
}

func NewService(repo Repository, products product.ServiceInterface, carts CartStore, log *logrus.Logger) *Service {
	if log == nil {
		log = logrus.New()
	}
	return &Service{repo: repo, products: products, carts: carts, log: log}
}

// Create snapshots the user's cart into a pending order. The total is
// computed here from current catalog prices, never trusted from the
// client. On a store failure no order exists and the cart is untouched.
func (s *Service) Create(userID int, buyer Buyer) (Order, error) {
	if userID <= 0 {
		return Order{}, ErrAuthRequired
	}

	lines, err := s.carts.Lines(userID)
	if err != nil {
		if err == user.ErrNotFound {
			return Order{}, ErrAuthRequired
		}
		s.log.WithError(err).Warn("could not read cart at checkout")
		return Order{}, ErrStoreUnavailable
	}
	if len(lines) == 0 {
		return Order{}, ErrEmptyCart
	}

	ids := make([]int, 0, len(lines))
	for pid := range lines {
		ids = append(ids, pid)
	}
	sort.Ints(ids)

	products, err := s.products.ListByIDs(ids)
	if err != nil {
		s.log.WithError(err).Warn("could not resolve cart products at checkout")
		return Order{}, ErrStoreUnavailable
	}
	if len(products) != len(ids) {
		return Order{}, ErrUnknownProduct
	}

	items := make([]LineItem, 0, len(products))
	total := 0
	for _, p := range products {
		qty := lines[p.ID]
		if qty < 1 {
			continue
		}
		items = append(items, LineItem{
			ProductID: p.ID,
			Name:      p.Name,
			Price:     p.Price,
			Quantity:  qty,
		})
		total += p.Price * qty
	}
	if len(items) == 0 {
		return Order{}, ErrEmptyCart
	}

	nowStr := now()
	created, err := s.repo.Create(Order{
		UserID:    userID,
		Items:     items,
		Total:     total,
		Buyer:     buyer,
		Status:    StatusPending,
		CreatedAt: nowStr,
		UpdatedAt: nowStr,
	})
	if err != nil {
		s.log.WithError(err).WithField("userId", userID).Error("order create failed")
		return Order{}, ErrStoreUnavailable
	}

	s.log.WithFields(logrus.Fields{
		"orderId": created.OrderID,
		"userId":  userID,
		"total":   created.Total,
	}).Info("order created")
	return created, nil
}

// ConfirmPayment transitions a pending order to paid, records the
// payment method and timestamp, and clears the buyer's cart. Confirming
// an already-paid order is a no-op success so a replayed payment
// callback converges on the same terminal state. On a failed store
// update the order stays pending and the cart keeps its contents.
func (s *Service) ConfirmPayment(orderID int, method string) (Order, error) {
	if method == "" {
		method = "easypaisa"
	}
	nowStr := now()

	transitioned, err := s.repo.MarkPaid(orderID, method, nowStr, nowStr)
	if err != nil {
		s.log.WithError(err).WithField("orderId", orderID).Error("mark paid failed")
		return Order{}, ErrStoreUnavailable
	}

	ord, err := s.repo.GetByID(orderID)
	if err != nil {
		if err == ErrNotFound {
			return Order{}, ErrNotFound
		}
		s.log.WithError(err).WithField("orderId", orderID).Error("order reload failed")
		return Order{}, ErrStoreUnavailable
	}

	if !transitioned {
		switch ord.Status {
		case StatusPaid:
			// replayed confirmation; do not clear the cart again
			return ord, nil
		default:
			return Order{}, ErrOrderClosed
		}
	}

	if err := s.carts.ClearCart(ord.UserID); err != nil {
		// the order is paid; a stale cart is an inconvenience, not a
		// reason to fail the confirmation
		s.log.WithError(err).WithField("userId", ord.UserID).Warn("could not clear cart after payment")
	}

	s.log.WithFields(logrus.Fields{
		"orderId": ord.OrderID,
		"method":  method,
	}).Info("order paid")
	return ord, nil
}

// Cancel marks a pending order cancelled in the store. Leaving aborted
// orders pending forever would make them indistinguishable from ones
// still awaiting payment, so the abort is recorded explicitly.
// Cancelling an already-cancelled order is a no-op success.
func (s *Service) Cancel(orderID int) (Order, error) {
	transitioned, err := s.repo.MarkCancelled(orderID, now())
	if err != nil {
		s.log.WithError(err).WithField("orderId", orderID).Error("mark cancelled failed")
		return Order{}, ErrStoreUnavailable
	}

	ord, err := s.repo.GetByID(orderID)
	if err != nil {
		if err == ErrNotFound {
			return Order{}, ErrNotFound
		}
		s.log.WithError(err).WithField("orderId", orderID).Error("order reload failed")
		return Order{}, ErrStoreUnavailable
	}

	if !transitioned && ord.Status != StatusCancelled {
		return Order{}, ErrOrderClosed
	}

	s.log.WithField("orderId", orderID).Info("order cancelled")
	return ord, nil
}

func (s *Service) GetByID(orderID int) (Order, error) {
	ord, err := s.repo.GetByID(orderID)
	if err != nil {
		if err == ErrNotFound {
			return Order{}, ErrNotFound
		}
		return Order{}, ErrStoreUnavailable
	}
	return ord, nil
}

func (s *Service) ListByUser(userID int) ([]Order, error) {
	orders, err := s.repo.ListByUser(userID)
	if err != nil {
		s.log.WithError(err).WithField("userId", userID).Warn("order list failed")
		return nil, ErrStoreUnavailable
	}
	return orders, nil
}

// DeleteByUser removes all of a user's orders; used during account
// deletion.
func (s *Service) DeleteByUser(userID int) error {
	if err := s.repo.DeleteByUser(userID); err != nil {
		s.log.WithError(err).WithField("userId", userID).Error("order purge failed")
		return ErrStoreUnavailable
	}
	return nil
}

// OwnedBy reports whether the order belongs to the given user.
func (ord Order) OwnedBy(userID int) bool {
	return ord.UserID == userID
}

func now() string {
	return time.Now().UTC().Format(time.RFC3339)
}

// NormalizeBuyer trims whitespace from every buyer field.
func NormalizeBuyer(b Buyer) Buyer {
	b.FullName = strings.TrimSpace(b.FullName)
	b.MobileNumber = strings.TrimSpace(b.MobileNumber)
	b.Email = strings.TrimSpace(b.Email)
	b.Address = strings.TrimSpace(b.Address)
	b.PostalCode = strings.TrimSpace(b.PostalCode)
	b.City = strings.TrimSpace(b.City)
	return b
}
