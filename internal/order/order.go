package order

// Order statuses. Transitions are monotonic: a pending order may become
// paid or cancelled; paid and cancelled are terminal.
const (
	StatusPending   = "pending"
	StatusPaid      = "paid"
	StatusFailed    = "failed"
	StatusCancelled = "cancelled"
)

// LineItem is a cart line snapshotted at checkout time. Price is the
// unit price when the order was created, so later catalog edits do not
// change history.
type LineItem struct {
	ProductID int    `json:"productId"`
	Name      string `json:"name"`
	Price     int    `json:"price"`
	Quantity  int    `json:"quantity"`
}

// Buyer carries the contact fields collected on the payment form.
type Buyer struct {
	FullName     string `json:"fullName"`
	MobileNumber string `json:"mobileNumber"`
	Email        string `json:"email"`
	Address      string `json:"address"`
	PostalCode   string `json:"postalCode"`
	City         string `json:"city"`
}

// Order represents a purchase made by a user.
type Order struct {
	OrderID       int        `json:"orderId"`
	UserID        int        `json:"userId"`
	Items         []LineItem `json:"items"`
	Total         int        `json:"total"`
	Buyer         Buyer      `json:"buyer"`
	Status        string     `json:"status"`
	PaymentMethod string     `json:"paymentMethod,omitempty"`
	PaymentDate   string     `json:"paymentDate,omitempty"`
	CreatedAt     string     `json:"createdAt"`
	UpdatedAt     string     `json:"updatedAt"`
}
