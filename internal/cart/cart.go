package cart

// Item is a cart line enriched with product details for display.
type Item struct {
	ProductID int    `json:"productId"`
	Name      string `json:"name"`
	Price     int    `json:"price"`
	Image     string `json:"image,omitempty"`
	Quantity  int    `json:"quantity"`
}
