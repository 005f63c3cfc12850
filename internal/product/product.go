package product

// Product represents a catalog item and maps to the `products` table.
// Prices are whole PKR.
type Product struct {
	ID          int     `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       int     `json:"price"`
	Category    string  `json:"category"`
	Image       string  `json:"image,omitempty"`
	Rating      float64 `json:"rating"`
	CreatedAt   string  `json:"createdAt,omitempty"`
	UpdatedAt   string  `json:"updatedAt,omitempty"`
}

// Filter narrows a catalog listing. Zero values leave the dimension
// unfiltered; MaxPrice 0 means no upper bound.
type Filter struct {
	Category string
	Query    string
	MinPrice int
	MaxPrice int
}
