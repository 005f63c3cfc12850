package category

// Category is a storefront navigation entry.
type Category struct {
	ID   int    `json:"categoryId"`
	Name string `json:"categoryName"`
	Ord  int    `json:"ord"`
}
