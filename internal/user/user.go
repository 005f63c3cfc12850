package user

type User struct {
	ID          int    `json:"userId"`
	Email       string `json:"email"`
	Password    string `json:"password,omitempty"`
	DisplayName string `json:"displayName"`

	// Cart maps productID to quantity. The cart lives on the user row so
	// it survives sessions; the cart package owns all mutation.
	Cart map[int]int `json:"cart,omitempty"`

	FavoriteProductIDs []int  `json:"favoriteProductId,omitempty"`
	CreatedAt          string `json:"createdAt,omitempty"`
	UpdatedAt          string `json:"updatedAt,omitempty"`
}
