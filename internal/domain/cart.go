package domain

// CartItem is one line of a cart. Name is the unique key within a cart;
// Price is in minor currency units.
type CartItem struct {
	Name     string `json:"name" binding:"required"`
	Price    int64  `json:"price" binding:"min=0"`
	Quantity int64  `json:"quantity"`
}

// Cart is the ordered set of lines for one table or guest session scope.
type Cart struct {
	Items []CartItem `json:"items"`
}

// Total derives the cart total from the item list on every call. It is
// deliberately never cached so it cannot drift from the lines.
func (c Cart) Total() int64 {
	var sum int64
	for _, it := range c.Items {
		sum += it.Price * it.Quantity
	}
	return sum
}

// Clone returns a deep copy safe to hand outside the owning service.
func (c Cart) Clone() Cart {
	out := Cart{Items: make([]CartItem, len(c.Items))}
	copy(out.Items, c.Items)
	return out
}
