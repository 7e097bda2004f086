package orderitem

// OrderItem represents a line within an order. UnitPriceCents is a snapshot
// of the product price taken under the row lock at placement time and never
// changes afterwards. ProductName is the current catalog name, joined at read
// time, not frozen.
type OrderItem struct {
	ID             int64  `json:"id,omitempty"`
	OrderID        int64  `json:"orderId,omitempty"`
	ProductID      int64  `json:"productId"`
	Quantity       int    `json:"quantity"`
	UnitPriceCents int64  `json:"unitPriceCents"`
	ProductName    string `json:"productName"`
}

// NewOrderItem is a requested line in a placement: what the customer asked
// for, before any price or name is attached.
type NewOrderItem struct {
	ProductID int64
	Quantity  int
}
