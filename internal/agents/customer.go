package agents

import "time"

// DefaultOrderTime is how long a waiter spends taking an order.
const DefaultOrderTime = time.Second

// Customer is a worker that places one order, waits for every item of it to
// be delivered, then leaves.
type Customer struct {
	Worker

	OrderTime      time.Duration `json:"order_time"`
	ChosenCategory int           `json:"chosen_category"` // -1 until chosen
	Remaining      int           `json:"remaining"`       // -1 until ordered

	served bool
}

// NewCustomer creates a customer at (x, y) with no order.
func NewCustomer(id WorkerID, x, y, size float64, color string) *Customer {
	return &Customer{
		Worker:         *NewWorker(id, RoleCustomer, x, y, size, color),
		OrderTime:      DefaultOrderTime,
		ChosenCategory: -1,
		Remaining:      -1,
	}
}

// ChooseProduct fixes the category the customer will order.
func (c *Customer) ChooseProduct(category int) {
	c.ChosenCategory = category
}

// ProductChosen reports whether an order has been started.
func (c *Customer) ProductChosen() bool {
	return c.ChosenCategory != -1
}

// OrderProgress returns how far order-taking has come after elapsed, 0.0–1.0.
func (c *Customer) OrderProgress(elapsed time.Duration) float64 {
	if c.OrderTime <= 0 {
		return 1
	}
	p := float64(elapsed) / float64(c.OrderTime)
	if p > 1 {
		return 1
	}
	if p < 0 {
		return 0
	}
	return p
}

// PlaceOrder commits the order: the customer wants quantity products of the
// chosen category and holds token as a reminder of what was ordered.
// It returns one category entry per product to make.
func (c *Customer) PlaceOrder(quantity int, token *Product) ([]int, error) {
	if !c.ProductChosen() {
		return nil, ErrNoProductChosen
	}
	if err := c.TakeProduct(token); err != nil {
		return nil, err
	}
	c.Remaining = quantity
	orders := make([]int, quantity)
	for i := range orders {
		orders[i] = c.ChosenCategory
	}
	return orders, nil
}

// ReceiveProduct counts one delivered product against the order.
func (c *Customer) ReceiveProduct(p *Product) error {
	if p.Category != c.ChosenCategory {
		return ErrTypeMismatch
	}
	if c.Remaining <= 0 {
		return ErrOrderFilled
	}
	c.Remaining--
	return nil
}

// IsOrderCompleted reports true exactly once: on the first call after the
// last product has been received. The order token is released at that point.
func (c *Customer) IsOrderCompleted() bool {
	if c.Remaining != 0 || c.served {
		return false
	}
	c.served = true
	c.Drop()
	return true
}
