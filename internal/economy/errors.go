package economy

import "fmt"

// ErrInsufficientFunds is returned when a purchase would overdraw the ledger.
type ErrInsufficientFunds struct {
	Balance BigNum
	Price   BigNum
}

func (e *ErrInsufficientFunds) Error() string {
	return fmt.Sprintf("insufficient funds: balance=%s price=%s", e.Balance, e.Price)
}
