package economy

// Ledger is the simulation's coin balance. It is mutated only by completed
// sales (Credit) and purchases (Spend); a purchase that would overdraw the
// balance is rejected before anything is committed.
type Ledger struct {
	coins BigNum
}

// NewLedger creates a ledger holding start coins.
func NewLedger(start BigNum) *Ledger {
	return &Ledger{coins: start}
}

// Balance returns the current balance.
func (l *Ledger) Balance() BigNum {
	return l.coins
}

// Set overwrites the balance (used when restoring a save).
func (l *Ledger) Set(b BigNum) {
	l.coins = b
}

// Credit adds amount to the balance.
func (l *Ledger) Credit(amount float64) {
	l.CreditBig(FromFloat(amount))
}

// CreditBig adds amount to the balance.
func (l *Ledger) CreditBig(amount BigNum) {
	l.coins = l.coins.Add(amount)
}

// CanAfford reports whether price can be paid without going negative.
func (l *Ledger) CanAfford(price float64) bool {
	return l.coins.Cmp(FromFloat(price)) >= 0
}

// Spend deducts price, or returns *ErrInsufficientFunds and leaves the
// balance untouched.
func (l *Ledger) Spend(price float64) error {
	p := FromFloat(price)
	if l.coins.Cmp(p) < 0 {
		return &ErrInsufficientFunds{Balance: l.coins, Price: p}
	}
	l.coins = l.coins.Sub(p)
	return nil
}

// String renders the balance.
func (l *Ledger) String() string {
	return l.coins.String()
}
