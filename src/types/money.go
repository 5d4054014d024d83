package types

// Money is an amount in the minor unit of the currency (cents, kobo).
// Amounts stay in minor units on both sides of the gateway boundary;
// nothing in this codebase converts to major units.
type Money int64

func (m Money) Times(qty uint) Money {
	return m * Money(qty)
}

// Percent applies a percentage with round-half-up on the minor unit.
// Every refund amount in the system goes through this one rule so ledger
// arithmetic stays reconcilable.
func (m Money) Percent(pct uint) Money {
	return Money((int64(m)*int64(pct) + 50) / 100)
}
