package billing

import (
	"errors"
	"fmt"
)

// Validation errors for the payment section of an order.
var (
	ErrNegativeDiscount    = errors.New("discount cannot be negative")
	ErrDiscountExceedsBill = errors.New("discount cannot exceed the bill total")
	ErrMissingReason       = errors.New("a discount reason is required")
	ErrNegativePayment     = errors.New("paid amount cannot be negative")
	ErrOverpayment         = errors.New("paid amount cannot exceed the net payable")
)

// Totals is the derived money state of an order: gross total, net payable
// after discount, and the amount still due after payment.
type Totals struct {
	Total float64 `json:"total"`
	Net   float64 `json:"net"`
	Due   float64 `json:"due"`
}

// Compute derives the totals from the cart total, discount and paid amount.
// Net and Due are clamped at zero, so the result is safe for any
// non-negative inputs.
func Compute(total, discount, paid float64) Totals {
	net := total - discount
	if net < 0 {
		net = 0
	}
	due := net - paid
	if due < 0 {
		due = 0
	}
	return Totals{Total: total, Net: net, Due: due}
}

// Validate checks the discount and payment inputs against the cart total
// before an order may be submitted.
func Validate(total, discount float64, reason string, paid float64) error {
	if discount < 0 {
		return ErrNegativeDiscount
	}
	if discount > total {
		return fmt.Errorf("%w: discount %.2f on total %.2f", ErrDiscountExceedsBill, discount, total)
	}
	if discount > 0 && reason == "" {
		return ErrMissingReason
	}
	if paid < 0 {
		return ErrNegativePayment
	}
	if net := Compute(total, discount, paid).Net; paid > net {
		return fmt.Errorf("%w: paid %.2f, net %.2f", ErrOverpayment, paid, net)
	}
	return nil
}
