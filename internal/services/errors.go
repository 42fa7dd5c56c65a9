package services

import (
	"errors"
	"fmt"
)

// Sentinel errors for the simple failure cases.
var (
	// ErrEmptyCart is returned when a commit is attempted with no line items.
	ErrEmptyCart = errors.New("cart has no items")
	// ErrNotFound is returned by read operations for a nonexistent record.
	ErrNotFound = errors.New("not found")
)

// ProductNotFoundError is returned when a cart line references a product that
// does not exist in the transaction snapshot.
type ProductNotFoundError struct {
	ProductID uint
}

func (e *ProductNotFoundError) Error() string {
	return fmt.Sprintf("product not found: id=%d", e.ProductID)
}

// Is allows matching with errors.Is regardless of the ID carried.
func (e *ProductNotFoundError) Is(target error) bool {
	_, ok := target.(*ProductNotFoundError)
	return ok
}

// InsufficientStockError is returned when a requested quantity exceeds the
// on-hand quantity, either at validation time or at write time (lost race).
type InsufficientStockError struct {
	ProductID uint
	Available int
	Requested int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock: product=%d available=%d requested=%d",
		e.ProductID, e.Available, e.Requested)
}

func (e *InsufficientStockError) Is(target error) bool {
	_, ok := target.(*InsufficientStockError)
	return ok
}

// InvalidQuantityError is returned for a cart or return line with a
// non-positive quantity.
type InvalidQuantityError struct {
	ProductID uint
	Quantity  int
}

func (e *InvalidQuantityError) Error() string {
	return fmt.Sprintf("invalid quantity: product=%d quantity=%d", e.ProductID, e.Quantity)
}

func (e *InvalidQuantityError) Is(target error) bool {
	_, ok := target.(*InvalidQuantityError)
	return ok
}

// InvalidDiscountError is returned when the requested discount violates
// its bounds: percentage outside [0,100], or a fixed discount that is negative
// or exceeds the subtotal.
type InvalidDiscountError struct {
	Reason string
}

func (e *InvalidDiscountError) Error() string {
	return "invalid discount: " + e.Reason
}

func (e *InvalidDiscountError) Is(target error) bool {
	_, ok := target.(*InvalidDiscountError)
	return ok
}

// CommitFailedError is returned when the atomic write phase fails after the
// pre-checks passed; the whole transaction has been rolled back. Cause carries
// the underlying store error or the InsufficientStockError detected by the
// conditional decrement.
type CommitFailedError struct {
	Cause error
}

func (e *CommitFailedError) Error() string {
	return fmt.Sprintf("commit failed: %v", e.Cause)
}

func (e *CommitFailedError) Unwrap() error { return e.Cause }

func (e *CommitFailedError) Is(target error) bool {
	_, ok := target.(*CommitFailedError)
	return ok
}

// ReturnExceedsInvoiceError is returned when a return would bring the
// cumulative returned quantity for a product above what the original invoice
// sold.
type ReturnExceedsInvoiceError struct {
	ProductID       uint
	Invoiced        int
	AlreadyReturned int
	Requested       int
}

func (e *ReturnExceedsInvoiceError) Error() string {
	return fmt.Sprintf("return exceeds invoice: product=%d invoiced=%d already_returned=%d requested=%d",
		e.ProductID, e.Invoiced, e.AlreadyReturned, e.Requested)
}

func (e *ReturnExceedsInvoiceError) Is(target error) bool {
	_, ok := target.(*ReturnExceedsInvoiceError)
	return ok
}
