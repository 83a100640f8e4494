package models

import "github.com/pkg/errors"

// Domain errors shared by repositories, services and controllers.
var (
	ErrItemNotFound      = errors.New("item not found")
	ErrOrderNotFound     = errors.New("order not found")
	ErrOrderLineNotFound = errors.New("order line not found")
	ErrPartyNotFound     = errors.New("party not found")
	ErrUserNotFound      = errors.New("no such user")
	ErrEmailInUse        = errors.New("email already in use")

	ErrIllegalTransition = errors.New("illegal order status transition")
	ErrDuplicateOrderID  = errors.New("order id already in use")
	ErrInvalidAmount     = errors.New("amount must be a positive number")
	ErrValidation        = errors.New("validation failed")
)

// IllegalTransition wraps ErrIllegalTransition with the attempted move.
func IllegalTransition(from, to OrderStatus) error {
	return errors.Wrapf(ErrIllegalTransition, "cannot move order from %s to %s", from, to)
}
