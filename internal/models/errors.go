package models

import "errors"

// ErrNotFound is matched by every missing-resource error
var ErrNotFound = errors.New("not found")

var (
	ErrGameNotFound     = &NotFoundError{Resource: "game"}
	ErrOrderNotFound    = &NotFoundError{Resource: "order"}
	ErrCustomerNotFound = &NotFoundError{Resource: "customer"}
)

// NotFoundError reports a missing game, order or customer
type NotFoundError struct {
	Resource string
}

func (e *NotFoundError) Error() string {
	return e.Resource + " not found"
}

// Is makes every NotFoundError match ErrNotFound
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}
