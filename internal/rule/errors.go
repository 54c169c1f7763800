package rule

import "errors"

var (
	// ErrTriggerInItems is returned when a conditional rule's trigger is
	// added to its own item set.
	ErrTriggerInItems = errors.New("trigger cannot be one of its own items")

	// ErrCapacity is returned when an ExactlyN rule would hold more than n items.
	ErrCapacity = errors.New("rule cannot hold more than n items")

	// ErrFrozen is returned when a committed rule is mutated.
	ErrFrozen = errors.New("rule is frozen")
)
