package order

import "context"

// Notification is an outbound message to a counterparty
type Notification struct {
	Recipient string
	Subject   string
	Body      string
}

// Notifier sends outbound notifications. Delivery is fire-and-forget:
// a failure never affects the correctness of a committed order and is
// reported to the caller as a non-fatal warning.
type Notifier interface {
	Send(ctx context.Context, n Notification) error
}
