// Package delivery defines the entry points through which the outside world
// reaches the application.
package delivery

import "context"

// Delivery is a serving surface (HTTP today). Serve blocks until the
// context is canceled or the listener fails.
type Delivery interface {
	Serve(ctx context.Context) error
}
