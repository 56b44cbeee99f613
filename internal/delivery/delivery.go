// Package delivery defines the contract every transport front-end of the
// application fulfills. Servers are collected into an fx value group and
// started together by the entrypoint.
package delivery

import "context"

// Delivery is a long-running request front-end, such as the HTTP server.
type Delivery interface {
	// Serve blocks until the delivery stops or the context is canceled.
	Serve(ctx context.Context) error
}
