package web

import "context"

// Server is the optional HTTP surface started and stopped with the app.
type Server interface {
	Start(ctx context.Context) error
	Stop() error
}
