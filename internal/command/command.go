package command

import "context"

// Client consumes bot updates until ctx ends or the update channel closes.
type Client interface {
	HandleCommand(ctx context.Context) error
}
