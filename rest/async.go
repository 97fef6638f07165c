package rest

import "context"

// Call is an in-flight asynchronous request started by Async.
type Call[T any] struct {
	done   chan struct{}
	value  T
	status int
	err    error
}

// Async runs fn on a new goroutine and returns immediately. Every blocking
// call in this package can be wrapped:
//
//	call := rest.Async(ctx, func(ctx context.Context) (Game, int, error) {
//	    return rest.Get[Game](ctx, client, "/api/games/1", nil)
//	})
//	game, status, err := call.Wait()
//
// Wait must not be called from inside fn itself, or from any code fn is
// waiting on, since it would block forever.
func Async[T any](ctx context.Context, fn func(context.Context) (T, int, error)) *Call[T] {
	call := &Call[T]{done: make(chan struct{})}
	go func() {
		defer close(call.done)
		call.value, call.status, call.err = fn(ctx)
	}()
	return call
}

// GoSend is Async for Client.Send.
func (c *Client) GoSend(ctx context.Context, req *Request) *Call[string] {
	return Async(ctx, func(ctx context.Context) (string, int, error) {
		return c.Send(ctx, req)
	})
}

// GoSendAs is Async for SendAs.
func GoSendAs[T any](ctx context.Context, c *Client, req *Request) *Call[T] {
	return Async(ctx, func(ctx context.Context) (T, int, error) {
		return SendAs[T](ctx, c, req)
	})
}

// Done is closed once the call has completed.
func (c *Call[T]) Done() <-chan struct{} {
	return c.done
}

// Wait blocks until the call completes and returns its outcome.
func (c *Call[T]) Wait() (T, int, error) {
	<-c.done
	return c.value, c.status, c.err
}

// WaitContext is Wait bounded by ctx. Giving up on the wait does not cancel
// the call; cancel the context passed to Async for that.
func (c *Call[T]) WaitContext(ctx context.Context) (T, int, error) {
	select {
	case <-c.done:
		return c.value, c.status, c.err
	case <-ctx.Done():
		var zero T
		return zero, 0, ctx.Err()
	}
}
