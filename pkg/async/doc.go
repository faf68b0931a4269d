// Package async provides a small generic Future for running work on its own
// goroutine and collecting the result later.
//
//	f := async.Async(ctx, userID, fetchUser)
//	// ...
//	user, err := f.Await()
//
// AwaitContext lets a caller stop waiting without canceling the work, which is
// what the gateway's refresh coordinator relies on: the refresh keeps running
// for every queued request even when the caller that started it goes away.
//
//	cred, err := f.AwaitContext(ctx)
//	if errors.Is(err, context.Canceled) {
//		// the future still completes in the background
//	}
//
// AwaitWithTimeout returns ErrTimeout when the deadline passes first.
//
// If the context passed to Async is already canceled the function is never
// called and the future completes with the context error.
package async
