// Package async runs functions in goroutines and hands back futures.
//
// A Future is resolved exactly once. Await blocks until the value is ready or
// the caller's context is done; abandoning a future is always safe because the
// goroutine never blocks on delivery.
//
//	photos := async.Go(ctx, func(ctx context.Context) ([]model.Photo, error) {
//		return client.PhotosOfUser(ctx, userID)
//	})
//	owner := async.Go(ctx, func(ctx context.Context) (model.User, error) {
//		return client.User(ctx, userID)
//	})
//
//	list, err := photos.Await(ctx)
//	user, err2 := owner.Await(ctx)
//
// ForEach fans a function out over a slice with bounded concurrency and
// collects results in input order.
package async
