package reports

import (
	"context"

	"golang.org/x/sync/singleflight"
)

var buildGroup singleflight.Group

// singleflightBuild collapses concurrent builds of key. The build outlives a
// caller that gives up, so the other waiters still get its result.
func singleflightBuild(ctx context.Context, key string, fn func(context.Context) (any, error)) (any, error, bool) {
	build := context.WithoutCancel(ctx)
	resultChan := buildGroup.DoChan(key, func() (any, error) {
		return fn(build)
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err(), false
	case res := <-resultChan:
		return res.Val, res.Err, res.Shared
	}
}
