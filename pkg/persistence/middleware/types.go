// Package middleware decorates a ports.DrawingStore with behaviour applied at the storage boundary.
package middleware

import "github.com/aretw0/atidraw/pkg/ports"

// Middleware allows wrapping a DrawingStore to add behavior.
type Middleware func(ports.DrawingStore) ports.DrawingStore

// Chain wraps store with mws. The first middleware is the outermost one.
func Chain(store ports.DrawingStore, mws ...Middleware) ports.DrawingStore {
	for i := len(mws) - 1; i >= 0; i-- {
		store = mws[i](store)
	}
	return store
}

// closer forwards Close to the wrapped store when it has one.
type closer struct {
	next ports.DrawingStore
}

func (c closer) Close() error {
	if cl, ok := c.next.(interface{ Close() error }); ok {
		return cl.Close()
	}
	return nil
}
