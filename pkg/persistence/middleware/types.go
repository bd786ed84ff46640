// Package middleware wraps a ports.RecordStore with cross-cutting behavior
// such as encryption at rest or masking of sensitive attributes.
package middleware

import "github.com/aretw0/stepwise/pkg/ports"

// Middleware allows wrapping a RecordStore to add behavior.
type Middleware func(ports.RecordStore) ports.RecordStore

// Chain applies the middlewares so that the first one is the outermost.
func Chain(store ports.RecordStore, mws ...Middleware) ports.RecordStore {
	for i := len(mws) - 1; i >= 0; i-- {
		store = mws[i](store)
	}
	return store
}
