package main

import (
	"net/http"
)

// DataLoaderMiddleware creates middleware that injects dataloaders into the request context
func DataLoaderMiddleware(store Store) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// New loaders per request so cached rows never outlive the request
			ctx := WithDataLoaders(r.Context(), NewDataLoaders(store))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
