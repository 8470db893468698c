package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/graph-gophers/dataloader/v7"
)

// DataLoaderContextKey is the key used to store dataloaders in context
type DataLoaderContextKey string

const dataLoaderKey DataLoaderContextKey = "dataloader"

// batchWait is how long a loader collects keys before hitting the store.
const batchWait = 2 * time.Millisecond

// DataLoaders batches the pet and user lookups made while building match listings.
type DataLoaders struct {
	PetLoader  *dataloader.Loader[uuid.UUID, *Pet]
	UserLoader *dataloader.Loader[uuid.UUID, *User]
}

// NewDataLoaders creates loaders backed by the store
func NewDataLoaders(store Store) *DataLoaders {
	return &DataLoaders{
		PetLoader:  dataloader.NewBatchedLoader(batchFromMap(store.GetPets), dataloader.WithWait[uuid.UUID, *Pet](batchWait)),
		UserLoader: dataloader.NewBatchedLoader(batchFromMap(store.GetUsers), dataloader.WithWait[uuid.UUID, *User](batchWait)),
	}
}

// GetDataLoadersFromContext retrieves dataloaders from context
func GetDataLoadersFromContext(ctx context.Context) *DataLoaders {
	if dl, ok := ctx.Value(dataLoaderKey).(*DataLoaders); ok {
		return dl
	}
	return nil
}

// WithDataLoaders adds dataloaders to context
func WithDataLoaders(ctx context.Context, dl *DataLoaders) context.Context {
	return context.WithValue(ctx, dataLoaderKey, dl)
}

// loaders returns the request's dataloaders, or fresh ones when the route
// is not wrapped by DataLoaderMiddleware.
func (s *server) loaders(r *http.Request) *DataLoaders {
	if dl := GetDataLoadersFromContext(r.Context()); dl != nil {
		return dl
	}
	return NewDataLoaders(s.store)
}

// loadMatchParties resolves the pet and adopter of every match. All loads
// are queued before any is resolved so each loader issues one batch.
// Rows that no longer exist come back nil.
func loadMatchParties(ctx context.Context, loaders *DataLoaders, matches []*Match) ([]*Pet, []*User, error) {
	petThunks := make([]func() (*Pet, error), len(matches))
	userThunks := make([]func() (*User, error), len(matches))
	for i, m := range matches {
		petThunks[i] = loaders.PetLoader.Load(ctx, m.PetID)
		userThunks[i] = loaders.UserLoader.Load(ctx, m.UserID)
	}

	pets := make([]*Pet, len(matches))
	users := make([]*User, len(matches))
	for i := range matches {
		pet, err := petThunks[i]()
		if err != nil && !errors.Is(err, ErrNotFound) {
			return nil, nil, fmt.Errorf("loading pet %s: %w", matches[i].PetID, err)
		}
		user, err := userThunks[i]()
		if err != nil && !errors.Is(err, ErrNotFound) {
			return nil, nil, fmt.Errorf("loading user %s: %w", matches[i].UserID, err)
		}
		pets[i], users[i] = pet, user
	}
	return pets, users, nil
}

// batchFromMap adapts a "fetch many by id" store call into a batch function.
// Results keep the order of keys; ids missing from the store get ErrNotFound.
func batchFromMap[V any](fetch func(context.Context, []uuid.UUID) (map[uuid.UUID]V, error)) dataloader.BatchFunc[uuid.UUID, V] {
	return func(ctx context.Context, keys []uuid.UUID) []*dataloader.Result[V] {
		results := make([]*dataloader.Result[V], len(keys))

		found, err := fetch(ctx, keys)
		for i, key := range keys {
			if err != nil {
				results[i] = &dataloader.Result[V]{Error: err}
				continue
			}
			v, ok := found[key]
			if !ok {
				results[i] = &dataloader.Result[V]{Error: ErrNotFound}
				continue
			}
			results[i] = &dataloader.Result[V]{Data: v}
		}
		return results
	}
}
