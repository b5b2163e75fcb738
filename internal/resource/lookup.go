package resource

import (
	"context"

	"go-gin-resource-api/internal/docstore"
	"go-gin-resource-api/internal/domain"
)

// FindOne returns the first record whose key equals value.
func FindOne[T domain.Entity](ctx context.Context, repo Repo[T], key string, value any) (T, bool, error) {
	var zero T
	res, err := repo.Paginate(ctx, PaginationOptions{
		Page:    1,
		Limit:   1,
		Filters: []docstore.Filter{{Key: key, Op: docstore.OpEq, Value: value}},
	})
	if err != nil {
		return zero, false, err
	}
	if res == nil || len(res.Data) == 0 {
		return zero, false, nil
	}
	return res.Data[0], true, nil
}

// Taken reports whether another record than selfID already uses value for key.
func Taken[T domain.Entity](ctx context.Context, repo Repo[T], key string, value any, selfID string) (bool, error) {
	found, ok, err := FindOne(ctx, repo, key, value)
	if err != nil || !ok {
		return false, err
	}
	return found.GetID() != selfID, nil
}
