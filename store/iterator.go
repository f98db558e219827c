package store

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// DefaultPageSize matches the batch limit the bulk writes are sized for.
const DefaultPageSize = 500

// IterOption configures a user iterator.
type IterOption func(*Iterator)

// WithPageSize overrides the page size.
func WithPageSize(n int) IterOption {
	return func(it *Iterator) {
		if n > 0 {
			it.pageSize = n
		}
	}
}

// WithJurisdiction restricts iteration to users in one jurisdiction.
func WithJurisdiction(country string) IterOption {
	return func(it *Iterator) {
		it.jurisdiction = country
	}
}

// WithStartAfter resumes iteration after the given uid, e.g. from a
// previously saved Cursor value.
func WithStartAfter(uid string) IterOption {
	return func(it *Iterator) {
		it.cursor = uid
	}
}

// Iterator pages through the users collection in _id order. Pages are bounded
// so jobs over large collections keep a flat memory profile.
type Iterator struct {
	repo         *Repository
	pageSize     int
	jurisdiction string
	cursor       string
	done         bool
}

// Iterate creates a paginated iterator over all users.
func (r *Repository) Iterate(opts ...IterOption) *Iterator {
	it := &Iterator{repo: r, pageSize: DefaultPageSize}
	for _, opt := range opts {
		opt(it)
	}
	return it
}

// Next returns the next page of users, or nil when iteration is exhausted.
func (it *Iterator) Next(ctx context.Context) ([]User, error) {
	if it.done {
		return nil, nil
	}

	filter := bson.M{}
	if it.jurisdiction != "" {
		filter["jurisdiction"] = it.jurisdiction
	}
	if it.cursor != "" {
		filter["_id"] = bson.M{"$gt": it.cursor}
	}

	findOpts := options.Find().
		SetSort(bson.D{{Key: "_id", Value: 1}}).
		SetLimit(int64(it.pageSize))

	cur, err := it.repo.users.Find(ctx, filter, findOpts)
	if err != nil {
		return nil, errors.Join(ErrReadFailed, err)
	}

	var page []User
	if err := cur.All(ctx, &page); err != nil {
		return nil, errors.Join(ErrReadFailed, err)
	}

	if len(page) == 0 {
		it.done = true
		return nil, nil
	}

	it.cursor = page[len(page)-1].ID
	if len(page) < it.pageSize {
		it.done = true
	}
	return page, nil
}

// Cursor returns the uid of the last user yielded, usable with
// WithStartAfter to resume a scan.
func (it *Iterator) Cursor() string { return it.cursor }
