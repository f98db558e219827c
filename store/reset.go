package store

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// CreditReset describes one user's monthly credit correction.
type CreditReset struct {
	UID     string
	Credits int
	// PreserveSync keeps the existing sync metadata untouched. Set when the
	// user completed a manual sync shortly before the reset ran, so the reset
	// does not mask a fresh upgrade.
	PreserveSync bool
}

// BulkResetCredits applies one page of credit resets as a single unordered
// bulk write.
func (r *Repository) BulkResetCredits(ctx context.Context, page []CreditReset) error {
	if len(page) == 0 {
		return nil
	}

	now := r.now().UTC()

	models := make([]mongo.WriteModel, 0, len(page))
	for _, reset := range page {
		set := bson.M{
			"AiCredits":   reset.Credits,
			"lastResetAt": now,
			"updatedAt":   now,
		}
		if !reset.PreserveSync {
			set["lastSyncSource"] = SyncSourceReset
		}

		models = append(models, mongo.NewUpdateOneModel().
			SetFilter(bson.M{"_id": reset.UID}).
			SetUpdate(bson.M{"$set": set}))
	}

	_, err := r.users.BulkWrite(ctx, models, options.BulkWrite().SetOrdered(false))
	if err != nil {
		return errors.Join(ErrWriteFailed, err)
	}
	return nil
}
