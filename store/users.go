package store

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

const (
	usersCollection     = "users"
	referralsCollection = "referrals"
)

// Repository provides access to the users and referrals collections.
type Repository struct {
	users     *mongo.Collection
	referrals *mongo.Collection
	client    *mongo.Client
	now       func() time.Time
}

// RepositoryOption configures a Repository.
type RepositoryOption func(*Repository)

// WithClock overrides the time source, used in tests.
func WithClock(now func() time.Time) RepositoryOption {
	return func(r *Repository) {
		if now != nil {
			r.now = now
		}
	}
}

// NewRepository creates a repository over the given database.
func NewRepository(db *mongo.Database, opts ...RepositoryOption) *Repository {
	r := &Repository{
		users:     db.Collection(usersCollection),
		referrals: db.Collection(referralsCollection),
		client:    db.Client(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Get fetches a user by uid.
func (r *Repository) Get(ctx context.Context, uid string) (*User, error) {
	var u User
	err := r.users.FindOne(ctx, bson.M{"_id": uid}).Decode(&u)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrUserNotFound
		}
		return nil, errors.Join(ErrReadFailed, err)
	}
	return &u, nil
}

// Create inserts the seed profile document supplied at signup.
func (r *Repository) Create(ctx context.Context, u *User) error {
	now := r.now().UTC()
	u.CreatedAt = now
	u.UpdatedAt = now

	if _, err := r.users.InsertOne(ctx, u); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrUserExists
		}
		return errors.Join(ErrWriteFailed, err)
	}
	return nil
}

// Defaults holds the profile fields filled in when absent.
type Defaults struct {
	Email   string
	Name    string
	Photo   string
	Plan    string
	Credits int
}

// EnsureDefaults merges default profile fields into the user document. Only
// fields the document does not already carry are written; values the client
// set at signup survive. Upserts so provisioning works even when the seed
// insert was skipped.
func (r *Repository) EnsureDefaults(ctx context.Context, uid string, d Defaults) error {
	now := r.now().UTC()

	pipeline := mongo.Pipeline{
		bson.D{{Key: "$set", Value: bson.M{
			"email":         bson.M{"$ifNull": bson.A{"$email", d.Email}},
			"name":          bson.M{"$ifNull": bson.A{"$name", d.Name}},
			"photo":         bson.M{"$ifNull": bson.A{"$photo", d.Photo}},
			"plan":          bson.M{"$ifNull": bson.A{"$plan", d.Plan}},
			"AiCredits":     bson.M{"$ifNull": bson.A{"$AiCredits", d.Credits}},
			"AiScanCount":   bson.M{"$ifNull": bson.A{"$AiScanCount", 0}},
			"referralCount": bson.M{"$ifNull": bson.A{"$referralCount", 0}},
			"termsAccepted": bson.M{"$ifNull": bson.A{"$termsAccepted", false}},
			"createdAt":     bson.M{"$ifNull": bson.A{"$createdAt", now}},
			"updatedAt":     now,
		}}},
	}

	_, err := r.users.UpdateByID(ctx, uid, pipeline, options.UpdateOne().SetUpsert(true))
	if err != nil {
		return errors.Join(ErrWriteFailed, err)
	}
	return nil
}

// AwardReferral credits the inviter and bumps their referral count, returning
// the updated inviter document. ErrUserNotFound if the inviter is unknown.
func (r *Repository) AwardReferral(ctx context.Context, inviterID string, reward int) (*User, error) {
	update := bson.M{
		"$inc": bson.M{"AiCredits": reward, "referralCount": 1},
		"$set": bson.M{"updatedAt": r.now().UTC()},
	}

	var u User
	err := r.users.FindOneAndUpdate(ctx, bson.M{"_id": inviterID}, update,
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&u)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrUserNotFound
		}
		return nil, errors.Join(ErrWriteFailed, err)
	}
	return &u, nil
}

// AppendReferral records a completed referral in the audit collection.
func (r *Repository) AppendReferral(ctx context.Context, ref *Referral) error {
	if ref.Timestamp.IsZero() {
		ref.Timestamp = r.now().UTC()
	}
	if _, err := r.referrals.InsertOne(ctx, ref); err != nil {
		return errors.Join(ErrWriteFailed, err)
	}
	return nil
}

// CheckCredits verifies the user has a positive credit balance inside a
// transaction so a concurrent debit cannot slip between read and decision.
// Returns ErrNoCredits when the balance is zero or below, ErrUserNotFound for
// unknown users.
func (r *Repository) CheckCredits(ctx context.Context, uid string) error {
	session, err := r.client.StartSession()
	if err != nil {
		return errors.Join(ErrReadFailed, err)
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(ctx context.Context) (any, error) {
		var u User
		if err := r.users.FindOne(ctx, bson.M{"_id": uid}).Decode(&u); err != nil {
			if errors.Is(err, mongo.ErrNoDocuments) {
				return nil, ErrUserNotFound
			}
			return nil, err
		}
		if u.AiCredits <= 0 {
			return nil, ErrNoCredits
		}
		return nil, nil
	})
	if err != nil {
		if errors.Is(err, ErrNoCredits) || errors.Is(err, ErrUserNotFound) {
			return err
		}
		return errors.Join(ErrReadFailed, err)
	}
	return nil
}

// DebitScanCredit spends one credit and counts the scan. The filter
// requires a positive balance so concurrent scans can never drive the
// balance negative.
func (r *Repository) DebitScanCredit(ctx context.Context, uid string) error {
	filter := bson.M{"_id": uid, "AiCredits": bson.M{"$gt": 0}}
	update := bson.M{
		"$inc": bson.M{"AiCredits": -1, "AiScanCount": 1},
		"$set": bson.M{"updatedAt": r.now().UTC()},
	}
	res, err := r.users.UpdateOne(ctx, filter, update)
	if err != nil {
		return errors.Join(ErrWriteFailed, err)
	}
	if res.MatchedCount == 0 {
		return ErrNoCredits
	}
	return nil
}

// PlanChange describes a plan write originating from billing events or a
// manual sync.
type PlanChange struct {
	Plan        string
	Credits     int
	WebhookType string // set when the change came from a billing webhook
	ManualSync  bool   // set when the change came from a user-initiated sync
}

// ApplyPlanChange writes the new plan with a full credit allowance and the
// source-specific bookkeeping stamps. Upserts with merge semantics so a plan
// event for a not-yet-provisioned user still lands.
func (r *Repository) ApplyPlanChange(ctx context.Context, uid string, change PlanChange) error {
	now := r.now().UTC()

	set := bson.M{
		"plan":      change.Plan,
		"AiCredits": change.Credits,
		"updatedAt": now,
	}
	if change.WebhookType != "" {
		set["lastWebhookType"] = change.WebhookType
	}
	if change.ManualSync {
		set["lastSyncAt"] = now
		set["lastSyncSource"] = SyncSourceManual
	}

	_, err := r.users.UpdateByID(ctx, uid, bson.M{"$set": set}, options.UpdateOne().SetUpsert(true))
	if err != nil {
		return errors.Join(ErrWriteFailed, err)
	}
	return nil
}
