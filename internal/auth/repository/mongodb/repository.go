// Package mongodb stores accounts in a MongoDB collection. Refresh-token
// changes are single-document updates, so concurrent requests for the same
// account never lose or duplicate a token.
package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/AnthoniusHendriyanto/travel-auth/internal/auth/domain"
	autherror "github.com/AnthoniusHendriyanto/travel-auth/internal/errors"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// accountDocument is the stored shape of an account. Field names match the
// documents already present in the customers collection.
type accountDocument struct {
	ID            bson.ObjectID `bson:"_id,omitempty"`
	Email         string        `bson:"email"`
	FederatedUID  string        `bson:"firebaseUid"`
	FullName      string        `bson:"fullName"`
	Phone         string        `bson:"phone"`
	PhotoURL      string        `bson:"photo"`
	PasswordHash  string        `bson:"password,omitempty"`
	RefreshTokens []string      `bson:"refreshTokens"`
	IsActive      bool          `bson:"isActive"`
	CreatedAt     time.Time     `bson:"createdAt"`
	UpdatedAt     time.Time     `bson:"updatedAt"`
	LastLoginAt   *time.Time    `bson:"lastLogin"`
}

type Repository struct {
	coll *mongo.Collection
}

func NewRepository(coll *mongo.Collection) *Repository {
	return &Repository{coll: coll}
}

// EnsureIndexes creates the unique email index and the federated UID lookup index.
func (r *Repository) EnsureIndexes(ctx context.Context) error {
	if r.coll == nil {
		return autherror.ErrStoreUnavailable
	}
	_, err := r.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("email_unique"),
		},
		{
			Keys:    bson.D{{Key: "firebaseUid", Value: 1}},
			Options: options.Index().SetName("firebase_uid"),
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create indexes: %w", storeError(err))
	}
	return nil
}

func (r *Repository) FindByEmail(ctx context.Context, email string) (*domain.Account, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

func (r *Repository) FindByID(ctx context.Context, id string) (*domain.Account, error) {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, nil
	}
	return r.findOne(ctx, bson.M{"_id": oid})
}

func (r *Repository) findOne(ctx context.Context, filter bson.M) (*domain.Account, error) {
	if r.coll == nil {
		return nil, autherror.ErrStoreUnavailable
	}

	var doc accountDocument
	err := r.coll.FindOne(ctx, filter).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find account: %w", storeError(err))
	}
	return toDomain(&doc), nil
}

func (r *Repository) Insert(ctx context.Context, account *domain.Account) (string, error) {
	if r.coll == nil {
		return "", autherror.ErrStoreUnavailable
	}

	doc := fromDomain(account)
	doc.ID = bson.NewObjectID()
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return "", autherror.ErrEmailAlreadyInUse
		}
		return "", fmt.Errorf("failed to insert account: %w", storeError(err))
	}
	return doc.ID.Hex(), nil
}

func (r *Repository) Update(ctx context.Context, id string, patch domain.AccountPatch) error {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return autherror.ErrAccountNotFound
	}
	res, err := r.updateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": patchSet(patch)})
	if err != nil {
		return fmt.Errorf("failed to update account: %w", err)
	}
	if res.MatchedCount == 0 {
		return autherror.ErrAccountNotFound
	}
	return nil
}

// PushRefreshToken appends token and trims the array to its newest limit entries.
func (r *Repository) PushRefreshToken(ctx context.Context, id, token string, limit int) error {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return autherror.ErrAccountNotFound
	}
	update := bson.M{
		"$push": bson.M{"refreshTokens": bson.M{"$each": bson.A{token}, "$slice": -limit}},
		"$set":  bson.M{"updatedAt": time.Now().UTC()},
	}
	res, err := r.updateOne(ctx, bson.M{"_id": oid}, update)
	if err != nil {
		return fmt.Errorf("failed to push refresh token: %w", err)
	}
	if res.MatchedCount == 0 {
		return autherror.ErrAccountNotFound
	}
	return nil
}

// RotateRefreshToken replaces oldToken with newToken. The filter only matches
// while oldToken is still stored, so of two concurrent rotations of the same
// token exactly one succeeds.
func (r *Repository) RotateRefreshToken(ctx context.Context, id, oldToken, newToken string, limit int) error {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return autherror.ErrRefreshTokenNotFound
	}
	filter := bson.M{"_id": oid, "refreshTokens": oldToken}
	res, err := r.updateOne(ctx, filter, rotatePipeline(oldToken, newToken, limit))
	if err != nil {
		return fmt.Errorf("failed to rotate refresh token: %w", err)
	}
	if res.MatchedCount == 0 {
		return autherror.ErrRefreshTokenNotFound
	}
	return nil
}

func (r *Repository) RemoveRefreshToken(ctx context.Context, id, token string) error {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil
	}
	update := bson.M{
		"$pull": bson.M{"refreshTokens": token},
		"$set":  bson.M{"updatedAt": time.Now().UTC()},
	}
	if _, err := r.updateOne(ctx, bson.M{"_id": oid}, update); err != nil {
		return fmt.Errorf("failed to remove refresh token: %w", err)
	}
	return nil
}

func (r *Repository) updateOne(ctx context.Context, filter bson.M, update any) (*mongo.UpdateResult, error) {
	if r.coll == nil {
		return nil, autherror.ErrStoreUnavailable
	}
	res, err := r.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return nil, storeError(err)
	}
	return res, nil
}

// rotatePipeline drops oldToken, appends newToken and keeps the newest limit
// entries. $pull and $push cannot target the same field in one update, hence
// the aggregation pipeline.
func rotatePipeline(oldToken, newToken string, limit int) mongo.Pipeline {
	kept := bson.M{"$filter": bson.M{
		"input": "$refreshTokens",
		"cond":  bson.M{"$ne": bson.A{"$$this", oldToken}},
	}}
	return mongo.Pipeline{
		{{Key: "$set", Value: bson.D{
			{Key: "refreshTokens", Value: bson.M{"$slice": bson.A{
				bson.M{"$concatArrays": bson.A{kept, bson.A{newToken}}},
				-limit,
			}}},
			{Key: "updatedAt", Value: "$$NOW"},
		}}},
	}
}

func patchSet(patch domain.AccountPatch) bson.M {
	set := bson.M{"updatedAt": time.Now().UTC()}
	if patch.FullName != nil {
		set["fullName"] = *patch.FullName
	}
	if patch.Phone != nil {
		set["phone"] = *patch.Phone
	}
	if patch.PhotoURL != nil {
		set["photo"] = *patch.PhotoURL
	}
	if patch.FederatedUID != nil {
		set["firebaseUid"] = *patch.FederatedUID
	}
	if patch.PasswordHash != nil {
		set["password"] = *patch.PasswordHash
	}
	if patch.IsActive != nil {
		set["isActive"] = *patch.IsActive
	}
	if patch.LastLoginAt != nil {
		set["lastLogin"] = *patch.LastLoginAt
	}
	if patch.ClearRefreshTokens {
		set["refreshTokens"] = bson.A{}
	}
	return set
}

// storeError marks connectivity failures with ErrStoreUnavailable so the
// HTTP layer can tell them apart from query bugs.
func storeError(err error) error {
	if mongo.IsTimeout(err) || mongo.IsNetworkError(err) ||
		errors.Is(err, context.DeadlineExceeded) || errors.Is(err, mongo.ErrClientDisconnected) {
		return fmt.Errorf("%w: %w", autherror.ErrStoreUnavailable, err)
	}
	return err
}

func toDomain(doc *accountDocument) *domain.Account {
	tokens := doc.RefreshTokens
	if tokens == nil {
		tokens = []string{}
	}
	return &domain.Account{
		ID:            doc.ID.Hex(),
		Email:         doc.Email,
		FederatedUID:  doc.FederatedUID,
		FullName:      doc.FullName,
		Phone:         doc.Phone,
		PhotoURL:      doc.PhotoURL,
		PasswordHash:  doc.PasswordHash,
		RefreshTokens: tokens,
		IsActive:      doc.IsActive,
		CreatedAt:     doc.CreatedAt,
		UpdatedAt:     doc.UpdatedAt,
		LastLoginAt:   doc.LastLoginAt,
	}
}

func fromDomain(a *domain.Account) *accountDocument {
	tokens := a.RefreshTokens
	if tokens == nil {
		tokens = []string{}
	}
	return &accountDocument{
		Email:         a.Email,
		FederatedUID:  a.FederatedUID,
		FullName:      a.FullName,
		Phone:         a.Phone,
		PhotoURL:      a.PhotoURL,
		PasswordHash:  a.PasswordHash,
		RefreshTokens: tokens,
		IsActive:      a.IsActive,
		CreatedAt:     a.CreatedAt,
		UpdatedAt:     a.UpdatedAt,
		LastLoginAt:   a.LastLoginAt,
	}
}
