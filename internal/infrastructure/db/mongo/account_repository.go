package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/peerrent/auth-service/internal/core/domain"
)

const collectionAccounts = "accounts"

// AccountRepository implements ports.AccountRepository using MongoDB.
type AccountRepository struct {
	col *mongo.Collection
}

func NewAccountRepository(db *mongo.Database) *AccountRepository {
	return &AccountRepository{col: db.Collection(collectionAccounts)}
}

type accountDocument struct {
	ID                   primitive.ObjectID `bson:"_id,omitempty"`
	Email                string             `bson:"email"`
	HashedSecret         string             `bson:"hashed_secret"`
	PendingCode          string             `bson:"pending_code,omitempty"`
	PendingCodeExpiresAt *time.Time         `bson:"pending_code_expires_at,omitempty"`
	Role                 string             `bson:"role"`
	CreatedAt            time.Time          `bson:"created_at"`
	UpdatedAt            time.Time          `bson:"updated_at"`
}

// Create inserts a new account. The unique index on email turns a
// concurrent duplicate registration into domain.ErrAlreadyExists.
func (r *AccountRepository) Create(ctx context.Context, account *domain.Account) (*domain.Account, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := accountDocument{
		Email:        account.Identifier,
		HashedSecret: account.SecretHash,
		Role:         account.Role,
		CreatedAt:    account.CreatedAt,
		UpdatedAt:    account.UpdatedAt,
	}

	res, err := r.col.InsertOne(ctx, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, domain.ErrAlreadyExists
		}
		return nil, fmt.Errorf("insert account: %w", err)
	}

	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		doc.ID = oid
	}
	return doc.toDomain(), nil
}

func (r *AccountRepository) FindByIdentifier(ctx context.Context, identifier string) (*domain.Account, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc accountDocument
	if err := r.col.FindOne(ctx, bson.M{"email": identifier}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrAccountNotFound
		}
		return nil, fmt.Errorf("find account: %w", err)
	}
	return doc.toDomain(), nil
}

// SetPendingCode overwrites the code and its expiry in one update.
func (r *AccountRepository) SetPendingCode(ctx context.Context, identifier string, code domain.PendingCode, now time.Time) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	update := bson.M{"$set": bson.M{
		"pending_code":            code.Code,
		"pending_code_expires_at": code.ExpiresAt.UTC(),
		"updated_at":              now.UTC(),
	}}

	res, err := r.col.UpdateOne(ctx, bson.M{"email": identifier}, update)
	if err != nil {
		return fmt.Errorf("set pending code: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrAccountNotFound
	}
	return nil
}

// CompareAndClearPendingCode unsets the code only while the stored code and
// expiry still equal expected. The single-document update is atomic, so of
// two racing callers at most one sees a modification.
func (r *AccountRepository) CompareAndClearPendingCode(ctx context.Context, identifier string, expected domain.PendingCode, now time.Time) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{
		"email":                   identifier,
		"pending_code":            expected.Code,
		"pending_code_expires_at": expected.ExpiresAt.UTC(),
	}
	update := bson.M{
		"$unset": bson.M{"pending_code": "", "pending_code_expires_at": ""},
		"$set":   bson.M{"updated_at": now.UTC()},
	}

	res, err := r.col.UpdateOne(ctx, filter, update)
	if err != nil {
		return false, fmt.Errorf("clear pending code: %w", err)
	}
	return res.ModifiedCount == 1, nil
}

// EnsureIndexes creates the unique email index that backs "one account per
// identifier".
func (r *AccountRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	_, err := r.col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("email_unique"),
	})
	return err
}

func (d accountDocument) toDomain() *domain.Account {
	acc := &domain.Account{
		ID:         d.ID.Hex(),
		Identifier: d.Email,
		SecretHash: d.HashedSecret,
		Role:       d.Role,
		CreatedAt:  d.CreatedAt.UTC(),
		UpdatedAt:  d.UpdatedAt.UTC(),
	}
	if acc.Role == "" {
		acc.Role = domain.RoleUser
	}
	if d.PendingCode != "" && d.PendingCodeExpiresAt != nil {
		acc.PendingCode = &domain.PendingCode{Code: d.PendingCode, ExpiresAt: d.PendingCodeExpiresAt.UTC()}
	}
	return acc
}
