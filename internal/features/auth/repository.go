package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	apperrors "github.com/devlink-social/devlink/pkg/errors"
)

// Repository handles database interactions for the auth feature. It also
// serves as the user directory for mention resolution.
type Repository struct {
	collection *mongo.Collection
}

// NewRepository initializes the repository and creates necessary indexes
func NewRepository(db *mongo.Database) *Repository {
	collection := db.Collection("users")

	_, _ = collection.Indexes().CreateMany(context.Background(), []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "username", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "resetToken", Value: 1}},
			Options: options.Index().SetSparse(true),
		},
	})

	return &Repository{collection: collection}
}

// CreateUser inserts a new user into the database
func (r *Repository) CreateUser(ctx context.Context, user *User) error {
	user.Username = strings.ToLower(user.Username)
	user.CreatedAt = time.Now()
	user.UpdatedAt = time.Now()

	result, err := r.collection.InsertOne(ctx, user)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("%w: username or email taken", apperrors.ErrDuplicate)
		}
		return err
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		user.ID = oid
	}

	return nil
}

// GetUserByEmail finds a user by their email address
func (r *Repository) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	var user User
	err := r.collection.FindOne(ctx, bson.M{"email": strings.ToLower(email)}).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

// GetUserByUsername finds a user by their lowercased username
func (r *Repository) GetUserByUsername(ctx context.Context, username string) (*User, error) {
	var user User
	err := r.collection.FindOne(ctx, bson.M{"username": strings.ToLower(username)}).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

// GetUserByGoogleID finds a user by their Google subject id
func (r *Repository) GetUserByGoogleID(ctx context.Context, googleID string) (*User, error) {
	var user User
	err := r.collection.FindOne(ctx, bson.M{"googleId": googleID}).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

// GetUserByID finds a user by their hex id
func (r *Repository) GetUserByID(ctx context.Context, userID string) (*User, error) {
	oid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, errors.New("invalid user id format")
	}
	return r.GetUserByObjectID(ctx, oid)
}

// GetUserByObjectID finds a user by their MongoDB id
func (r *Repository) GetUserByObjectID(ctx context.Context, userID primitive.ObjectID) (*User, error) {
	var user User
	err := r.collection.FindOne(ctx, bson.M{"_id": userID}).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: user %s", apperrors.ErrNotFound, userID.Hex())
		}
		return nil, err
	}
	return &user, nil
}

// GetUsersByIDs batch fetches users, used to hydrate comment/post authors
func (r *Repository) GetUsersByIDs(ctx context.Context, ids []primitive.ObjectID) ([]User, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	cursor, err := r.collection.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var users []User
	if err = cursor.All(ctx, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// FindUsersByHandles is the mention directory lookup: a single batched query
// mapping lowercased handles to user ids. Handles with no account are simply
// absent from the result.
func (r *Repository) FindUsersByHandles(ctx context.Context, handles []string) (map[string]primitive.ObjectID, error) {
	if len(handles) == 0 {
		return map[string]primitive.ObjectID{}, nil
	}

	lowered := make([]string, len(handles))
	for i, h := range handles {
		lowered[i] = strings.ToLower(h)
	}

	cursor, err := r.collection.Find(ctx,
		bson.M{"username": bson.M{"$in": lowered}},
		options.Find().SetProjection(bson.M{"_id": 1, "username": 1}),
	)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	result := make(map[string]primitive.ObjectID)
	for cursor.Next(ctx) {
		var user User
		if err := cursor.Decode(&user); err == nil {
			result[user.Username] = user.ID
		}
	}

	return result, nil
}

// UpdateUser updates specific fields of a user
func (r *Repository) UpdateUser(ctx context.Context, userID primitive.ObjectID, updates bson.M) error {
	updates["updatedAt"] = time.Now()

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": userID}, bson.M{"$set": updates})
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("%w: user %s", apperrors.ErrNotFound, userID.Hex())
	}
	return nil
}

// UsernameExists checks if a username is already taken
func (r *Repository) UsernameExists(ctx context.Context, username string) (bool, error) {
	count, err := r.collection.CountDocuments(ctx, bson.M{"username": strings.ToLower(username)})
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// IncrementPostCount adjusts the user's post counter
func (r *Repository) IncrementPostCount(ctx context.Context, userID primitive.ObjectID, delta int) error {
	_, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": userID},
		bson.M{"$inc": bson.M{"postCount": delta}, "$set": bson.M{"updatedAt": time.Now()}},
	)
	if err != nil {
		return err
	}
	if delta < 0 {
		_, _ = r.collection.UpdateOne(ctx,
			bson.M{"_id": userID, "postCount": bson.M{"$lt": 0}},
			bson.M{"$set": bson.M{"postCount": 0}},
		)
	}
	return nil
}

// IncrementFollowCounts adjusts follower/following counters after a follow
// state change
func (r *Repository) IncrementFollowCounts(ctx context.Context, followerID, followeeID primitive.ObjectID, delta int) error {
	if _, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": followerID},
		bson.M{"$inc": bson.M{"followingCount": delta}},
	); err != nil {
		return err
	}
	_, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": followeeID},
		bson.M{"$inc": bson.M{"followerCount": delta}},
	)
	return err
}

// SetResetToken stores a password reset token with its expiry
func (r *Repository) SetResetToken(ctx context.Context, userID primitive.ObjectID, token string, expires time.Time) error {
	return r.UpdateUser(ctx, userID, bson.M{
		"resetToken":        token,
		"resetTokenExpires": expires,
	})
}

// GetUserByResetToken finds a user holding a live reset token
func (r *Repository) GetUserByResetToken(ctx context.Context, token string) (*User, error) {
	var user User
	err := r.collection.FindOne(ctx, bson.M{
		"resetToken":        token,
		"resetTokenExpires": bson.M{"$gt": time.Now()},
	}).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: reset token", apperrors.ErrNotFound)
		}
		return nil, err
	}
	return &user, nil
}

// UpdatePassword replaces the password hash and clears any reset token
func (r *Repository) UpdatePassword(ctx context.Context, userID primitive.ObjectID, passwordHash string) error {
	result, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": userID},
		bson.M{
			"$set":   bson.M{"passwordHash": passwordHash, "updatedAt": time.Now()},
			"$unset": bson.M{"resetToken": "", "resetTokenExpires": ""},
		},
	)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("%w: user %s", apperrors.ErrNotFound, userID.Hex())
	}
	return nil
}
