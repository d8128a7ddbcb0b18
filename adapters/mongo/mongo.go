// Package mongo stores users and session records in MongoDB collections.
package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/lborres/bantay/core"
)

const (
	usersCollection    = "users"
	sessionsCollection = "sessions"
)

var (
	_ core.UserStorage    = (*Adapter)(nil)
	_ core.SessionStorage = (*Adapter)(nil)
)

type Adapter struct {
	users    *mongo.Collection
	sessions *mongo.Collection
}

func New(db *mongo.Database) *Adapter {
	return &Adapter{
		users:    db.Collection(usersCollection),
		sessions: db.Collection(sessionsCollection),
	}
}

// Connect dials uri, pings the primary and ensures indexes on database.
// The caller disconnects the returned client.
func Connect(ctx context.Context, uri, database string) (*Adapter, *mongo.Client, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, nil, fmt.Errorf("mongo connect: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, nil, fmt.Errorf("mongo ping: %w", err)
	}

	a := New(client.Database(database))
	if err := a.EnsureIndexes(ctx); err != nil {
		_ = client.Disconnect(ctx)
		return nil, nil, err
	}
	return a, client, nil
}

// EnsureIndexes makes emails and token hashes unique.
func (a *Adapter) EnsureIndexes(ctx context.Context) error {
	_, err := a.users.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "reset_token", Value: 1}}, Options: options.Index().SetSparse(true)},
	})
	if err != nil {
		return fmt.Errorf("mongo users indexes: %w", err)
	}

	_, err = a.sessions.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "token_hash", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("mongo sessions indexes: %w", err)
	}
	return nil
}

type userDoc struct {
	ID           string    `bson:"_id"`
	Email        string    `bson:"email"`
	PasswordHash string    `bson:"password_hash"`
	FirstName    *string   `bson:"first_name,omitempty"`
	LastName     *string   `bson:"last_name,omitempty"`
	ResetToken   *string   `bson:"reset_token,omitempty"`
	CreatedAt    time.Time `bson:"created_at"`
	UpdatedAt    time.Time `bson:"updated_at"`
}

func toUserDoc(u *core.User) userDoc {
	return userDoc{
		ID:           u.ID,
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		ResetToken:   u.ResetToken,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
}

func (d userDoc) user() *core.User {
	return &core.User{
		ID:           d.ID,
		Email:        d.Email,
		PasswordHash: d.PasswordHash,
		FirstName:    d.FirstName,
		LastName:     d.LastName,
		ResetToken:   d.ResetToken,
		CreatedAt:    d.CreatedAt.UTC(),
		UpdatedAt:    d.UpdatedAt.UTC(),
	}
}

type sessionDoc struct {
	ID        string    `bson:"_id"`
	UserID    string    `bson:"user_id"`
	TokenHash string    `bson:"token_hash"`
	CreatedAt time.Time `bson:"created_at"`
}

var userFields = map[string]string{
	core.AttrID:         "_id",
	core.AttrEmail:      "email",
	core.AttrFirstName:  "first_name",
	core.AttrLastName:   "last_name",
	core.AttrResetToken: "reset_token",
}

// userFilter maps attribute names onto document fields.
func userFilter(attrs map[string]string) (bson.M, error) {
	if err := core.ValidateAttributes(attrs); err != nil {
		return nil, err
	}
	filter := bson.M{}
	for name, value := range attrs {
		filter[userFields[name]] = value
	}
	return filter, nil
}

var byCreation = bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}}

func (a *Adapter) FindByAttributes(ctx context.Context, attrs map[string]string) ([]*core.User, error) {
	filter, err := userFilter(attrs)
	if err != nil {
		return nil, err
	}

	cur, err := a.users.Find(ctx, filter, options.Find().SetSort(byCreation))
	if err != nil {
		return nil, fmt.Errorf("mongo find users: %w", err)
	}
	defer cur.Close(ctx)

	var docs []userDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("mongo decode users: %w", err)
	}

	users := make([]*core.User, 0, len(docs))
	for _, d := range docs {
		users = append(users, d.user())
	}
	return users, nil
}

func (a *Adapter) FindByID(ctx context.Context, id string) (*core.User, error) {
	var d userDoc
	err := a.users.FindOne(ctx, bson.M{"_id": id}).Decode(&d)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, core.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("mongo find user: %w", err)
	}
	return d.user(), nil
}

// Save replaces the user document, inserting it when absent.
func (a *Adapter) Save(ctx context.Context, u *core.User) error {
	_, err := a.users.ReplaceOne(ctx, bson.M{"_id": u.ID}, toUserDoc(u), options.Replace().SetUpsert(true))
	if mongo.IsDuplicateKeyError(err) {
		return core.ErrUserExists
	}
	if err != nil {
		return fmt.Errorf("mongo save user: %w", err)
	}
	return nil
}

func (a *Adapter) Remove(ctx context.Context, u *core.User) error {
	res, err := a.users.DeleteOne(ctx, bson.M{"_id": u.ID})
	if err != nil {
		return fmt.Errorf("mongo delete user: %w", err)
	}
	if res.DeletedCount == 0 {
		return core.ErrUserNotFound
	}
	return nil
}

func (a *Adapter) Count(ctx context.Context) (int, error) {
	n, err := a.users.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("mongo count users: %w", err)
	}
	return int(n), nil
}

func (a *Adapter) All(ctx context.Context) ([]*core.User, error) {
	return a.FindByAttributes(ctx, nil)
}

func (a *Adapter) CreateSession(ctx context.Context, s *core.Session) error {
	doc := sessionDoc{ID: s.ID, UserID: s.UserID, TokenHash: s.TokenHash, CreatedAt: s.CreatedAt}
	if _, err := a.sessions.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("mongo insert session: %w", err)
	}
	return nil
}

func (a *Adapter) FindSessions(ctx context.Context, tokenHash string) ([]*core.Session, error) {
	cur, err := a.sessions.Find(ctx, bson.M{"token_hash": tokenHash}, options.Find().SetSort(byCreation))
	if err != nil {
		return nil, fmt.Errorf("mongo find sessions: %w", err)
	}
	defer cur.Close(ctx)

	var docs []sessionDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("mongo decode sessions: %w", err)
	}

	sessions := make([]*core.Session, 0, len(docs))
	for _, d := range docs {
		sessions = append(sessions, &core.Session{
			ID:        d.ID,
			UserID:    d.UserID,
			TokenHash: d.TokenHash,
			CreatedAt: d.CreatedAt.UTC(),
		})
	}
	return sessions, nil
}

func (a *Adapter) RemoveSession(ctx context.Context, s *core.Session) error {
	res, err := a.sessions.DeleteOne(ctx, bson.M{"_id": s.ID})
	if err != nil {
		return fmt.Errorf("mongo delete session: %w", err)
	}
	if res.DeletedCount == 0 {
		return core.ErrSessionNotFound
	}
	return nil
}
