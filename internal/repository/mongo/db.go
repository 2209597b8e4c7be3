// Package mongo implements the repository contract on MongoDB, one
// collection per entity. References are stored as raw ids; the services
// resolve them before any write.
package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"

	"pet-adoption-backend/internal/repository"
)

// Collection names
const (
	colUsers           = "users"
	colAdopterProfiles = "adoption_user_details"
	colPets            = "pets"
	colPetFeatures     = "pet_features"
	colConversations   = "conversations"
	colMessages        = "messages"
	colReports         = "reports"
	colAdoptions       = "adoption_details"
)

// Client wraps mongo.Client and the application database
type Client struct {
	client *mongo.Client
	db     *mongo.Database
}

// Connect dials MongoDB and verifies the connection with a ping
func Connect(ctx context.Context, uri, database string) (*Client, error) {
	opts := options.Client().
		ApplyURI(uri).
		SetConnectTimeout(10 * time.Second)

	client, err := mongo.Connect(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	return &Client{client: client, db: client.Database(database)}, nil
}

// Close disconnects from MongoDB
func (c *Client) Close(ctx context.Context) error {
	return c.client.Disconnect(ctx)
}

// Database returns the application database
func (c *Client) Database() *mongo.Database {
	return c.db
}

// CreateIndexes creates the unique and lookup indexes every collection relies on
func (c *Client) CreateIndexes(ctx context.Context) error {
	unique := options.Index().SetUnique(true)
	indexes := map[string][]mongo.IndexModel{
		colUsers: {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: unique},
		},
		colAdopterProfiles: {
			{Keys: bson.D{{Key: "user_id", Value: 1}}, Options: unique},
		},
		colPets: {
			{Keys: bson.D{{Key: "status", Value: 1}, {Key: "created_at", Value: -1}}},
			{Keys: bson.D{{Key: "donor_id", Value: 1}}},
		},
		colPetFeatures: {
			{Keys: bson.D{{Key: "pet_id", Value: 1}}, Options: unique},
		},
		colConversations: {
			{Keys: bson.D{{Key: "participants", Value: 1}, {Key: "last_message_at", Value: -1}}},
		},
		colMessages: {
			{Keys: bson.D{{Key: "conversation_id", Value: 1}, {Key: "sent_at", Value: 1}}},
		},
		colReports: {
			{Keys: bson.D{{Key: "pet_id", Value: 1}, {Key: "date", Value: -1}}},
		},
		colAdoptions: {
			{Keys: bson.D{{Key: "pet_id", Value: 1}}, Options: unique},
		},
	}
	for name, models := range indexes {
		if _, err := c.db.Collection(name).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("failed to create %s indexes: %w", name, err)
		}
	}
	return nil
}

// NewStore builds every repository on top of one database
func NewStore(db *mongo.Database) *repository.Store {
	pets := &PetRepository{coll: db.Collection(colPets)}
	return &repository.Store{
		Users:           &UserRepository{coll: db.Collection(colUsers)},
		AdopterProfiles: &AdopterProfileRepository{coll: db.Collection(colAdopterProfiles)},
		Pets:            pets,
		PetFeatures:     &PetFeaturesRepository{coll: db.Collection(colPetFeatures)},
		Conversations:   &ConversationRepository{coll: db.Collection(colConversations)},
		Messages:        &MessageRepository{coll: db.Collection(colMessages)},
		Reports:         &ReportRepository{coll: db.Collection(colReports)},
		Adoptions:       &AdoptionRepository{coll: db.Collection(colAdoptions), pets: pets},
	}
}

func mapError(err error) error {
	switch {
	case errors.Is(err, mongo.ErrNoDocuments):
		return repository.ErrNotFound
	case mongo.IsDuplicateKeyError(err):
		return fmt.Errorf("%w: %v", repository.ErrDuplicateKey, err)
	}
	return err
}

func insertOne(ctx context.Context, coll *mongo.Collection, doc any) error {
	if _, err := coll.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("failed to insert into %s: %w", coll.Name(), mapError(err))
	}
	return nil
}

func findOne[T any](ctx context.Context, coll *mongo.Collection, filter bson.M) (*T, error) {
	var out T
	if err := coll.FindOne(ctx, filter).Decode(&out); err != nil {
		return nil, fmt.Errorf("failed to find in %s: %w", coll.Name(), mapError(err))
	}
	return &out, nil
}

func findMany[T any](ctx context.Context, coll *mongo.Collection, filter bson.M, opts ...options.Lister[options.FindOptions]) ([]*T, error) {
	cursor, err := coll.Find(ctx, filter, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", coll.Name(), err)
	}
	defer cursor.Close(ctx)

	var out []*T
	if err := cursor.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", coll.Name(), err)
	}
	return out, nil
}

func updateOne(ctx context.Context, coll *mongo.Collection, filter bson.M, update bson.M) error {
	res, err := coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to update %s: %w", coll.Name(), mapError(err))
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("failed to update %s: %w", coll.Name(), repository.ErrNotFound)
	}
	return nil
}

func paging(limit, offset int) *options.FindOptionsBuilder {
	opts := options.Find()
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}
	if offset > 0 {
		opts.SetSkip(int64(offset))
	}
	return opts
}
