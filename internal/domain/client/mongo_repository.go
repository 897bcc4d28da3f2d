package client

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

type clientDocument struct {
	ID           string        `bson:"_id"`
	UserID       string        `bson:"user_id"`
	CreatorName  string        `bson:"creator_name"`
	ClientName   string        `bson:"client_name"`
	CompanyName  string        `bson:"company_name"`
	WorkDetails  WorkDetails   `bson:"work_details"`
	Status       Status        `bson:"status"`
	Progress     int           `bson:"progress"`
	Deadline     *time.Time    `bson:"deadline"`
	StickyNotes  []StickyNote  `bson:"sticky_notes"`
	TimelineLogs []TimelineLog `bson:"timeline_logs"`
	Version      int64         `bson:"version"`
	CreatedAt    time.Time     `bson:"created_at"`
	UpdatedAt    time.Time     `bson:"updated_at"`
}

func toDocument(c *Client) clientDocument {
	return clientDocument{
		ID:           c.ID.String(),
		UserID:       c.UserID,
		CreatorName:  c.CreatorName,
		ClientName:   c.ClientName,
		CompanyName:  c.CompanyName,
		WorkDetails:  c.WorkDetails,
		Status:       c.Status,
		Progress:     c.Progress,
		Deadline:     c.Deadline,
		StickyNotes:  c.StickyNotes,
		TimelineLogs: c.TimelineLogs,
		Version:      c.Version,
		CreatedAt:    c.CreatedAt,
		UpdatedAt:    c.UpdatedAt,
	}
}

func (d clientDocument) toClient() (Client, error) {
	id, err := uuid.Parse(d.ID)
	if err != nil {
		return Client{}, fmt.Errorf("client document %q: %w", d.ID, err)
	}
	c := Client{
		ID:           id,
		UserID:       d.UserID,
		CreatorName:  d.CreatorName,
		ClientName:   d.ClientName,
		CompanyName:  d.CompanyName,
		WorkDetails:  d.WorkDetails,
		Status:       d.Status,
		Progress:     d.Progress,
		Deadline:     d.Deadline,
		StickyNotes:  d.StickyNotes,
		TimelineLogs: d.TimelineLogs,
		Version:      d.Version,
		CreatedAt:    d.CreatedAt,
		UpdatedAt:    d.UpdatedAt,
	}
	c.normalize()
	return c, nil
}

// MongoRepository stores clients as documents keyed by their UUID string.
type MongoRepository struct {
	coll    *mongo.Collection
	timeout time.Duration
}

func NewMongoRepository(db *mongo.Database, collection string, timeout time.Duration) *MongoRepository {
	return &MongoRepository{coll: db.Collection(collection), timeout: timeout}
}

func (r *MongoRepository) List(ctx context.Context) ([]Client, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := r.coll.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, fmt.Errorf("find clients: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []clientDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode clients: %w", err)
	}

	out := make([]Client, 0, len(docs))
	for _, d := range docs {
		c, err := d.toClient()
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

func (r *MongoRepository) Get(ctx context.Context, id uuid.UUID) (*Client, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	var d clientDocument
	err := r.coll.FindOne(ctx, bson.D{{Key: "_id", Value: id.String()}}).Decode(&d)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find client: %w", err)
	}
	c, err := d.toClient()
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *MongoRepository) Create(ctx context.Context, c *Client) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	now := time.Now()
	if c.CreatedAt.IsZero() {
		c.CreatedAt = now
	}
	c.UpdatedAt = now

	if _, err := r.coll.InsertOne(ctx, toDocument(c)); err != nil {
		return fmt.Errorf("insert client: %w", err)
	}
	return nil
}

func (r *MongoRepository) Update(ctx context.Context, c *Client, expectedVersion int64) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	c.Version = expectedVersion + 1
	c.UpdatedAt = time.Now()

	filter := bson.D{
		{Key: "_id", Value: c.ID.String()},
		{Key: "version", Value: expectedVersion},
	}
	res, err := r.coll.ReplaceOne(ctx, filter, toDocument(c))
	if err != nil {
		c.Version = expectedVersion
		return fmt.Errorf("replace client: %w", err)
	}
	if res.MatchedCount == 0 {
		c.Version = expectedVersion
		n, err := r.coll.CountDocuments(ctx, bson.D{{Key: "_id", Value: c.ID.String()}})
		if err != nil {
			return fmt.Errorf("check client: %w", err)
		}
		if n == 0 {
			return ErrNotFound
		}
		return ErrStaleWrite
	}
	return nil
}

func (r *MongoRepository) Delete(ctx context.Context, id uuid.UUID) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	res, err := r.coll.DeleteOne(ctx, bson.D{{Key: "_id", Value: id.String()}})
	if err != nil {
		return fmt.Errorf("delete client: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}
