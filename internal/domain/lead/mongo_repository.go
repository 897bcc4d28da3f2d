package lead

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

type leadDocument struct {
	ID              string     `bson:"_id"`
	UserID          string     `bson:"user_id"`
	Name            string     `bson:"name"`
	Phone           string     `bson:"phone"`
	Company         string     `bson:"company"`
	Email           string     `bson:"email"`
	Address         string     `bson:"address"`
	Status          Status     `bson:"status"`
	Service         *string    `bson:"service"`
	Requirements    *string    `bson:"requirements"`
	Price           *string    `bson:"price"`
	CallbackDate    *time.Time `bson:"callback_date"`
	CallbackTime    *string    `bson:"callback_time"`
	RejectionReason *string    `bson:"rejection_reason"`
	Version         int64      `bson:"version"`
	CreatedAt       time.Time  `bson:"created_at"`
	UpdatedAt       time.Time  `bson:"updated_at"`
}

func toDocument(l *Lead) leadDocument {
	return leadDocument{
		ID:              l.ID.String(),
		UserID:          l.UserID,
		Name:            l.Name,
		Phone:           l.Phone,
		Company:         l.Company,
		Email:           l.Email,
		Address:         l.Address,
		Status:          l.Status,
		Service:         l.Service,
		Requirements:    l.Requirements,
		Price:           l.Price,
		CallbackDate:    l.CallbackDate,
		CallbackTime:    l.CallbackTime,
		RejectionReason: l.RejectionReason,
		Version:         l.Version,
		CreatedAt:       l.CreatedAt,
		UpdatedAt:       l.UpdatedAt,
	}
}

func (d leadDocument) toLead() (Lead, error) {
	id, err := uuid.Parse(d.ID)
	if err != nil {
		return Lead{}, fmt.Errorf("lead document %q: %w", d.ID, err)
	}
	return Lead{
		ID:              id,
		UserID:          d.UserID,
		Name:            d.Name,
		Phone:           d.Phone,
		Company:         d.Company,
		Email:           d.Email,
		Address:         d.Address,
		Status:          d.Status,
		Service:         d.Service,
		Requirements:    d.Requirements,
		Price:           d.Price,
		CallbackDate:    d.CallbackDate,
		CallbackTime:    d.CallbackTime,
		RejectionReason: d.RejectionReason,
		Version:         d.Version,
		CreatedAt:       d.CreatedAt,
		UpdatedAt:       d.UpdatedAt,
	}, nil
}

// MongoRepository stores leads as documents keyed by their UUID string.
type MongoRepository struct {
	coll    *mongo.Collection
	timeout time.Duration
}

func NewMongoRepository(db *mongo.Database, collection string, timeout time.Duration) *MongoRepository {
	return &MongoRepository{coll: db.Collection(collection), timeout: timeout}
}

func (r *MongoRepository) List(ctx context.Context, filter Filter) ([]Lead, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	query := bson.D{}
	if filter != FilterAll && filter != "" {
		query = bson.D{{Key: "status", Value: string(filter)}}
	}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := r.coll.Find(ctx, query, opts)
	if err != nil {
		return nil, fmt.Errorf("find leads: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []leadDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode leads: %w", err)
	}
	out := make([]Lead, 0, len(docs))
	for _, d := range docs {
		l, err := d.toLead()
		if err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, nil
}

func (r *MongoRepository) Get(ctx context.Context, id uuid.UUID) (*Lead, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	var d leadDocument
	if err := r.coll.FindOne(ctx, bson.D{{Key: "_id", Value: id.String()}}).Decode(&d); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrLeadNotFound
		}
		return nil, fmt.Errorf("find lead: %w", err)
	}
	l, err := d.toLead()
	if err != nil {
		return nil, err
	}
	return &l, nil
}

func (r *MongoRepository) Create(ctx context.Context, l *Lead) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	now := time.Now()
	l.CreatedAt = now
	l.UpdatedAt = now
	if l.Version == 0 {
		l.Version = 1
	}
	if _, err := r.coll.InsertOne(ctx, toDocument(l)); err != nil {
		return fmt.Errorf("insert lead: %w", err)
	}
	return nil
}

func (r *MongoRepository) Update(ctx context.Context, l *Lead, expectedVersion int64) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	next := *l
	next.Version = expectedVersion + 1
	next.UpdatedAt = time.Now()

	filter := bson.D{
		{Key: "_id", Value: l.ID.String()},
		{Key: "version", Value: expectedVersion},
	}
	res, err := r.coll.ReplaceOne(ctx, filter, toDocument(&next))
	if err != nil {
		return fmt.Errorf("replace lead: %w", err)
	}
	if res.MatchedCount == 0 {
		n, err := r.coll.CountDocuments(ctx, bson.D{{Key: "_id", Value: l.ID.String()}})
		if err != nil {
			return fmt.Errorf("check lead: %w", err)
		}
		if n == 0 {
			return ErrLeadNotFound
		}
		return ErrStaleWrite
	}
	l.Version = next.Version
	l.UpdatedAt = next.UpdatedAt
	return nil
}

func (r *MongoRepository) Delete(ctx context.Context, id uuid.UUID) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	res, err := r.coll.DeleteOne(ctx, bson.D{{Key: "_id", Value: id.String()}})
	if err != nil {
		return fmt.Errorf("delete lead: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrLeadNotFound
	}
	return nil
}
