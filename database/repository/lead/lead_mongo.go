package leadRepo

import (
	"context"
	"fmt"
	"time"

	"voyago/config"
	"voyago/database"
	"voyago/models"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const defaultListLimit = 50

// MongoLeadRepo implements LeadRepository using MongoDB.
type MongoLeadRepo struct {
	coll *mongo.Collection
}

// NewMongoLeadRepo creates a new instance of LeadRepository using MongoDB.
func NewMongoLeadRepo() LeadRepository {
	coll := database.MongoClient.Database(config.AppConfig.DatabaseName).Collection("leads")
	repo := &MongoLeadRepo{coll: coll}

	if err := repo.ensureIndexes(); err != nil {
		fmt.Printf("failed to create indexes: %v\n", err)
	}
	return repo
}

// newContext creates a context with the given timeout.
func newContext(timeout time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), timeout)
}

// ensureIndexes creates indexes for fields frequently used in queries.
func (r *MongoLeadRepo) ensureIndexes() error {
	ctx, cancel := newContext(10 * time.Second)
	defer cancel()

	indexModels := []mongo.IndexModel{
		{Keys: bson.D{{Key: "createdAt", Value: -1}}},
		{Keys: bson.D{{Key: "conversationId", Value: 1}}},
		{Keys: bson.D{{Key: "reason", Value: 1}}},
	}

	_, err := r.coll.Indexes().CreateMany(ctx, indexModels)
	if err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}
	return nil
}

func (f LeadFilter) query() bson.M {
	q := bson.M{}
	if f.Reason != "" {
		q["reason"] = f.Reason
	}
	if !f.Since.IsZero() {
		q["createdAt"] = bson.M{"$gte": f.Since}
	}
	return q
}

// Create inserts a new lead document and returns its ID.
func (r *MongoLeadRepo) Create(lead *models.Lead) (string, error) {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	if lead.ID == "" {
		lead.ID = uuid.NewString()
	}
	if lead.CreatedAt.IsZero() {
		lead.CreatedAt = time.Now()
	}

	_, err := r.coll.InsertOne(ctx, lead)
	if err != nil {
		return "", fmt.Errorf("failed to create lead: %w", err)
	}
	return lead.ID, nil
}

// AttachPhone sets the phone number on an existing lead document.
func (r *MongoLeadRepo) AttachPhone(id, phone string) error {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	filter := bson.M{"_id": id}
	update := bson.M{"$set": bson.M{"phone": phone}}

	result, err := r.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to update lead with id %s: %w", id, err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("lead with id %s not found", id)
	}
	return nil
}

// GetByID retrieves a lead by its unique ID.
func (r *MongoLeadRepo) GetByID(id string) (*models.Lead, error) {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	var lead models.Lead
	if err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&lead); err != nil {
		return nil, fmt.Errorf("failed to fetch lead with id %s: %w", id, err)
	}
	return &lead, nil
}

// List retrieves leads matching the filter, newest first.
func (r *MongoLeadRepo) List(filter LeadFilter) ([]models.Lead, error) {
	ctx, cancel := newContext(10 * time.Second)
	defer cancel()

	limit := filter.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetLimit(limit)

	cursor, err := r.coll.Find(ctx, filter.query(), opts)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve leads: %w", err)
	}
	defer cursor.Close(ctx)

	var leads []models.Lead
	for cursor.Next(ctx) {
		var l models.Lead
		if err := cursor.Decode(&l); err != nil {
			return nil, fmt.Errorf("failed to decode lead: %w", err)
		}
		leads = append(leads, l)
	}
	return leads, nil
}

// Count returns the number of leads matching the filter.
func (r *MongoLeadRepo) Count(filter LeadFilter) (int64, error) {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	n, err := r.coll.CountDocuments(ctx, filter.query())
	if err != nil {
		return 0, fmt.Errorf("failed to count leads: %w", err)
	}
	return n, nil
}
