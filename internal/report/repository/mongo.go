package repository

import (
	"context"
	"errors"

	"github.com/dockshield/web-dashboard/internal/report"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoRepo reads scan collections from a single MongoDB database.
type MongoRepo struct {
	db *mongo.Database
}

func NewMongoRepo(db *mongo.Database) *MongoRepo {
	return &MongoRepo{db: db}
}

func exists(field string) bson.M {
	return bson.M{field: bson.M{"$exists": true}}
}

func (m *MongoRepo) CollectionNames(ctx context.Context) ([]string, error) {
	return m.db.ListCollectionNames(ctx, bson.D{})
}

func (m *MongoRepo) FindOneWithField(ctx context.Context, collection, field string) (report.Document, error) {
	return m.findOne(ctx, collection, exists(field))
}

func (m *MongoRepo) CountWithField(ctx context.Context, collection, field string) (int64, error) {
	return m.db.Collection(collection).CountDocuments(ctx, exists(field))
}

func (m *MongoRepo) FindWithField(ctx context.Context, collection, field string, skip, limit int64) ([]report.Document, error) {
	opts := options.Find().SetSkip(skip).SetLimit(limit)
	cur, err := m.db.Collection(collection).Find(ctx, exists(field), opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	out := []report.Document{}
	for cur.Next(ctx) {
		var d report.Document
		if err := cur.Decode(&d); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, cur.Err()
}

func (m *MongoRepo) FindByID(ctx context.Context, collection string, id primitive.ObjectID) (report.Document, error) {
	return m.findOne(ctx, collection, bson.M{report.IDField: id})
}

func (m *MongoRepo) findOne(ctx context.Context, collection string, filter bson.M) (report.Document, error) {
	var d report.Document
	err := m.db.Collection(collection).FindOne(ctx, filter).Decode(&d)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return d, nil
}
