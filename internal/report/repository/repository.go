package repository

import (
	"context"
	"errors"

	"github.com/dockshield/web-dashboard/internal/report"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	ErrNotFound = errors.New("document not found")
)

// Repository is the read-only view of the scan database. Each scanned image
// has its own collection. Results come back in the store's natural order.
type Repository interface {
	CollectionNames(ctx context.Context) ([]string, error)
	// FindOneWithField returns the first document where field exists, or ErrNotFound.
	FindOneWithField(ctx context.Context, collection, field string) (report.Document, error)
	CountWithField(ctx context.Context, collection, field string) (int64, error)
	FindWithField(ctx context.Context, collection, field string, skip, limit int64) ([]report.Document, error)
	// FindByID returns the document with the given _id, or ErrNotFound.
	FindByID(ctx context.Context, collection string, id primitive.ObjectID) (report.Document, error)
}
