package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/dockshield/web-dashboard/internal/report"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MemoryRepo keeps collections in insertion order. Used by tests and local
// development in place of MongoDB.
type MemoryRepo struct {
	mu          sync.RWMutex
	collections map[string][]report.Document
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{collections: make(map[string][]report.Document)}
}

// Insert appends docs to collection, assigning an ObjectID to any without _id.
// It returns the ids in insertion order.
func (m *MemoryRepo) Insert(collection string, docs ...report.Document) []primitive.ObjectID {
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := make([]primitive.ObjectID, 0, len(docs))
	for _, d := range docs {
		id, ok := d[report.IDField].(primitive.ObjectID)
		if !ok {
			id = primitive.NewObjectID()
			d[report.IDField] = id
		}
		ids = append(ids, id)
		m.collections[collection] = append(m.collections[collection], d)
	}
	return ids
}

func (m *MemoryRepo) CollectionNames(ctx context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]string, 0, len(m.collections))
	for name := range m.collections {
		out = append(out, name)
	}
	sort.Strings(out)
	return out, nil
}

func (m *MemoryRepo) FindOneWithField(ctx context.Context, collection, field string) (report.Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, d := range m.collections[collection] {
		if _, ok := d[field]; ok {
			return d, nil
		}
	}
	return nil, ErrNotFound
}

func (m *MemoryRepo) CountWithField(ctx context.Context, collection, field string) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var n int64
	for _, d := range m.collections[collection] {
		if _, ok := d[field]; ok {
			n++
		}
	}
	return n, nil
}

func (m *MemoryRepo) FindWithField(ctx context.Context, collection, field string, skip, limit int64) ([]report.Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []report.Document{}
	if skip < 0 {
		return out, nil
	}
	var seen int64
	for _, d := range m.collections[collection] {
		if _, ok := d[field]; !ok {
			continue
		}
		seen++
		if seen <= skip {
			continue
		}
		if limit > 0 && int64(len(out)) >= limit {
			break
		}
		out = append(out, d)
	}
	return out, nil
}

func (m *MemoryRepo) FindByID(ctx context.Context, collection string, id primitive.ObjectID) (report.Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, d := range m.collections[collection] {
		if d[report.IDField] == id {
			return d, nil
		}
	}
	return nil, ErrNotFound
}
