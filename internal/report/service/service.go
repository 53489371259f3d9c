package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/dockshield/web-dashboard/internal/report"
	"github.com/dockshield/web-dashboard/internal/report/repository"
	"github.com/dockshield/web-dashboard/pkg/logger"
	"github.com/dockshield/web-dashboard/pkg/metrics"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DefaultPageSize is the number of CVEs shown per list page.
const DefaultPageSize = 100

var (
	// ErrStoreUnavailable is returned when the database was never reached at
	// startup, or a query against it failed.
	ErrStoreUnavailable = errors.New("report store unavailable")
)

// CVEPage is one page of a collection's CVE documents. Documents carry string ids.
type CVEPage struct {
	Collection string
	Documents  []report.Document
	Page       int
	TotalPages int
	TotalCVEs  int64
}

// Locator finds scan reports. A Locator built with a nil repository runs in
// degraded mode: every lookup returns ErrStoreUnavailable.
type Locator struct {
	repo     repository.Repository
	pageSize int
}

// NewLocator returns a Locator over repo. pageSize <= 0 selects DefaultPageSize.
func NewLocator(repo repository.Repository, pageSize int) *Locator {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &Locator{repo: repo, pageSize: pageSize}
}

// Available reports whether a store connection exists.
func (l *Locator) Available() bool { return l.repo != nil }

// PageSize returns the configured number of CVEs per page.
func (l *Locator) PageSize() int { return l.pageSize }

// Collections lists every scan collection.
func (l *Locator) Collections(ctx context.Context) ([]string, error) {
	if !l.Available() {
		return nil, observe("collections", ErrStoreUnavailable)
	}
	names, err := l.repo.CollectionNames(ctx)
	if err != nil {
		return nil, observe("collections", unavailable(err))
	}
	return names, observe("collections", nil)
}

// ContainerAnalysis returns the first document of collection holding a container
// analysis. found is false when the analysis has not been generated yet.
func (l *Locator) ContainerAnalysis(ctx context.Context, collection string) (doc report.Document, found bool, err error) {
	if !l.Available() {
		return nil, false, observe("container_analysis", ErrStoreUnavailable)
	}
	d, err := l.repo.FindOneWithField(ctx, collection, report.ContainerAnalysisField)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return nil, false, observe("container_analysis", err)
	case err != nil:
		return nil, false, observe("container_analysis", unavailable(err))
	}
	return d, true, observe("container_analysis", nil)
}

// CVEs returns page (1-based) of collection's CVE documents. Pages past the
// end are empty, not an error. page < 1 is treated as 1.
func (l *Locator) CVEs(ctx context.Context, collection string, page int) (*CVEPage, error) {
	if !l.Available() {
		return nil, observe("cve_list", ErrStoreUnavailable)
	}
	if page < 1 {
		page = 1
	}
	total, err := l.repo.CountWithField(ctx, collection, report.CVEField)
	if err != nil {
		return nil, observe("cve_list", unavailable(err))
	}
	var docs []report.Document
	if skip, ok := pageOffset(page, l.pageSize); ok && skip < total {
		docs, err = l.repo.FindWithField(ctx, collection, report.CVEField, skip, int64(l.pageSize))
		if err != nil {
			return nil, observe("cve_list", unavailable(err))
		}
	}
	out := make([]report.Document, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.ForDisplay())
	}
	return &CVEPage{
		Collection: collection,
		Documents:  out,
		Page:       page,
		TotalPages: TotalPages(total, l.pageSize),
		TotalCVEs:  total,
	}, observe("cve_list", nil)
}

// CVE returns the document of collection whose _id is the hex string id, with
// _id as a string and the collection name attached under "colecao". An id
// that does not parse is reported as not found.
func (l *Locator) CVE(ctx context.Context, collection, id string) (doc report.Document, found bool, err error) {
	if !l.Available() {
		return nil, false, observe("cve", ErrStoreUnavailable)
	}
	oid, err := primitive.ObjectIDFromHex(strings.TrimSpace(id))
	if err != nil {
		return nil, false, observe("cve", repository.ErrNotFound)
	}
	d, err := l.repo.FindByID(ctx, collection, oid)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return nil, false, observe("cve", err)
	case err != nil:
		return nil, false, observe("cve", unavailable(err))
	}
	out := d.ForDisplay()
	out["colecao"] = collection
	return out, true, observe("cve", nil)
}

// TotalPages is ceil(total/pageSize), or 0 when pageSize is not positive.
func TotalPages(total int64, pageSize int) int {
	if pageSize <= 0 || total <= 0 {
		return 0
	}
	size := int64(pageSize)
	return int((total + size - 1) / size)
}

// pageOffset is the number of documents before page. ok is false when the
// offset does not fit in an int64.
func pageOffset(page, pageSize int) (skip int64, ok bool) {
	size := int64(pageSize)
	if int64(page-1) > math.MaxInt64/size {
		return 0, false
	}
	return int64(page-1) * size, true
}

// ParsePage reads a page query value. Missing, non-numeric and non-positive
// values all mean page 1.
func ParsePage(raw string) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n < 1 {
		return 1
	}
	return n
}

func unavailable(err error) error {
	return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
}

// observe records the lookup outcome and passes err through. Not-found is an
// expected outcome and is returned as nil.
func observe(op string, err error) error {
	result := "ok"
	switch {
	case err == nil:
	case errors.Is(err, repository.ErrNotFound):
		metrics.StoreQueries.WithLabelValues(op, "not_found").Inc()
		return nil
	case err == ErrStoreUnavailable:
		result = "unavailable"
	default:
		result = "error"
		logger.Warnf("report store: %s failed: %v", op, err)
	}
	metrics.StoreQueries.WithLabelValues(op, result).Inc()
	return err
}
