package report

import (
	"fmt"
	"strconv"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Field names written by the upstream ingestion pipeline.
const (
	ContainerAnalysisField = "analise_do_container"
	CVEField               = "cve"
	IDField                = "_id"
)

// Dot-notation paths to the markdown bodies of generated reports.
const (
	ContainerAnalysisContentPath = "analise_do_container.choices.0.message.content"
	CVEReportContentPath         = "relatorio.choices.0.message.content"
)

// Document is a schemaless record of a scan collection.
type Document bson.M

// ID returns the document identifier in its canonical string form.
func (d Document) ID() string {
	return IDString(d[IDField])
}

// ForDisplay returns a shallow copy with _id replaced by its string form so the
// store's identifier type never reaches a template.
func (d Document) ForDisplay() Document {
	out := make(Document, len(d)+1)
	for k, v := range d {
		out[k] = v
	}
	if _, ok := d[IDField]; ok {
		out[IDField] = d.ID()
	}
	return out
}

// IDString renders a store identifier as a string. ObjectIDs become 24-char hex.
func IDString(v interface{}) string {
	switch id := v.(type) {
	case nil:
		return ""
	case primitive.ObjectID:
		return id.Hex()
	case string:
		return id
	case fmt.Stringer:
		return id.String()
	}
	return fmt.Sprint(v)
}

// Lookup walks a dot-notation path ("a.b.0.c") through nested documents and
// arrays. Numeric segments index arrays. ok is false if any segment is missing
// or has the wrong shape.
func (d Document) Lookup(path string) (interface{}, bool) {
	var cur interface{} = map[string]interface{}(d)
	for _, seg := range strings.Split(path, ".") {
		next, ok := step(cur, seg)
		if !ok {
			return nil, false
		}
		cur = next
	}
	return cur, true
}

// LookupString is Lookup restricted to non-blank string values.
func (d Document) LookupString(path string) (string, bool) {
	v, ok := d.Lookup(path)
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	if !ok || strings.TrimSpace(s) == "" {
		return "", false
	}
	return s, true
}

func step(cur interface{}, seg string) (interface{}, bool) {
	switch node := cur.(type) {
	case map[string]interface{}:
		v, ok := node[seg]
		return v, ok
	case bson.M:
		v, ok := node[seg]
		return v, ok
	case Document:
		v, ok := node[seg]
		return v, ok
	case bson.D:
		for _, e := range node {
			if e.Key == seg {
				return e.Value, true
			}
		}
		return nil, false
	case bson.A:
		return index([]interface{}(node), seg)
	case []interface{}:
		return index(node, seg)
	}
	return nil, false
}

func index(arr []interface{}, seg string) (interface{}, bool) {
	i, err := strconv.Atoi(seg)
	if err != nil || i < 0 || i >= len(arr) {
		return nil, false
	}
	return arr[i], true
}
