// Package search provides keyword search over extracted classes and slots.
package search

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/mapping"
	"github.com/blevesearch/bleve/v2/search/query"

	"github.com/mvp-joe/slotscan/internal/extract"
)

// Document kinds.
const (
	KindClass = "class"
	KindSlot  = "slot"
)

const (
	defaultLimit = 15
	maxLimit     = 100
	batchSize    = 1000
)

// Reader is the store capability the index is built from.
type Reader interface {
	ListClasses(ctx context.Context) ([]extract.ClassRecord, error)
	ListSlots(ctx context.Context) ([]extract.SlotRecord, error)
}

// Hit is one search result.
type Hit struct {
	Kind string `json:"kind"`
	// ID is the class id or slot id, depending on Kind.
	ID   int64  `json:"id"`
	Name string `json:"name"`
	// Owner is the qualified name of the owning class, for slots.
	Owner    string  `json:"owner,omitempty"`
	FormName string  `json:"form_name,omitempty"`
	File     string  `json:"file,omitempty"`
	Score    float64 `json:"score"`
}

// Options narrows a search. The zero value searches everything.
type Options struct {
	Limit int
	// Kind restricts hits to KindClass or KindSlot.
	Kind string
}

// Index is an in-memory bleve index over classes and slots.
type Index struct {
	index bleve.Index
	mu    sync.RWMutex
}

// Build indexes every class and slot the reader returns.
func Build(ctx context.Context, reader Reader) (*Index, error) {
	classes, err := reader.ListClasses(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list classes: %w", err)
	}
	slots, err := reader.ListSlots(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list slots: %w", err)
	}

	index, err := bleve.NewMemOnly(buildMapping())
	if err != nil {
		return nil, fmt.Errorf("failed to create bleve index: %w", err)
	}

	if err := indexDocuments(ctx, index, documents(classes, slots)); err != nil {
		index.Close()
		return nil, fmt.Errorf("failed to index documents: %w", err)
	}
	return &Index{index: index}, nil
}

// buildMapping creates the index mapping. Names and files use the standard
// analyzer so "::" and "/" split them into searchable terms; kind is a
// keyword for exact filtering.
func buildMapping() *mapping.IndexMappingImpl {
	indexMapping := bleve.NewIndexMapping()

	text := func() *mapping.FieldMapping {
		m := bleve.NewTextFieldMapping()
		m.Analyzer = "standard"
		m.Store = true
		m.Index = true
		return m
	}

	kindMapping := bleve.NewTextFieldMapping()
	kindMapping.Analyzer = "keyword"
	kindMapping.Store = true
	kindMapping.Index = true

	docMapping := bleve.NewDocumentMapping()
	docMapping.AddFieldMappingsAt("kind", kindMapping)
	docMapping.AddFieldMappingsAt("name", text())
	docMapping.AddFieldMappingsAt("owner", text())
	docMapping.AddFieldMappingsAt("form_name", text())
	docMapping.AddFieldMappingsAt("file", text())

	indexMapping.DefaultMapping = docMapping
	return indexMapping
}

type document struct {
	id     string
	fields map[string]interface{}
}

func documents(classes []extract.ClassRecord, slots []extract.SlotRecord) []document {
	names := make(map[int64]extract.ClassRecord, len(classes))
	docs := make([]document, 0, len(classes)+len(slots))

	for _, c := range classes {
		names[c.ID] = c
		form := ""
		if c.FormName != nil {
			form = *c.FormName
		}
		docs = append(docs, document{
			id: docID(KindClass, c.ID),
			fields: map[string]interface{}{
				"kind":      KindClass,
				"name":      c.QualifiedName,
				"form_name": form,
				"file":      c.SourceFile,
			},
		})
	}

	for _, s := range slots {
		owner := names[s.ParentClassID]
		docs = append(docs, document{
			id: docID(KindSlot, s.SlotID),
			fields: map[string]interface{}{
				"kind":  KindSlot,
				"name":  s.SlotName,
				"owner": owner.QualifiedName,
				"file":  owner.SourceFile,
			},
		})
	}
	return docs
}

// indexDocuments adds documents to the bleve index in batches.
func indexDocuments(ctx context.Context, index bleve.Index, docs []document) error {
	batch := index.NewBatch()
	for i, doc := range docs {
		if i%batchSize == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}
		if err := batch.Index(doc.id, doc.fields); err != nil {
			return fmt.Errorf("failed to add %s to batch: %w", doc.id, err)
		}
		if batch.Size() >= batchSize {
			if err := index.Batch(batch); err != nil {
				return fmt.Errorf("failed to execute batch: %w", err)
			}
			batch = index.NewBatch()
		}
	}

	if batch.Size() > 0 {
		if err := index.Batch(batch); err != nil {
			return fmt.Errorf("failed to execute final batch: %w", err)
		}
	}
	return nil
}

// Search runs a bleve query string query, e.g. "gauge", "name:Number" or
// "owner:Instruments +kind:slot".
func (ix *Index) Search(ctx context.Context, queryStr string, opts *Options) ([]Hit, error) {
	if opts == nil {
		opts = &Options{}
	}
	limit := opts.Limit
	if limit <= 0 || limit > maxLimit {
		limit = defaultLimit
	}

	var q query.Query = bleve.NewQueryStringQuery(queryStr)
	if opts.Kind != "" {
		kind := bleve.NewTermQuery(opts.Kind)
		kind.SetField("kind")
		q = bleve.NewConjunctionQuery(q, kind)
	}

	req := bleve.NewSearchRequestOptions(q, limit, 0, false)
	req.Fields = []string{"kind", "name", "owner", "form_name", "file"}

	ix.mu.RLock()
	defer ix.mu.RUnlock()

	res, err := ix.index.SearchInContext(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("bleve search failed: %w", err)
	}

	hits := make([]Hit, 0, len(res.Hits))
	for _, h := range res.Hits {
		kind, id, ok := parseDocID(h.ID)
		if !ok {
			continue
		}
		hit := Hit{Kind: kind, ID: id, Score: h.Score}
		hit.Name, _ = h.Fields["name"].(string)
		hit.Owner, _ = h.Fields["owner"].(string)
		hit.FormName, _ = h.Fields["form_name"].(string)
		hit.File, _ = h.Fields["file"].(string)
		hits = append(hits, hit)
	}
	return hits, nil
}

// Count returns the number of indexed documents.
func (ix *Index) Count() (uint64, error) {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return ix.index.DocCount()
}

// Close releases the index.
func (ix *Index) Close() error {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	return ix.index.Close()
}

func docID(kind string, id int64) string {
	return kind + ":" + strconv.FormatInt(id, 10)
}

func parseDocID(docID string) (string, int64, bool) {
	kind, raw, ok := strings.Cut(docID, ":")
	if !ok {
		return "", 0, false
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return "", 0, false
	}
	return kind, id, true
}
