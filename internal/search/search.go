package search

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/blevesearch/bleve/v2"
	"github.com/sha1n/mcp-prompts-server-go/internal/config"
	"github.com/sha1n/mcp-prompts-server-go/internal/domain"
)

// SearchOptions narrows a search
type SearchOptions struct {
	Limit int
}

// SearchResult is a single search hit
type SearchResult struct {
	Name        string
	Description string
	Score       float64
}

// Searcher indexes and searches prompt documents
type Searcher interface {
	Index(ctx context.Context, docs <-chan domain.Document) error
	Search(query string, opts *SearchOptions) ([]SearchResult, error)
	Close()
}

// indexedDocument is the shape stored in the bleve index
type indexedDocument struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Content     string `json:"content"`
}

// Service is an in-memory bleve based Searcher
type Service struct {
	index      bleve.Index
	maxResults int

	mu   sync.RWMutex
	docs map[string]domain.Document
}

// NewService creates an in-memory search service
func NewService(settings config.SearchSettings) (*Service, error) {
	index, err := bleve.NewMemOnly(bleve.NewIndexMapping())
	if err != nil {
		return nil, fmt.Errorf("failed to create search index: %w", err)
	}

	maxResults := settings.MaxResults
	if maxResults < 1 {
		maxResults = 10
	}

	return &Service{
		index:      index,
		maxResults: maxResults,
		docs:       make(map[string]domain.Document),
	}, nil
}

// Index consumes docs until the channel is closed and indexes them in a single batch
func (s *Service) Index(ctx context.Context, docs <-chan domain.Document) error {
	batch := s.index.NewBatch()
	received := make([]domain.Document, 0)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case doc, ok := <-docs:
			if !ok {
				if err := s.index.Batch(batch); err != nil {
					return fmt.Errorf("failed to index documents: %w", err)
				}
				s.mu.Lock()
				for _, d := range received {
					s.docs[d.Name] = d
				}
				s.mu.Unlock()
				slog.Info("Indexed prompts for search", "count", len(received))
				return nil
			}

			err := batch.Index(doc.Name, indexedDocument{
				Name:        doc.Name,
				Description: doc.Description,
				Content:     doc.Content,
			})
			if err != nil {
				return fmt.Errorf("failed to index %s: %w", doc.Name, err)
			}
			received = append(received, doc)
		}
	}
}

// Search runs a match query over all indexed fields
func (s *Service) Search(query string, opts *SearchOptions) ([]SearchResult, error) {
	limit := s.maxResults
	if opts != nil && opts.Limit > 0 {
		limit = opts.Limit
	}

	req := bleve.NewSearchRequestOptions(bleve.NewMatchQuery(query), limit, 0, false)
	res, err := s.index.Search(req)
	if err != nil {
		return nil, fmt.Errorf("search failed: %w", err)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	results := make([]SearchResult, 0, len(res.Hits))
	for _, hit := range res.Hits {
		results = append(results, SearchResult{
			Name:        hit.ID,
			Description: s.docs[hit.ID].Description,
			Score:       hit.Score,
		})
	}
	return results, nil
}

// Close releases the index
func (s *Service) Close() {
	if err := s.index.Close(); err != nil {
		slog.Error("Failed to close search index", "error", err)
	}
}
