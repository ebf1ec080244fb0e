package search

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/trovato-shop/trovato/internal/domain"
	"github.com/trovato-shop/trovato/internal/logger"
	"github.com/trovato-shop/trovato/internal/metrics"
)

// Config holds the pipeline tuning knobs.
type Config struct {
	Threshold     float64 // minimum vector similarity
	Limit         int     // image query result cap
	TextLimit     int     // text query result cap
	CandidateCap  int     // images per compare call
	UnfilteredCap int     // catalog rows pulled when no filter applies
}

// ApplyDefaults fills zero fields with production defaults.
func (c *Config) ApplyDefaults() {
	if c.Threshold == 0 {
		c.Threshold = 0.45
	}
	if c.Limit == 0 {
		c.Limit = 8
	}
	if c.TextLimit == 0 {
		c.TextLimit = 12
	}
	if c.CandidateCap == 0 {
		c.CandidateCap = 8
	}
	if c.UnfilteredCap == 0 {
		c.UnfilteredCap = 50
	}
}

// Query is one search request. Exactly one of Image or Text must be set.
// Threshold and Limit override the configured defaults when positive.
type Query struct {
	Image     domain.ImageInput
	Text      string
	Threshold float64
	Limit     int
}

// Result is a ranked answer plus the analysis that produced it.
type Result struct {
	Matches  []domain.Match
	Analysis domain.AnalysisReport
}

// Service orchestrates the hybrid search pipeline: vector similarity first,
// the multimodal model as fallback and explainer, lexical scoring for text.
type Service struct {
	catalog Catalog
	embed   Embedder
	vision  Vision
	fetcher Fetcher
	cfg     Config
}

// New creates a search service.
func New(catalog Catalog, embed Embedder, vision Vision, fetcher Fetcher, cfg Config) *Service {
	cfg.ApplyDefaults()
	return &Service{catalog: catalog, embed: embed, vision: vision, fetcher: fetcher, cfg: cfg}
}

// Search dispatches on query kind. An empty query is a caller error.
func (s *Service) Search(ctx context.Context, q Query) (Result, error) {
	switch {
	case !q.Image.IsZero():
		res, err := s.searchImage(ctx, q)
		observeSearch("image", err)
		return res, err
	case strings.TrimSpace(q.Text) != "":
		res, err := s.searchText(ctx, q)
		observeSearch("text", err)
		return res, err
	default:
		observeSearch("invalid", domain.ErrMissingInput)
		return Result{}, fmt.Errorf("neither image nor text supplied: %w", domain.ErrMissingInput)
	}
}

func observeSearch(kind string, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	metrics.SearchRequestsTotal.WithLabelValues(kind, status).Inc()
}

// searchImage runs the photo pipeline. The embedding path answers most
// queries; the model passes only run when vector search comes up empty, so a
// degraded embedding provider downgrades quality instead of failing requests.
func (s *Service) searchImage(ctx context.Context, q Query) (Result, error) {
	log := logger.FromContext(ctx)
	threshold := q.Threshold
	if threshold <= 0 {
		threshold = s.cfg.Threshold
	}
	limit := q.Limit
	if limit <= 0 {
		limit = s.cfg.Limit
	}

	if matches := s.vectorMatches(ctx, q.Image, threshold, limit); len(matches) > 0 {
		return Result{Matches: matches}, nil
	}

	// Visual fallback: identify the product, pull candidates, compare photos.
	var analysis domain.AnalysisReport
	category := domain.CategoryUnknown

	ident, err := s.vision.Identify(ctx, q.Image)
	if err != nil {
		log.Warn("identify pass failed, falling back to unfiltered candidates", zap.Error(err))
	} else {
		category = ident.Category
		analysis.Category = ident.Category.String()
		analysis.ProductName = ident.ProductName
		analysis.Reasoning = ident.Reasoning
	}

	candidates, err := s.loadCandidates(ctx, category)
	if err != nil {
		return Result{}, err
	}
	if len(candidates) == 0 {
		return Result{Analysis: analysis}, nil
	}
	if len(candidates) > s.cfg.CandidateCap {
		candidates = candidates[:s.cfg.CandidateCap]
	}

	urls := make([]string, len(candidates))
	for i, it := range candidates {
		urls[i] = it.ImageURL()
	}

	downloaded := make([]domain.CandidateImage, 0, len(candidates))
	for _, r := range s.fetcher.FetchAll(ctx, urls) {
		if r.Err != nil {
			continue
		}
		downloaded = append(downloaded, domain.CandidateImage{Position: r.Position, Image: r.Image})
	}

	// All downloads failed: the category guess is still worth returning,
	// just without a visual ranking.
	if len(downloaded) == 0 {
		analysis.Reasoning = joinReasoning(analysis.Reasoning,
			"candidate images unavailable, results are unranked")
		return Result{Matches: unrankedMatches(candidates, limit), Analysis: analysis}, nil
	}

	cmp, err := s.vision.Compare(ctx, q.Image, downloaded)
	if err != nil {
		return Result{}, fmt.Errorf("visual compare: %w", err)
	}
	analysis.Confidence = string(cmp.Confidence)
	if cmp.Reasoning != "" {
		analysis.Reasoning = cmp.Reasoning
	}

	return Result{Matches: mergeRanked(candidates, cmp.RankedIndices, limit), Analysis: analysis}, nil
}

// vectorMatches is the embedding path. Any failure here logs and returns
// nothing so the model fallback can take over.
func (s *Service) vectorMatches(
	ctx context.Context, image domain.ImageInput, threshold float64, limit int,
) []domain.Match {
	log := logger.FromContext(ctx)

	emb, err := s.embed.Embed(ctx, image)
	if err != nil {
		log.Warn("query embedding failed, skipping vector search", zap.Error(err))
		return nil
	}

	matches, err := s.catalog.SearchByVector(ctx, emb.Embedding, threshold, limit)
	if err != nil {
		log.Warn("vector search failed, falling back to visual compare", zap.Error(err))
		return nil
	}
	return matches
}

func (s *Service) loadCandidates(ctx context.Context, category domain.Category) ([]domain.Item, error) {
	var (
		items []domain.Item
		err   error
	)
	if category == domain.CategoryUnknown {
		items, err = s.catalog.ListAll(ctx, s.cfg.UnfilteredCap)
	} else {
		items, err = s.catalog.ListByCategory(ctx, category, s.cfg.UnfilteredCap)
	}
	if err != nil {
		return nil, fmt.Errorf("load candidates: %w", err)
	}

	withImages := items[:0:0]
	for _, it := range items {
		if it.HasImage() {
			withImages = append(withImages, it)
		}
	}
	return withImages, nil
}

// searchText runs the text pipeline. The analysis pass is advisory: when the
// model is down we still answer from the raw query string.
func (s *Service) searchText(ctx context.Context, q Query) (Result, error) {
	log := logger.FromContext(ctx)
	limit := q.Limit
	if limit <= 0 || limit > s.cfg.TextLimit {
		limit = s.cfg.TextLimit
	}
	query := strings.TrimSpace(q.Text)

	var analysis domain.AnalysisReport
	ta, err := s.vision.AnalyzeText(ctx, query)
	analyzeFailed := err != nil
	if analyzeFailed {
		log.Warn("text analysis failed, scoring against the raw query", zap.Error(err))
		ta = domain.TextAnalysis{Keywords: strings.Fields(query)}
	} else {
		analysis.Category = ta.Category.String()
		analysis.Keywords = ta.Keywords
		analysis.Reasoning = ta.Summary
		analysis.Suggestions = ta.Suggestions
	}

	var items []domain.Item
	switch {
	case ta.Category != domain.CategoryUnknown:
		items, err = s.catalog.ListByCategory(ctx, ta.Category, s.cfg.UnfilteredCap)
	case !analyzeFailed && ta.PrimaryKeyword() != "":
		items, err = s.catalog.SearchByName(ctx, ta.PrimaryKeyword(), s.cfg.UnfilteredCap)
	default:
		items, err = s.catalog.ListAll(ctx, s.cfg.UnfilteredCap)
	}
	if err != nil {
		return Result{}, fmt.Errorf("load items: %w", err)
	}

	matches := scoreLexical(items, ta.Keywords)
	if len(matches) == 0 && len(lexicalTerms(ta.Keywords)) == 0 {
		matches = unrankedMatches(items, limit)
	}
	if len(matches) > limit {
		matches = matches[:limit]
	}
	return Result{Matches: matches, Analysis: analysis}, nil
}

func unrankedMatches(items []domain.Item, limit int) []domain.Match {
	if len(items) > limit {
		items = items[:limit]
	}
	matches := make([]domain.Match, len(items))
	for i, it := range items {
		matches[i] = domain.Match{Item: it, Source: domain.RankUnranked}
	}
	return matches
}

func joinReasoning(a, b string) string {
	if a == "" {
		return b
	}
	return a + "; " + b
}
