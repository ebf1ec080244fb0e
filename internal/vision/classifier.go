package vision

import (
	"context"
	"fmt"

	"github.com/trovato-shop/trovato/internal/domain"
)

// Prompt shape names, used as the metrics "op" label by the transport.
const (
	OpIdentify = "identify"
	OpText     = "text"
	OpCompare  = "compare"
)

// maxCandidates caps how many candidate images a single Compare call carries.
// More images past this point cost tokens without improving the ranking.
const maxCandidates = 8

// Part is one piece of multimodal prompt content. Exactly one of Text or
// Image is set.
type Part struct {
	Text  string
	Image domain.ImageInput
}

// CompletionRequest is a single multimodal model call.
type CompletionRequest struct {
	Op          string
	Parts       []Part
	Temperature float32
	MaxTokens   int
}

// Completer executes multimodal completions. Implemented by the openai
// transport; tests substitute a canned-reply stub.
type Completer interface {
	Complete(ctx context.Context, req CompletionRequest) (string, error)
}

// Classifier turns the three prompt shapes into structured domain results.
// It owns the prompts and the reply parsing; the transport owns the wire.
type Classifier struct {
	completer Completer
	maxTokens int
}

// NewClassifier creates a classifier on top of a completer.
func NewClassifier(c Completer, maxTokens int) *Classifier {
	if maxTokens <= 0 {
		maxTokens = 1024
	}
	return &Classifier{completer: c, maxTokens: maxTokens}
}

type identifyReply struct {
	Category    string `json:"category"`
	ProductName string `json:"product_name"`
	Reasoning   string `json:"reasoning"`
}

// Identify names the product on a query photo and assigns a catalog category.
func (c *Classifier) Identify(ctx context.Context, image domain.ImageInput) (domain.Identification, error) {
	reply, err := c.completer.Complete(ctx, CompletionRequest{
		Op: OpIdentify,
		Parts: []Part{
			{Text: identifyPrompt()},
			{Image: image},
		},
		Temperature: 0.1,
		MaxTokens:   c.maxTokens,
	})
	if err != nil {
		return domain.Identification{}, fmt.Errorf("identify: %w", err)
	}

	var raw identifyReply
	if err := decodeModelJSON(reply, &raw); err != nil {
		return domain.Identification{}, fmt.Errorf("identify: %w", err)
	}

	cat, _ := domain.ParseCategory(raw.Category)
	return domain.Identification{
		Category:    cat,
		ProductName: raw.ProductName,
		Reasoning:   raw.Reasoning,
	}, nil
}

type textReply struct {
	Category    string   `json:"category"`
	Keywords    []string `json:"keywords"`
	Summary     string   `json:"summary"`
	Suggestions []string `json:"suggestions"`
}

// AnalyzeText extracts category and keywords from a free-text query.
func (c *Classifier) AnalyzeText(ctx context.Context, query string) (domain.TextAnalysis, error) {
	reply, err := c.completer.Complete(ctx, CompletionRequest{
		Op: OpText,
		Parts: []Part{
			{Text: textPrompt(query)},
		},
		Temperature: 0.1,
		MaxTokens:   c.maxTokens,
	})
	if err != nil {
		return domain.TextAnalysis{}, fmt.Errorf("analyze text: %w", err)
	}

	var raw textReply
	if err := decodeModelJSON(reply, &raw); err != nil {
		return domain.TextAnalysis{}, fmt.Errorf("analyze text: %w", err)
	}

	keywords := make([]string, 0, len(raw.Keywords))
	for _, k := range raw.Keywords {
		if k != "" {
			keywords = append(keywords, k)
		}
	}

	cat, _ := domain.ParseCategory(raw.Category)
	return domain.TextAnalysis{
		Category:    cat,
		Keywords:    keywords,
		Summary:     raw.Summary,
		Suggestions: raw.Suggestions,
	}, nil
}

type compareReply struct {
	Ranked     []int  `json:"ranked"`
	TopMatch   int    `json:"top_match"`
	Confidence string `json:"confidence"`
	Reasoning  string `json:"reasoning"`
}

// Compare ranks candidate photos against a reference photo. The returned
// indices are the candidates' original positions, best match first. Numbers
// the model invents are dropped rather than failing the call.
func (c *Classifier) Compare(
	ctx context.Context, reference domain.ImageInput, candidates []domain.CandidateImage,
) (domain.Comparison, error) {
	if len(candidates) > maxCandidates {
		candidates = candidates[:maxCandidates]
	}
	if len(candidates) == 0 {
		return domain.Comparison{}, fmt.Errorf("compare: no candidates: %w", domain.ErrMissingInput)
	}

	parts := make([]Part, 0, len(candidates)+2)
	parts = append(parts, Part{Text: comparePrompt(len(candidates))})
	parts = append(parts, Part{Image: reference})
	for _, cand := range candidates {
		parts = append(parts, Part{Image: cand.Image})
	}

	reply, err := c.completer.Complete(ctx, CompletionRequest{
		Op:          OpCompare,
		Parts:       parts,
		Temperature: 0.05,
		MaxTokens:   c.maxTokens,
	})
	if err != nil {
		return domain.Comparison{}, fmt.Errorf("compare: %w", err)
	}

	var raw compareReply
	if err := decodeModelJSON(reply, &raw); err != nil {
		return domain.Comparison{}, fmt.Errorf("compare: %w", err)
	}

	ranked := make([]int, 0, len(raw.Ranked))
	seen := make(map[int]bool, len(raw.Ranked))
	for _, n := range raw.Ranked {
		if n < 1 || n > len(candidates) || seen[n] {
			continue
		}
		seen[n] = true
		ranked = append(ranked, candidates[n-1].Position)
	}

	top := -1
	if raw.TopMatch >= 1 && raw.TopMatch <= len(candidates) {
		top = candidates[raw.TopMatch-1].Position
	} else if len(ranked) > 0 {
		top = ranked[0]
	}

	return domain.Comparison{
		RankedIndices: ranked,
		TopMatchIndex: top,
		Confidence:    parseConfidence(raw.Confidence),
		Reasoning:     raw.Reasoning,
	}, nil
}

func parseConfidence(s string) domain.Confidence {
	switch s {
	case string(domain.ConfidenceHigh):
		return domain.ConfidenceHigh
	case string(domain.ConfidenceMedium):
		return domain.ConfidenceMedium
	default:
		return domain.ConfidenceLow
	}
}
