package domain

import "context"

// Confidence is the comparator's self-reported certainty. Informational
// metadata only; it never affects merge order.
type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

// Identification is the Identify pass output for a query image.
type Identification struct {
	Category    Category
	ProductName string
	Reasoning   string
}

// TextAnalysis is the Text pass output for a free-text query.
type TextAnalysis struct {
	Category    Category
	Keywords    []string
	Summary     string
	Suggestions []string
}

// PrimaryKeyword returns the first extracted keyword, or "".
func (a TextAnalysis) PrimaryKeyword() string {
	if len(a.Keywords) == 0 {
		return ""
	}
	return a.Keywords[0]
}

// CandidateImage is one downloaded candidate for the Compare pass, tagged
// with its position in the original candidate set. Positions survive download
// failures so the ranking indices stay aligned with the fetched rows.
type CandidateImage struct {
	Position int
	Image    ImageInput
}

// Comparison is the Compare pass output. RankedIndices is a possibly partial
// permutation over candidate positions, best match first.
type Comparison struct {
	RankedIndices []int
	TopMatchIndex int
	Confidence    Confidence
	Reasoning     string
}

// VisionModel is the external multimodal capability behind the three prompt
// shapes. Substitutable with a stub returning canned reports in tests.
type VisionModel interface {
	Identify(ctx context.Context, image ImageInput) (Identification, error)
	AnalyzeText(ctx context.Context, query string) (TextAnalysis, error)
	Compare(ctx context.Context, reference ImageInput, candidates []CandidateImage) (Comparison, error)
}
