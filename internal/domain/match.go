package domain

// RankSource records which pipeline stage assigned a match its position.
type RankSource string

const (
	RankVector   RankSource = "vector"
	RankVisual   RankSource = "visual"
	RankLexical  RankSource = "lexical"
	RankUnranked RankSource = "unranked"
)

// Match is one ranked result row.
type Match struct {
	Item   Item
	Score  float64
	Source RankSource
}

// AnalysisReport is the user-facing explanation attached to every search
// response. Transient; never persisted.
type AnalysisReport struct {
	Category    string   `json:"category,omitempty"`
	ProductName string   `json:"product_name,omitempty"`
	Reasoning   string   `json:"reasoning,omitempty"`
	Keywords    []string `json:"keywords,omitempty"`
	Suggestions []string `json:"suggestions,omitempty"`
	Confidence  string   `json:"confidence,omitempty"`
}
