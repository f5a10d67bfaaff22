// Package domain holds the core data model shared by all flows.
package domain

// Document is a stored text with its embedding vector. Identity is a
// content hash of the text, so re-ingesting the same text overwrites
// the existing document instead of duplicating it.
type Document struct {
	ID     string
	Text   string
	Vector []float32
}

// SearchHit is a single nearest-neighbor result. Score is similarity,
// derived as 1 - distance from the store's native metric.
type SearchHit struct {
	Text  string  `json:"text"`
	Score float64 `json:"score"`
}

// ChatMessage is one turn in a generation prompt.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Chat message roles.
const (
	RoleSystem = "system"
	RoleUser   = "user"
)

// LabelledExample pairs a text with an integer class label.
type LabelledExample struct {
	Text  string `json:"text"`
	Label int    `json:"label"`
}
