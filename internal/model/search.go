package model

// SearchResult is one vector-search hit. Score is cosine similarity
// (1 - distance); higher is closer.
type SearchResult struct {
	ID         int64         `json:"id"`
	DocumentID int64         `json:"document_id"`
	FundID     int64         `json:"fund_id"`
	Content    string        `json:"content"`
	Metadata   ChunkMetadata `json:"metadata"`
	Score      float64       `json:"score"`
}

// SearchFilter restricts a vector search by equality on the tagged columns.
// Nil fields are ignored.
type SearchFilter struct {
	DocumentID *int64
	FundID     *int64
}
