package model

// TextChunk is a sentence-bounded segment of page text sized for embedding.
// ChunkIndex is 0-based and monotonic within a page; chunks never span pages.
type TextChunk struct {
	Text       string `json:"text"`
	Page       int    `json:"page"`
	ChunkIndex int    `json:"chunk_index"`
	CharCount  int    `json:"char_count"`
}

// ChunkMetadata is stored alongside the embedding for each indexed chunk.
type ChunkMetadata struct {
	DocumentID int64  `json:"document_id"`
	FundID     int64  `json:"fund_id"`
	Page       int    `json:"page"`
	ChunkIndex int    `json:"chunk_index"`
	Source     string `json:"source"`
}

// IngestStats accumulates counts over one ingestion run. It is the
// orchestration result, surfaced for status reporting and never persisted.
type IngestStats struct {
	CapitalCalls   int      `json:"capital_calls"`
	Distributions  int      `json:"distributions"`
	Adjustments    int      `json:"adjustments"`
	TextChunks     int      `json:"text_chunks"`
	TablesFound    int      `json:"tables_found"`
	PagesProcessed int      `json:"pages_processed"`
	Errors         []string `json:"errors"`
}
