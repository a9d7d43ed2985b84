package ai

import (
	"context"
	"regexp"
	"strings"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/fundscope/fundscope/internal/model"
)

var sentenceBoundary = regexp.MustCompile(`(?s)(.*?[.!?])\s+`)

// Chunker splits page text into overlapping, sentence-bounded segments sized
// for embedding. Chunk indices restart on every page; a chunk never spans
// pages.
type Chunker struct {
	size    int
	overlap int
}

func NewChunker(size, overlap int) *Chunker {
	if size <= 0 {
		size = 1000
	}
	if overlap < 0 {
		overlap = 0
	}
	return &Chunker{size: size, overlap: overlap}
}

// Chunk consumes the full page set eagerly and returns every chunk in page
// order. A sentence longer than the size budget is emitted as a single
// oversize chunk rather than split mid-sentence.
func (c *Chunker) Chunk(ctx context.Context, pages []model.Page) []model.TextChunk {
	logger := logutil.GetLogger(ctx)
	var chunks []model.TextChunk
	for _, page := range pages {
		if strings.TrimSpace(page.Text) == "" {
			continue
		}
		pageChunks := c.chunkPage(page.Number, page.Text)
		chunks = append(chunks, pageChunks...)
	}
	logger.Info("chunking completed", zap.Int("pages", len(pages)), zap.Int("total_chunks", len(chunks)))
	return chunks
}

func (c *Chunker) chunkPage(pageNum int, text string) []model.TextChunk {
	sentences := SplitSentences(text)
	var chunks []model.TextChunk
	var current []string
	currentLen := 0
	chunkIndex := 0

	flush := func() {
		content := strings.Join(current, " ")
		chunks = append(chunks, model.TextChunk{
			Text:       content,
			Page:       pageNum,
			ChunkIndex: chunkIndex,
			CharCount:  len(content),
		})
		chunkIndex++
	}

	for _, sentence := range sentences {
		if currentLen+len(sentence) > c.size && len(current) > 0 {
			flush()
			// Seed the next chunk with trailing sentences that fit the
			// overlap budget, walking the closed chunk backward.
			var overlapParts []string
			overlapLen := 0
			for i := len(current) - 1; i >= 0; i-- {
				if overlapLen+len(current[i]) > c.overlap {
					break
				}
				overlapLen += len(current[i])
				overlapParts = append([]string{current[i]}, overlapParts...)
			}
			current = overlapParts
			currentLen = overlapLen
		}
		current = append(current, sentence)
		currentLen += len(sentence)
	}
	if len(current) > 0 {
		flush()
	}
	return chunks
}

// SplitSentences breaks text on `.`, `!` or `?` followed by whitespace. The
// heuristic is deliberately simple; abbreviations and decimals may over-split
// but the chunker only needs approximate boundaries.
func SplitSentences(text string) []string {
	var sentences []string
	rest := text
	for {
		loc := sentenceBoundary.FindStringSubmatchIndex(rest)
		if loc == nil {
			break
		}
		sentence := strings.TrimSpace(rest[loc[2]:loc[3]])
		if sentence != "" {
			sentences = append(sentences, sentence)
		}
		rest = rest[loc[1]:]
	}
	if tail := strings.TrimSpace(rest); tail != "" {
		sentences = append(sentences, tail)
	}
	return sentences
}
