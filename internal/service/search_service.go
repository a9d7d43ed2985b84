package service

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/fundscope/fundscope/internal/ai"
	"github.com/fundscope/fundscope/internal/config"
	"github.com/fundscope/fundscope/internal/model"
	"github.com/fundscope/fundscope/internal/repo"
)

const historyLimit = 10

var ErrAIUnavailable = ai.ErrUnavailable

const answerPromptFormat = `You are an assistant answering questions about a private equity fund using excerpts from its uploaded reports.

Rules:
- Answer only from the excerpts below. If they do not contain the answer, say so.
- Quote amounts and dates exactly as they appear.
- Keep the answer short and factual.

Excerpts:
%s

%sQuestion: %s`

// ChatAnswer is one grounded reply plus the chunks it was grounded on.
type ChatAnswer struct {
	Answer         string               `json:"answer"`
	Sources        []model.SearchResult `json:"sources"`
	ConversationID string               `json:"conversation_id"`
}

// SearchService answers questions over indexed document chunks. Retrieval
// hits below the similarity threshold are discarded before prompting, so a
// question with no relevant material gets an honest "not found" instead of a
// hallucinated answer.
type SearchService struct {
	vectors       *repo.VectorRepo
	conversations *repo.ConversationRepo
	gen           ai.IGenerator
	topK          int
	threshold     float64
	cache         *expirable.LRU[string, string]
}

func NewSearchService(vectors *repo.VectorRepo, conversations *repo.ConversationRepo, gen ai.IGenerator, cfg config.RetrievalConfig) *SearchService {
	return &SearchService{
		vectors:       vectors,
		conversations: conversations,
		gen:           gen,
		topK:          cfg.TopK,
		threshold:     cfg.SimilarityThreshold,
		cache:         expirable.NewLRU[string, string](10000, nil, 2*time.Hour),
	}
}

// Search runs a filtered nearest-neighbor query and keeps only hits at or
// above the similarity threshold.
func (s *SearchService) Search(ctx context.Context, query string, filter model.SearchFilter) []model.SearchResult {
	hits := s.vectors.Search(ctx, query, s.topK, filter)
	kept := make([]model.SearchResult, 0, len(hits))
	for _, hit := range hits {
		if hit.Score >= s.threshold {
			kept = append(kept, hit)
		}
	}
	return kept
}

// Ask answers a question about one fund, grounded on retrieved chunks, and
// records the exchange in the conversation. An empty conversationID starts a
// new conversation.
func (s *SearchService) Ask(ctx context.Context, fundID int64, conversationID, question string) (*ChatAnswer, error) {
	logger := logutil.GetLogger(ctx).With(zap.Int64("fund_id", fundID))
	if s.gen == nil {
		return nil, ErrAIUnavailable
	}
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, fmt.Errorf("question is required")
	}

	conv, err := s.resolveConversation(ctx, fundID, conversationID)
	if err != nil {
		return nil, err
	}

	sources := s.Search(ctx, question, model.SearchFilter{FundID: &fundID})
	answer, cached := s.cache.Get(s.cacheKey(fundID, question))
	if !cached {
		answer, err = s.generate(ctx, conv, question, sources)
		if err != nil {
			logger.Error("failed to generate answer", zap.Error(err))
			return nil, err
		}
		s.cache.Add(s.cacheKey(fundID, question), answer)
	}

	s.record(ctx, conv, question, answer)
	return &ChatAnswer{
		Answer:         answer,
		Sources:        sources,
		ConversationID: conv.ConversationID,
	}, nil
}

// History returns the messages of one conversation, oldest first.
func (s *SearchService) History(ctx context.Context, conversationID string) ([]model.ConversationMessage, error) {
	conv, err := s.conversations.GetByConversationID(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	return s.conversations.ListMessages(ctx, conv.ID)
}

func (s *SearchService) resolveConversation(ctx context.Context, fundID int64, conversationID string) (*model.Conversation, error) {
	if conversationID != "" {
		return s.conversations.GetByConversationID(ctx, conversationID)
	}
	conv := &model.Conversation{
		ConversationID: newConversationID(),
		FundID:         fundID,
	}
	if err := s.conversations.Create(ctx, conv); err != nil {
		return nil, err
	}
	return conv, nil
}

func (s *SearchService) generate(ctx context.Context, conv *model.Conversation, question string, sources []model.SearchResult) (string, error) {
	if len(sources) == 0 {
		return "I could not find anything relevant to that question in the uploaded documents.", nil
	}
	var excerpts strings.Builder
	for i, src := range sources {
		fmt.Fprintf(&excerpts, "[%d] (page %d of %s)\n%s\n\n", i+1, src.Metadata.Page, src.Metadata.Source, src.Content)
	}

	history := ""
	messages, err := s.conversations.ListMessages(ctx, conv.ID)
	if err == nil && len(messages) > 0 {
		if len(messages) > historyLimit {
			messages = messages[len(messages)-historyLimit:]
		}
		var b strings.Builder
		b.WriteString("Conversation so far:\n")
		for _, msg := range messages {
			fmt.Fprintf(&b, "%s: %s\n", msg.Role, msg.Content)
		}
		b.WriteString("\n")
		history = b.String()
	}

	return s.gen.Generate(ctx, fmt.Sprintf(answerPromptFormat, excerpts.String(), history, question))
}

func (s *SearchService) record(ctx context.Context, conv *model.Conversation, question, answer string) {
	logger := logutil.GetLogger(ctx).With(zap.String("conversation_id", conv.ConversationID))
	for _, msg := range []model.ConversationMessage{
		{ConversationID: conv.ID, Role: "user", Content: question},
		{ConversationID: conv.ID, Role: "assistant", Content: answer},
	} {
		msg := msg
		if err := s.conversations.AppendMessage(ctx, &msg); err != nil {
			logger.Warn("failed to record conversation message", zap.Error(err))
			return
		}
	}
	if err := s.conversations.Touch(ctx, conv.ID); err != nil {
		logger.Warn("failed to touch conversation", zap.Error(err))
	}
}

func (s *SearchService) cacheKey(fundID int64, question string) string {
	sum := sha256.Sum256([]byte(fmt.Sprintf("%d|%s", fundID, question)))
	return hex.EncodeToString(sum[:])
}

func newConversationID() string {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return fmt.Sprintf("conv-%d", time.Now().UnixNano())
	}
	return hex.EncodeToString(buf)
}
