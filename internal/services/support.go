package services

import (
	"context"
	"log"
	"strings"

	"lunara/internal/models"
)

// Greeting is the chat widget's opening line.
const Greeting = "Hi! I'm your Lunara assistant. Ask me about shipping, returns, product care, payments, and more."

const maxSuggestions = 8

// FallbackSuggestions are offered when the FAQ list cannot be fetched.
var FallbackSuggestions = []string{
	"Do you ship internationally?",
	"What is your return policy?",
	"How long does shipping take?",
	"How do I track my order?",
	"Are your products hypoallergenic?",
	"Do you offer gift wrapping?",
	"What materials do you use?",
	"How can I contact support?",
}

// Sentiment values reported for a chat message.
const (
	SentimentNeutral  = "neutral"
	SentimentNegative = "negative"
)

// ChatBackend is the remote FAQ and chatbot API.
type ChatBackend interface {
	FAQs(ctx context.Context) ([]string, error)
	Ask(ctx context.Context, req models.ChatRequest) (*models.ChatReply, error)
}

// ChatAnswer is the bot's reply plus the local sentiment hint used to style
// escalations.
type ChatAnswer struct {
	Reply     string `json:"reply"`
	Sentiment string `json:"sentiment"`
}

// SentimentDetector flags unhappy chat messages.
type SentimentDetector struct {
	negativeWords []string
}

func NewSentimentDetector() *SentimentDetector {
	return &SentimentDetector{
		negativeWords: []string{
			"bad", "worse", "worst", "angry", "annoyed", "upset", "frustrated",
			"disappointed", "hate", "terrible", "awful", "useless", "broken",
			"late", "delay", "delayed", "never", "refund", "cancel", "damaged",
			"problem", "issue", "complaint", "scam", "cheat", "unhappy",
			"ridiculous", "stupid", "slow", "poor", "unacceptable", "disgusting",
			"rude",
		},
	}
}

// Detect returns SentimentNegative when text contains any negative word.
// Words match as substrings, so "badge" counts as "bad".
func (sd *SentimentDetector) Detect(text string) string {
	lower := strings.ToLower(text)
	for _, w := range sd.negativeWords {
		if strings.Contains(lower, w) {
			return SentimentNegative
		}
	}
	return SentimentNeutral
}

// SupportService backs the support chat widget.
type SupportService struct {
	backend   ChatBackend
	users     UserSource
	sentiment *SentimentDetector
}

func NewSupportService(backend ChatBackend, users UserSource, sentiment *SentimentDetector) *SupportService {
	return &SupportService{backend: backend, users: users, sentiment: sentiment}
}

// Suggestions returns up to eight quick questions, falling back to the local
// list when the backend has none.
func (ss *SupportService) Suggestions(ctx context.Context) []string {
	faqs, err := ss.backend.FAQs(ctx)
	if err != nil {
		log.Printf("SupportService.Suggestions - Using fallback list: %v", err)
		return append([]string(nil), FallbackSuggestions...)
	}
	if len(faqs) == 0 {
		log.Printf("SupportService.Suggestions - No FAQs returned, using fallback list")
		return append([]string(nil), FallbackSuggestions...)
	}
	if len(faqs) > maxSuggestions {
		faqs = faqs[:maxSuggestions]
	}
	return faqs
}

// Ask sends a question to the chatbot. Blank name and email default to the
// Current User's. Backend trouble becomes a canned reply, not an error.
func (ss *SupportService) Ask(ctx context.Context, req models.ChatRequest) (ChatAnswer, error) {
	req.Message = strings.TrimSpace(req.Message)
	if req.Message == "" {
		return ChatAnswer{}, validationError(models.NotifyWarning, "Please type a question", ErrEmptyMessage)
	}
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)
	if u := ss.users.CurrentUser(); u != nil {
		if req.Name == "" {
			req.Name = u.Name
		}
		if req.Email == "" {
			req.Email = u.Email
		}
	}

	answer := ChatAnswer{Sentiment: ss.sentiment.Detect(req.Message)}
	log.Printf("SupportService.Ask - Sentiment: %s", answer.Sentiment)

	resp, err := ss.backend.Ask(ctx, req)
	switch {
	case err != nil:
		log.Printf("SupportService.Ask - Transport error: %v", err)
		answer.Reply = "Network issue. Please try again."
	case resp.Reply == "":
		answer.Reply = "Sorry, I had trouble responding. Please try again."
	default:
		answer.Reply = resp.Reply
	}
	return answer, nil
}
