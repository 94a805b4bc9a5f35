package services

import (
	"context"
	"errors"
	"testing"

	"lunara/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubChat struct {
	faqs   []string
	faqErr error
	reply  *models.ChatReply
	askErr error
	asked  []models.ChatRequest
}

func (s *stubChat) FAQs(ctx context.Context) ([]string, error) {
	return s.faqs, s.faqErr
}

func (s *stubChat) Ask(ctx context.Context, req models.ChatRequest) (*models.ChatReply, error) {
	s.asked = append(s.asked, req)
	return s.reply, s.askErr
}

func TestSuggestions(t *testing.T) {
	many := []string{"q1", "q2", "q3", "q4", "q5", "q6", "q7", "q8", "q9", "q10"}

	tests := []struct {
		name string
		chat *stubChat
		want []string
	}{
		{"first eight", &stubChat{faqs: many}, many[:8]},
		{"short list", &stubChat{faqs: []string{"Do you resize rings?"}}, []string{"Do you resize rings?"}},
		{"empty falls back", &stubChat{}, FallbackSuggestions},
		{"error falls back", &stubChat{faqErr: errors.New("boom")}, FallbackSuggestions},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ss := NewSupportService(tt.chat, &stubUsers{}, NewSentimentDetector())
			assert.Equal(t, tt.want, ss.Suggestions(context.Background()))
		})
	}
	assert.Len(t, FallbackSuggestions, 8)
}

func TestAsk(t *testing.T) {
	t.Run("empty message makes no call", func(t *testing.T) {
		chat := &stubChat{}
		ss := NewSupportService(chat, &stubUsers{}, NewSentimentDetector())
		_, err := ss.Ask(context.Background(), models.ChatRequest{Message: "   "})
		assert.ErrorIs(t, err, ErrEmptyMessage)
		requireKind(t, err, KindValidation)
		assert.Empty(t, chat.asked)
	})

	t.Run("defaults identity to current user", func(t *testing.T) {
		chat := &stubChat{reply: &models.ChatReply{Reply: "We ship in 3-5 days."}}
		ss := NewSupportService(chat, &stubUsers{user: shopper()}, NewSentimentDetector())

		answer, err := ss.Ask(context.Background(), models.ChatRequest{Message: " How long does shipping take? "})
		require.NoError(t, err)
		assert.Equal(t, ChatAnswer{Reply: "We ship in 3-5 days.", Sentiment: SentimentNeutral}, answer)
		require.Len(t, chat.asked, 1)
		assert.Equal(t, models.ChatRequest{
			Message: "How long does shipping take?",
			Name:    "Asha Rao",
			Email:   "asha@example.com",
		}, chat.asked[0])
	})

	t.Run("typed identity wins", func(t *testing.T) {
		chat := &stubChat{reply: &models.ChatReply{Reply: "ok"}}
		ss := NewSupportService(chat, &stubUsers{user: shopper()}, NewSentimentDetector())
		_, err := ss.Ask(context.Background(), models.ChatRequest{Message: "hi", Name: "Guest", Email: "g@x.io"})
		require.NoError(t, err)
		assert.Equal(t, "Guest", chat.asked[0].Name)
		assert.Equal(t, "g@x.io", chat.asked[0].Email)
	})

	t.Run("fallback replies", func(t *testing.T) {
		ss := NewSupportService(&stubChat{reply: &models.ChatReply{}}, &stubUsers{}, NewSentimentDetector())
		answer, err := ss.Ask(context.Background(), models.ChatRequest{Message: "My order is late and I want a refund"})
		require.NoError(t, err)
		assert.Equal(t, "Sorry, I had trouble responding. Please try again.", answer.Reply)
		assert.Equal(t, SentimentNegative, answer.Sentiment)

		ss = NewSupportService(&stubChat{askErr: errors.New("timeout")}, &stubUsers{}, NewSentimentDetector())
		answer, err = ss.Ask(context.Background(), models.ChatRequest{Message: "hello"})
		require.NoError(t, err)
		assert.Equal(t, "Network issue. Please try again.", answer.Reply)
	})
}

func TestSentimentDetector(t *testing.T) {
	sd := NewSentimentDetector()
	assert.Equal(t, SentimentNegative, sd.Detect("This is UNACCEPTABLE"))
	assert.Equal(t, SentimentNegative, sd.Detect("the clasp arrived broken"))
	assert.Equal(t, SentimentNeutral, sd.Detect("Do you offer gift wrapping?"))
	assert.Equal(t, SentimentNeutral, sd.Detect(""))
}
