package retrieval

import (
	"context"
	"encoding/json"
	"time"

	"github.com/akolanti/profile-rag/internal/config"
	"github.com/akolanti/profile-rag/internal/domain/document"
	"github.com/akolanti/profile-rag/internal/metrics"
)

type EventType string

const (
	EventSources EventType = "sources"
	EventText    EventType = "text"
)

// Event is one message of a streamed answer: a single sources event, then
// text fragments in arrival order.
type Event struct {
	Type    EventType
	Sources []document.RetrievedDocument
	Content string
}

func (e Event) MarshalJSON() ([]byte, error) {
	if e.Type == EventSources {
		sources := e.Sources
		if sources == nil {
			sources = []document.RetrievedDocument{}
		}
		return json.Marshal(struct {
			Type    EventType                    `json:"type"`
			Sources []document.RetrievedDocument `json:"sources"`
		}{e.Type, sources})
	}
	return json.Marshal(struct {
		Type    EventType `json:"type"`
		Content string    `json:"content"`
	}{e.Type, e.Content})
}

// Stream delivers the events of one answer. Err reports why generation
// stopped early and is only meaningful once Events is closed. The sources
// event stays valid when the text is cut short.
type Stream struct {
	events chan Event
	err    error
}

func (s *Stream) Events() <-chan Event {
	return s.events
}

func (s *Stream) Err() error {
	return s.err
}

// AnswerStream searches synchronously, so a failed search is returned before
// any event is produced. Generation runs until the model finishes or ctx is
// cancelled.
func (s *service) AnswerStream(ctx context.Context, question string, topK int) (*Stream, error) {
	log := s.logger.FromContext(ctx, config.TRACE_ID_KEY)

	docs, err := s.Search(ctx, question, topK)
	if err != nil {
		return nil, err
	}
	if docs == nil {
		docs = []document.RetrievedDocument{}
	}
	prompt := s.prompt(question, BuildContext(docs))

	stream := &Stream{events: make(chan Event, config.StreamEventBuffer)}
	send := func(e Event) bool {
		select {
		case stream.events <- e:
			return true
		case <-ctx.Done():
			stream.err = ctx.Err()
			return false
		}
	}

	go func() {
		defer close(stream.events)
		start := time.Now()
		defer func() { metrics.CaptureExecutionMetrics("llm_generation", time.Since(start)) }()

		if !send(Event{Type: EventSources, Sources: docs}) {
			return
		}
		for fragment, err := range s.provider.GenerateStream(ctx, prompt) {
			if err != nil {
				log.Error("Answer stream broke off", "error", err)
				stream.err = answeringError(err)
				return
			}
			if !send(Event{Type: EventText, Content: fragment}) {
				log.Info("Answer stream abandoned by caller")
				return
			}
		}
	}()
	return stream, nil
}
