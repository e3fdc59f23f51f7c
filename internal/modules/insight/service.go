package insight

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/qmuntal/stateless"
	"go.uber.org/zap"

	"github.com/chatinsight/core/internal/models"
	"github.com/chatinsight/core/internal/store"
)

var (
	ErrConversationNotFound = errors.New("conversation not found")
	ErrNoMessages           = errors.New("no messages provided")
	ErrSummaryNotFound      = errors.New("summary not found")
)

// MessageReader is the part of the message store the service reads.
type MessageReader interface {
	ListMessages(ctx context.Context, conversationID string, skip, limit int) ([]models.ChatMessage, error)
}

// ProviderSelector resolves a provider name, possibly empty, to a provider.
type ProviderSelector interface {
	Select(name string) Provider
}

type summarizeState string

const (
	stateIdle           summarizeState = "Idle"
	stateLookupExisting summarizeState = "LookupExisting"
	stateFetchMessages  summarizeState = "FetchMessages"
	stateInvokeProvider summarizeState = "InvokeProvider"
	stateNormalize      summarizeState = "Normalize"
	statePersist        summarizeState = "Persist"
	stateDone           summarizeState = "Done"
	stateFailed         summarizeState = "Failed"
)

type summarizeTrigger string

const (
	triggerStart     summarizeTrigger = "Start"
	triggerFound     summarizeTrigger = "Found"
	triggerMissing   summarizeTrigger = "Missing"
	triggerFetched   summarizeTrigger = "Fetched"
	triggerGenerated summarizeTrigger = "Generated"
	triggerCleaned   summarizeTrigger = "Cleaned"
	triggerStored    summarizeTrigger = "Stored"
	triggerFail      summarizeTrigger = "Fail"
)

// Service turns stored conversations into summaries.
type Service struct {
	messages  MessageReader
	summaries store.SummaryStore
	providers ProviderSelector
	log       *zap.Logger
	now       func() time.Time
}

func NewService(messages MessageReader, summaries store.SummaryStore, providers ProviderSelector, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		messages:  messages,
		summaries: summaries,
		providers: providers,
		log:       log,
		now:       func() time.Time { return time.Now().UTC().Truncate(time.Millisecond) },
	}
}

// summarizeRun carries the data of one Summarize call through the machine.
type summarizeRun struct {
	conversationID string
	providerName   string

	msgs     []models.ChatMessage
	insights models.Insights
	summary  *models.ConversationSummary
	err      error

	next *summarizeTrigger
}

func (r *summarizeRun) fire(t summarizeTrigger) { r.next = &t }

func (r *summarizeRun) fail(err error) {
	r.err = err
	r.fire(triggerFail)
}

// Summarize returns the stored summary of a conversation, computing and
// storing it first when none exists. The provider is not called when a
// summary is already stored or the conversation has no messages.
func (s *Service) Summarize(ctx context.Context, conversationID, providerName string) (*models.ConversationSummary, error) {
	run := &summarizeRun{conversationID: conversationID, providerName: providerName}
	sm := s.newSummarizeMachine(run)

	run.fire(triggerStart)
	for run.next != nil {
		t := *run.next
		run.next = nil
		if err := sm.FireCtx(ctx, t); err != nil {
			return nil, fmt.Errorf("summarize %s: %w", conversationID, err)
		}
	}

	if sm.MustState() == stateFailed {
		return nil, run.err
	}
	return run.summary, nil
}

func (s *Service) newSummarizeMachine(run *summarizeRun) *stateless.StateMachine {
	sm := stateless.NewStateMachine(stateIdle)

	sm.Configure(stateIdle).
		Permit(triggerStart, stateLookupExisting)

	sm.Configure(stateLookupExisting).
		OnEntry(func(ctx context.Context, _ ...any) error {
			existing, err := s.summaries.GetSummary(ctx, run.conversationID)
			switch {
			case err == nil:
				run.summary = existing
				run.fire(triggerFound)
			case errors.Is(err, store.ErrNotFound):
				run.fire(triggerMissing)
			default:
				run.fail(fmt.Errorf("load summary: %w", err))
			}
			return nil
		}).
		Permit(triggerFound, stateDone).
		Permit(triggerMissing, stateFetchMessages).
		Permit(triggerFail, stateFailed)

	sm.Configure(stateFetchMessages).
		OnEntry(func(ctx context.Context, _ ...any) error {
			msgs, err := s.messages.ListMessages(ctx, run.conversationID, 0, 0)
			switch {
			case err != nil:
				run.fail(fmt.Errorf("load messages: %w", err))
			case len(msgs) == 0:
				run.fail(ErrConversationNotFound)
			default:
				run.msgs = msgs
				run.fire(triggerFetched)
			}
			return nil
		}).
		Permit(triggerFetched, stateInvokeProvider).
		Permit(triggerFail, stateFailed)

	sm.Configure(stateInvokeProvider).
		OnEntry(func(ctx context.Context, _ ...any) error {
			p := s.providers.Select(run.providerName)
			s.log.Info("generating insights",
				zap.String("conversation_id", run.conversationID),
				zap.String("provider", p.Name()),
				zap.Int("messages", len(run.msgs)))
			run.insights = p.GenerateFullInsights(ctx, run.msgs)
			run.fire(triggerGenerated)
			return nil
		}).
		Permit(triggerGenerated, stateNormalize)

	sm.Configure(stateNormalize).
		OnEntry(func(context.Context, ...any) error {
			run.summary = models.NewSummary(run.conversationID, run.insights, s.now())
			run.fire(triggerCleaned)
			return nil
		}).
		Permit(triggerCleaned, statePersist)

	sm.Configure(statePersist).
		OnEntry(func(ctx context.Context, _ ...any) error {
			if err := s.summaries.UpsertSummary(ctx, run.summary); err != nil {
				run.fail(fmt.Errorf("store summary: %w", err))
				return nil
			}
			run.fire(triggerStored)
			return nil
		}).
		Permit(triggerStored, stateDone).
		Permit(triggerFail, stateFailed)

	sm.Configure(stateDone)
	sm.Configure(stateFailed)
	return sm
}

// GenerateInsights analyses messages that need not be stored. Nothing is
// persisted.
func (s *Service) GenerateInsights(ctx context.Context, msgs []models.ChatMessage, providerName string) (models.Insights, error) {
	if len(msgs) == 0 {
		return models.Insights{}, ErrNoMessages
	}
	p := s.providers.Select(providerName)
	return p.GenerateFullInsights(ctx, msgs).Normalize(), nil
}

// GetSummary returns the stored summary without generating one.
func (s *Service) GetSummary(ctx context.Context, conversationID string) (*models.ConversationSummary, error) {
	summary, err := s.summaries.GetSummary(ctx, conversationID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrSummaryNotFound
	}
	if err != nil {
		return nil, err
	}
	return summary, nil
}
