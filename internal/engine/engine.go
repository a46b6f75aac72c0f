// Package engine wires intent detection, web search, and knowledge
// retrieval into the single context assembly entry point.
package engine

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/bfforex/EvolveUI/internal/assembler"
	"github.com/bfforex/EvolveUI/internal/intent"
	"github.com/bfforex/EvolveUI/internal/knowledge"
	"github.com/bfforex/EvolveUI/internal/metrics"
	"github.com/bfforex/EvolveUI/internal/websearch"
	"github.com/bfforex/EvolveUI/pkg/types"
)

// Engine defaults
const (
	DefaultOverallTimeout = 15 * time.Second
	DefaultRecentTurns    = 2
)

// ConversationStore supplies recent history for a conversation. The chat
// layer owns the store; the engine only reads from it.
type ConversationStore interface {
	RecentTurns(ctx context.Context, conversationID string, limit int) ([]types.ConversationTurn, error)
}

// Options collects the engine's collaborators. Orchestrator, Detector,
// Retriever, and Assembler are required; the rest are optional.
type Options struct {
	Orchestrator  *websearch.Orchestrator
	Detector      *intent.Detector
	Retriever     *knowledge.Retriever
	Ingestor      *knowledge.Ingestor
	Assembler     *assembler.Assembler
	Conversations ConversationStore
	Index         *knowledge.Index

	SearchOptions  websearch.SearchOptions
	OverallTimeout time.Duration
	RecentTurns    int
	Logger         *zap.Logger
}

// Engine is the process-wide context assembly facade. The orchestrator is
// the only field mutated after construction; ConfigureProviders swaps it
// under the lock so in-flight requests keep the snapshot they started with.
type Engine struct {
	mu           sync.RWMutex
	orchestrator *websearch.Orchestrator

	detector      *intent.Detector
	retriever     *knowledge.Retriever
	ingestor      *knowledge.Ingestor
	assembler     *assembler.Assembler
	conversations ConversationStore
	index         *knowledge.Index

	searchOpts     websearch.SearchOptions
	overallTimeout time.Duration
	recentTurns    int
	log            *zap.Logger
}

// New creates an Engine from options, applying defaults for any unset
// tuning field.
func New(opts Options) *Engine {
	if opts.OverallTimeout <= 0 {
		opts.OverallTimeout = DefaultOverallTimeout
	}
	if opts.RecentTurns <= 0 {
		opts.RecentTurns = DefaultRecentTurns
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Engine{
		orchestrator:   opts.Orchestrator,
		detector:       opts.Detector,
		retriever:      opts.Retriever,
		ingestor:       opts.Ingestor,
		assembler:      opts.Assembler,
		conversations:  opts.Conversations,
		index:          opts.Index,
		searchOpts:     opts.SearchOptions,
		overallTimeout: opts.OverallTimeout,
		recentTurns:    opts.RecentTurns,
		log:            opts.Logger,
	}
}

// DetectAndSearch classifies the query and assembles context for it. The
// web search fan-out and the knowledge lookup run concurrently under one
// deadline; when it elapses, whatever completed is assembled. No provider
// or knowledge failure ever fails the call.
func (e *Engine) DetectAndSearch(ctx context.Context, query types.Query) (types.IntentDecision, *types.AssembledContext) {
	start := time.Now()
	defer func() {
		metrics.AssemblyDuration.Observe(time.Since(start).Seconds())
	}()

	decision := e.detector.Detect(ctx, query)

	ctx, cancel := context.WithTimeout(ctx, e.overallTimeout)
	defer cancel()

	orchestrator := e.currentOrchestrator()

	var (
		searchResults []types.SearchResult
		knowledgeHits []types.KnowledgeHit
		recentTurns   []types.ConversationTurn
	)

	g, gctx := errgroup.WithContext(ctx)
	if decision.ShouldSearch {
		searchQuery := decision.SuggestedQuery
		if searchQuery == "" {
			searchQuery = query.Raw
		}
		g.Go(func() error {
			results, provErrs := orchestrator.SearchAll(gctx, searchQuery, e.searchOpts)
			searchResults = results
			for _, pe := range provErrs {
				e.log.Warn("provider failed during assembly",
					zap.String("provider", pe.Provider),
					zap.Error(pe))
			}
			return nil
		})
	}
	g.Go(func() error {
		knowledgeHits = e.retriever.Retrieve(gctx, query.Normalized)
		return nil
	})
	if e.conversations != nil && query.ConversationID != "" {
		g.Go(func() error {
			turns, err := e.conversations.RecentTurns(gctx, query.ConversationID, e.recentTurns)
			if err != nil {
				e.log.Warn("recent turns unavailable",
					zap.String("conversation_id", query.ConversationID),
					zap.Error(err))
				return nil
			}
			recentTurns = turns
			return nil
		})
	}
	// Branches never return errors; the group is used for joining only.
	_ = g.Wait()

	assembled := e.assembler.Assemble(searchResults, knowledgeHits, recentTurns, decision.ShouldSearch)
	return decision, assembled
}

// ConfigureProviders replaces the provider configuration. Validation
// failures leave the active registry untouched; on success the swap takes
// effect on the next request.
func (e *Engine) ConfigureProviders(configs []websearch.ProviderConfig) error {
	registry, err := websearch.NewRegistry(configs)
	if err != nil {
		return fmt.Errorf("configure providers: %w", err)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	old := e.orchestrator
	next := websearch.NewOrchestrator(registry, old.Limiter(), old.Cache(), e.log)
	next.SetCacheTTL(old.CacheTTL())
	e.orchestrator = next
	e.log.Info("provider configuration replaced", zap.Int("providers", len(configs)))
	return nil
}

// ProviderStatus is one provider's health snapshot.
type ProviderStatus struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	Enabled     bool   `json:"enabled"`
	Available   bool   `json:"available"`
	Failures    int    `json:"failures"`
	LastError   string `json:"last_error,omitempty"`
}

// ProviderStatuses returns a read-only snapshot of every registered
// provider's configuration and circuit state.
func (e *Engine) ProviderStatuses() []ProviderStatus {
	orchestrator := e.currentOrchestrator()
	limiter := orchestrator.Limiter()

	configs := orchestrator.Registry().Configs()
	statuses := make([]ProviderStatus, 0, len(configs))
	for _, cfg := range configs {
		health := limiter.Health(cfg.ID)
		st := ProviderStatus{
			ID:          cfg.ID,
			DisplayName: cfg.DisplayName,
			Enabled:     cfg.Enabled,
			Available:   health.Available,
			Failures:    health.Failures,
		}
		if health.LastError != nil {
			st.LastError = health.LastError.Error()
		}
		statuses = append(statuses, st)
	}
	return statuses
}

// IndexTurn persists a conversation turn into the vector index so later
// requests can retrieve it.
func (e *Engine) IndexTurn(ctx context.Context, conversationID string, turn types.ConversationTurn) (string, error) {
	if e.ingestor == nil {
		return "", fmt.Errorf("index turn: no ingestor configured")
	}
	return e.ingestor.IndexTurn(ctx, conversationID, turn)
}

// AddKnowledge chunks and indexes a document, returning the stored ids.
func (e *Engine) AddKnowledge(ctx context.Context, content string, metadata map[string]types.MetadataValue) ([]string, error) {
	if e.ingestor == nil {
		return nil, fmt.Errorf("add knowledge: no ingestor configured")
	}
	return e.ingestor.AddDocument(ctx, content, metadata)
}

// Status summarizes the engine for health reporting.
type Status struct {
	Providers     []ProviderStatus `json:"providers"`
	Documents     int              `json:"documents"`
	Conversations int              `json:"conversations"`
}

// Status reports provider health and index counts. Count errors degrade
// to zero rather than failing the snapshot.
func (e *Engine) Status(ctx context.Context) Status {
	st := Status{Providers: e.ProviderStatuses()}
	if e.index != nil {
		if n, err := e.index.Count(ctx, types.SourceKnowledge); err == nil {
			st.Documents = n
		}
		if n, err := e.index.Count(ctx, types.SourceConversation); err == nil {
			st.Conversations = n
		}
	}
	return st
}

// SearchWeb exposes the orchestrator fan-out directly, bypassing intent
// detection. Used by the search tool surface.
func (e *Engine) SearchWeb(ctx context.Context, query string, opts websearch.SearchOptions) ([]types.SearchResult, []*websearch.ProviderError) {
	return e.currentOrchestrator().SearchAll(ctx, query, opts)
}

// SearchKnowledge exposes the vector store lookup directly.
func (e *Engine) SearchKnowledge(ctx context.Context, query string) []types.KnowledgeHit {
	return e.retriever.Retrieve(ctx, types.NormalizeQuery(query))
}

func (e *Engine) currentOrchestrator() *websearch.Orchestrator {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.orchestrator
}
