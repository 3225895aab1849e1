// Package refresh owns card lifecycle: creation, manual and automatic
// refresh, and teardown. At most one fetch is in flight per card; triggers
// arriving while a fetch runs are dropped, not queued.
package refresh

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"tokencard/internal/classify"
	"tokencard/internal/domain"
	"tokencard/internal/idhash"
	"tokencard/internal/normalize"
	"tokencard/internal/observability"
	"tokencard/internal/provider"
	"tokencard/internal/router"
	"tokencard/internal/storage"
)

// Refresh triggers, used as metric labels and for tick accounting.
const (
	TriggerManual = "manual"
	TriggerAuto   = "auto"
)

// ErrNoIdentifier is returned when the input text contains nothing
// classifiable.
var ErrNoIdentifier = errors.New("no identifier found in text")

// ErrCardNotFound is returned for operations on unknown or closed cards.
var ErrCardNotFound = errors.New("card not found")

// cardState tracks per-card runtime state not persisted in the store.
type cardState struct {
	fetching bool
	stopAuto chan struct{} // non-nil while the auto loop runs
}

// Engine coordinates classification, resolution and rendering for cards.
type Engine struct {
	classifier *classify.Classifier
	router     *router.Router
	store      storage.CardStore
	metrics    *observability.Metrics
	logger     *log.Logger

	autoInterval time.Duration
	maxAutoTicks int
	fetchTimeout time.Duration

	now func() int64 // Unix ms, swappable in tests
	seq atomic.Uint64

	onUpdate func(*domain.Card) // called after every persisted change

	mu    sync.Mutex
	cards map[string]*cardState
	done  chan struct{}
}

// Options for creating an Engine.
type Options struct {
	Classifier *classify.Classifier
	Router     *router.Router
	CardStore  storage.CardStore
	Metrics    *observability.Metrics
	Logger     *log.Logger

	// AutoInterval is the period between automatic refresh ticks.
	AutoInterval time.Duration
	// MaxAutoTicks bounds automatic refreshes per card. After the budget
	// is spent the card refreshes on manual triggers only.
	MaxAutoTicks int
	// FetchTimeout bounds a single resolution round-trip.
	FetchTimeout time.Duration

	// OnUpdate is invoked with a copy of the card after every persisted
	// state change. May be nil.
	OnUpdate func(*domain.Card)
}

// New creates a new Engine.
func New(opts Options) *Engine {
	e := &Engine{
		classifier:   opts.Classifier,
		router:       opts.Router,
		store:        opts.CardStore,
		metrics:      opts.Metrics,
		logger:       opts.Logger,
		autoInterval: opts.AutoInterval,
		maxAutoTicks: opts.MaxAutoTicks,
		fetchTimeout: opts.FetchTimeout,
		now:          func() int64 { return time.Now().UnixMilli() },
		onUpdate:     opts.OnUpdate,
		cards:        make(map[string]*cardState),
		done:         make(chan struct{}),
	}
	if e.logger == nil {
		e.logger = log.Default()
	}
	if e.metrics == nil {
		e.metrics = observability.DefaultMetrics
	}
	if e.autoInterval <= 0 {
		e.autoInterval = 30 * time.Second
	}
	if e.maxAutoTicks < 0 {
		e.maxAutoTicks = 0
	}
	if e.fetchTimeout <= 0 {
		e.fetchTimeout = provider.DefaultTimeout
	}
	return e
}

// CreateCard classifies the text, resolves the primary identifier and
// persists a new card. An unresolvable identifier still yields a card, in
// UNAVAILABLE state, so the caller can retry it manually later.
func (e *Engine) CreateCard(ctx context.Context, text string, intent router.Intent) (*domain.Card, error) {
	id, ok := e.classifier.Primary(text)
	if !ok {
		return nil, ErrNoIdentifier
	}

	now := e.now()
	card := &domain.Card{
		ID:             idhash.ComputeCardID(id, now, e.seq.Add(1)),
		Identifier:     id,
		Intent:         string(intent),
		Status:         domain.StatusFetching,
		RemainingTicks: e.maxAutoTicks,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := e.store.Insert(ctx, card); err != nil {
		return nil, fmt.Errorf("insert card: %w", err)
	}

	// The new card holds its fetch slot until the initial resolution is
	// committed, so triggers arriving meanwhile are dropped like any other
	// concurrent trigger.
	e.mu.Lock()
	e.cards[card.ID] = &cardState{fetching: true}
	e.mu.Unlock()
	defer e.endFetch(card.ID)

	e.metrics.CardsCreated.Inc()
	e.metrics.ActiveCards.Inc()

	e.resolveInto(ctx, card, intent)

	if err := e.store.Update(ctx, card); err != nil {
		return nil, fmt.Errorf("update card: %w", err)
	}
	e.notify(card)

	out := *card
	return &out, nil
}

// resolveInto runs the provider chain and folds the outcome into the card.
func (e *Engine) resolveInto(ctx context.Context, card *domain.Card, intent router.Intent) {
	fctx, cancel := context.WithTimeout(ctx, e.fetchTimeout)
	defer cancel()

	start := time.Now()
	snap, providerName, err := e.router.Route(fctx, card.Identifier, intent)
	elapsed := time.Since(start).Seconds()

	switch {
	case err == nil:
		vm := normalize.Snapshot(snap, providerName)
		card.Provider = providerName
		card.LastViewModel = &vm
		card.Status = domain.StatusReady
		e.metrics.RecordResolutionOutcome(providerName, "ok", elapsed)
	case errors.Is(err, provider.ErrNotFound):
		// Nothing to show. Keep whatever was rendered before.
		if card.LastViewModel == nil {
			card.Status = domain.StatusUnavailable
		} else {
			card.Status = domain.StatusReady
		}
		e.metrics.RecordResolutionOutcome(providerName, "not_found", elapsed)
		e.logger.Printf("[refresh] card %s: %s unresolved", shortID(card.ID), card.Identifier.Raw)
	default:
		// Transient provider failure. The last good rendering stays up.
		if card.LastViewModel == nil {
			card.Status = domain.StatusUnavailable
		} else {
			card.Status = domain.StatusReady
		}
		e.metrics.RecordResolutionOutcome(providerName, "error", elapsed)
		e.logger.Printf("[refresh] card %s: resolve failed: %v", shortID(card.ID), err)
	}
	card.UpdatedAt = e.now()
}

// Refresh re-fetches a card through the provider it resolved with. If the
// card never resolved, the full chain runs again. Concurrent triggers for
// the same card are dropped while a fetch is in flight; the current card
// state is returned unchanged in that case.
func (e *Engine) Refresh(ctx context.Context, cardID string, trigger string) (*domain.Card, error) {
	if !e.beginFetch(cardID) {
		e.mu.Lock()
		_, known := e.cards[cardID]
		e.mu.Unlock()
		if !known {
			return nil, ErrCardNotFound
		}
		e.metrics.RefreshesDropped.Inc()
		e.logger.Printf("[refresh] card %s: fetch already running, skipping", shortID(cardID))
		return e.store.GetByID(ctx, cardID)
	}
	defer e.endFetch(cardID)

	card, err := e.store.GetByID(ctx, cardID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrCardNotFound
		}
		return nil, err
	}

	if trigger == TriggerAuto {
		if card.RemainingTicks <= 0 {
			// Budget spent, manual-only from here on.
			return card, nil
		}
		card.RemainingTicks--
	}

	card.Status = domain.StatusFetching
	if card.Provider != "" {
		e.refetchInto(ctx, card)
	} else {
		// Never resolved. Re-run the chain with the creation intent.
		intent := router.Intent(card.Intent)
		if intent == "" {
			intent = router.IntentMarket
		}
		e.resolveInto(ctx, card, intent)
	}

	outcome := "ok"
	if card.Status == domain.StatusUnavailable {
		outcome = "unavailable"
	}
	e.metrics.RefreshesTotal.WithLabelValues(trigger, outcome).Inc()

	if err := e.store.Update(ctx, card); err != nil {
		return nil, fmt.Errorf("update card: %w", err)
	}
	e.notify(card)
	return card, nil
}

// refetchInto re-resolves through the exact provider the card is bound to,
// bypassing the fallback chain. A card never silently switches providers.
func (e *Engine) refetchInto(ctx context.Context, card *domain.Card) {
	p, ok := e.router.ProviderByName(card.Provider)
	if !ok {
		// The card references a provider this process was not wired with.
		card.Status = domain.StatusUnavailable
		card.UpdatedAt = e.now()
		e.logger.Printf("[refresh] card %s: provider %q not wired", shortID(card.ID), card.Provider)
		return
	}

	fctx, cancel := context.WithTimeout(ctx, e.fetchTimeout)
	defer cancel()

	start := time.Now()
	snap, err := p.Resolve(fctx, card.Identifier)
	elapsed := time.Since(start).Seconds()

	if err != nil {
		outcome := "error"
		if errors.Is(err, provider.ErrNotFound) {
			outcome = "not_found"
		}
		e.metrics.RecordResolutionOutcome(card.Provider, outcome, elapsed)
		// Keep the last good rendering on a failed refresh.
		if card.LastViewModel == nil {
			card.Status = domain.StatusUnavailable
		} else {
			card.Status = domain.StatusReady
		}
		card.UpdatedAt = e.now()
		e.logger.Printf("[refresh] card %s: refetch via %s failed: %v", shortID(card.ID), card.Provider, err)
		return
	}

	vm := normalize.Snapshot(snap, card.Provider)
	card.LastViewModel = &vm
	card.Status = domain.StatusReady
	card.UpdatedAt = e.now()
	e.metrics.RecordResolutionOutcome(card.Provider, "ok", elapsed)
}

// StartAutoRefresh begins the bounded automatic refresh loop for a card.
// The loop stops once the card's tick budget is spent, the card closes,
// or the engine shuts down. Starting an already running loop is a no-op.
func (e *Engine) StartAutoRefresh(cardID string) error {
	e.mu.Lock()
	st, ok := e.cards[cardID]
	if !ok {
		e.mu.Unlock()
		return ErrCardNotFound
	}
	if st.stopAuto != nil {
		e.mu.Unlock()
		return nil
	}
	stop := make(chan struct{})
	st.stopAuto = stop
	e.mu.Unlock()

	go e.autoLoop(cardID, stop)
	return nil
}

func (e *Engine) autoLoop(cardID string, stop chan struct{}) {
	ticker := time.NewTicker(e.autoInterval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-e.done:
			return
		case <-ticker.C:
			card, err := e.Refresh(context.Background(), cardID, TriggerAuto)
			if err != nil {
				e.logger.Printf("[refresh] card %s: auto refresh: %v", shortID(cardID), err)
				if errors.Is(err, ErrCardNotFound) {
					return
				}
				// Transient failure. The tick was not consumed, keep going.
				continue
			}
			if card.RemainingTicks <= 0 {
				e.logger.Printf("[refresh] card %s: auto refresh budget spent", shortID(cardID))
				return
			}
		}
	}
}

// GetCard returns the persisted card state.
func (e *Engine) GetCard(ctx context.Context, cardID string) (*domain.Card, error) {
	card, err := e.store.GetByID(ctx, cardID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrCardNotFound
		}
		return nil, err
	}
	return card, nil
}

// ListCards returns all persisted cards.
func (e *Engine) ListCards(ctx context.Context) ([]*domain.Card, error) {
	return e.store.List(ctx)
}

// CloseCard stops the card's auto loop and removes it from the store.
func (e *Engine) CloseCard(ctx context.Context, cardID string) error {
	e.mu.Lock()
	st, ok := e.cards[cardID]
	if ok {
		if st.stopAuto != nil {
			close(st.stopAuto)
		}
		delete(e.cards, cardID)
	}
	e.mu.Unlock()

	err := e.store.Delete(ctx, cardID)
	if errors.Is(err, storage.ErrNotFound) {
		if !ok {
			return ErrCardNotFound
		}
		err = nil
	}
	if err != nil {
		return err
	}

	e.metrics.CardsClosed.Inc()
	e.metrics.ActiveCards.Dec()
	return nil
}

// Restore registers cards loaded from the store after a restart so they
// accept refresh triggers again. Auto loops are not resumed.
func (e *Engine) Restore(cards []*domain.Card) {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, c := range cards {
		if _, exists := e.cards[c.ID]; !exists {
			e.cards[c.ID] = &cardState{}
			e.metrics.ActiveCards.Inc()
		}
	}
}

// Close stops all auto refresh loops.
func (e *Engine) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	select {
	case <-e.done:
	default:
		close(e.done)
	}
}

// beginFetch marks the card as fetching. Returns false if the card is
// unknown or a fetch is already in flight.
func (e *Engine) beginFetch(cardID string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	st, ok := e.cards[cardID]
	if !ok || st.fetching {
		return false
	}
	st.fetching = true
	return true
}

func (e *Engine) endFetch(cardID string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if st, ok := e.cards[cardID]; ok {
		st.fetching = false
	}
}

func (e *Engine) notify(card *domain.Card) {
	if e.onUpdate == nil {
		return
	}
	out := *card
	e.onUpdate(&out)
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
