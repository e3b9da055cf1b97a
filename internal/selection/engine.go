package selection

import (
	"fmt"
	"log/slog"

	"innario/internal/hymnal"
	"innario/internal/logging"
)

// SacramentoSlot is the position of the sacrament hymn in every selection.
const SacramentoSlot = 1

// Engine draws hymn selections from a catalog index. It holds no mutable
// state beyond its sampler and is safe for concurrent use when the sampler
// is.
type Engine struct {
	index   *hymnal.Index
	sampler Sampler
	logger  *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithSampler overrides the default random sampler.
func WithSampler(sampler Sampler) Option {
	return func(e *Engine) {
		if sampler != nil {
			e.sampler = sampler
		}
	}
}

// WithLogger attaches a logger for selection decisions.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logging.NewComponentLogger(logger, "selection")
		}
	}
}

// NewEngine builds an Engine over the given index.
func NewEngine(index *hymnal.Index, opts ...Option) *Engine {
	engine := &Engine{
		index:   index,
		sampler: NewSampler(),
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(engine)
	}
	return engine
}

// Index returns the catalog index the engine draws from.
func (e *Engine) Index() *hymnal.Index { return e.index }

// Select draws a full selection for the context: one sacrament hymn in slot
// two and the remainder from the rest of the repertoire.
func (e *Engine) Select(ctx Context) ([]hymnal.Hymn, error) {
	festivity := ctx.EffectiveFestivity()
	return e.SelectFrom(ctx, e.index.SacramentoPool(festivity), e.index.OtherPool(festivity))
}

// SelectFrom draws a selection from caller-provided pools. Rotation uses this
// to apply history exclusions while keeping the arrangement rules in one
// place.
func (e *Engine) SelectFrom(ctx Context, sacramento, others []hymnal.Hymn) ([]hymnal.Hymn, error) {
	if err := ctx.Validate(); err != nil {
		return nil, err
	}

	if len(sacramento) == 0 {
		return nil, fmt.Errorf("%w: no sacramento hymns available", ErrInsufficientHymns)
	}
	required := ctx.HymnCount() - 1
	if len(others) < required {
		return nil, fmt.Errorf("%w: need %d non-sacramento hymns, only %d available", ErrInsufficientHymns, required, len(others))
	}

	selectedOthers := e.sampler.Sample(others, required)
	selectedSacramento := e.sampler.One(sacramento)

	hymns := arrange(selectedSacramento, selectedOthers)
	e.logger.Debug("selection drawn",
		logging.Int("hymns", len(hymns)),
		logging.Bool("first_sunday", ctx.FirstSunday),
		logging.String("festivity", ctx.EffectiveFestivity().String()),
	)
	return hymns, nil
}

// PickOne draws a single hymn from the pool with the engine's sampler.
func (e *Engine) PickOne(pool []hymnal.Hymn) (hymnal.Hymn, error) {
	if len(pool) == 0 {
		return hymnal.Hymn{}, fmt.Errorf("%w: no candidates available", ErrInsufficientHymns)
	}
	return e.sampler.One(pool), nil
}

// arrange orders a selection as opening hymn, sacrament hymn, then the rest.
func arrange(sacramento hymnal.Hymn, others []hymnal.Hymn) []hymnal.Hymn {
	hymns := make([]hymnal.Hymn, 0, len(others)+1)
	hymns = append(hymns, others[0], sacramento)
	hymns = append(hymns, others[1:]...)
	return hymns
}
