package rotation

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"innario/internal/hymnal"
	"innario/internal/logging"
	"innario/internal/selection"
)

// Default history windows in weeks.
const (
	DefaultLookbackWeeks = 5
	DefaultRelaxedWeeks  = 3
)

// RecentSource supplies the hymn numbers a ward has sung recently. The
// history store implements it.
type RecentSource interface {
	RecentNumbers(ctx context.Context, wardID int64, weeksBack int) (map[int]struct{}, error)
}

// Relaxation is one rung of the history relaxation ladder.
type Relaxation struct {
	Name  string
	Weeks int
}

// Planner layers per-ward repetition avoidance over the selection engine.
// Each pool walks the relaxation ladder independently: the sacramento slot
// accepts the first rung with any candidate, the other slots the first rung
// with enough candidates, and the final rung drops history entirely rather
// than dropping the sacramento invariant.
type Planner struct {
	engine        *selection.Engine
	history       RecentSource
	lookbackWeeks int
	relaxedWeeks  int
	logger        *slog.Logger
}

// Option configures a Planner.
type Option func(*Planner)

// WithWindows overrides the strict and relaxed history windows.
func WithWindows(lookbackWeeks, relaxedWeeks int) Option {
	return func(p *Planner) {
		if lookbackWeeks > 0 {
			p.lookbackWeeks = lookbackWeeks
		}
		if relaxedWeeks > 0 {
			p.relaxedWeeks = relaxedWeeks
		}
	}
}

// WithLogger attaches a logger for planning decisions.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Planner) {
		if logger != nil {
			p.logger = logging.NewComponentLogger(logger, "planner")
		}
	}
}

// NewPlanner builds a Planner over the engine and history source.
func NewPlanner(engine *selection.Engine, history RecentSource, opts ...Option) *Planner {
	planner := &Planner{
		engine:        engine,
		history:       history,
		lookbackWeeks: DefaultLookbackWeeks,
		relaxedWeeks:  DefaultRelaxedWeeks,
		logger:        logging.NewNop(),
	}
	for _, opt := range opts {
		opt(planner)
	}
	return planner
}

// Ladder returns the ordered relaxation rungs the planner walks. Weeks of
// zero means history is ignored.
func (p *Planner) Ladder() []Relaxation {
	return []Relaxation{
		{Name: "strict", Weeks: p.lookbackWeeks},
		{Name: "relaxed", Weeks: p.relaxedWeeks},
		{Name: "unrestricted", Weeks: 0},
	}
}

// Plan draws a selection for the ward, avoiding hymns sung within the
// history windows when the catalog allows it.
func (p *Planner) Plan(ctx context.Context, wardID int64, sel selection.Context) ([]hymnal.Hymn, error) {
	if err := sel.Validate(); err != nil {
		return nil, err
	}

	festivity := sel.EffectiveFestivity()
	index := p.engine.Index()
	recent := p.newRecentCache(wardID)

	sacramento, sacramentoRung, err := p.resolvePool(ctx, recent, index.SacramentoPool(festivity), 1)
	if err != nil {
		return nil, err
	}
	others, othersRung, err := p.resolvePool(ctx, recent, index.OtherPool(festivity), sel.HymnCount()-1)
	if err != nil {
		return nil, err
	}

	hymns, err := p.engine.SelectFrom(sel, sacramento, others)
	if err != nil {
		return nil, err
	}
	p.logger.Debug("plan drawn",
		logging.Int64(logging.FieldWardID, wardID),
		logging.String("sacramento_rung", sacramentoRung.Name),
		logging.String("others_rung", othersRung.Name),
		logging.Int("hymns", len(hymns)),
	)
	return hymns, nil
}

// Replacement draws a single alternative for the 1-based position, excluding
// the given hymn numbers. Recently sung hymns are excluded first; when that
// empties the candidate set the draw retries with only the caller's
// exclusions.
func (p *Planner) Replacement(ctx context.Context, wardID int64, sel selection.Context, position int, exclude []int) (hymnal.Hymn, error) {
	candidates, err := p.candidateSet(ctx, wardID, sel, position, exclude)
	if err != nil {
		return hymnal.Hymn{}, err
	}
	hymn, err := p.engine.PickOne(candidates)
	if err != nil {
		return hymnal.Hymn{}, fmt.Errorf("replacement for position %d: %w", position, err)
	}
	return hymn, nil
}

// Candidates lists every alternative for the 1-based position, ordered by
// hymn number. The exclusion rules match Replacement.
func (p *Planner) Candidates(ctx context.Context, wardID int64, sel selection.Context, position int, exclude []int) ([]hymnal.Hymn, error) {
	candidates, err := p.candidateSet(ctx, wardID, sel, position, exclude)
	if err != nil {
		return nil, err
	}
	sort.Slice(candidates, func(i, j int) bool { return candidates[i].Number < candidates[j].Number })
	return candidates, nil
}

func (p *Planner) candidateSet(ctx context.Context, wardID int64, sel selection.Context, position int, exclude []int) ([]hymnal.Hymn, error) {
	if err := sel.Validate(); err != nil {
		return nil, err
	}
	if position < 1 || position > sel.HymnCount() {
		return nil, fmt.Errorf("%w: position %d out of range for a %d hymn service", selection.ErrInvalidContext, position, sel.HymnCount())
	}

	festivity := sel.EffectiveFestivity()
	index := p.engine.Index()
	var pool []hymnal.Hymn
	if position == selection.SacramentoSlot+1 {
		pool = index.SacramentoPool(festivity)
	} else {
		pool = index.OtherPool(festivity)
	}

	excluded := make(map[int]struct{}, len(exclude))
	for _, number := range exclude {
		excluded[number] = struct{}{}
	}

	recent, err := p.history.RecentNumbers(ctx, wardID, p.lookbackWeeks)
	if err != nil {
		return nil, fmt.Errorf("load recent hymns: %w", err)
	}

	candidates := excludeNumbers(excludeNumbers(pool, recent), excluded)
	if len(candidates) == 0 {
		candidates = excludeNumbers(pool, excluded)
	}
	return candidates, nil
}

// resolvePool walks the ladder and returns the first pool variant with at
// least need candidates. The unrestricted rung always returns the full pool;
// the engine reports insufficiency if even that is too small.
func (p *Planner) resolvePool(ctx context.Context, recent *recentCache, pool []hymnal.Hymn, need int) ([]hymnal.Hymn, Relaxation, error) {
	for _, rung := range p.Ladder() {
		if rung.Weeks <= 0 {
			return pool, rung, nil
		}
		used, err := recent.get(ctx, rung.Weeks)
		if err != nil {
			return nil, Relaxation{}, err
		}
		if filtered := excludeNumbers(pool, used); len(filtered) >= need {
			return filtered, rung, nil
		}
	}
	return pool, Relaxation{Name: "unrestricted"}, nil
}

func excludeNumbers(pool []hymnal.Hymn, exclude map[int]struct{}) []hymnal.Hymn {
	if len(exclude) == 0 {
		return pool
	}
	kept := make([]hymnal.Hymn, 0, len(pool))
	for _, hymn := range pool {
		if _, used := exclude[hymn.Number]; used {
			continue
		}
		kept = append(kept, hymn)
	}
	return kept
}

// recentCache memoizes RecentNumbers per window so one Plan call queries each
// window at most once.
type recentCache struct {
	source RecentSource
	wardID int64
	cached map[int]map[int]struct{}
}

func (p *Planner) newRecentCache(wardID int64) *recentCache {
	return &recentCache{source: p.history, wardID: wardID, cached: make(map[int]map[int]struct{})}
}

func (c *recentCache) get(ctx context.Context, weeks int) (map[int]struct{}, error) {
	if cached, ok := c.cached[weeks]; ok {
		return cached, nil
	}
	recent, err := c.source.RecentNumbers(ctx, c.wardID, weeks)
	if err != nil {
		return nil, fmt.Errorf("load recent hymns: %w", err)
	}
	if recent == nil {
		recent = map[int]struct{}{}
	}
	c.cached[weeks] = recent
	return recent, nil
}
