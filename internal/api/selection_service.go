package api

import (
	"context"
	"fmt"
	"time"

	"innario/internal/dateutil"
	"innario/internal/hymnal"
	"innario/internal/selection"
	"innario/internal/store"
)

const (
	defaultHistoryLimit = 10
	maxHistoryLimit     = 50
)

// Planner abstracts history-aware selection for the service.
type Planner interface {
	Plan(ctx context.Context, wardID int64, sel selection.Context) ([]hymnal.Hymn, error)
	Replacement(ctx context.Context, wardID int64, sel selection.Context, position int, exclude []int) (hymnal.Hymn, error)
	Candidates(ctx context.Context, wardID int64, sel selection.Context, position int, exclude []int) ([]hymnal.Hymn, error)
}

// SelectionStore abstracts the persistence interactions the service needs.
type SelectionStore interface {
	RecordSelection(ctx context.Context, rec store.SelectionRecord) (*store.Selection, error)
	WardHistory(ctx context.Context, wardID int64, limit int) ([]*store.Selection, error)
	MostRecent(ctx context.Context, wardID int64) (*store.Selection, error)
}

// SelectionService plans ward programs, records them, and serves history,
// returning API DTOs.
type SelectionService struct {
	planner Planner
	store   SelectionStore
	now     func() time.Time
}

// SelectionServiceOption configures a SelectionService.
type SelectionServiceOption func(*SelectionService)

// WithClock overrides the service clock.
func WithClock(now func() time.Time) SelectionServiceOption {
	return func(s *SelectionService) {
		if now != nil {
			s.now = now
		}
	}
}

// NewSelectionService constructs a SelectionService around the planner and
// store.
func NewSelectionService(planner Planner, st SelectionStore, opts ...SelectionServiceOption) *SelectionService {
	svc := &SelectionService{
		planner: planner,
		store:   st,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

// resolve turns a request into the target Sunday and selection context. The
// date defaults to the next Sunday and the first-Sunday flag is derived from
// the date unless the caller pinned it.
func (s *SelectionService) resolve(date string, firstSunday *bool, festive bool, festivity string) (time.Time, selection.Context, error) {
	target := dateutil.NextSunday(s.now())
	if date != "" {
		parsed, err := time.Parse(dateFormat, date)
		if err != nil {
			return time.Time{}, selection.Context{}, fmt.Errorf("%w: date %q is not in YYYY-MM-DD form", selection.ErrInvalidContext, date)
		}
		target = parsed
	}

	first := dateutil.IsFirstSunday(target)
	if firstSunday != nil {
		first = *firstSunday
	}

	fest := hymnal.FestivityNone
	if festivity != "" {
		parsed, err := hymnal.ParseFestivity(festivity)
		if err != nil {
			return time.Time{}, selection.Context{}, fmt.Errorf("%w: %s", selection.ErrInvalidContext, err)
		}
		fest = parsed
	}

	selCtx := selection.Context{FirstSunday: first, Festive: festive, Festivity: fest}
	if err := selCtx.Validate(); err != nil {
		return time.Time{}, selection.Context{}, err
	}
	return target, selCtx, nil
}

// PlanForWard computes a history-aware program for the ward and records it
// unless the request opted out.
func (s *SelectionService) PlanForWard(ctx context.Context, wardID int64, req SelectionRequest) (Selection, error) {
	date, selCtx, err := s.resolve(req.Date, req.FirstSunday, req.Festive, req.Festivity)
	if err != nil {
		return Selection{}, err
	}

	hymns, err := s.planner.Plan(ctx, wardID, selCtx)
	if err != nil {
		return Selection{}, err
	}

	record := req.Record == nil || *req.Record
	if !record {
		return PlannedSelection(wardID, date, selCtx, hymns), nil
	}

	stored, err := s.store.RecordSelection(ctx, store.SelectionRecord{
		WardID:        wardID,
		SelectionDate: date,
		FirstSunday:   selCtx.FirstSunday,
		Festive:       selCtx.Festive,
		Festivity:     selCtx.EffectiveFestivity(),
		Hymns:         hymns,
	})
	if err != nil {
		return Selection{}, err
	}
	return FromStoredSelection(stored), nil
}

// Replacement re-rolls a single slot, avoiding the excluded numbers.
func (s *SelectionService) Replacement(ctx context.Context, wardID int64, req ReplacementRequest) (ReplacementResponse, error) {
	_, selCtx, err := s.resolve(req.Date, req.FirstSunday, req.Festive, req.Festivity)
	if err != nil {
		return ReplacementResponse{}, err
	}
	hymn, err := s.planner.Replacement(ctx, wardID, selCtx, req.Position, req.Exclude)
	if err != nil {
		return ReplacementResponse{}, err
	}
	return ReplacementResponse{Position: req.Position, Hymn: FromHymn(hymn)}, nil
}

// Candidates lists every viable alternative for a slot in catalog order.
func (s *SelectionService) Candidates(ctx context.Context, wardID int64, req ReplacementRequest) (CandidatesResponse, error) {
	_, selCtx, err := s.resolve(req.Date, req.FirstSunday, req.Festive, req.Festivity)
	if err != nil {
		return CandidatesResponse{}, err
	}
	hymns, err := s.planner.Candidates(ctx, wardID, selCtx, req.Position, req.Exclude)
	if err != nil {
		return CandidatesResponse{}, err
	}
	candidates := FromHymns(hymns)
	if candidates == nil {
		candidates = []Hymn{}
	}
	return CandidatesResponse{Position: req.Position, Candidates: candidates}, nil
}

// History returns the ward's recent selections newest first. The limit is
// clamped to 1..50 with a default of 10.
func (s *SelectionService) History(ctx context.Context, wardID int64, limit int) (HistoryResponse, error) {
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	if limit > maxHistoryLimit {
		limit = maxHistoryLimit
	}
	selections, err := s.store.WardHistory(ctx, wardID, limit)
	if err != nil {
		return HistoryResponse{}, err
	}
	converted := FromStoredSelections(selections)
	if converted == nil {
		converted = []Selection{}
	}
	return HistoryResponse{WardID: wardID, Selections: converted}, nil
}

// Latest returns the ward's most recent selection, or nil when the ward has
// no history.
func (s *SelectionService) Latest(ctx context.Context, wardID int64) (*Selection, error) {
	stored, err := s.store.MostRecent(ctx, wardID)
	if err != nil {
		return nil, err
	}
	if stored == nil {
		return nil, nil
	}
	dto := FromStoredSelection(stored)
	return &dto, nil
}
