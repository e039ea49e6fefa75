package tracker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/exp/slices"

	"github.com/creatorstation/tracker/internal/codec"
	"github.com/creatorstation/tracker/internal/models"
	"github.com/creatorstation/tracker/internal/storage"
)

// CopySuffix is appended to the username of a duplicated influencer.
const CopySuffix = " (Copy)"

// Store owns the ordered influencer collection and the current filter. Every
// mutation is written through to the injected storage before returning.
type Store struct {
	mu       sync.Mutex
	importMu sync.Mutex

	kv    storage.Storage
	log   *zap.Logger
	now   func() time.Time
	newID func() string

	records []models.Influencer
	filter  models.FilterStatus
}

type Option func(*Store)

func WithLogger(l *zap.Logger) Option {
	return func(s *Store) { s.log = l }
}

func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

func WithIDGenerator(gen func() string) Option {
	return func(s *Store) { s.newID = gen }
}

func NewStore(kv storage.Storage, opts ...Option) *Store {
	s := &Store{
		kv:      kv,
		log:     zap.NewNop(),
		now:     time.Now,
		newID:   newID,
		records: []models.Influencer{},
		filter:  models.FilterAll,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// newID returns a time-ordered UUID so that rapid successive creates never collide.
func newID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// Load replaces the in-memory state with what storage holds. Missing or
// malformed slots fall back to an empty collection and FilterAll; only
// storage failures are returned.
func (s *Store) Load(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records = []models.Influencer{}
	s.filter = models.FilterAll

	data, err := s.kv.Get(ctx, storage.KeyInfluencers)
	switch {
	case errors.Is(err, storage.ErrNotFound):
	case err != nil:
		return fmt.Errorf("load %s: %w", storage.KeyInfluencers, err)
	default:
		records, err := codec.Unmarshal(data)
		if err == nil {
			err = checkShape(records)
		}
		if err != nil {
			s.log.Warn("Discarding unreadable influencers slot", zap.Error(err))
		} else {
			s.records = records
		}
	}

	raw, err := s.kv.Get(ctx, storage.KeyFilterStatus)
	switch {
	case errors.Is(err, storage.ErrNotFound):
	case err != nil:
		return fmt.Errorf("load %s: %w", storage.KeyFilterStatus, err)
	default:
		if f, ok := models.ParseFilterStatus(strings.TrimSpace(string(raw))); ok {
			s.filter = f
		} else {
			s.log.Warn("Ignoring unknown filter status", zap.ByteString("value", raw))
		}
	}

	s.log.Debug("Store loaded",
		zap.Int("influencers", len(s.records)),
		zap.String("filter", string(s.filter)))
	return nil
}

// Create validates d and appends a new influencer. A *PersistenceError is
// returned alongside the created influencer when the durable write fails.
func (s *Store) Create(ctx context.Context, d models.Draft) (models.Influencer, error) {
	if errs := Validate(d); !errs.Valid() {
		return models.Influencer{}, &ValidationError{Fields: errs}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.timestamp()
	rec := models.Influencer{ID: s.uniqueID(), CreatedAt: now}
	applyDraft(&rec, d, now)
	s.records = append(s.records, rec)

	s.log.Info("Influencer created", zap.String("id", rec.ID), zap.String("username", rec.Username))
	return rec, s.persistRecords(ctx)
}

// Update overwrites the influencer with id in place, keeping CreatedAt.
func (s *Store) Update(ctx context.Context, id string, d models.Draft) (models.Influencer, error) {
	if errs := Validate(d); !errs.Valid() {
		return models.Influencer{}, &ValidationError{Fields: errs}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.index(id)
	if i < 0 {
		return models.Influencer{}, &NotFoundError{ID: id}
	}

	rec := s.records[i]
	applyDraft(&rec, d, s.timestamp())
	s.records[i] = rec

	s.log.Info("Influencer updated", zap.String("id", id))
	return rec, s.persistRecords(ctx)
}

// MarkPaid sets the status to Paid. Calling it on a paid influencer only
// refreshes UpdatedAt.
func (s *Store) MarkPaid(ctx context.Context, id string) (models.Influencer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.index(id)
	if i < 0 {
		return models.Influencer{}, &NotFoundError{ID: id}
	}

	s.records[i].Status = models.StatusPaid
	s.records[i].UpdatedAt = s.timestamp()
	rec := s.records[i]

	s.log.Info("Influencer marked paid", zap.String("id", id))
	return rec, s.persistRecords(ctx)
}

// Delete removes the influencer with id and reports whether it existed.
// Callers holding edit state for id should drop it when true is returned.
func (s *Store) Delete(ctx context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.index(id)
	if i < 0 {
		return false, nil
	}
	s.records = slices.Delete(s.records, i, i+1)

	s.log.Info("Influencer deleted", zap.String("id", id))
	return true, s.persistRecords(ctx)
}

// Duplicate appends a copy of the influencer with id at the end of the
// collection under a new id and fresh timestamps.
func (s *Store) Duplicate(ctx context.Context, id string) (models.Influencer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.index(id)
	if i < 0 {
		return models.Influencer{}, &NotFoundError{ID: id}
	}

	now := s.timestamp()
	rec := s.records[i]
	rec.ID = s.uniqueID()
	rec.Username += CopySuffix
	rec.CreatedAt = now
	rec.UpdatedAt = now
	s.records = append(s.records, rec)

	s.log.Info("Influencer duplicated", zap.String("source", id), zap.String("id", rec.ID))
	return rec, s.persistRecords(ctx)
}

// ReplaceAll swaps the whole collection. Every entry needs an id, a username
// and a profile link, and ids must be unique; otherwise an *ImportFormatError
// is returned and the current collection is left untouched. Field values are
// not re-validated.
func (s *Store) ReplaceAll(ctx context.Context, records []models.Influencer) (bool, error) {
	if err := checkShape(records); err != nil {
		return false, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.records = append(make([]models.Influencer, 0, len(records)), records...)

	s.log.Info("Influencers replaced", zap.Int("count", len(records)))
	return true, s.persistRecords(ctx)
}

// Import decodes an export document from r and replaces the collection with
// it. Only one import runs at a time; an overlapping call gets
// ErrImportInProgress without reading r.
func (s *Store) Import(ctx context.Context, r io.Reader) (int, error) {
	if !s.importMu.TryLock() {
		return 0, ErrImportInProgress
	}
	defer s.importMu.Unlock()

	records, err := codec.Import(r)
	if err != nil {
		return 0, err
	}
	if _, err := s.ReplaceAll(ctx, records); err != nil {
		var perr *PersistenceError
		if errors.As(err, &perr) {
			return len(records), err
		}
		return 0, err
	}
	return len(records), nil
}

// Export writes the full collection as an export document.
func (s *Store) Export(w io.Writer) error {
	return codec.Export(w, s.Records())
}

// Records returns a snapshot of the collection in insertion order.
func (s *Store) Records() []models.Influencer {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append(make([]models.Influencer, 0, len(s.records)), s.records...)
}

func (s *Store) Get(id string) (models.Influencer, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.index(id)
	if i < 0 {
		return models.Influencer{}, false
	}
	return s.records[i], true
}

func (s *Store) Filter() models.FilterStatus {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.filter
}

// SetFilter changes and persists the current filter.
func (s *Store) SetFilter(ctx context.Context, f models.FilterStatus) error {
	if _, ok := models.ParseFilterStatus(string(f)); !ok {
		return fmt.Errorf("unknown filter status %q", f)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.filter = f
	if err := s.kv.Set(ctx, storage.KeyFilterStatus, []byte(f)); err != nil {
		s.log.Warn("Could not persist filter status", zap.Error(err))
		return &PersistenceError{Key: storage.KeyFilterStatus, Err: err}
	}
	return nil
}

// View is what a presentation layer renders: the visible influencers under
// the current filter and their total views.
type View struct {
	Filter     models.FilterStatus `json:"filter"`
	Records    []models.Influencer `json:"records"`
	TotalViews float64             `json:"totalViews"`
}

// View derives the visible subset for f, or for the current filter when f is empty.
func (s *Store) View(f models.FilterStatus) View {
	s.mu.Lock()
	defer s.mu.Unlock()

	if f == "" {
		f = s.filter
	}
	visible := ApplyFilter(s.records, f)
	return View{Filter: f, Records: visible, TotalViews: TotalViews(visible)}
}

func (s *Store) index(id string) int {
	return slices.IndexFunc(s.records, func(rec models.Influencer) bool {
		return rec.ID == id
	})
}

func (s *Store) uniqueID() string {
	for {
		id := s.newID()
		if s.index(id) < 0 {
			return id
		}
	}
}

func (s *Store) timestamp() time.Time {
	return s.now().UTC().Round(0)
}

func (s *Store) persistRecords(ctx context.Context) error {
	data, err := json.Marshal(s.records)
	if err != nil {
		return &PersistenceError{Key: storage.KeyInfluencers, Err: err}
	}
	if err := s.kv.Set(ctx, storage.KeyInfluencers, data); err != nil {
		s.log.Warn("Could not persist influencers", zap.Error(err))
		return &PersistenceError{Key: storage.KeyInfluencers, Err: err}
	}
	return nil
}

// checkShape requires an id, a username and a profile link on every entry,
// and unique ids across the collection.
func checkShape(records []models.Influencer) error {
	seen := make(map[string]struct{}, len(records))
	for i, rec := range records {
		var reason string
		switch {
		case strings.TrimSpace(rec.ID) == "":
			reason = "has no id"
		case strings.TrimSpace(rec.Username) == "":
			reason = "has no username"
		case strings.TrimSpace(rec.ProfileLink) == "":
			reason = "has no profileLink"
		}
		if _, dup := seen[rec.ID]; reason == "" && dup {
			reason = fmt.Sprintf("repeats id %q", rec.ID)
		}
		if reason != "" {
			return &ImportFormatError{Reason: fmt.Sprintf("entry %d %s", i, reason)}
		}
		seen[rec.ID] = struct{}{}
	}
	return nil
}

func applyDraft(rec *models.Influencer, d models.Draft, now time.Time) {
	median, _ := d.ViewsMedian.Float()
	viewsNow, ok := d.ViewsNow.Float()
	if !ok || viewsNow < 0 {
		viewsNow = 0
	}

	rec.Username = strings.TrimSpace(d.Username)
	rec.ProfileLink = strings.TrimSpace(d.ProfileLink)
	rec.Platform = models.ParsePlatform(string(d.Platform))
	rec.ViewsMedian = median
	rec.TotalViews = median * models.TotalViewsMultiplier
	rec.ViewsNow = viewsNow
	rec.VideoLinks = d.VideoLinks
	rec.PostedOnDates = d.PostedOnDates
	rec.Status = models.ParseStatus(string(d.Status))
	rec.UpdatedAt = now
}
