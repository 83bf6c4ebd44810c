package catalog

import (
	"context"
	"fmt"
	"iter"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mamadbah2/buildmat/internal/domain/models"
	apperrors "github.com/mamadbah2/buildmat/internal/errors"
)

// Mirror persists catalog writes. The store calls it before committing a
// write, so a failed mirror leaves the store unchanged.
type Mirror interface {
	UpsertMaterial(ctx context.Context, m models.Material) error
	DeleteMaterial(ctx context.Context, id string) error
}

// Reader is the read side of the store used by the recommendation and
// optimizer services.
type Reader interface {
	Find(q models.MaterialQuery) iter.Seq[models.Material]
	Get(id string) (models.Material, error)
}

// snapshot is an immutable point-in-time view of the catalog.
type snapshot struct {
	ordered []models.Material
	index   map[string]int
}

var emptySnapshot = &snapshot{index: map[string]int{}}

// Store is the single owner of all material records.
type Store struct {
	// writeMu serializes writers, including their mirror round trip.
	writeMu sync.Mutex
	mu      sync.RWMutex
	current *snapshot

	mirror Mirror
	logger *zap.Logger
	now    func() time.Time
	newID  func() string
}

// NewStore builds an empty store. mirror may be nil for a purely in-memory catalog.
func NewStore(mirror Mirror, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{
		current: emptySnapshot,
		mirror:  mirror,
		logger:  logger,
		now:     time.Now,
		newID:   uuid.NewString,
	}
}

// Load replaces the store contents with already-persisted records, keeping
// their ids and timestamps. The mirror is not called.
func (s *Store) Load(records []models.Material) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	byID := make(map[string]models.Material, len(records))
	for _, record := range records {
		record = normalize(record)
		if strings.TrimSpace(record.ID) == "" {
			return apperrors.Validation("loaded material %q has no id", record.Name)
		}
		if _, dup := byID[record.ID]; dup {
			return apperrors.Validation("duplicate material id %s", record.ID)
		}
		if err := validateMaterial(record); err != nil {
			return fmt.Errorf("load material %s: %w", record.ID, err)
		}
		byID[record.ID] = record
	}

	s.publish(byID)
	s.logger.Info("catalog loaded", zap.Int("materials", len(byID)))
	return nil
}

// Insert validates and stores a new record, assigning its id and timestamps.
func (s *Store) Insert(ctx context.Context, role models.Role, m models.Material) (models.Material, error) {
	if !role.CanMutate() {
		return models.Material{}, apperrors.Permission(string(role), "insert materials")
	}

	m = normalize(m)
	if err := validateMaterial(m); err != nil {
		return models.Material{}, err
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	stamp := s.timestamp()
	m.ID = s.newID()
	m.CreatedAt = stamp
	m.LastUpdated = stamp

	if err := s.persist(ctx, m); err != nil {
		return models.Material{}, err
	}

	records := s.snapshotMap()
	records[m.ID] = m
	s.publish(records)

	s.logger.Info("material inserted", zap.String("id", m.ID), zap.String("category", string(m.Category)))
	return m, nil
}

// Update merges patch into the record with the given id. The id and creation
// time are preserved; lastUpdated is refreshed.
func (s *Store) Update(ctx context.Context, role models.Role, id string, patch models.MaterialPatch) (models.Material, error) {
	if !role.CanMutate() {
		return models.Material{}, apperrors.Permission(string(role), "update materials")
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	existing, err := s.Get(id)
	if err != nil {
		return models.Material{}, err
	}

	merged := normalize(patch.Apply(existing))
	merged.ID = existing.ID
	merged.CreatedAt = existing.CreatedAt
	if err := validateMaterial(merged); err != nil {
		return models.Material{}, err
	}
	merged.LastUpdated = s.timestamp()

	if err := s.persist(ctx, merged); err != nil {
		return models.Material{}, err
	}

	records := s.snapshotMap()
	records[id] = merged
	s.publish(records)

	s.logger.Info("material updated", zap.String("id", id))
	return merged, nil
}

// Delete removes the record unconditionally. Recommendations computed before
// the delete are not invalidated.
func (s *Store) Delete(ctx context.Context, role models.Role, id string) error {
	if !role.CanMutate() {
		return apperrors.Permission(string(role), "delete materials")
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if _, err := s.Get(id); err != nil {
		return err
	}

	if s.mirror != nil {
		if err := s.mirror.DeleteMaterial(ctx, id); err != nil {
			return fmt.Errorf("delete material %s: %w", id, err)
		}
	}

	records := s.snapshotMap()
	delete(records, id)
	s.publish(records)

	s.logger.Info("material deleted", zap.String("id", id))
	return nil
}

// Get returns the record with the given id.
func (s *Store) Get(id string) (models.Material, error) {
	snap := s.view()
	pos, ok := snap.index[id]
	if !ok {
		return models.Material{}, apperrors.NotFound("material", id)
	}
	return snap.ordered[pos], nil
}

// Find returns the records matching q, ordered by id. The sequence iterates a
// snapshot taken when Find is called; it can be ranged over any number of
// times and never observes later writes.
func (s *Store) Find(q models.MaterialQuery) iter.Seq[models.Material] {
	snap := s.view()
	return func(yield func(models.Material) bool) {
		for _, m := range snap.ordered {
			if !q.Matches(m) {
				continue
			}
			if !yield(m) {
				return
			}
		}
	}
}

// Len returns the number of records currently stored.
func (s *Store) Len() int {
	return len(s.view().ordered)
}

func (s *Store) view() *snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// snapshotMap copies the current records into a mutable map. Callers hold writeMu.
func (s *Store) snapshotMap() map[string]models.Material {
	snap := s.view()
	records := make(map[string]models.Material, len(snap.ordered)+1)
	for _, m := range snap.ordered {
		records[m.ID] = m
	}
	return records
}

// publish swaps in a new snapshot built from records. Callers hold writeMu.
func (s *Store) publish(records map[string]models.Material) {
	ordered := make([]models.Material, 0, len(records))
	for _, m := range records {
		ordered = append(ordered, m)
	}
	slices.SortFunc(ordered, func(a, b models.Material) int {
		return strings.Compare(a.ID, b.ID)
	})

	index := make(map[string]int, len(ordered))
	for i, m := range ordered {
		index[m.ID] = i
	}

	s.mu.Lock()
	s.current = &snapshot{ordered: ordered, index: index}
	s.mu.Unlock()
}

func (s *Store) persist(ctx context.Context, m models.Material) error {
	if s.mirror == nil {
		return nil
	}
	if err := s.mirror.UpsertMaterial(ctx, m); err != nil {
		return fmt.Errorf("persist material %s: %w", m.ID, err)
	}
	return nil
}

// timestamp is truncated to milliseconds so records survive a round trip
// through the persistence layer unchanged.
func (s *Store) timestamp() time.Time {
	return s.now().UTC().Truncate(time.Millisecond)
}
