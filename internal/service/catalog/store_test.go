package catalog

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/buildmat/internal/domain/models"
	apperrors "github.com/mamadbah2/buildmat/internal/errors"
)

type fakeMirror struct {
	mu       sync.Mutex
	upserts  map[string]models.Material
	deletes  []string
	failNext error
}

func newFakeMirror() *fakeMirror {
	return &fakeMirror{upserts: map[string]models.Material{}}
}

func (f *fakeMirror) UpsertMaterial(_ context.Context, m models.Material) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failNext != nil {
		err := f.failNext
		f.failNext = nil
		return err
	}
	f.upserts[m.ID] = m
	return nil
}

func (f *fakeMirror) DeleteMaterial(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failNext != nil {
		err := f.failNext
		f.failNext = nil
		return err
	}
	f.deletes = append(f.deletes, id)
	return nil
}

func steelRecord() models.Material {
	return models.Material{
		Name:                "High-Performance Steel Reinforcement",
		Category:            models.CategorySteel,
		UnitCost:            decimal.NewFromInt(2450),
		Unit:                "ton",
		DurabilityScore:     95,
		SustainabilityScore: 78,
		PerformanceScore:    92,
		Description:         "Premium grade steel with enhanced corrosion resistance",
		Supplier:            "SteelTech Industries",
	}
}

func newTestStore(t *testing.T, mirror Mirror) *Store {
	t.Helper()
	store := NewStore(mirror, nil)
	seq := 0
	store.newID = func() string {
		seq++
		return fmt.Sprintf("mat-%03d", seq)
	}
	clock := time.Date(2024, 1, 15, 9, 0, 0, 0, time.UTC)
	store.now = func() time.Time {
		clock = clock.Add(time.Minute)
		return clock
	}
	return store
}

func collect(store *Store, q models.MaterialQuery) []models.Material {
	var out []models.Material
	for m := range store.Find(q) {
		out = append(out, m)
	}
	return out
}

func TestInsertThenFindReturnsEqualRecord(t *testing.T) {
	store := newTestStore(t, nil)
	input := steelRecord()

	created, err := store.Insert(context.Background(), models.RoleAdmin, input)
	require.NoError(t, err)
	assert.Equal(t, "mat-001", created.ID)
	assert.False(t, created.LastUpdated.IsZero())
	assert.Equal(t, created.CreatedAt, created.LastUpdated)

	found := collect(store, models.MaterialQuery{Search: "reinforcement"})
	require.Len(t, found, 1)

	expected := input
	expected.ID = found[0].ID
	expected.CreatedAt = found[0].CreatedAt
	expected.LastUpdated = found[0].LastUpdated
	assert.Equal(t, expected, found[0])
}

func TestInsertCanonicalizesCategory(t *testing.T) {
	store := newTestStore(t, nil)
	input := steelRecord()
	input.Category = "steel"
	input.Name = "  Rebar  "

	created, err := store.Insert(context.Background(), models.RoleAdmin, input)
	require.NoError(t, err)
	assert.Equal(t, models.CategorySteel, created.Category)
	assert.Equal(t, "Rebar", created.Name)
}

func TestInsertValidation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*models.Material)
		field  string
	}{
		{name: "empty name", mutate: func(m *models.Material) { m.Name = "   " }, field: "name"},
		{name: "empty category", mutate: func(m *models.Material) { m.Category = "" }, field: "category"},
		{name: "unknown category", mutate: func(m *models.Material) { m.Category = "Timber" }, field: "Timber"},
		{name: "zero cost", mutate: func(m *models.Material) { m.UnitCost = decimal.Zero }, field: "unit_cost"},
		{name: "negative cost", mutate: func(m *models.Material) { m.UnitCost = decimal.NewFromInt(-5) }, field: "unit_cost"},
		{name: "durability above range", mutate: func(m *models.Material) { m.DurabilityScore = 101 }, field: "durability_score"},
		{name: "sustainability below range", mutate: func(m *models.Material) { m.SustainabilityScore = -1 }, field: "sustainability_score"},
		{name: "performance above range", mutate: func(m *models.Material) { m.PerformanceScore = 250 }, field: "performance_score"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newTestStore(t, nil)
			record := steelRecord()
			tt.mutate(&record)

			_, err := store.Insert(context.Background(), models.RoleAdmin, record)
			require.Error(t, err)
			assert.True(t, apperrors.HasType(err, apperrors.TypeValidation), "got %v", err)
			assert.Contains(t, err.Error(), tt.field)
			assert.Equal(t, 0, store.Len())
		})
	}
}

func TestMutationsRequireAdmin(t *testing.T) {
	store := newTestStore(t, nil)
	created, err := store.Insert(context.Background(), models.RoleAdmin, steelRecord())
	require.NoError(t, err)

	_, err = store.Insert(context.Background(), models.RoleCore, steelRecord())
	assert.True(t, apperrors.HasType(err, apperrors.TypePermission))

	name := "Renamed"
	_, err = store.Update(context.Background(), models.RoleCore, created.ID, models.MaterialPatch{Name: &name})
	assert.True(t, apperrors.HasType(err, apperrors.TypePermission))

	err = store.Delete(context.Background(), models.Role("guest"), created.ID)
	assert.True(t, apperrors.HasType(err, apperrors.TypePermission))

	assert.Equal(t, 1, store.Len())
}

func TestUpdatePreservesIdentity(t *testing.T) {
	store := newTestStore(t, nil)
	created, err := store.Insert(context.Background(), models.RoleAdmin, steelRecord())
	require.NoError(t, err)

	cost := decimal.NewFromInt(2300)
	updated, err := store.Update(context.Background(), models.RoleAdmin, created.ID, models.MaterialPatch{UnitCost: &cost})
	require.NoError(t, err)

	assert.Equal(t, created.ID, updated.ID)
	assert.Equal(t, created.CreatedAt, updated.CreatedAt)
	assert.True(t, updated.LastUpdated.After(created.LastUpdated))
	assert.True(t, cost.Equal(updated.UnitCost))
	assert.Equal(t, created.Name, updated.Name)

	got, err := store.Get(created.ID)
	require.NoError(t, err)
	assert.Equal(t, updated, got)
}

func TestUpdateRevalidatesMergedRecord(t *testing.T) {
	store := newTestStore(t, nil)
	created, err := store.Insert(context.Background(), models.RoleAdmin, steelRecord())
	require.NoError(t, err)

	bad := 140
	_, err = store.Update(context.Background(), models.RoleAdmin, created.ID, models.MaterialPatch{DurabilityScore: &bad})
	assert.True(t, apperrors.HasType(err, apperrors.TypeValidation))

	got, err := store.Get(created.ID)
	require.NoError(t, err)
	assert.Equal(t, 95, got.DurabilityScore)
}

func TestUpdateMissingRecord(t *testing.T) {
	store := newTestStore(t, nil)
	name := "x"
	_, err := store.Update(context.Background(), models.RoleAdmin, "missing", models.MaterialPatch{Name: &name})
	assert.True(t, apperrors.HasType(err, apperrors.TypeNotFound))
}

func TestDeleteRemovesRecord(t *testing.T) {
	store := newTestStore(t, nil)
	created, err := store.Insert(context.Background(), models.RoleAdmin, steelRecord())
	require.NoError(t, err)

	require.NoError(t, store.Delete(context.Background(), models.RoleAdmin, created.ID))

	for m := range store.Find(models.MaterialQuery{}) {
		assert.NotEqual(t, created.ID, m.ID)
	}

	err = store.Delete(context.Background(), models.RoleAdmin, created.ID)
	assert.True(t, apperrors.HasType(err, apperrors.TypeNotFound))
}

func TestFindOnEmptyCatalog(t *testing.T) {
	store := newTestStore(t, nil)
	assert.Empty(t, collect(store, models.MaterialQuery{}))
	assert.Empty(t, collect(store, models.MaterialQuery{Search: "steel", Category: models.CategorySteel}))
}

func TestFindCombinesSearchAndCategory(t *testing.T) {
	store := newTestStore(t, nil)
	ctx := context.Background()
	for _, m := range SampleMaterials() {
		_, err := store.Insert(ctx, models.RoleAdmin, m)
		require.NoError(t, err)
	}

	composite := collect(store, models.MaterialQuery{Search: "COMPOSITE"})
	assert.Len(t, composite, 2)

	roofing := collect(store, models.MaterialQuery{Search: "composite", Category: models.CategoryRoofing})
	require.Len(t, roofing, 1)
	assert.Equal(t, "Composite Roofing Tiles", roofing[0].Name)

	byCategoryName := collect(store, models.MaterialQuery{Search: "concrete"})
	assert.Len(t, byCategoryName, 2)

	steel := collect(store, models.MaterialQuery{Category: models.CategorySteel})
	assert.Len(t, steel, 2)
	assert.Less(t, steel[0].ID, steel[1].ID)
}

func TestFindIsSnapshotAndRestartable(t *testing.T) {
	store := newTestStore(t, nil)
	ctx := context.Background()
	created, err := store.Insert(ctx, models.RoleAdmin, steelRecord())
	require.NoError(t, err)

	seq := store.Find(models.MaterialQuery{})
	require.NoError(t, store.Delete(ctx, models.RoleAdmin, created.ID))
	_, err = store.Insert(ctx, models.RoleAdmin, steelRecord())
	require.NoError(t, err)

	for round := 0; round < 2; round++ {
		var ids []string
		for m := range seq {
			ids = append(ids, m.ID)
		}
		assert.Equal(t, []string{created.ID}, ids, "round %d", round)
	}
}

func TestFindStopsEarly(t *testing.T) {
	store := newTestStore(t, nil)
	for _, m := range SampleMaterials() {
		_, err := store.Insert(context.Background(), models.RoleAdmin, m)
		require.NoError(t, err)
	}

	count := 0
	for range store.Find(models.MaterialQuery{}) {
		count++
		if count == 3 {
			break
		}
	}
	assert.Equal(t, 3, count)
}

func TestMirrorFailureLeavesStoreUnchanged(t *testing.T) {
	mirror := newFakeMirror()
	store := newTestStore(t, mirror)
	ctx := context.Background()

	created, err := store.Insert(ctx, models.RoleAdmin, steelRecord())
	require.NoError(t, err)
	assert.Contains(t, mirror.upserts, created.ID)

	mirror.failNext = errors.New("connection reset")
	_, err = store.Insert(ctx, models.RoleAdmin, steelRecord())
	require.Error(t, err)
	assert.Equal(t, 1, store.Len())

	mirror.failNext = errors.New("connection reset")
	require.Error(t, store.Delete(ctx, models.RoleAdmin, created.ID))
	_, err = store.Get(created.ID)
	assert.NoError(t, err)

	require.NoError(t, store.Delete(ctx, models.RoleAdmin, created.ID))
	assert.Equal(t, []string{created.ID}, mirror.deletes)
}

func TestLoadKeepsIdentityAndRejectsDuplicates(t *testing.T) {
	store := newTestStore(t, nil)
	record := steelRecord()
	record.ID = "persisted-1"
	record.CreatedAt = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	record.LastUpdated = record.CreatedAt

	require.NoError(t, store.Load([]models.Material{record}))
	got, err := store.Get("persisted-1")
	require.NoError(t, err)
	assert.Equal(t, record, got)

	err = store.Load([]models.Material{record, record})
	assert.True(t, apperrors.HasType(err, apperrors.TypeValidation))
	assert.Equal(t, 1, store.Len())
}

func TestConcurrentReadersSeeConsistentSnapshots(t *testing.T) {
	store := NewStore(nil, nil)
	ctx := context.Background()

	var wg sync.WaitGroup
	for w := 0; w < 4; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 25; i++ {
				created, err := store.Insert(ctx, models.RoleAdmin, steelRecord())
				assert.NoError(t, err)
				if i%5 == 0 {
					assert.NoError(t, store.Delete(ctx, models.RoleAdmin, created.ID))
				}
			}
		}()
	}

	for r := 0; r < 4; r++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				seq := store.Find(models.MaterialQuery{Category: models.CategorySteel})
				first, second := 0, 0
				for m := range seq {
					assert.Equal(t, 95, m.DurabilityScore)
					first++
				}
				for range seq {
					second++
				}
				assert.Equal(t, first, second)
			}
		}()
	}

	wg.Wait()
	assert.Equal(t, 4*20, store.Len())
}

func TestSeedIfEmpty(t *testing.T) {
	store := newTestStore(t, nil)
	n, err := SeedIfEmpty(context.Background(), store)
	require.NoError(t, err)
	assert.Equal(t, len(SampleMaterials()), n)

	n, err = SeedIfEmpty(context.Background(), store)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Equal(t, len(SampleMaterials()), store.Len())
}
