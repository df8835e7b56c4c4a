package service

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/DarkArtek/elena-118/internal/gemini"
	"github.com/DarkArtek/elena-118/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakeGenerator conta le chiamate: l'invariante di cache è "mai più di una
// generazione per invocazione, zero su cache hit"
type fakeGenerator struct {
	enabled  bool
	text     string
	degraded bool // segnaposto o testo troncato
	err      error
	calls    int
}

func (g *fakeGenerator) Enabled() bool { return g.enabled }

func (g *fakeGenerator) Generate(ctx context.Context, systemInstruction, userPrompt string) (*gemini.Result, error) {
	g.calls++
	if g.err != nil {
		return nil, g.err
	}
	return &gemini.Result{Text: g.text, Complete: !g.degraded}, nil
}

// fakeFarmaciStore store in memoria con registrazione delle scritture
type fakeFarmaciStore struct {
	records map[string]*models.DrugRecord // per AIC

	findErr             error
	updateErr           error
	byIngredientCalls   []string
	byAICCalls          []string
	upsertBatches       [][]models.DrugRecord
	upsertErrOnBatchNum int // 1-based, 0 = mai
}

func newFakeFarmaciStore(records ...*models.DrugRecord) *fakeFarmaciStore {
	s := &fakeFarmaciStore{records: make(map[string]*models.DrugRecord)}
	for _, r := range records {
		s.records[r.AIC] = r
	}
	return s
}

func (s *fakeFarmaciStore) FindByName(ctx context.Context, query string) (*models.DrugRecord, error) {
	if s.findErr != nil {
		return nil, s.findErr
	}
	// due passate come il repository reale: prima i record con scheda
	var best *models.DrugRecord
	for _, cachedOnly := range []bool{true, false} {
		for _, r := range s.records {
			if !contains(r.Name, query) {
				continue
			}
			if cachedOnly && !r.HasSummary() {
				continue
			}
			if best == nil || r.AIC < best.AIC {
				best = r
			}
		}
		if best != nil {
			return best, nil
		}
	}
	return nil, nil
}

func (s *fakeFarmaciStore) GetByAIC(ctx context.Context, aic string) (*models.DrugRecord, error) {
	if s.findErr != nil {
		return nil, s.findErr
	}
	return s.records[aic], nil
}

func (s *fakeFarmaciStore) UpdateSummaryByAIC(ctx context.Context, aic, summary string) (int64, error) {
	if s.updateErr != nil {
		return 0, s.updateErr
	}
	s.byAICCalls = append(s.byAICCalls, aic)
	if r, ok := s.records[aic]; ok {
		r.Summary = &summary
		return 1, nil
	}
	return 0, nil
}

func (s *fakeFarmaciStore) UpdateSummaryByIngredient(ctx context.Context, ingredient, summary string) (int64, error) {
	if s.updateErr != nil {
		return 0, s.updateErr
	}
	s.byIngredientCalls = append(s.byIngredientCalls, ingredient)
	var n int64
	for _, r := range s.records {
		if r.ActiveIngredient == ingredient {
			sum := summary
			r.Summary = &sum
			n++
		}
	}
	return n, nil
}

func (s *fakeFarmaciStore) UpsertBatch(ctx context.Context, records []models.DrugRecord) error {
	if s.upsertErrOnBatchNum > 0 && len(s.upsertBatches)+1 == s.upsertErrOnBatchNum {
		s.upsertBatches = append(s.upsertBatches, nil)
		return fmt.Errorf("batch upsert failed")
	}
	batch := make([]models.DrugRecord, len(records))
	copy(batch, records)
	s.upsertBatches = append(s.upsertBatches, batch)
	for _, r := range records {
		if existing, ok := s.records[r.AIC]; ok {
			// upsert reale: i campi anagrafici cambiano, la scheda resta
			existing.Name = r.Name
			existing.ActiveIngredient = r.ActiveIngredient
			existing.Manufacturer = r.Manufacturer
		} else {
			copied := r
			s.records[r.AIC] = &copied
		}
	}
	return nil
}

func contains(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}

func strPtr(s string) *string { return &s }

func TestSearch_CacheHit_ZeroGenerationCalls(t *testing.T) {
	store := newFakeFarmaciStore(&models.DrugRecord{
		AIC:              "012345678",
		Name:             "TACHIPIRINA 500MG",
		ActiveIngredient: "PARACETAMOLO",
		Summary:          strPtr("scheda in cache"),
	})
	gen := &fakeGenerator{enabled: true, text: "non deve servire"}

	svc := NewDrugService(store, gen, zap.NewNop())

	result := svc.Search(context.Background(), "tachipirina")

	assert.Contains(t, result, "scheda in cache")
	assert.Contains(t, result, "TACHIPIRINA 500MG")
	assert.Equal(t, 0, gen.calls)
	assert.Empty(t, store.byAICCalls)
	assert.Empty(t, store.byIngredientCalls)
}

func TestSearch_CacheMiss_OneCallAndBroadPropagation(t *testing.T) {
	store := newFakeFarmaciStore(
		&models.DrugRecord{AIC: "011111111", Name: "TACHIPIRINA 500MG", ActiveIngredient: "PARACETAMOLO"},
		&models.DrugRecord{AIC: "022222222", Name: "TACHIPIRINA 1000MG", ActiveIngredient: "PARACETAMOLO"},
	)
	gen := &fakeGenerator{enabled: true, text: "scheda generata"}

	svc := NewDrugService(store, gen, zap.NewNop())

	result := svc.Search(context.Background(), "tachipirina")

	assert.Contains(t, result, "scheda generata")
	assert.Equal(t, 1, gen.calls)

	// propagazione larga: tutte le confezioni del principio attivo
	require.Equal(t, []string{"PARACETAMOLO"}, store.byIngredientCalls)
	assert.Empty(t, store.byAICCalls)
	assert.Equal(t, "scheda generata", *store.records["011111111"].Summary)
	assert.Equal(t, "scheda generata", *store.records["022222222"].Summary)

	// la stessa query ora è un cache hit
	result = svc.Search(context.Background(), "tachipirina")
	assert.Contains(t, result, "scheda generata")
	assert.Equal(t, 1, gen.calls)
}

func TestSearch_UnknownIngredient_NarrowWrite(t *testing.T) {
	store := newFakeFarmaciStore(
		&models.DrugRecord{AIC: "033333333", Name: "GALENICO X"},
	)
	gen := &fakeGenerator{enabled: true, text: "scheda"}

	svc := NewDrugService(store, gen, zap.NewNop())

	svc.Search(context.Background(), "galenico")

	assert.Equal(t, []string{"033333333"}, store.byAICCalls)
	assert.Empty(t, store.byIngredientCalls)
}

func TestSearch_NoMatch_GeneratedButNotPersisted(t *testing.T) {
	store := newFakeFarmaciStore()
	gen := &fakeGenerator{enabled: true, text: "scheda dal modello"}

	svc := NewDrugService(store, gen, zap.NewNop())

	result := svc.Search(context.Background(), "farmaco estero")

	assert.Equal(t, "scheda dal modello", result)
	assert.Equal(t, 1, gen.calls)
	assert.Empty(t, store.byAICCalls)
	assert.Empty(t, store.byIngredientCalls)
}

func TestSearch_GenerationFailure_NeutralResponse(t *testing.T) {
	store := newFakeFarmaciStore(
		&models.DrugRecord{AIC: "044444444", Name: "MOMENT 200MG", ActiveIngredient: "IBUPROFENE"},
	)
	gen := &fakeGenerator{enabled: true, err: fmt.Errorf("api down")}

	svc := NewDrugService(store, gen, zap.NewNop())

	result := svc.Search(context.Background(), "moment")

	assert.Equal(t, NoDrugInfoText, result)
	assert.Empty(t, store.byAICCalls)
	assert.Empty(t, store.byIngredientCalls)
}

func TestSearch_LookupError_DegradesToNoMatch(t *testing.T) {
	store := newFakeFarmaciStore()
	store.findErr = fmt.Errorf("db down")
	gen := &fakeGenerator{enabled: true, text: "scheda"}

	svc := NewDrugService(store, gen, zap.NewNop())

	result := svc.Search(context.Background(), "tachipirina")

	assert.Equal(t, "scheda", result)
	assert.Equal(t, 1, gen.calls)
}

func TestSearch_OfflineMode_NoCachedRecord(t *testing.T) {
	store := newFakeFarmaciStore(
		&models.DrugRecord{AIC: "055555555", Name: "ASPIRINA 100MG", ActiveIngredient: "ASA"},
	)
	gen := &fakeGenerator{enabled: false}

	svc := NewDrugService(store, gen, zap.NewNop())

	result := svc.Search(context.Background(), "aspirina")

	assert.Equal(t, NoDrugInfoText, result)
	assert.Equal(t, 0, gen.calls)
}

func TestSearch_EmptyQuery(t *testing.T) {
	store := newFakeFarmaciStore()
	gen := &fakeGenerator{enabled: true}

	svc := NewDrugService(store, gen, zap.NewNop())

	assert.Equal(t, NoDrugInfoText, svc.Search(context.Background(), "   "))
	assert.Equal(t, 0, gen.calls)
}

func TestSearch_BlockedGeneration_ServedButNotCached(t *testing.T) {
	store := newFakeFarmaciStore(
		&models.DrugRecord{AIC: "011111111", Name: "TACHIPIRINA 500MG", ActiveIngredient: "PARACETAMOLO"},
		&models.DrugRecord{AIC: "022222222", Name: "TACHIPIRINA 1000MG", ActiveIngredient: "PARACETAMOLO"},
	)
	gen := &fakeGenerator{
		enabled:  true,
		text:     "⚠️ Risposta bloccata per sicurezza. Categoria: HARM_CATEGORY_DANGEROUS_CONTENT",
		degraded: true,
	}

	svc := NewDrugService(store, gen, zap.NewNop())

	result := svc.Search(context.Background(), "tachipirina")

	// il segnaposto arriva al soccorritore ma non diventa mai una scheda
	assert.Contains(t, result, "bloccata per sicurezza")
	assert.Empty(t, store.byIngredientCalls)
	assert.Empty(t, store.byAICCalls)
	assert.Nil(t, store.records["011111111"].Summary)
	assert.Nil(t, store.records["022222222"].Summary)

	// niente in cache: la query successiva rigenera
	svc.Search(context.Background(), "tachipirina")
	assert.Equal(t, 2, gen.calls)
}

func TestSearch_EmptyGeneration_ServedButNotCached(t *testing.T) {
	store := newFakeFarmaciStore(
		&models.DrugRecord{AIC: "011111111", Name: "TACHIPIRINA 500MG", ActiveIngredient: "PARACETAMOLO"},
	)
	gen := &fakeGenerator{
		enabled:  true,
		text:     "⚠️ Nessun testo generato. Status: OTHER.",
		degraded: true,
	}

	svc := NewDrugService(store, gen, zap.NewNop())

	result := svc.Search(context.Background(), "tachipirina")

	assert.Contains(t, result, "Nessun testo generato")
	assert.Empty(t, store.byIngredientCalls)
	assert.Empty(t, store.byAICCalls)
	assert.Nil(t, store.records["011111111"].Summary)
}

func TestSearch_TruncatedGeneration_NotCached(t *testing.T) {
	store := newFakeFarmaciStore(
		&models.DrugRecord{AIC: "011111111", Name: "TACHIPIRINA 500MG", ActiveIngredient: "PARACETAMOLO"},
	)
	gen := &fakeGenerator{
		enabled:  true,
		text:     "scheda parziale\n\n[...Risposta troncata per limite lunghezza...]",
		degraded: true,
	}

	svc := NewDrugService(store, gen, zap.NewNop())

	result := svc.Search(context.Background(), "tachipirina")

	assert.Contains(t, result, "scheda parziale")
	assert.Empty(t, store.byIngredientCalls)
	assert.Empty(t, store.byAICCalls)
}

func TestSearch_NumericQuery_ResolvesByAIC(t *testing.T) {
	store := newFakeFarmaciStore(
		&models.DrugRecord{AIC: "012345678", Name: "TACHIPIRINA 500MG", ActiveIngredient: "PARACETAMOLO", Summary: strPtr("scheda in cache")},
	)
	gen := &fakeGenerator{enabled: true, text: "non deve servire"}

	svc := NewDrugService(store, gen, zap.NewNop())

	result := svc.Search(context.Background(), "012345678")

	// codice confezione: lookup puntuale, niente ricerca per nome
	assert.Contains(t, result, "scheda in cache")
	assert.Equal(t, 0, gen.calls)
}

func TestSearch_PrefersCachedMatch(t *testing.T) {
	store := newFakeFarmaciStore(
		&models.DrugRecord{AIC: "010000000", Name: "TACHIPIRINA 500MG", ActiveIngredient: "PARACETAMOLO"},
		&models.DrugRecord{AIC: "020000000", Name: "TACHIPIRINA 1000MG", ActiveIngredient: "PARACETAMOLO", Summary: strPtr("scheda esistente")},
	)
	gen := &fakeGenerator{enabled: true, text: "non deve servire"}

	svc := NewDrugService(store, gen, zap.NewNop())

	result := svc.Search(context.Background(), "tachipirina")

	// il match con scheda vince anche se ha AIC più alto
	assert.Contains(t, result, "scheda esistente")
	assert.Equal(t, 0, gen.calls)
}
