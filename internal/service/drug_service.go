package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/DarkArtek/elena-118/internal/models"
	"github.com/DarkArtek/elena-118/internal/prompt"

	"go.uber.org/zap"
)

// FarmaciStore operazioni sull'anagrafica farmaci usate dal resolver e dal loader
type FarmaciStore interface {
	FindByName(ctx context.Context, query string) (*models.DrugRecord, error)
	GetByAIC(ctx context.Context, aic string) (*models.DrugRecord, error)
	UpdateSummaryByAIC(ctx context.Context, aic, summary string) (int64, error)
	UpdateSummaryByIngredient(ctx context.Context, ingredient, summary string) (int64, error)
	UpsertBatch(ctx context.Context, records []models.DrugRecord) error
}

// NoDrugInfoText risposta neutra quando non si può né trovare né generare
const NoDrugInfoText = "⚠️ Nessuna informazione disponibile su questo farmaco. Procedi secondo protocollo e segnala il nome alla centrale operativa."

// DrugService resolver del prontuario: risolve una query libera contro
// l'anagrafica, riusa la scheda in cache quando c'è, altrimenti genera al
// massimo una scheda e decide quanto propagarla. L'invariante che tutto il
// design esiste per garantire: mai più di una chiamata generativa per
// invocazione.
type DrugService struct {
	farmaci   FarmaciStore
	generator Generator
	logger    *zap.Logger
}

// NewDrugService crea il resolver
func NewDrugService(farmaci FarmaciStore, generator Generator, logger *zap.Logger) *DrugService {
	return &DrugService{
		farmaci:   farmaci,
		generator: generator,
		logger:    logger,
	}
}

// Search risolve la query e restituisce la scheda (cache o generata).
// Le letture sono best-effort: un errore di lookup degrada a "nessun match",
// non a errore verso il soccorritore.
func (s *DrugService) Search(ctx context.Context, query string) string {
	query = strings.TrimSpace(query)
	if query == "" {
		return NoDrugInfoText
	}

	record, err := s.lookup(ctx, query)
	if err != nil {
		s.logger.Warn("Drug lookup failed, treating as no match",
			zap.String("query", query),
			zap.Error(err),
		)
		record = nil
	}

	// cache hit: nessuna chiamata generativa, nessuna scrittura
	if record != nil && record.HasSummary() {
		s.logger.Debug("Drug summary cache hit",
			zap.String("aic", record.AIC),
		)
		return officialBlock(record) + *record.Summary
	}

	if !s.generator.Enabled() {
		return NoDrugInfoText
	}

	result, err := s.generator.Generate(ctx, prompt.DrugSystemInstruction, prompt.BuildDrugPrompt(query, record))
	if err != nil {
		s.logger.Warn("Drug summary generation failed",
			zap.String("query", query),
			zap.Error(err),
		)
		return NoDrugInfoText
	}

	if record != nil {
		// in cache entrano solo generazioni complete: segnaposti di blocco
		// e testi troncati non sono schede
		if result.Complete {
			s.writeBack(ctx, record, result.Text)
		} else {
			s.logger.Warn("Degraded generation result, skipping cache write",
				zap.String("aic", record.AIC),
			)
		}
		return officialBlock(record) + result.Text
	}

	// nessun record a cui agganciare la scheda: si restituisce e basta
	return result.Text
}

// lookup risolve la query in anagrafica. Un codice AIC (9 cifre, stampato
// sulla confezione) si risolve con lookup puntuale, tutto il resto per nome.
func (s *DrugService) lookup(ctx context.Context, query string) (*models.DrugRecord, error) {
	if isAIC(query) {
		return s.farmaci.GetByAIC(ctx, query)
	}
	return s.farmaci.FindByName(ctx, query)
}

func isAIC(query string) bool {
	if len(query) != 9 {
		return false
	}
	for _, r := range query {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// writeBack propagazione della scheda generata. Scope largo quando il
// principio attivo è noto (tutte le confezioni della stessa sostanza
// beneficiano di una generazione sola), stretto sul singolo AIC altrimenti.
// Anche qui best-effort: la scheda è già in mano al soccorritore.
func (s *DrugService) writeBack(ctx context.Context, record *models.DrugRecord, summary string) {
	var affected int64
	var err error

	if record.ActiveIngredient != "" {
		affected, err = s.farmaci.UpdateSummaryByIngredient(ctx, record.ActiveIngredient, summary)
	} else {
		affected, err = s.farmaci.UpdateSummaryByAIC(ctx, record.AIC, summary)
	}

	if err != nil {
		s.logger.Warn("Failed to cache drug summary (non-blocking)",
			zap.String("aic", record.AIC),
			zap.Error(err),
		)
		return
	}

	s.logger.Info("Drug summary cached",
		zap.String("aic", record.AIC),
		zap.String("principio_attivo", record.ActiveIngredient),
		zap.Int64("records_updated", affected),
	)
}

// officialBlock blocco dati ufficiali anteposto alla scheda quando il
// farmaco è in anagrafica
func officialBlock(record *models.DrugRecord) string {
	var b strings.Builder
	b.WriteString("📋 DATI UFFICIALI ANAGRAFICA FARMACI:\n")
	fmt.Fprintf(&b, "Denominazione: %s (AIC %s)\n", record.Name, record.AIC)
	if record.ActiveIngredient != "" {
		fmt.Fprintf(&b, "Principio attivo: %s\n", record.ActiveIngredient)
	}
	if record.Manufacturer != "" {
		fmt.Fprintf(&b, "Titolare: %s\n", record.Manufacturer)
	}
	b.WriteString("\n")
	return b.String()
}
