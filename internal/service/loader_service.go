package service

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/DarkArtek/elena-118/internal/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Posizioni colonna nel feed anagrafica (separatore ';')
const (
	feedColAIC          = 0
	feedColName         = 3
	feedColManufacturer = 6
	feedColIngredient   = 11
	feedMinColumns      = 12
)

// FeedFetcher sorgente del flat file anagrafica
type FeedFetcher interface {
	Fetch(ctx context.Context) (io.ReadCloser, error)
}

// LoaderService ingestione periodica dell'anagrafica farmaci.
// Riga per riga: righe corte o senza AIC scartate, dentro lo stesso run
// vince la prima occorrenza di ogni AIC, upsert a batch di dimensione fissa.
// Un batch fallito si logga e si salta (il run continua); un download fallito
// abortisce l'intero run.
type LoaderService struct {
	farmaci   FarmaciStore
	feed      FeedFetcher
	lock      RunLock
	batchSize int
	logger    *zap.Logger
}

// NewLoaderService crea il loader. lock può essere nil (esclusione disabilitata).
func NewLoaderService(farmaci FarmaciStore, feed FeedFetcher, lock RunLock, batchSize int, logger *zap.Logger) *LoaderService {
	return &LoaderService{
		farmaci:   farmaci,
		feed:      feed,
		lock:      lock,
		batchSize: batchSize,
		logger:    logger,
	}
}

// ErrRunInProgress un altro run detiene il lock
var ErrRunInProgress = fmt.Errorf("loader run already in progress")

// Run esegue un'ingestione completa e restituisce le righe di log del run.
func (s *LoaderService) Run(ctx context.Context) ([]string, error) {
	if s.lock != nil {
		ok, err := s.lock.Acquire(ctx)
		if err != nil {
			// lock non disponibile (es. Redis giù): meglio un run in più
			// che nessun aggiornamento
			s.logger.Warn("Loader lock unavailable, proceeding without exclusion",
				zap.Error(err),
			)
		} else if !ok {
			return nil, ErrRunInProgress
		} else {
			defer s.lock.Release(ctx)
		}
	}

	runID := uuid.New().String()[:8]
	logs := []string{fmt.Sprintf("run %s: avvio aggiornamento anagrafica", runID)}

	s.logger.Info("Starting feed ingestion run",
		zap.String("run_id", runID),
	)

	body, err := s.feed.Fetch(ctx)
	if err != nil {
		s.logger.Error("Feed download failed, aborting run",
			zap.String("run_id", runID),
			zap.Error(err),
		)
		return logs, fmt.Errorf("feed download failed: %w", err)
	}
	defer body.Close()

	var (
		total, skipped, dupes, upserted int
		failedBatches                   int
		seen                            = make(map[string]struct{})
		batch                           = make([]models.DrugRecord, 0, s.batchSize)
	)

	flush := func() {
		if len(batch) == 0 {
			return
		}
		if err := s.farmaci.UpsertBatch(ctx, batch); err != nil {
			failedBatches++
			s.logger.Error("Batch upsert failed, skipping batch",
				zap.String("run_id", runID),
				zap.Int("batch_size", len(batch)),
				zap.Error(err),
			)
			logs = append(logs, fmt.Sprintf("run %s: batch di %d righe fallito: %v", runID, len(batch), err))
		} else {
			upserted += len(batch)
		}
		batch = batch[:0]
	}

	scanner := bufio.NewScanner(body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		if lineNo == 1 {
			// intestazione del feed
			continue
		}

		record, ok := parseFeedRow(scanner.Text())
		if !ok {
			skipped++
			continue
		}
		total++

		if _, dup := seen[record.AIC]; dup {
			// duplicato nello stesso run: vince la prima occorrenza
			dupes++
			continue
		}
		seen[record.AIC] = struct{}{}

		batch = append(batch, record)
		if len(batch) >= s.batchSize {
			flush()
		}
	}
	flush()

	if err := scanner.Err(); err != nil {
		logs = append(logs, fmt.Sprintf("run %s: lettura feed interrotta: %v", runID, err))
		return logs, fmt.Errorf("feed read failed: %w", err)
	}

	logs = append(logs,
		fmt.Sprintf("run %s: %d righe valide, %d scartate, %d duplicati, %d record aggiornati, %d batch falliti",
			runID, total, skipped, dupes, upserted, failedBatches))

	s.logger.Info("Feed ingestion run completed",
		zap.String("run_id", runID),
		zap.Int("valid_rows", total),
		zap.Int("skipped_rows", skipped),
		zap.Int("duplicate_rows", dupes),
		zap.Int("upserted", upserted),
		zap.Int("failed_batches", failedBatches),
	)

	return logs, nil
}

// parseFeedRow estrae un candidato DrugRecord da una riga del feed.
// I valori possono arrivare tra virgolette e con spazi di contorno.
func parseFeedRow(line string) (models.DrugRecord, bool) {
	fields := strings.Split(line, ";")
	if len(fields) < feedMinColumns {
		return models.DrugRecord{}, false
	}

	aic := cleanFeedValue(fields[feedColAIC])
	if aic == "" {
		return models.DrugRecord{}, false
	}

	return models.DrugRecord{
		AIC:              aic,
		Name:             cleanFeedValue(fields[feedColName]),
		ActiveIngredient: cleanFeedValue(fields[feedColIngredient]),
		Manufacturer:     cleanFeedValue(fields[feedColManufacturer]),
	}, true
}

func cleanFeedValue(v string) string {
	return strings.TrimSpace(strings.Trim(strings.TrimSpace(v), `"`))
}
