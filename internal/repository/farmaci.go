package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/DarkArtek/elena-118/internal/models"

	"go.uber.org/zap"
)

// FarmaciRepository anagrafica farmaci (tabella farmaci, chiave AIC).
// Il loader scrive solo i campi anagrafici; la scheda AI (descrizione_ai)
// è scritta fuori banda dal resolver e l'upsert non la tocca mai.
type FarmaciRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewFarmaciRepository crea il repository farmaci
func NewFarmaciRepository(db *sql.DB, logger *zap.Logger) *FarmaciRepository {
	return &FarmaciRepository{
		db:     db,
		logger: logger,
	}
}

const farmaciColumns = `aic, denominazione, principio_attivo, titolare, descrizione_ai, descrizione_updated_at, updated_at`

// FindByName cerca per sottostringa (case-insensitive) sulla denominazione,
// in due passate: prima i record con scheda in cache, poi qualunque match.
// Ordine deterministico: AIC più basso. Nessun match -> (nil, nil).
func (r *FarmaciRepository) FindByName(ctx context.Context, query string) (*models.DrugRecord, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("query is required")
	}

	// passata 1: solo record già in cache
	record, err := r.findByName(ctx, query, true)
	if err != nil {
		return nil, err
	}
	if record != nil {
		return record, nil
	}

	// passata 2: qualunque match
	return r.findByName(ctx, query, false)
}

func (r *FarmaciRepository) findByName(ctx context.Context, query string, cachedOnly bool) (*models.DrugRecord, error) {
	q := `
		SELECT ` + farmaciColumns + `
		FROM farmaci
		WHERE denominazione ILIKE '%' || $1 || '%'
	`
	if cachedOnly {
		q += ` AND descrizione_ai IS NOT NULL`
	}
	q += ` ORDER BY aic ASC LIMIT 1`

	record, err := r.scanRecord(r.db.QueryRowContext(ctx, q, query))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query farmaci: %w", err)
	}

	return record, nil
}

// GetByAIC lookup puntuale per codice AIC. Nessun match -> (nil, nil).
func (r *FarmaciRepository) GetByAIC(ctx context.Context, aic string) (*models.DrugRecord, error) {
	q := `SELECT ` + farmaciColumns + ` FROM farmaci WHERE aic = $1`

	record, err := r.scanRecord(r.db.QueryRowContext(ctx, q, aic))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query farmaco: %w", err)
	}

	return record, nil
}

func (r *FarmaciRepository) scanRecord(row *sql.Row) (*models.DrugRecord, error) {
	var record models.DrugRecord
	var summary sql.NullString
	var summaryUpdatedAt sql.NullTime

	err := row.Scan(
		&record.AIC,
		&record.Name,
		&record.ActiveIngredient,
		&record.Manufacturer,
		&summary,
		&summaryUpdatedAt,
		&record.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if summary.Valid {
		record.Summary = &summary.String
	}
	if summaryUpdatedAt.Valid {
		record.SummaryUpdatedAt = &summaryUpdatedAt.Time
	}

	return &record, nil
}

// UpdateSummaryByAIC scrive la scheda generata sul solo AIC indicato
func (r *FarmaciRepository) UpdateSummaryByAIC(ctx context.Context, aic, summary string) (int64, error) {
	result, err := r.db.ExecContext(ctx, `
		UPDATE farmaci
		SET descrizione_ai = $1, descrizione_updated_at = $2
		WHERE aic = $3
	`, summary, time.Now(), aic)
	if err != nil {
		return 0, fmt.Errorf("failed to update summary for aic %s: %w", aic, err)
	}

	return result.RowsAffected()
}

// UpdateSummaryByIngredient propaga la scheda a tutti gli AIC con lo stesso
// principio attivo: una sola generazione copre dosaggi e forme diverse
func (r *FarmaciRepository) UpdateSummaryByIngredient(ctx context.Context, ingredient, summary string) (int64, error) {
	result, err := r.db.ExecContext(ctx, `
		UPDATE farmaci
		SET descrizione_ai = $1, descrizione_updated_at = $2
		WHERE principio_attivo = $3
	`, summary, time.Now(), ingredient)
	if err != nil {
		return 0, fmt.Errorf("failed to update summary for ingredient %s: %w", ingredient, err)
	}

	return result.RowsAffected()
}

// UpsertBatch insert-or-replace su chiave AIC per un batch del loader.
// Aggiorna solo i campi anagrafici: descrizione_ai e descrizione_updated_at
// restano quelli accumulati, altrimenti ogni refresh azzererebbe la cache.
func (r *FarmaciRepository) UpsertBatch(ctx context.Context, records []models.DrugRecord) error {
	if len(records) == 0 {
		return nil
	}

	now := time.Now()
	placeholders := make([]string, 0, len(records))
	args := make([]interface{}, 0, len(records)*5)

	for i, record := range records {
		base := i * 5
		placeholders = append(placeholders, fmt.Sprintf("($%d, $%d, $%d, $%d, $%d)",
			base+1, base+2, base+3, base+4, base+5))
		args = append(args, record.AIC, record.Name, record.ActiveIngredient, record.Manufacturer, now)
	}

	q := `
		INSERT INTO farmaci (aic, denominazione, principio_attivo, titolare, updated_at)
		VALUES ` + strings.Join(placeholders, ", ") + `
		ON CONFLICT (aic)
		DO UPDATE SET denominazione = EXCLUDED.denominazione,
		              principio_attivo = EXCLUDED.principio_attivo,
		              titolare = EXCLUDED.titolare,
		              updated_at = EXCLUDED.updated_at
	`

	if _, err := r.db.ExecContext(ctx, q, args...); err != nil {
		return fmt.Errorf("failed to upsert farmaci batch (%d rows): %w", len(records), err)
	}

	return nil
}

// Count numero di record in anagrafica
func (r *FarmaciRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM farmaci`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count farmaci: %w", err)
	}
	return count, nil
}
