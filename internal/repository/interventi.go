package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/DarkArtek/elena-118/internal/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// InterventiRepository log missioni append-only (tabella interventi).
// Solo insert: il log è un sink di audit, mai letto dal backend.
type InterventiRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewInterventiRepository crea il repository interventi
func NewInterventiRepository(db *sql.DB, logger *zap.Logger) *InterventiRepository {
	return &InterventiRepository{
		db:     db,
		logger: logger,
	}
}

// Insert aggiunge una riga al log missioni. Se l'ID manca viene generato.
func (r *InterventiRepository) Insert(ctx context.Context, entry *models.MissionLogEntry) error {
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO interventi (
			id, sesso, eta, avpu,
			pressione_sistolica, pressione_diastolica,
			frequenza_cardiaca, saturazione, respiri_minuto,
			fast_summary, eo_torace, note, suggerimento_ai, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`,
		entry.ID,
		entry.Sex,
		entry.Age,
		entry.AVPU,
		entry.SysBP,
		entry.DiaBP,
		entry.HeartRate,
		entry.SpO2,
		entry.RespRate,
		entry.FASTSummary,
		entry.ChestExam,
		entry.Notes,
		entry.AIText,
		entry.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert intervento: %w", err)
	}

	return nil
}
