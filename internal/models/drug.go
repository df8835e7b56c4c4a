package models

import "time"

// DrugRecord una riga dell'anagrafica farmaci (tabella farmaci).
// AIC è la chiave univoca di confezione; lo stesso principio attivo compare
// su molti AIC (dosaggi e forme diverse): su questo si basa la propagazione
// della scheda generata.
type DrugRecord struct {
	AIC              string     `json:"aic" db:"aic"`
	Name             string     `json:"denominazione" db:"denominazione"`
	ActiveIngredient string     `json:"principio_attivo" db:"principio_attivo"`
	Manufacturer     string     `json:"titolare" db:"titolare"`
	Summary          *string    `json:"descrizione_ai,omitempty" db:"descrizione_ai"`
	SummaryUpdatedAt *time.Time `json:"descrizione_updated_at,omitempty" db:"descrizione_updated_at"`
	UpdatedAt        time.Time  `json:"updated_at" db:"updated_at"`
}

// HasSummary vero se la scheda AI è in cache
func (d *DrugRecord) HasSummary() bool {
	return d.Summary != nil && *d.Summary != ""
}

// MissionLogEntry riga append-only del log missioni (tabella interventi).
// Colonne denormalizzate dall'osservazione + esito AI; scrittura best-effort.
type MissionLogEntry struct {
	ID          string    `json:"id" db:"id"`
	Sex         string    `json:"sesso" db:"sesso"`
	Age         *int      `json:"eta" db:"eta"`
	AVPU        string    `json:"avpu" db:"avpu"`
	SysBP       *int      `json:"pressione_sistolica" db:"pressione_sistolica"`
	DiaBP       *int      `json:"pressione_diastolica" db:"pressione_diastolica"`
	HeartRate   *int      `json:"frequenza_cardiaca" db:"frequenza_cardiaca"`
	SpO2        *int      `json:"saturazione" db:"saturazione"`
	RespRate    *int      `json:"respiri_minuto" db:"respiri_minuto"`
	FASTSummary string    `json:"fast_summary" db:"fast_summary"`
	ChestExam   string    `json:"eo_torace" db:"eo_torace"`
	Notes       string    `json:"note" db:"note"`
	AIText      string    `json:"suggerimento_ai" db:"suggerimento_ai"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}
