package triage

import (
	"fmt"
	"strings"

	"github.com/DarkArtek/elena-118/internal/models"

	"go.uber.org/zap"
)

// hemorrhageTerms termini da gergo 118 che suggeriscono emorragia in atto.
// Rilevamento lessicale best-effort, non un classificatore clinico: un
// sanguinamento descritto con parole diverse non viene intercettato.
var hemorrhageTerms = []string{
	"emorragia",
	"emorragie",
	"sanguinamento massiv",
	"sanguinamento abbondante",
	"esanguin",
	"ferita lacero",
	"lacero contus",
	"tclc",
	"amputazion",
}

// HemorrhageRule regola X: le emorragie massive hanno priorità assoluta,
// indipendentemente da ogni altro rilievo.
type HemorrhageRule struct {
	logger *zap.Logger
}

// NewHemorrhageRule crea la regola X
func NewHemorrhageRule(logger *zap.Logger) *HemorrhageRule {
	return &HemorrhageRule{
		logger: logger,
	}
}

// Evaluate cerca termini emorragici nelle note operative
func (r *HemorrhageRule) Evaluate(obs models.PatientObservation) []models.Warning {
	notes := strings.ToLower(obs.Notes)
	if notes == "" {
		return nil
	}

	for _, term := range hemorrhageTerms {
		if strings.Contains(notes, term) {
			r.logger.Debug("Hemorrhage term matched in notes",
				zap.String("term", term),
			)
			return []models.Warning{{
				Code:     models.WarningHemorrhage,
				Section:  models.SectionX,
				Critical: true,
				Message: fmt.Sprintf(
					"Sospetta emorragia massiva riferita in nota (%q): priorità assoluta, tamponamento e controllo emorragico immediati",
					term),
			}}
		}
	}

	return nil
}
