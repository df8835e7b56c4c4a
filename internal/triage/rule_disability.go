package triage

import (
	"fmt"
	"strings"

	"github.com/DarkArtek/elena-118/internal/models"

	"go.uber.org/zap"
)

// DisabilityRule regola D: screening FAST/CPSS e stato di coscienza AVPU.
// FAST positivo = Code Stroke, urgenza critica incondizionata (time is brain).
type DisabilityRule struct {
	logger *zap.Logger
}

// NewDisabilityRule crea la regola D
func NewDisabilityRule(logger *zap.Logger) *DisabilityRule {
	return &DisabilityRule{
		logger: logger,
	}
}

// Evaluate valuta il quadro neurologico
func (r *DisabilityRule) Evaluate(obs models.PatientObservation) []models.Warning {
	var warnings []models.Warning

	if obs.FASTPositive() {
		r.logger.Debug("FAST screening positive",
			zap.String("summary", FASTText(obs)),
		)
		warnings = append(warnings, models.Warning{
			Code:     models.WarningFASTPositive,
			Section:  models.SectionD,
			Critical: true,
			Message:  fmt.Sprintf("FAST %s — Code Stroke, time is brain", FASTText(obs)),
		})
	}

	if obs.AVPU != "" && obs.AVPU != models.AVPUAlert {
		warnings = append(warnings, models.Warning{
			Code:    models.WarningReducedAVPU,
			Section: models.SectionD,
			Message: fmt.Sprintf("Stato di coscienza ridotto (AVPU: %s)", obs.AVPU),
		})
	}

	return warnings
}

// FASTText testo fisso dei segni FAST, nella forma usata anche nel prompt
// e nel log missioni
func FASTText(obs models.PatientObservation) string {
	var findings []string
	if obs.FASTFace {
		findings = append(findings, "Faccia (Asimmetria)")
	}
	if obs.FASTArm {
		findings = append(findings, "Braccio (Caduta)")
	}
	if obs.FASTSpeech {
		findings = append(findings, "Parola (Disartria)")
	}

	if len(findings) == 0 {
		return "Negativo"
	}

	lkw := obs.FASTTime
	if lkw == "" {
		lkw = "NON SPECIFICATO"
	}
	return fmt.Sprintf("POSITIVO a: %s. Orario LKW: %s", strings.Join(findings, ", "), lkw)
}
