package triage

import (
	"fmt"

	"github.com/DarkArtek/elena-118/internal/models"

	"go.uber.org/zap"
)

// Soglie protocollo aritmie. La coppia stretta (120/50) è il trigger di alto
// rischio canonico; la coppia larga (100/60) segnala rischio aritmico moderato.
const (
	hrHighRiskAbove = 120
	hrHighRiskBelow = 50
	hrModerateAbove = 100
	hrModerateBelow = 60

	sysBPShockBelow = 90
)

// CirculationRule regola C: frequenza cardiaca, toni aritmici, ipotensione
type CirculationRule struct {
	logger *zap.Logger
}

// NewCirculationRule crea la regola C
func NewCirculationRule(logger *zap.Logger) *CirculationRule {
	return &CirculationRule{
		logger: logger,
	}
}

// Evaluate valuta frequenza e pressione
func (r *CirculationRule) Evaluate(obs models.PatientObservation) []models.Warning {
	var warnings []models.Warning

	if obs.HeartRate != nil {
		hr := *obs.HeartRate
		switch {
		case hr > hrHighRiskAbove || hr < hrHighRiskBelow:
			warnings = append(warnings, models.Warning{
				Code:    models.WarningHighRiskCirc,
				Section: models.SectionC,
				Message: fmt.Sprintf("Alto rischio circolatorio (FC %d bpm): %s", hr, r.rhythmText(obs)),
			})
		case hr > hrModerateAbove || hr < hrModerateBelow:
			warnings = append(warnings, models.Warning{
				Code:    models.WarningModerateArrhythm,
				Section: models.SectionC,
				Message: fmt.Sprintf("Rischio aritmico moderato (FC %d bpm): %s", hr, r.rhythmText(obs)),
			})
		}
	}

	if obs.SysBP != nil && *obs.SysBP > 0 && *obs.SysBP < sysBPShockBelow {
		warnings = append(warnings, models.Warning{
			Code:     models.WarningShock,
			Section:  models.SectionC,
			Critical: true,
			Message:  fmt.Sprintf("Ipotensione (PAS %d mmHg): sospetto shock", *obs.SysBP),
		})
	}

	if len(warnings) > 0 {
		r.logger.Debug("Circulation risk triggered",
			zap.Int("warning_count", len(warnings)),
		)
	}

	return warnings
}

// rhythmText distingue l'aritmia auscultata dalla tachi/bradicardia ritmica.
// L'ECG a 3 derivazioni (Gi-Ro-Ne-Ve) va suggerito in entrambi i casi.
func (r *CirculationRule) rhythmText(obs models.PatientObservation) string {
	kind := "tachicardia"
	if obs.HeartRate != nil && *obs.HeartRate < hrModerateBelow {
		kind = "bradicardia"
	}

	if obs.ArrhythmicTones {
		return "aritmia confermata all'auscultazione; eseguire ECG 3 derivazioni (Gi-Ro-Ne-Ve)"
	}
	return kind + " ritmica (sinusale?); eseguire comunque ECG 3 derivazioni (Gi-Ro-Ne-Ve)"
}
