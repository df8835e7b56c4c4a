package triage

import (
	"fmt"
	"strings"

	"github.com/DarkArtek/elena-118/internal/models"

	"go.uber.org/zap"
)

// Soglie protocollo respiratorio
const (
	spo2HighRiskBelow = 90
	respRateLowBound  = 10
	respRateHighBound = 25
)

// BreathingRule regola B: SpO2 e frequenza respiratoria, con
// sotto-classificazione dal reperto toracico (E.O. Torace).
type BreathingRule struct {
	logger *zap.Logger
}

// NewBreathingRule crea la regola B
func NewBreathingRule(logger *zap.Logger) *BreathingRule {
	return &BreathingRule{
		logger: logger,
	}
}

// Evaluate valuta il rischio respiratorio.
// Un valore assente non partecipa mai alla soglia: SpO2 nil non è SpO2 0.
func (r *BreathingRule) Evaluate(obs models.PatientObservation) []models.Warning {
	spo2Low := obs.SpO2 != nil && *obs.SpO2 < spo2HighRiskBelow
	respAbnormal := obs.RespRate != nil &&
		(*obs.RespRate < respRateLowBound || *obs.RespRate > respRateHighBound)

	if !spo2Low && !respAbnormal {
		return nil
	}

	r.logger.Debug("Breathing risk triggered",
		zap.Bool("spo2_low", spo2Low),
		zap.Bool("resp_rate_abnormal", respAbnormal),
	)

	var findings []string
	if spo2Low {
		findings = append(findings, fmt.Sprintf("SpO2 %d%%", *obs.SpO2))
	}
	if respAbnormal {
		findings = append(findings, fmt.Sprintf("FR %d atti/min", *obs.RespRate))
	}

	warnings := []models.Warning{{
		Code:    models.WarningHighRiskBreathing,
		Section: models.SectionB,
		// l'ipossiemia misurata è trigger di classe rossa, la sola FR alterata no
		Critical: spo2Low,
		Message:  "Alto rischio respiratorio: " + strings.Join(findings, ", "),
	}}

	if w := r.classifyChestExam(obs.ChestExam); w != nil {
		warnings = append(warnings, *w)
	}

	return warnings
}

// classifyChestExam sotto-classifica il quadro dal testo libero del torace
func (r *BreathingRule) classifyChestExam(chestExam string) *models.Warning {
	text := strings.ToLower(chestExam)
	if text == "" {
		return nil
	}

	switch {
	case strings.Contains(text, "silenzio") || strings.Contains(text, "assen") || strings.Contains(text, "silent"):
		return &models.Warning{
			Code:     models.WarningSilentChest,
			Section:  models.SectionB,
			Critical: true,
			Message:  "Silenzio respiratorio: sospetto PNX iperteso / pre-arresto, allarme rosso",
		}
	case strings.Contains(text, "umid") || strings.Contains(text, "rantol") || strings.Contains(text, "crepit"):
		return &models.Warning{
			Code:    models.WarningWetSounds,
			Section: models.SectionB,
			Message: "Rumori umidi: sospetto edema polmonare (specie se iperteso) o polmonite",
		}
	case strings.Contains(text, "sibil") || strings.Contains(text, "fisch") || strings.Contains(text, "wheez"):
		return &models.Warning{
			Code:    models.WarningWheezing,
			Section: models.SectionB,
			Message: "Sibili espiratori: sospetto broncospasmo / asma",
		}
	}

	return nil
}
