package triage

import (
	"github.com/DarkArtek/elena-118/internal/models"

	"go.uber.org/zap"
)

// Classifier classificatore di rischio XABCDE deterministico.
// Nessuna chiamata esterna, nessun side effect: stesso input, stesso esito.
// Usato sia come modalità offline sia come base di verità su cui il modello
// generativo costruisce la narrativa.
type Classifier struct {
	logger *zap.Logger

	// regole in ordine fisso di priorità
	hemorrhage  *HemorrhageRule  // X: emorragie
	breathing   *BreathingRule   // B: respiro
	circulation *CirculationRule // C: circolo
	disability  *DisabilityRule  // D: neurologico
}

// NewClassifier crea il classificatore
func NewClassifier(logger *zap.Logger) *Classifier {
	return &Classifier{
		logger:      logger,
		hemorrhage:  NewHemorrhageRule(logger),
		breathing:   NewBreathingRule(logger),
		circulation: NewCirculationRule(logger),
		disability:  NewDisabilityRule(logger),
	}
}

// Classify valuta l'osservazione con le regole X, B, C, D in quest'ordine.
// Le regole accumulano: nessun warning esclude i successivi.
func (c *Classifier) Classify(obs models.PatientObservation) models.RiskAssessment {
	var warnings []models.Warning

	warnings = append(warnings, c.hemorrhage.Evaluate(obs)...)
	warnings = append(warnings, c.breathing.Evaluate(obs)...)
	warnings = append(warnings, c.circulation.Evaluate(obs)...)
	warnings = append(warnings, c.disability.Evaluate(obs)...)

	urgency := models.UrgencyStable
	if len(warnings) > 0 {
		urgency = models.UrgencyCritical
	}

	assessment := models.RiskAssessment{
		Warnings: warnings,
		Urgency:  urgency,
	}
	assessment.Advisory = buildAdvisory(obs, assessment)

	c.logger.Debug("Classification completed",
		zap.Int("warning_count", len(warnings)),
		zap.String("urgency", string(urgency)),
	)

	return assessment
}

// Color deriva il codice colore di rientro dagli stessi trigger
// dell'urgenza binaria: trigger di classe rossa -> ROSSO, altri rilievi ->
// GIALLO, nessun rilievo -> VERDE (BIANCO se non c'è nemmeno una nota o un
// reperto toracico riferito).
func Color(obs models.PatientObservation, assessment models.RiskAssessment) models.TriageColor {
	for _, w := range assessment.Warnings {
		if w.Critical {
			return models.TriageRed
		}
	}
	if len(assessment.Warnings) > 0 {
		return models.TriageYellow
	}
	if obs.Notes == "" && obs.ChestExam == "" {
		return models.TriageWhite
	}
	return models.TriageGreen
}
