package service

import (
	"context"

	"github.com/DarkArtek/elena-118/internal/gemini"
	"github.com/DarkArtek/elena-118/internal/models"
	"github.com/DarkArtek/elena-118/internal/prompt"
	"github.com/DarkArtek/elena-118/internal/triage"

	"go.uber.org/zap"
)

// Generator chiamata singola al servizio generativo
type Generator interface {
	Enabled() bool
	Generate(ctx context.Context, systemInstruction, userPrompt string) (*gemini.Result, error)
}

// MissionStore sink append-only del log missioni
type MissionStore interface {
	Insert(ctx context.Context, entry *models.MissionLogEntry) error
}

// AnalysisService pipeline di analisi clinica: classificazione deterministica
// sempre, narrativa generativa quando disponibile. Il classificatore è la
// base di verità e la modalità di ripiego: un errore del servizio generativo
// non arriva mai al chiamante come fallimento.
type AnalysisService struct {
	classifier *triage.Classifier
	generator  Generator
	missions   MissionStore
	logger     *zap.Logger
}

// NewAnalysisService crea la pipeline di analisi.
// missions può essere nil (nessun log missioni, es. nei test).
func NewAnalysisService(classifier *triage.Classifier, generator Generator, missions MissionStore, logger *zap.Logger) *AnalysisService {
	return &AnalysisService{
		classifier: classifier,
		generator:  generator,
		missions:   missions,
		logger:     logger,
	}
}

// Analyze classifica l'osservazione e produce il report testuale.
// Sequenza: classificazione locale, al più una chiamata generativa, una
// scrittura best-effort sul log missioni.
func (s *AnalysisService) Analyze(ctx context.Context, obs models.PatientObservation) string {
	assessment := s.classifier.Classify(obs)

	var aiText string
	switch {
	case !s.generator.Enabled():
		aiText = "🩺 ELENA OFFLINE — analisi deterministica locale.\n\n" + assessment.Advisory
	default:
		result, err := s.generator.Generate(ctx, prompt.SystemInstruction, prompt.BuildUserPrompt(obs))
		if err != nil {
			s.logger.Warn("Generation failed, falling back to offline advisory",
				zap.Error(err),
			)
			aiText = "⚠️ Elena Offline (Errore Backend). Procedi manualmente.\n\n" + assessment.Advisory
		} else {
			// anche un segnaposto (risposta bloccata, testo troncato) va
			// mostrato così com'è
			aiText = result.Text
		}
	}

	s.logMission(ctx, obs, aiText)

	return aiText
}

// logMission scrittura di audit: un errore viene loggato e basta, la
// risposta al soccorritore non deve mai dipendere dal log
func (s *AnalysisService) logMission(ctx context.Context, obs models.PatientObservation, aiText string) {
	if s.missions == nil {
		return
	}

	entry := &models.MissionLogEntry{
		Sex:         obs.Sex,
		Age:         obs.Age,
		AVPU:        string(obs.AVPU),
		SysBP:       obs.SysBP,
		DiaBP:       obs.DiaBP,
		HeartRate:   obs.HeartRate,
		SpO2:        obs.SpO2,
		RespRate:    obs.RespRate,
		FASTSummary: triage.FASTText(obs),
		ChestExam:   obs.ChestExam,
		Notes:       obs.Notes,
		AIText:      aiText,
	}

	if err := s.missions.Insert(ctx, entry); err != nil {
		s.logger.Warn("Failed to write mission log (non-blocking)",
			zap.Error(err),
		)
	}
}
