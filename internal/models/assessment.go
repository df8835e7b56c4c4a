package models

// Urgency esito binario della classificazione deterministica
type Urgency string

const (
	UrgencyCritical Urgency = "CRITICAL"
	UrgencyStable   Urgency = "STABLE"
)

// TriageColor codice colore di rientro (raffinamento di presentazione
// dell'urgenza binaria, derivato dagli stessi trigger)
type TriageColor string

const (
	TriageRed    TriageColor = "ROSSO"
	TriageYellow TriageColor = "GIALLO"
	TriageGreen  TriageColor = "VERDE"
	TriageWhite  TriageColor = "BIANCO"
)

// Section sezione del protocollo XABCDE a cui appartiene un warning
type Section string

const (
	SectionX Section = "X" // emorragie
	SectionB Section = "B" // respiro
	SectionC Section = "C" // circolo
	SectionD Section = "D" // neurologico
)

// Codici warning, in ordine di priorità di valutazione
const (
	WarningHemorrhage        = "MASSIVE_HEMORRHAGE"
	WarningHighRiskBreathing = "HIGH_RISK_BREATHING"
	WarningSilentChest       = "SILENT_CHEST"
	WarningWetSounds         = "WET_SOUNDS"
	WarningWheezing          = "WHEEZING"
	WarningHighRiskCirc      = "HIGH_RISK_CIRCULATION"
	WarningModerateArrhythm  = "MODERATE_ARRHYTHMIA_RISK"
	WarningShock             = "SHOCK"
	WarningFASTPositive      = "FAST_POSITIVE"
	WarningReducedAVPU       = "REDUCED_CONSCIOUSNESS"
)

// Warning singolo rilievo della classificazione
type Warning struct {
	Code    string  `json:"code"`
	Section Section `json:"section"`
	// Critical marca i trigger di classe rossa (usato per il codice colore)
	Critical bool   `json:"critical"`
	Message  string `json:"message"`
}

// RiskAssessment esito della classificazione deterministica.
// Derivato, mai persistito: ricalcolato a ogni richiesta.
type RiskAssessment struct {
	Warnings []Warning `json:"warnings"`
	Urgency  Urgency   `json:"urgency"`
	Advisory string    `json:"advisory"`
}

// HasWarning vero se il codice è presente tra i rilievi
func (a *RiskAssessment) HasWarning(code string) bool {
	for _, w := range a.Warnings {
		if w.Code == code {
			return true
		}
	}
	return false
}
