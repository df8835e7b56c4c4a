package triage

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/DarkArtek/elena-118/internal/models"
)

// buildAdvisory compone il referto testuale: quattro sezioni XABCDE (X, B, C,
// D) con i rilievi nella forma fissa, più il blocco SBAR per la centrale.
func buildAdvisory(obs models.PatientObservation, assessment models.RiskAssessment) string {
	var b strings.Builder

	color := Color(obs, assessment)
	fmt.Fprintf(&b, "PRIORITÀ SUGGERITA: %s (urgenza %s)\n\n", color, assessment.Urgency)

	b.WriteString("VALUTAZIONE XABCDE:\n")
	for _, section := range []models.Section{models.SectionX, models.SectionB, models.SectionC, models.SectionD} {
		fmt.Fprintf(&b, "[%s] %s\n", section, sectionLabel(section))
		found := false
		for _, w := range assessment.Warnings {
			if w.Section == section {
				fmt.Fprintf(&b, "  • %s\n", w.Message)
				found = true
			}
		}
		if !found {
			b.WriteString("  • Nessun rilievo\n")
		}
	}

	b.WriteString("\nSBAR PER CENTRALE:\n")
	fmt.Fprintf(&b, "S — Paziente %s, %s anni. Codice di rientro suggerito: %s.\n",
		OrDefault(obs.Sex, "N/D"), FmtOptInt(obs.Age, "?"), color)
	fmt.Fprintf(&b, "B — AVPU: %s. FAST (CPSS): %s.\n",
		OrDefault(string(obs.AVPU), "Non valutato"), FASTText(obs))
	fmt.Fprintf(&b, "A — PA %s/%s mmHg, FC %s bpm (toni aritmici: %s), SpO2 %s%%, FR %s atti/min. E.O. Torace: %s.\n",
		FmtOptInt(obs.SysBP, "?"), FmtOptInt(obs.DiaBP, "?"),
		FmtOptInt(obs.HeartRate, "?"), SiNo(obs.ArrhythmicTones),
		FmtOptInt(obs.SpO2, "?"), FmtOptInt(obs.RespRate, "?"),
		OrDefault(obs.ChestExam, "N/V"))
	b.WriteString("R — " + recommendation(assessment) + "\n")

	if obs.ResponderTriage != "" {
		fmt.Fprintf(&b, "\nTriage stimato dal soccorritore: %s\n", obs.ResponderTriage)
	}

	return b.String()
}

func sectionLabel(s models.Section) string {
	switch s {
	case models.SectionX:
		return "Emorragie"
	case models.SectionB:
		return "Respiro"
	case models.SectionC:
		return "Circolo"
	case models.SectionD:
		return "Neurologico"
	}
	return ""
}

func recommendation(assessment models.RiskAssessment) string {
	if assessment.Urgency == models.UrgencyCritical {
		return "Preallertare la centrale operativa, rivalutare i parametri ogni 5 minuti e anticipare il rientro."
	}
	return "Funzioni vitali stabili: completare la valutazione e rivalutare prima del trasporto."
}

// Helper di formato condivisi tra referto e prompt: la resa dei valori
// mancanti ("?", "N/D") e dei flag ("SI"/"NO") è identica nei due testi.

// FmtOptInt def quando il valore non è stato rilevato
func FmtOptInt(v *int, def string) string {
	if v == nil {
		return def
	}
	return strconv.Itoa(*v)
}

// OrDefault def quando la stringa è vuota
func OrDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

// SiNo resa testuale di un flag clinico
func SiNo(v bool) string {
	if v {
		return "SI"
	}
	return "NO"
}
