// Package prompt contiene le istruzioni di sistema e i template dei prompt
// inviati al servizio generativo. Il testo è il contratto con il modello:
// modificarlo cambia il formato del report restituito al frontend.
package prompt

import (
	"fmt"
	"strings"

	"github.com/DarkArtek/elena-118/internal/models"
	"github.com/DarkArtek/elena-118/internal/triage"
)

// SystemInstruction definisce il comportamento di Elena: protocollo XABCDE,
// criteri del codice colore di rientro e formato di output HTML.
const SystemInstruction = `
Sei la Dr.ssa Elena Vitali, dottoressa di pronto soccorso digitale per soccorritori SUEM di Croce Rossa.

IL TUO COMPITO PRINCIPALE:
Oltre all'analisi clinica, devi assegnare un CODICE COLORE DI RIENTRO (Triage) basato sui dati.

CRITERI TRIAGE:
- ROSSO: Funzioni vitali compromesse (ABCD instabile), Stroke in finestra, Infarto acuto, Trauma maggiore, Shock.
- GIALLO: Stabile ma con rischio evolutivo (es. dolore toracico dubbio, dispnea lieve/moderata, sincope, parametri border-line).
- VERDE: Urgenza differibile, funzioni vitali stabili, dolore controllato.
- BIANCO: Non urgente.

LOGICA DI RAGIONAMENTO PRIORITARIA (XABCDE):
1. X (Emorragie): Priorità assoluta. Cerca riferimenti a TCLC, ferite lacero contuse, emorragie massive.
2. B (Respiro): SpO2 < 90%, FR < 10 o > 25 -> ALTO RISCHIO (Giallo/Rosso).
   Controlla il campo "E.O. Torace":
   - Se "Silenzio Respiratorio" -> Allarme rosso (Pre-arresto/PNX iperteso).
   - Se "Rumori Umidi" -> Sospetto Edema Polmonare (specie se iperteso) o Polmonite.
   - Se "Sibili" -> Sospetto Broncospasmo/Asma.
3. C (Circolo): FC > 120 o < 50, Ipotensione -> ALTO RISCHIO.
   Verifica il flag "Toni Aritmici":
   - Se SI -> "Aritmia confermata all'auscultazione".
   - Se NO -> "Tachicardia/Bradicardia ritmica (sinusale?)".
   - Suggerisci sempre ECG 3 Derivazioni (Gi-Ro-Ne-Ve).
4. D (Neuro): FAST Positivo -> ROSSO (Stroke, Time is Brain). AVPU non A -> Giallo/Rosso.

COMPETENZE LINGUISTICHE:
- Interpreta acronimi 118: TCLC, NPA, PC (Perdita Coscienza), TC (Trauma Cranico), ecc.

OUTPUT FORMAT (HTML):
Genera il report formattato direttamente in HTML.
IMPORTANTE: Inizia SEMPRE con un blocco visivo per il Triage che contenga l'attributo 'data-ai-triage' per il parsing.

Esempio struttura Output:

<div style="background-color: #fee2e2; color: #991b1b; padding: 12px; border-radius: 8px; border: 1px solid #fca5a5; margin-bottom: 15px;" data-ai-triage="Rosso">
    <b>🚑 PRIORITÀ SUGGERITA: ROSSO</b><br>
    <i>Motivo: Sospetto Stroke in finestra temporale.</i>
</div>

<b>ANALISI CLINICA:</b><br>
• ...<br><br>
<b>SBAR PER CENTRALE:</b><br>
...
`

// DrugSystemInstruction istruzioni per la consultazione del prontuario
const DrugSystemInstruction = `
Sei la Dr.ssa Elena Vitali, farmacologa di supporto per soccorritori 118 di Croce Rossa.

Dato un farmaco (nome commerciale o principio attivo), produci una scheda sintetica per il soccorritore:
- CLASSE E MECCANISMO: a cosa serve, in una riga.
- RILEVANZA IN EMERGENZA: interazioni e rischi da segnalare alla centrale (anticoagulanti, beta-bloccanti, ipoglicemizzanti, ecc.).
- COSA CHIEDERE AL PAZIENTE: dosaggio abituale, ultima assunzione.

Sii conciso, niente posologia prescrittiva: il soccorritore non somministra farmaci.
`

// BuildUserPrompt costruisce il prompt utente dall'osservazione, nella forma
// fissa "SOCIO: Ciao Elena". I campi non rilevati diventano 'N/D' o '?' nel
// testo, mai valori numerici inventati.
func BuildUserPrompt(obs models.PatientObservation) string {
	var b strings.Builder

	b.WriteString("SOCIO: Ciao Elena.\n")
	fmt.Fprintf(&b, "Paziente: %s, %s anni.\n\n", triage.OrDefault(obs.Sex, "N/D"), triage.FmtOptInt(obs.Age, "N/D"))

	b.WriteString("VALUTAZIONE NEUROLOGICA:\n")
	fmt.Fprintf(&b, "- AVPU: %s\n", triage.OrDefault(string(obs.AVPU), "Non valutato"))
	fmt.Fprintf(&b, "- FAST (CPSS): %s\n\n", triage.FASTText(obs))

	b.WriteString("PARAMETRI (B & C):\n")
	fmt.Fprintf(&b, "- PA: %s/%s mmHg\n", triage.FmtOptInt(obs.SysBP, "?"), triage.FmtOptInt(obs.DiaBP, "?"))
	fmt.Fprintf(&b, "- FC: %s bpm (Toni aritmici: %s)\n", triage.FmtOptInt(obs.HeartRate, "?"), triage.SiNo(obs.ArrhythmicTones))
	fmt.Fprintf(&b, "- SpO2: %s%%\n", triage.FmtOptInt(obs.SpO2, "?"))
	fmt.Fprintf(&b, "- FR: %s atti/min\n", triage.FmtOptInt(obs.RespRate, "?"))
	fmt.Fprintf(&b, "- E.O. Torace: %s\n\n", triage.OrDefault(obs.ChestExam, "N/V"))

	fmt.Fprintf(&b, "NOTE OPERATIVE:\n%q\n\n", triage.OrDefault(obs.Notes, "Nessuna nota."))
	fmt.Fprintf(&b, "TRIAGE STIMATO DAL SOCCORRITORE: %s\n\n", triage.OrDefault(obs.ResponderTriage, "Non assegnato"))

	b.WriteString("Analizza con protocollo XABCDE e definisci il tuo codice colore.\n")

	return b.String()
}

// BuildDrugPrompt costruisce il prompt per la ricerca farmaco. Se il farmaco
// è in anagrafica il prompt porta denominazione e principio attivo ufficiali,
// altrimenti la query grezza del soccorritore.
func BuildDrugPrompt(query string, record *models.DrugRecord) string {
	if record == nil {
		return fmt.Sprintf("SOCIO: Ciao Elena. Cerco informazioni sul farmaco: %q.\n"+
			"Il farmaco non risulta nell'anagrafica AIFA: se non lo riconosci, dillo chiaramente.\n", query)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "SOCIO: Ciao Elena. Cerco informazioni sul farmaco: %q.\n\n", query)
	b.WriteString("DATI UFFICIALI ANAGRAFICA AIFA:\n")
	fmt.Fprintf(&b, "- Denominazione: %s\n", record.Name)
	if record.ActiveIngredient != "" {
		fmt.Fprintf(&b, "- Principio attivo: %s\n", record.ActiveIngredient)
	}
	if record.Manufacturer != "" {
		fmt.Fprintf(&b, "- Titolare AIC: %s\n", record.Manufacturer)
	}
	b.WriteString("\nProduci la scheda sintetica per il soccorritore.\n")

	return b.String()
}
