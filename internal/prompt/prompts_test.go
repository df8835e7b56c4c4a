package prompt

import (
	"testing"

	"github.com/DarkArtek/elena-118/internal/models"

	"github.com/stretchr/testify/assert"
)

func intPtr(v int) *int {
	return &v
}

func TestBuildUserPrompt_CompleteObservation(t *testing.T) {
	obs := models.PatientObservation{
		Sex:             "M",
		Age:             intPtr(68),
		AVPU:            models.AVPUAlert,
		FASTFace:        true,
		FASTTime:        "09:15",
		SysBP:           intPtr(150),
		DiaBP:           intPtr(95),
		HeartRate:       intPtr(110),
		ArrhythmicTones: true,
		SpO2:            intPtr(94),
		RespRate:        intPtr(20),
		ChestExam:       "murmure presente bilateralmente",
		Notes:           "riferita cefalea improvvisa",
		ResponderTriage: "GIALLO",
	}

	p := BuildUserPrompt(obs)

	assert.Contains(t, p, "SOCIO: Ciao Elena.")
	assert.Contains(t, p, "Paziente: M, 68 anni.")
	assert.Contains(t, p, "AVPU: A")
	assert.Contains(t, p, "POSITIVO a: Faccia (Asimmetria). Orario LKW: 09:15")
	assert.Contains(t, p, "PA: 150/95 mmHg")
	assert.Contains(t, p, "FC: 110 bpm (Toni aritmici: SI)")
	assert.Contains(t, p, "SpO2: 94%")
	assert.Contains(t, p, "E.O. Torace: murmure presente bilateralmente")
	assert.Contains(t, p, "riferita cefalea improvvisa")
	assert.Contains(t, p, "TRIAGE STIMATO DAL SOCCORRITORE: GIALLO")
	assert.Contains(t, p, "protocollo XABCDE")
}

func TestBuildUserPrompt_MissingFieldsNeverZero(t *testing.T) {
	p := BuildUserPrompt(models.PatientObservation{})

	assert.Contains(t, p, "Paziente: N/D, N/D anni.")
	assert.Contains(t, p, "AVPU: Non valutato")
	assert.Contains(t, p, "FAST (CPSS): Negativo")
	assert.Contains(t, p, "PA: ?/? mmHg")
	assert.Contains(t, p, "SpO2: ?%")
	assert.Contains(t, p, "Nessuna nota.")
	assert.NotContains(t, p, "SpO2: 0%")
}

func TestBuildDrugPrompt_WithRecord(t *testing.T) {
	record := &models.DrugRecord{
		AIC:              "012345678",
		Name:             "TACHIPIRINA 500MG",
		ActiveIngredient: "PARACETAMOLO",
		Manufacturer:     "ANGELINI",
	}

	p := BuildDrugPrompt("tachipirina", record)

	assert.Contains(t, p, `"tachipirina"`)
	assert.Contains(t, p, "TACHIPIRINA 500MG")
	assert.Contains(t, p, "PARACETAMOLO")
	assert.Contains(t, p, "ANGELINI")
}

func TestBuildDrugPrompt_NoRecord(t *testing.T) {
	p := BuildDrugPrompt("xyz", nil)

	assert.Contains(t, p, `"xyz"`)
	assert.Contains(t, p, "non risulta nell'anagrafica")
}
