package models

// AVPU scala di coscienza: Alert, Voice, Pain, Unresponsive
type AVPU string

const (
	AVPUAlert        AVPU = "A"
	AVPUVoice        AVPU = "V"
	AVPUPain         AVPU = "P"
	AVPUUnresponsive AVPU = "U"
)

// PatientObservation snapshot di una valutazione sul territorio.
// I campi numerici sono puntatori: nil = non rilevato, mai da leggere come zero
// (una SpO2 assente non è una SpO2 a 0%).
type PatientObservation struct {
	Sex string `json:"sesso"` // "M", "F" o vuoto
	Age *int   `json:"eta,omitempty"`

	// Valutazione neurologica
	AVPU       AVPU   `json:"avpu,omitempty"` // vuoto = non valutato
	FASTFace   bool   `json:"fast_face"`      // asimmetria facciale
	FASTArm    bool   `json:"fast_arm"`       // caduta del braccio
	FASTSpeech bool   `json:"fast_speech"`    // disartria
	FASTTime   string `json:"fast_time,omitempty"` // orario LKW (last known well)

	// Parametri B & C
	SysBP           *int   `json:"pa_sys,omitempty"`
	DiaBP           *int   `json:"pa_dia,omitempty"`
	HeartRate       *int   `json:"fc,omitempty"`
	ArrhythmicTones bool   `json:"toni_aritmici"`
	SpO2            *int   `json:"spo2,omitempty"`
	RespRate        *int   `json:"fr,omitempty"`
	ChestExam       string `json:"eo_torace,omitempty"` // esame obiettivo torace

	Notes string `json:"note,omitempty"`

	// Codice colore assegnato dal soccorritore (facoltativo)
	ResponderTriage string `json:"triage,omitempty"`
}

// FASTPositive vero se almeno un segno FAST/CPSS è presente
func (o *PatientObservation) FASTPositive() bool {
	return o.FASTFace || o.FASTArm || o.FASTSpeech
}
