package models

// NutritionalScanResponse combines the three stage results of a nutritional scan
type NutritionalScanResponse struct {
	SimplifiedReport map[string]any `json:"simplified_report"`
	FoodAnalysis     map[string]any `json:"food_analysis"`
	Comparison       map[string]any `json:"comparison"`
}

// SimplifyResponse carries either the structured summary or, when the model's
// answer could not be parsed, its raw text. Exactly one of the two is set.
type SimplifyResponse struct {
	OriginalText        string  `json:"original_text"`
	SimplifiedData      any     `json:"simplified_data,omitempty"`
	SimplifiedReportRaw *string `json:"simplified_report_raw,omitempty"`
}

// Medication is one prescribed drug with a patient-facing explanation
type Medication struct {
	Name        string `json:"name"`
	Explanation string `json:"explanation"`
	Link        string `json:"link"`
}

// PrescriptionResponse is the transcription plus the medications found in it
type PrescriptionResponse struct {
	Transcription string       `json:"transcription"`
	Medications   []Medication `json:"medications"`
}

// ChatResponse answers a question about a report
type ChatResponse struct {
	Answer string `json:"answer"`
}

// Hospital is a suggested facility
type Hospital struct {
	Name    string `json:"name"`
	Link    string `json:"link"`
	Address string `json:"address"`
	Note    string `json:"note,omitempty"`
}

// HospitalResponse lists hospital suggestions
type HospitalResponse struct {
	Hospitals []Hospital `json:"hospitals"`
}
