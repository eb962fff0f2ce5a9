package transcript

// Word is a timed token attributed to a speaker. A nil Speaker is a valid
// label of its own: diarization may leave tokens unattributed, and runs of
// unattributed words still group into a single segment.
type Word struct {
	Text    string  `json:"text"`
	Speaker *string `json:"speaker"`
	Start   float64 `json:"start"`
	End     float64 `json:"end"`
}

// Segment is a contiguous run of words spoken by one speaker. AIProbability
// is populated by the scoring stage and stays nil when scoring was skipped
// or failed for this segment.
type Segment struct {
	Speaker       *string  `json:"speaker"`
	Text          string   `json:"text"`
	Start         float64  `json:"start"`
	End           float64  `json:"end"`
	AIProbability *float64 `json:"aiProbability"`
}

// Transcript is the reconstructed transcription for one video.
type Transcript struct {
	Language string    `json:"language"`
	Text     string    `json:"text"`
	Segments []Segment `json:"segments"`
}
