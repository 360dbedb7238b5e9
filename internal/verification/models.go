package verification

import "facegate/internal/verification/recognizer"

// Candidate and Face are owned by the recognizer client; the gateway's
// decision policy speaks in the same terms, so they are aliased here.
type (
	Candidate = recognizer.Candidate
	Face      = recognizer.Face
)

// Result is an accepted or rejected verification decision. Confidence is the
// best candidate's similarity, returned verbatim; Matched reports whether
// the best candidate equals the claimed identity at or above the threshold.
type Result struct {
	SubjectID  string  `json:"subject_id"`
	Matched    bool    `json:"matched"`
	Confidence float64 `json:"confidence"`
	Method     string  `json:"method"`
}

// MethodFaceRecognition tags check events verified through the recognizer.
const MethodFaceRecognition = "face-recognition"
