package model

// ReviewProvenance distinguishes the authoritative server review from the
// locally reconstructed approximation.
type ReviewProvenance string

const (
	ReviewProvenanceRemote ReviewProvenance = "REMOTE"
	ReviewProvenanceLocal  ReviewProvenance = "LOCAL"
)

// ReviewRecord is the post-submission disclosure for one question.
// Correct is nil when correctness is unknowable, which happens only in the
// local fallback for multiple choice: the correct option id is intentionally
// never shipped to the client before submission, so offline the record reads
// "not gradable" rather than a guess.
type ReviewRecord struct {
	QuestionID    string           `json:"question_id"`
	UserAnswer    string           `json:"user_answer"`
	Correct       *bool            `json:"correct"`
	CorrectAnswer string           `json:"correct_answer,omitempty"`
	PointsAwarded float64          `json:"points_awarded"`
	TimeSpentSec  int              `json:"time_spent_sec"`
	Provenance    ReviewProvenance `json:"provenance"`
}
