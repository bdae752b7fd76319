package applications

import (
	"time"

	"application-tracker/internal/uploads"
)

// Known status labels. The set is open: operators may record any non-empty label.
const (
	StatusApplied     = "Applied"
	StatusUnderReview = "Under Review"
	StatusInterview   = "Interview"
	StatusOffer       = "Offer"
	StatusHired       = "Hired"
	StatusRejected    = "Rejected"
)

// KnownStatuses lists the labels the portal knows how to display.
var KnownStatuses = []string{
	StatusApplied,
	StatusUnderReview,
	StatusInterview,
	StatusOffer,
	StatusHired,
	StatusRejected,
}

// HistoryEntry is one status change.
type HistoryEntry struct {
	Status string    `json:"status"`
	At     time.Time `json:"at"`
}

// QuizDetail is one answered question as reported by the quiz widget.
type QuizDetail struct {
	Q           string   `json:"q"`
	Choices     []string `json:"choices"`
	Chosen      *int     `json:"chosen"`
	Correct     int      `json:"correct"`
	Explanation string   `json:"explanation,omitempty"`
}

// QuizResult is the optional screening quiz summary attached to a submission.
type QuizResult struct {
	Role        string       `json:"role"`
	Percent     float64      `json:"percent"`
	Correct     int          `json:"correct"`
	Total       int          `json:"total"`
	Details     []QuizDetail `json:"details"`
	AttemptedAt string       `json:"attemptedAt,omitempty"`
}

// Record is a persisted application. History is append-only and its last
// entry always matches Status.
type Record struct {
	Token       string         `json:"token"`
	Name        string         `json:"name"`
	Email       string         `json:"email"`
	Role        string         `json:"role"`
	Skills      string         `json:"skills"`
	Message     string         `json:"message"`
	ResumeRef   *string        `json:"resumeRef"`
	Quiz        *QuizResult    `json:"quiz"`
	Status      string         `json:"status"`
	History     []HistoryEntry `json:"history"`
	SubmittedAt time.Time      `json:"submittedAt"`
}

// Clone returns a deep copy so callers never share slices or pointers with a store.
func (r Record) Clone() Record {
	out := r
	if r.ResumeRef != nil {
		ref := *r.ResumeRef
		out.ResumeRef = &ref
	}
	if r.Quiz != nil {
		quiz := *r.Quiz
		if r.Quiz.Details != nil {
			quiz.Details = make([]QuizDetail, len(r.Quiz.Details))
			for i, d := range r.Quiz.Details {
				if d.Choices != nil {
					d.Choices = append([]string(nil), d.Choices...)
				}
				if d.Chosen != nil {
					chosen := *d.Chosen
					d.Chosen = &chosen
				}
				quiz.Details[i] = d
			}
		}
		out.Quiz = &quiz
	}
	if r.History != nil {
		out.History = append([]HistoryEntry(nil), r.History...)
	}
	return out
}

// Submission is the raw input of a new application.
type Submission struct {
	Name       string
	Email      string
	Role       string
	Skills     string
	Message    string
	Quiz       *QuizResult
	Attachment *uploads.Attachment
}

// Receipt is returned to the applicant after a successful submission.
type Receipt struct {
	Token       string `json:"token"`
	TrackingURL string `json:"url"`
}
