package practice

import (
	"time"

	"github.com/edulingo/practice-engine/internal/grading"
)

// Question types and difficulty levels.
const (
	TypeMultipleChoice = "multiple_choice"
	TypeFillInBlank    = "fill_in_blank"
	TypeListening      = "listening"

	LevelEasy   = "easy"
	LevelMedium = "medium"
	LevelHard   = "hard"
)

// Question is one bank entry. Options carry the answer key; only review
// payloads may expose it (see AttemptQuestion for the in-progress view).
type Question struct {
	ID          string           `json:"id"`
	Content     string           `json:"content"`
	Options     []grading.Option `json:"options"`
	Explanation string           `json:"explanation,omitempty"`
	Type        string           `json:"type"`
	Level       string           `json:"level"`
	AudioURL    string           `json:"audioUrl,omitempty"` // listening questions
	Tags        []string         `json:"tags,omitempty"`
	CreatedAt   int64            `json:"createdAt,omitempty"`
}

// Test is a curated, ordered subset of the question bank with scoring
// parameters. QuestionIDs is display order.
type Test struct {
	ID           string   `json:"id"`
	Title        string   `json:"title"`
	Description  string   `json:"description,omitempty"`
	CategoryID   string   `json:"category,omitempty"`
	QuestionIDs  []string `json:"questions"`
	Duration     int      `json:"duration"` // minutes
	TotalScore   int      `json:"totalScore"`
	PassingScore int      `json:"passingScore"`
	IsActive     bool     `json:"isActive"`
	IsFree       bool     `json:"isFree"`
	CreatedAt    int64    `json:"createdAt,omitempty"`
}

// TestSummary is the listing projection of a Test.
type TestSummary struct {
	ID            string `json:"id"`
	Title         string `json:"title"`
	Description   string `json:"description,omitempty"`
	CategoryID    string `json:"category,omitempty"`
	Duration      int    `json:"duration"`
	TotalScore    int    `json:"totalScore"`
	PassingScore  int    `json:"passingScore"`
	IsFree        bool   `json:"isFree"`
	QuestionCount int    `json:"questionCount"`
}

// Result is the immutable receipt of one attempt. Records are written once
// and never updated; repeated attempts each get their own record.
type Result struct {
	ID             string           `json:"id"`
	UserID         string           `json:"user"`
	TestID         string           `json:"test"`
	Score          int              `json:"score"`
	CorrectAnswers int              `json:"correctAnswers"`
	TotalQuestions int              `json:"totalQuestions"`
	Answers        []grading.Answer `json:"answers"`
	IsPassed       bool             `json:"isPassed"`
	CompletedAt    time.Time        `json:"completedAt"`
}

// AttemptOption is an answer choice as shown to a test-taker: text only,
// never the correct flag.
type AttemptOption struct {
	Text string `json:"text"`
}

// AttemptQuestion is the student-safe view of a question served at attempt
// start. Explanation stays out too; it belongs to post-submission review.
type AttemptQuestion struct {
	ID       string          `json:"id"`
	Content  string          `json:"content"`
	Type     string          `json:"type"`
	Level    string          `json:"level"`
	AudioURL string          `json:"audioUrl,omitempty"`
	Options  []AttemptOption `json:"options"`
}

// AttemptView is a test with its question list expanded for the taker.
type AttemptView struct {
	Test      Test              `json:"test"`
	Questions []AttemptQuestion `json:"questions"`
}

// ResultReview pairs a result record with the full questions (answer keys
// and explanations included) for the post-submission review page.
type ResultReview struct {
	Result    Result     `json:"result"`
	Questions []Question `json:"questions"`
}

// Principal is the authenticated actor making a request. A nil *Principal
// means no authentication was presented.
type Principal struct {
	ID   string
	Role string
}

// IsAdmin reports whether the principal bypasses enrollment checks.
func (p *Principal) IsAdmin() bool { return p != nil && p.Role == "admin" }

func attemptQuestion(q Question) AttemptQuestion {
	out := AttemptQuestion{
		ID:       q.ID,
		Content:  q.Content,
		Type:     q.Type,
		Level:    q.Level,
		AudioURL: q.AudioURL,
		Options:  make([]AttemptOption, 0, len(q.Options)),
	}
	for _, o := range q.Options {
		out.Options = append(out.Options, AttemptOption{Text: o.Text})
	}
	return out
}
