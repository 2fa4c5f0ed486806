package grading

import "math"

// Option is one answer choice of a multiple-choice question.
type Option struct {
	Text      string `json:"text"`
	IsCorrect bool   `json:"isCorrect"`
}

// Q is a minimal view of a question needed for grading.
// Keep this in sync with whatever fields your store uses.
type Q struct {
	ID      string
	Options []Option
}

// Input carries everything Grade needs. QuestionIDs is the test's question
// list in display order; Bank maps question id to its definition and may be
// missing entries for questions deleted after the test was assembled.
// Submission maps question id to the submitted option text.
type Input struct {
	QuestionIDs  []string
	Bank         map[string]Q
	Submission   map[string]string
	TotalScore   int
	PassingScore int
}

// Answer is the per-question breakdown of one graded attempt.
type Answer struct {
	QuestionID     string  `json:"question"`
	SelectedOption *string `json:"selectedOption"`
	IsCorrect      bool    `json:"isCorrect"`
}

// Result is the outcome of grading one submission.
type Result struct {
	Score          int      `json:"score"`
	CorrectAnswers int      `json:"correctAnswers"`
	TotalQuestions int      `json:"totalQuestions"`
	IsPassed       bool     `json:"isPassed"`
	Answers        []Answer `json:"answers"`
}

// CorrectOption returns the single option marked correct. The second return
// is false when zero or more than one option carries the flag; such a
// question cannot be answered correctly by any submission.
func CorrectOption(opts []Option) (Option, bool) {
	var found Option
	n := 0
	for _, o := range opts {
		if o.IsCorrect {
			found = o
			n++
		}
	}
	if n != 1 {
		return Option{}, false
	}
	return found, true
}

// Grade scores a submission against a test definition. It is a pure function
// of its input and never fails: a question it cannot judge (missing from the
// bank, zero or multiple correct options) counts as not correct but still
// contributes to TotalQuestions. Matching is exact and case-sensitive, no
// normalization, no partial credit.
func Grade(in Input) Result {
	res := Result{
		TotalQuestions: len(in.QuestionIDs),
		Answers:        make([]Answer, 0, len(in.QuestionIDs)),
	}
	for _, qid := range in.QuestionIDs {
		ans := Answer{QuestionID: qid}
		if text, ok := in.Submission[qid]; ok {
			t := text
			ans.SelectedOption = &t
		}
		if q, ok := in.Bank[qid]; ok {
			if key, keyOK := CorrectOption(q.Options); keyOK {
				if ans.SelectedOption != nil && *ans.SelectedOption == key.Text {
					ans.IsCorrect = true
					res.CorrectAnswers++
				}
			}
		}
		res.Answers = append(res.Answers, ans)
	}
	if res.TotalQuestions > 0 {
		ratio := float64(res.CorrectAnswers) / float64(res.TotalQuestions)
		res.Score = int(math.Round(ratio * float64(in.TotalScore)))
	}
	res.IsPassed = res.Score >= in.PassingScore
	return res
}
