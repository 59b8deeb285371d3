// Package grading evaluates a student's submitted answers against an
// exam's question bank. Evaluation is pure: same inputs, same output.
package grading

import (
	"math"
	"strings"
)

// Question is a minimal view of a question needed for grading.
// Keep this in sync with whatever fields your store uses.
type Question struct {
	ID            string
	CorrectAnswer string
	Marks         float64
}

// Answer is one raw student answer as received from the client.
type Answer struct {
	QuestionID string `json:"questionId"`
	Answer     string `json:"answer"`
}

// EvaluatedAnswer carries the grading outcome for one answer. The
// correct answer is snapshotted here so later edits to the question
// never change a historical grade.
type EvaluatedAnswer struct {
	QuestionID    string  `json:"questionId"`
	Answer        string  `json:"answer"`
	CorrectAnswer string  `json:"correctAnswer"`
	IsCorrect     bool    `json:"isCorrect"`
	MarksObtained float64 `json:"marksObtained"`
	TotalMarks    float64 `json:"totalMarks"`
}

// Evaluation is the aggregate result for a whole submission.
type Evaluation struct {
	Score      float64           `json:"score"`
	TotalMarks float64           `json:"totalMarks"`
	Percentage float64           `json:"percentage"`
	Answers    []EvaluatedAnswer `json:"evaluatedAnswers"`
}

// Evaluate grades answers against questions. Answers referencing a
// question that is not in the set are skipped: they contribute to
// neither score nor total marks. A wrong answer is never an error.
func Evaluate(answers []Answer, questions []Question) Evaluation {
	byID := make(map[string]Question, len(questions))
	for _, q := range questions {
		byID[q.ID] = q
	}

	ev := Evaluation{Answers: make([]EvaluatedAnswer, 0, len(answers))}
	for _, a := range answers {
		q, ok := byID[a.QuestionID]
		if !ok {
			continue
		}
		ev.TotalMarks += q.Marks

		correct := Matches(a.Answer, q.CorrectAnswer)
		obtained := 0.0
		if correct {
			obtained = q.Marks
			ev.Score += q.Marks
		}
		ev.Answers = append(ev.Answers, EvaluatedAnswer{
			QuestionID:    a.QuestionID,
			Answer:        a.Answer,
			CorrectAnswer: q.CorrectAnswer,
			IsCorrect:     correct,
			MarksObtained: obtained,
			TotalMarks:    q.Marks,
		})
	}

	if ev.TotalMarks > 0 {
		ev.Percentage = Round2(100 * ev.Score / ev.TotalMarks)
	}
	return ev
}

// Matches reports whether a submitted answer equals the correct answer
// after trimming surrounding whitespace, ignoring case. Exact match
// only: no partial credit, no numeric tolerance, no fuzzy matching.
func Matches(submitted, correct string) bool {
	return strings.EqualFold(strings.TrimSpace(submitted), strings.TrimSpace(correct))
}

// Round2 rounds to two decimal places on the scaled integer, avoiding
// float drift in the common cases.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
