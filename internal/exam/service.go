package exam

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/examstack/examstack/internal/grading"
)

// EventLogger records audit events. Satisfied by *syncx.EventRepo; nil
// disables logging.
type EventLogger interface {
	Append(ctx context.Context, typ, key, dataJSON string) error
}

// Service orchestrates the flows that touch more than one table:
// submit-and-grade, result detail joins, and exam deletion with its
// referential cleanup.
type Service struct {
	store  Store
	events EventLogger
	now    func() time.Time
}

func NewService(store Store, events EventLogger) *Service {
	return &Service{store: store, events: events, now: time.Now}
}

type SubmitRequest struct {
	ExamID    string           `json:"examId"`
	StudentID string           `json:"studentId"`
	Answers   []grading.Answer `json:"answers"`
	TimeTaken int              `json:"timeTaken"` // minutes
}

type SubmitResult struct {
	Submission Submission         `json:"submission"`
	IsPassed   bool               `json:"isPassed"`
	Result     string             `json:"result"` // "PASS" | "FAIL"
	Evaluation grading.Evaluation `json:"evaluation"`
}

// SubmitAndGrade evaluates a submission against the exam's current
// question bank and persists the result atomically with its verdict.
// Grading is synchronous; the stored submission is already evaluated.
func (s *Service) SubmitAndGrade(ctx context.Context, req SubmitRequest) (SubmitResult, error) {
	ex, err := s.store.GetExam(ctx, req.ExamID)
	if err != nil {
		return SubmitResult{}, err
	}
	questions, err := s.store.QuestionsByExam(ctx, req.ExamID)
	if err != nil {
		return SubmitResult{}, err
	}

	bank := make([]grading.Question, len(questions))
	for i, q := range questions {
		bank[i] = grading.Question{ID: q.ID, CorrectAnswer: q.CorrectAnswer, Marks: q.Marks}
	}
	ev := grading.Evaluate(req.Answers, bank)

	// Pass/fail compares the raw score against passingMarks, not the
	// percentage. An exam configured with passingMarks=50 means 50
	// marks, however many the bank totals.
	isPassed := ev.Score >= float64(ex.PassingMarks)
	verdict := "FAIL"
	if isPassed {
		verdict = "PASS"
	}

	now := s.now().Unix()
	sub := Submission{
		ID:          uuid.NewString(),
		ExamID:      req.ExamID,
		StudentID:   req.StudentID,
		Answers:     toAnswers(ev.Answers),
		Score:       ev.Score,
		TotalMarks:  ev.TotalMarks,
		Percentage:  ev.Percentage,
		Status:      StatusEvaluated,
		StartedAt:   now,
		SubmittedAt: now,
		TimeTaken:   req.TimeTaken,
	}
	if err := s.store.CreateSubmission(ctx, sub); err != nil {
		return SubmitResult{}, err
	}

	s.log(ctx, "SubmissionEvaluated", sub.ID, map[string]any{
		"examId": req.ExamID, "studentId": req.StudentID,
		"score": ev.Score, "result": verdict,
	})
	return SubmitResult{Submission: sub, IsPassed: isPassed, Result: verdict, Evaluation: ev}, nil
}

// SubmissionDetail loads a submission and joins each answer back to its
// question. Deleted questions degrade to "Unknown" placeholders rather
// than failing the view; the snapshotted marks stay authoritative.
func (s *Service) SubmissionDetail(ctx context.Context, id string) (Submission, []DetailedAnswer, error) {
	sub, err := s.store.GetSubmission(ctx, id)
	if err != nil {
		return Submission{}, nil, err
	}

	details := make([]DetailedAnswer, 0, len(sub.Answers))
	for _, a := range sub.Answers {
		d := DetailedAnswer{
			QuestionID:    a.QuestionID,
			QuestionText:  "Unknown",
			QuestionType:  "Unknown",
			StudentAnswer: a.Answer,
			CorrectAnswer: a.CorrectAnswer,
			IsCorrect:     a.IsCorrect,
			MarksObtained: a.MarksObtained,
			TotalMarks:    a.TotalMarks,
		}
		q, err := s.store.GetQuestion(ctx, a.QuestionID)
		switch {
		case err == nil:
			d.QuestionText = q.QuestionText
			d.QuestionType = q.QuestionType
		case errors.Is(err, ErrQuestionNotFound):
			// keep placeholders
		default:
			return Submission{}, nil, err
		}
		details = append(details, d)
	}
	return sub, details, nil
}

// DeleteExam removes the exam together with its questions and
// submissions. Cleanup runs inside the store so a half-deleted exam
// cannot be observed.
func (s *Service) DeleteExam(ctx context.Context, id string) error {
	if err := s.store.DeleteExam(ctx, id); err != nil {
		return err
	}
	s.log(ctx, "ExamDeleted", id, map[string]any{"examId": id})
	return nil
}

func (s *Service) log(ctx context.Context, typ, key string, data map[string]any) {
	if s.events == nil {
		return
	}
	payload, err := json.Marshal(data)
	if err != nil {
		return
	}
	// Audit logging is best effort; it never fails the request.
	_ = s.events.Append(ctx, typ, key, string(payload))
}

func toAnswers(evaluated []grading.EvaluatedAnswer) []Answer {
	out := make([]Answer, len(evaluated))
	for i, e := range evaluated {
		out[i] = Answer{
			QuestionID:    e.QuestionID,
			Answer:        e.Answer,
			CorrectAnswer: e.CorrectAnswer,
			IsCorrect:     e.IsCorrect,
			MarksObtained: e.MarksObtained,
			TotalMarks:    e.TotalMarks,
		}
	}
	return out
}
