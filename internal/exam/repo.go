package exam

import (
	"context"
	"errors"
)

var (
	ErrExamNotFound       = errors.New("exam not found")
	ErrQuestionNotFound   = errors.New("question not found")
	ErrSubmissionNotFound = errors.New("submission not found")
)

type ListOpts struct {
	Q          string
	Limit      int
	Offset     int
	ViewerID   string
	ViewerRole string // "student" | "trainer" | "admin"
}

type Store interface {
	PutExam(ctx context.Context, e Exam) error
	GetExam(ctx context.Context, id string) (Exam, error)
	UpdateExam(ctx context.Context, e Exam) error
	// DeleteExam removes the exam together with its questions and
	// submissions. Cleanup is explicit, not a DB-enforced cascade.
	DeleteExam(ctx context.Context, id string) error
	ListExams(ctx context.Context, opts ListOpts) ([]Exam, error)

	CreateQuestion(ctx context.Context, q Question) error
	GetQuestion(ctx context.Context, id string) (Question, error)
	QuestionsByExam(ctx context.Context, examID string) ([]Question, error)
	DeleteQuestion(ctx context.Context, id string) error
	DeleteQuestionsByExam(ctx context.Context, examID string) error

	CreateSubmission(ctx context.Context, s Submission) error
	GetSubmission(ctx context.Context, id string) (Submission, error)
	SubmissionsByExam(ctx context.Context, examID string) ([]Submission, error)
	SubmissionsByStudent(ctx context.Context, studentID string) ([]Submission, error)
	DeleteSubmissionsByExam(ctx context.Context, examID string) error
}
