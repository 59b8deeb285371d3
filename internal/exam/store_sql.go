package exam

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strings"
	"time"
)

// SQLStore persists the exam domain over database/sql. Works against
// both sqlite and postgres (see internal/db for the schema).
type SQLStore struct {
	db     *sql.DB
	driver string // "sqlite" or "postgres"
}

func NewSQLStore(db *sql.DB, driver string) *SQLStore {
	return &SQLStore{db: db, driver: driver}
}

func (s *SQLStore) PutExam(ctx context.Context, e Exam) error {
	aj, err := json.Marshal(emptySlice(e.AssignedStudents))
	if err != nil {
		return err
	}
	if e.CreatedAt == 0 {
		e.CreatedAt = time.Now().Unix()
	}
	_, err = s.db.ExecContext(ctx, `INSERT INTO exams
		(id,title,subject,description,duration_mins,total_marks,passing_marks,start_time,end_time,assigned_json,created_by,created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)`,
		e.ID, e.Title, e.Subject, e.Description, e.Duration, e.TotalMarks, e.PassingMarks,
		e.StartTime, e.EndTime, string(aj), e.CreatedBy, e.CreatedAt)
	return err
}

func (s *SQLStore) GetExam(ctx context.Context, id string) (Exam, error) {
	row := s.db.QueryRowContext(ctx, `SELECT id,title,subject,description,duration_mins,total_marks,passing_marks,start_time,end_time,assigned_json,created_by,created_at
		FROM exams WHERE id=$1`, id)
	return scanExam(row)
}

func (s *SQLStore) UpdateExam(ctx context.Context, e Exam) error {
	aj, err := json.Marshal(emptySlice(e.AssignedStudents))
	if err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx, `UPDATE exams SET
		title=$1, subject=$2, description=$3, duration_mins=$4, total_marks=$5,
		passing_marks=$6, start_time=$7, end_time=$8, assigned_json=$9
		WHERE id=$10`,
		e.Title, e.Subject, e.Description, e.Duration, e.TotalMarks,
		e.PassingMarks, e.StartTime, e.EndTime, string(aj), e.ID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrExamNotFound
	}
	return nil
}

// DeleteExam removes the exam and all dependent rows in one
// transaction. Dependent cleanup is explicit by design.
func (s *SQLStore) DeleteExam(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM questions WHERE exam_id=$1`, id); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM submissions WHERE exam_id=$1`, id); err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM exams WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrExamNotFound
	}
	return tx.Commit()
}

func (s *SQLStore) ListExams(ctx context.Context, opts ListOpts) ([]Exam, error) {
	limit := opts.Limit
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx, `SELECT id,title,subject,description,duration_mins,total_marks,passing_marks,start_time,end_time,assigned_json,created_by,created_at
		FROM exams ORDER BY created_at DESC LIMIT $1 OFFSET $2`, limit, opts.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Exam{}
	for rows.Next() {
		e, err := scanExam(rows)
		if err != nil {
			return nil, err
		}
		// Students only see exams assigned to them.
		if opts.ViewerRole == "student" && !contains(e.AssignedStudents, opts.ViewerID) {
			continue
		}
		if opts.Q != "" && !containsFold(e.Title, opts.Q) && !containsFold(e.Subject, opts.Q) {
			continue
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (s *SQLStore) CreateQuestion(ctx context.Context, q Question) error {
	oj, err := json.Marshal(emptySlice(q.Options))
	if err != nil {
		return err
	}
	if q.CreatedAt == 0 {
		q.CreatedAt = time.Now().Unix()
	}
	_, err = s.db.ExecContext(ctx, `INSERT INTO questions
		(id,exam_id,question_text,question_type,options_json,correct_answer,marks,created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		q.ID, q.ExamID, q.QuestionText, q.QuestionType, string(oj), q.CorrectAnswer, q.Marks, q.CreatedAt)
	return err
}

func (s *SQLStore) GetQuestion(ctx context.Context, id string) (Question, error) {
	row := s.db.QueryRowContext(ctx, `SELECT id,exam_id,question_text,question_type,options_json,correct_answer,marks,created_at
		FROM questions WHERE id=$1`, id)
	return scanQuestion(row)
}

func (s *SQLStore) QuestionsByExam(ctx context.Context, examID string) ([]Question, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id,exam_id,question_text,question_type,options_json,correct_answer,marks,created_at
		FROM questions WHERE exam_id=$1 ORDER BY created_at, id`, examID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Question{}
	for rows.Next() {
		q, err := scanQuestion(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, q)
	}
	return out, rows.Err()
}

func (s *SQLStore) DeleteQuestion(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM questions WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrQuestionNotFound
	}
	return nil
}

func (s *SQLStore) DeleteQuestionsByExam(ctx context.Context, examID string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM questions WHERE exam_id=$1`, examID)
	return err
}

func (s *SQLStore) CreateSubmission(ctx context.Context, sub Submission) error {
	aj, err := json.Marshal(sub.Answers)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `INSERT INTO submissions
		(id,exam_id,student_id,answers_json,score,total_marks,percentage,status,started_at,submitted_at,time_taken)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)`,
		sub.ID, sub.ExamID, sub.StudentID, string(aj), sub.Score, sub.TotalMarks,
		sub.Percentage, sub.Status, sub.StartedAt, sub.SubmittedAt, sub.TimeTaken)
	return err
}

func (s *SQLStore) GetSubmission(ctx context.Context, id string) (Submission, error) {
	row := s.db.QueryRowContext(ctx, `SELECT id,exam_id,student_id,answers_json,score,total_marks,percentage,status,started_at,submitted_at,time_taken
		FROM submissions WHERE id=$1`, id)
	return scanSubmission(row)
}

func (s *SQLStore) SubmissionsByExam(ctx context.Context, examID string) ([]Submission, error) {
	return s.querySubmissions(ctx, `SELECT id,exam_id,student_id,answers_json,score,total_marks,percentage,status,started_at,submitted_at,time_taken
		FROM submissions WHERE exam_id=$1 ORDER BY submitted_at DESC`, examID)
}

func (s *SQLStore) SubmissionsByStudent(ctx context.Context, studentID string) ([]Submission, error) {
	return s.querySubmissions(ctx, `SELECT id,exam_id,student_id,answers_json,score,total_marks,percentage,status,started_at,submitted_at,time_taken
		FROM submissions WHERE student_id=$1 ORDER BY submitted_at DESC`, studentID)
}

func (s *SQLStore) DeleteSubmissionsByExam(ctx context.Context, examID string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM submissions WHERE exam_id=$1`, examID)
	return err
}

func (s *SQLStore) querySubmissions(ctx context.Context, query string, arg any) ([]Submission, error) {
	rows, err := s.db.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Submission{}
	for rows.Next() {
		sub, err := scanSubmission(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, sub)
	}
	return out, rows.Err()
}

// scanner covers both *sql.Row and *sql.Rows.
type scanner interface{ Scan(dest ...any) error }

func scanExam(row scanner) (Exam, error) {
	var e Exam
	var assigned string
	err := row.Scan(&e.ID, &e.Title, &e.Subject, &e.Description, &e.Duration, &e.TotalMarks,
		&e.PassingMarks, &e.StartTime, &e.EndTime, &assigned, &e.CreatedBy, &e.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Exam{}, ErrExamNotFound
		}
		return Exam{}, err
	}
	if err := json.Unmarshal([]byte(assigned), &e.AssignedStudents); err != nil {
		e.AssignedStudents = []string{}
	}
	return e, nil
}

func scanQuestion(row scanner) (Question, error) {
	var q Question
	var options string
	err := row.Scan(&q.ID, &q.ExamID, &q.QuestionText, &q.QuestionType, &options,
		&q.CorrectAnswer, &q.Marks, &q.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Question{}, ErrQuestionNotFound
		}
		return Question{}, err
	}
	if err := json.Unmarshal([]byte(options), &q.Options); err != nil {
		q.Options = []string{}
	}
	return q, nil
}

func scanSubmission(row scanner) (Submission, error) {
	var sub Submission
	var answers string
	err := row.Scan(&sub.ID, &sub.ExamID, &sub.StudentID, &answers, &sub.Score, &sub.TotalMarks,
		&sub.Percentage, &sub.Status, &sub.StartedAt, &sub.SubmittedAt, &sub.TimeTaken)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Submission{}, ErrSubmissionNotFound
		}
		return Submission{}, err
	}
	if err := json.Unmarshal([]byte(answers), &sub.Answers); err != nil {
		sub.Answers = []Answer{}
	}
	return sub, nil
}

func emptySlice(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

func containsFold(haystack, needle string) bool {
	return needle == "" || strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}
