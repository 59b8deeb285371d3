package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	authmw "github.com/examstack/examstack/internal/auth/middleware"
	"github.com/examstack/examstack/internal/exam"
	"github.com/examstack/examstack/internal/rbac"
)

var validate = validator.New()

type examPayload struct {
	Title            string   `json:"title" validate:"required,min=3"`
	Subject          string   `json:"subject"`
	Description      string   `json:"description"`
	Duration         int      `json:"duration" validate:"gte=0"`
	TotalMarks       int      `json:"totalMarks" validate:"gte=0"`
	PassingMarks     int      `json:"passingMarks" validate:"gte=0"`
	StartTime        int64    `json:"startTime"`
	EndTime          int64    `json:"endTime"`
	AssignedStudents []string `json:"assignedStudents"`
}

// POST /exams
func CreateExamHandler(store exam.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var p examPayload
		if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		if err := validate.Struct(p); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		e := exam.Exam{
			ID:               uuid.NewString(),
			Title:            p.Title,
			Subject:          p.Subject,
			Description:      p.Description,
			Duration:         p.Duration,
			TotalMarks:       p.TotalMarks,
			PassingMarks:     p.PassingMarks,
			StartTime:        p.StartTime,
			EndTime:          p.EndTime,
			AssignedStudents: p.AssignedStudents,
			CreatedBy:        authmw.SubjectFromContext(r.Context()),
			CreatedAt:        time.Now().Unix(),
		}
		if err := store.PutExam(r.Context(), e); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(e)
	}
}

// GET /exams?q=&limit=&offset=
// Students only see exams assigned to them; the store filters.
func ListExamsHandler(store exam.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		limit, _ := strconv.Atoi(q.Get("limit"))
		offset, _ := strconv.Atoi(q.Get("offset"))

		exams, err := store.ListExams(r.Context(), exam.ListOpts{
			Q:          q.Get("q"),
			Limit:      limit,
			Offset:     offset,
			ViewerID:   authmw.SubjectFromContext(r.Context()),
			ViewerRole: rbac.RoleFromContext(r.Context()),
		})
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		_ = json.NewEncoder(w).Encode(exams)
	}
}

// GET /exams/{examID}
func GetExamHandler(store exam.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		e, err := store.GetExam(r.Context(), chi.URLParam(r, "examID"))
		if errors.Is(err, exam.ErrExamNotFound) {
			http.Error(w, "exam not found", http.StatusNotFound)
			return
		}
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		_ = json.NewEncoder(w).Encode(e)
	}
}

// PUT /exams/{examID}
func UpdateExamHandler(store exam.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "examID")
		e, err := store.GetExam(r.Context(), id)
		if errors.Is(err, exam.ErrExamNotFound) {
			http.Error(w, "exam not found", http.StatusNotFound)
			return
		}
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}

		var p examPayload
		if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		if err := validate.Struct(p); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		e.Title = p.Title
		e.Subject = p.Subject
		e.Description = p.Description
		e.Duration = p.Duration
		e.TotalMarks = p.TotalMarks
		e.PassingMarks = p.PassingMarks
		e.StartTime = p.StartTime
		e.EndTime = p.EndTime
		e.AssignedStudents = p.AssignedStudents

		if err := store.UpdateExam(r.Context(), e); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		_ = json.NewEncoder(w).Encode(e)
	}
}

// DELETE /exams/{examID} removes the exam, its questions and its
// submissions.
func DeleteExamHandler(svc *exam.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		err := svc.DeleteExam(r.Context(), chi.URLParam(r, "examID"))
		if errors.Is(err, exam.ErrExamNotFound) {
			http.Error(w, "exam not found", http.StatusNotFound)
			return
		}
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"message": "exam deleted"})
	}
}

// GET /exams/{examID}/questions
// Answer keys are stripped for students; trainers get the full rows.
func ExamQuestionsHandler(store exam.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "examID")
		if _, err := store.GetExam(r.Context(), id); err != nil {
			if errors.Is(err, exam.ErrExamNotFound) {
				http.Error(w, "exam not found", http.StatusNotFound)
				return
			}
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}

		questions, err := store.QuestionsByExam(r.Context(), id)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		if rbac.RoleFromContext(r.Context()) == "student" {
			for i := range questions {
				questions[i].CorrectAnswer = ""
			}
		}
		_ = json.NewEncoder(w).Encode(questions)
	}
}
