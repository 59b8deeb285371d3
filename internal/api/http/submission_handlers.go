package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	authmw "github.com/examstack/examstack/internal/auth/middleware"
	"github.com/examstack/examstack/internal/exam"
	"github.com/examstack/examstack/internal/grading"
	"github.com/examstack/examstack/internal/rbac"
)

// POST /exams/{examID}/submissions
// Grades synchronously and returns the evaluated submission with its
// verdict.
func SubmitExamHandler(svc *exam.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Answers   []grading.Answer `json:"answers"`
			TimeTaken int              `json:"timeTaken"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}

		res, err := svc.SubmitAndGrade(r.Context(), exam.SubmitRequest{
			ExamID:    chi.URLParam(r, "examID"),
			StudentID: authmw.SubjectFromContext(r.Context()),
			Answers:   req.Answers,
			TimeTaken: req.TimeTaken,
		})
		if errors.Is(err, exam.ErrExamNotFound) {
			http.Error(w, "exam not found", http.StatusNotFound)
			return
		}
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(res)
	}
}

// GET /submissions/{submissionID}
// Students only see their own; trainers and admins see all.
func GetSubmissionHandler(svc *exam.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sub, details, err := svc.SubmissionDetail(r.Context(), chi.URLParam(r, "submissionID"))
		if errors.Is(err, exam.ErrSubmissionNotFound) {
			http.Error(w, "submission not found", http.StatusNotFound)
			return
		}
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}

		viewer := authmw.SubjectFromContext(r.Context())
		role := rbac.RoleFromContext(r.Context())
		if sub.StudentID != viewer && role == "student" {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"submission":      sub,
			"detailedAnswers": details,
		})
	}
}

// GET /submissions/mine
func ListMySubmissionsHandler(store exam.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		subs, err := store.SubmissionsByStudent(r.Context(), authmw.SubjectFromContext(r.Context()))
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		_ = json.NewEncoder(w).Encode(subs)
	}
}

// GET /students/{studentID}/submissions
// A student may only list their own; trainers list anyone's.
func ListStudentSubmissionsHandler(store exam.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		studentID := chi.URLParam(r, "studentID")
		viewer := authmw.SubjectFromContext(r.Context())
		if rbac.RoleFromContext(r.Context()) == "student" && studentID != viewer {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}
		subs, err := store.SubmissionsByStudent(r.Context(), studentID)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		_ = json.NewEncoder(w).Encode(subs)
	}
}

// DELETE /exams/{examID}/submissions
// Clears all graded submissions for an exam, e.g. before a re-run.
func ResetExamSubmissionsHandler(store exam.Store, events exam.EventLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		examID := chi.URLParam(r, "examID")
		if _, err := store.GetExam(r.Context(), examID); err != nil {
			if errors.Is(err, exam.ErrExamNotFound) {
				http.Error(w, "exam not found", http.StatusNotFound)
				return
			}
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		if err := store.DeleteSubmissionsByExam(r.Context(), examID); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		if events != nil {
			_ = events.Append(r.Context(), "SubmissionsCleared", examID, "{}")
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"message": "submissions cleared"})
	}
}

// GET /exams/{examID}/submissions
func ListExamSubmissionsHandler(store exam.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		examID := chi.URLParam(r, "examID")
		if _, err := store.GetExam(r.Context(), examID); err != nil {
			if errors.Is(err, exam.ErrExamNotFound) {
				http.Error(w, "exam not found", http.StatusNotFound)
				return
			}
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		subs, err := store.SubmissionsByExam(r.Context(), examID)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		_ = json.NewEncoder(w).Encode(subs)
	}
}
