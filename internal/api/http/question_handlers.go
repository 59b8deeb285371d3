package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/examstack/examstack/internal/exam"
	"github.com/examstack/examstack/internal/moodle"
)

// POST /exams/{examID}/questions/import (multipart: xmlFile=quiz.xml)
// ?replace=true clears the exam's existing questions first.
func ImportQuestionsHandler(store exam.Store, events exam.EventLogger, maxBytes int64) http.HandlerFunc {
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

		if maxBytes > 0 {
			r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
		}
		f, hdr, err := r.FormFile("xmlFile")
		if err != nil {
			http.Error(w, "xmlFile required", http.StatusBadRequest)
			return
		}
		defer f.Close()

		data, err := io.ReadAll(f)
		if err != nil {
			http.Error(w, "read upload: "+err.Error(), http.StatusBadRequest)
			return
		}

		if r.URL.Query().Get("replace") == "true" {
			if err := store.DeleteQuestionsByExam(r.Context(), examID); err != nil {
				http.Error(w, err.Error(), http.StatusInternalServerError)
				return
			}
		}

		rep, err := moodle.NewImporter(store).Import(r.Context(), string(data), examID)
		if err != nil {
			var malformed *moodle.MalformedXMLError
			if errors.As(err, &malformed) {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}

		if events != nil {
			payload, _ := json.Marshal(map[string]any{
				"filename": hdr.Filename,
				"total":    rep.Total,
				"success":  rep.Success,
				"failed":   rep.Failed,
			})
			_ = events.Append(r.Context(), "QuestionsImported", examID, string(payload))
		}

		_ = json.NewEncoder(w).Encode(map[string]any{
			"message":  "import complete",
			"filename": hdr.Filename,
			"report":   rep,
		})
	}
}

// POST /exams/{examID}/questions/preview (multipart: xmlFile=quiz.xml)
// Runs the same pipeline as import without persisting anything.
func PreviewImportHandler(store exam.Store, maxBytes int64) http.HandlerFunc {
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

		if maxBytes > 0 {
			r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
		}
		f, _, err := r.FormFile("xmlFile")
		if err != nil {
			http.Error(w, "xmlFile required", http.StatusBadRequest)
			return
		}
		defer f.Close()

		data, err := io.ReadAll(f)
		if err != nil {
			http.Error(w, "read upload: "+err.Error(), http.StatusBadRequest)
			return
		}

		entries, err := moodle.NewImporter(store).Preview(string(data), examID)
		if err != nil {
			var malformed *moodle.MalformedXMLError
			if errors.As(err, &malformed) {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"questions": entries})
	}
}

type questionPayload struct {
	QuestionText  string   `json:"questionText" validate:"required"`
	QuestionType  string   `json:"questionType" validate:"required,oneof=mcq true-false short-answer"`
	Options       []string `json:"options"`
	CorrectAnswer string   `json:"correctAnswer" validate:"required"`
	Marks         float64  `json:"marks" validate:"gte=0"`
}

// POST /exams/{examID}/questions
func CreateQuestionHandler(store exam.Store) http.HandlerFunc {
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

		var p questionPayload
		if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		if err := validate.Struct(p); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if p.Marks == 0 {
			p.Marks = 1
		}

		q := exam.Question{
			ID:            uuid.NewString(),
			ExamID:        examID,
			QuestionText:  p.QuestionText,
			QuestionType:  p.QuestionType,
			Options:       p.Options,
			CorrectAnswer: p.CorrectAnswer,
			Marks:         p.Marks,
			CreatedAt:     time.Now().Unix(),
		}
		if err := store.CreateQuestion(r.Context(), q); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(q)
	}
}

// GET /questions/{questionID}
func GetQuestionHandler(store exam.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q, err := store.GetQuestion(r.Context(), chi.URLParam(r, "questionID"))
		if errors.Is(err, exam.ErrQuestionNotFound) {
			http.Error(w, "question not found", http.StatusNotFound)
			return
		}
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		_ = json.NewEncoder(w).Encode(q)
	}
}

// DELETE /questions/{questionID}
func DeleteQuestionHandler(store exam.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		err := store.DeleteQuestion(r.Context(), chi.URLParam(r, "questionID"))
		if errors.Is(err, exam.ErrQuestionNotFound) {
			http.Error(w, "question not found", http.StatusNotFound)
			return
		}
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"message": "question deleted"})
	}
}
