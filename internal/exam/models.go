package exam

// Question types accepted by the portal. Imported Moodle types are
// normalized onto these three in internal/moodle.
const (
	TypeMCQ         = "mcq"
	TypeTrueFalse   = "true-false"
	TypeShortAnswer = "short-answer"
)

// Submission lifecycle. Grading is synchronous, so submissions are
// created directly in StatusEvaluated; the earlier states are reserved.
const (
	StatusPending   = "pending"
	StatusSubmitted = "submitted"
	StatusEvaluated = "evaluated"
)

type Exam struct {
	ID               string   `json:"id"`
	Title            string   `json:"title"`
	Subject          string   `json:"subject,omitempty"`
	Description      string   `json:"description,omitempty"`
	Duration         int      `json:"duration"` // minutes
	TotalMarks       int      `json:"totalMarks"`
	PassingMarks     int      `json:"passingMarks"` // raw-score threshold, not a percentage
	StartTime        int64    `json:"startTime"`    // unix seconds
	EndTime          int64    `json:"endTime"`
	AssignedStudents []string `json:"assignedStudents,omitempty"`
	CreatedBy        string   `json:"createdBy,omitempty"`
	CreatedAt        int64    `json:"created_at,omitempty"`
}

type Question struct {
	ID            string   `json:"id"`
	ExamID        string   `json:"examId"`
	QuestionText  string   `json:"questionText"`
	QuestionType  string   `json:"questionType"`
	Options       []string `json:"options"`
	CorrectAnswer string   `json:"correctAnswer,omitempty"`
	Marks         float64  `json:"marks"`
	CreatedAt     int64    `json:"created_at,omitempty"`
}

// Answer is one evaluated answer embedded in a Submission. It carries
// the correct answer snapshotted at grading time; editing or deleting
// the question afterwards does not change it.
type Answer struct {
	QuestionID    string  `json:"questionId"`
	Answer        string  `json:"answer"`
	CorrectAnswer string  `json:"correctAnswer"`
	IsCorrect     bool    `json:"isCorrect"`
	MarksObtained float64 `json:"marksObtained"`
	TotalMarks    float64 `json:"totalMarks"`
}

// Submission is the append-only grading artifact for one submit action.
// It is never edited after evaluation.
type Submission struct {
	ID          string   `json:"id"`
	ExamID      string   `json:"examId"`
	StudentID   string   `json:"studentId"`
	Answers     []Answer `json:"answers"`
	Score       float64  `json:"score"`
	TotalMarks  float64  `json:"totalMarks"`
	Percentage  float64  `json:"percentage"`
	Status      string   `json:"status"`
	StartedAt   int64    `json:"started_at,omitempty"`
	SubmittedAt int64    `json:"submitted_at,omitempty"`
	TimeTaken   int      `json:"timeTaken,omitempty"` // minutes
}

// DetailedAnswer joins an evaluated answer back to its question for
// result views. Question fields degrade to "Unknown" when the question
// was deleted after grading.
type DetailedAnswer struct {
	QuestionID    string  `json:"questionId"`
	QuestionText  string  `json:"questionText"`
	QuestionType  string  `json:"questionType"`
	StudentAnswer string  `json:"studentAnswer"`
	CorrectAnswer string  `json:"correctAnswer"`
	IsCorrect     bool    `json:"isCorrect"`
	MarksObtained float64 `json:"marksObtained"`
	TotalMarks    float64 `json:"totalMarks"`
}
