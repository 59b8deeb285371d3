package moodle

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/examstack/examstack/internal/exam"
)

// Sentinels stored when a question omits the corresponding field.
// Trainers fix these up in the question editor after import.
const (
	textNotFound   = "Question text not found"
	answerNotFound = "Answer not found"
)

// Normalize converts one parsed question node into a portal question.
// It is the single funnel for all supported Moodle types; the output
// QuestionType is always one of exam.TypeMCQ, exam.TypeTrueFalse or
// exam.TypeShortAnswer. ErrCategory means "skip me", every other error
// means the node could not be converted.
func Normalize(n *Node, examID string) (exam.Question, error) {
	qType := typeOf(n)
	if qType == "category" {
		return exam.Question{}, ErrCategory
	}
	if qType == "" {
		return exam.Question{}, &MissingTypeError{}
	}

	q := exam.Question{
		ExamID:       examID,
		QuestionText: questionTextOf(n),
		Marks:        marksOf(n),
	}

	t := strings.ToLower(strings.TrimSpace(qType))
	switch {
	case strings.Contains(t, "multichoice") || strings.Contains(t, "multiple") || t == "mcq":
		return normalizeMultipleChoice(n, q)
	case strings.Contains(t, "truefalse") || strings.Contains(t, "true-false") || t == "boolean":
		return normalizeTrueFalse(n, q), nil
	case strings.Contains(t, "shortanswer") || strings.Contains(t, "short") || t == "text":
		return normalizeShortAnswer(n, q), nil
	case strings.Contains(t, "essay") || t == "longtext":
		// Essays cannot be auto-graded exactly; they degrade to a
		// short-answer the trainer reviews by hand.
		return normalizeShortAnswer(n, q), nil
	case strings.Contains(t, "matching"):
		return normalizeMatching(n, q), nil
	case strings.Contains(t, "numerical"):
		return normalizeNumerical(n, q), nil
	default:
		return exam.Question{}, &UnsupportedTypeError{Type: qType}
	}
}

// typeOf reads the question type, attribute first, child element second.
func typeOf(n *Node) string {
	if v, ok := n.Attr("type"); ok && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v)
	}
	if c := n.Child("type"); c != nil {
		return strings.TrimSpace(c.Text)
	}
	return ""
}

// questionTextOf resolves the prompt through the questiontext, text and
// name fallback chain. The sentinel keeps a malformed question visible
// instead of silently importing an empty prompt.
func questionTextOf(n *Node) string {
	for _, key := range []string{"questiontext", "text", "name"} {
		if c := n.Child(key); c != nil {
			if s := extractText(c); s != "" {
				return s
			}
		}
	}
	return textNotFound
}

// marksOf resolves marks through defaultgrade, grade and mark, first
// parseable value wins. Absent or unparseable means 1.
func marksOf(n *Node) float64 {
	for _, key := range []string{"defaultgrade", "grade", "mark"} {
		raw := ""
		if v, ok := n.Attr(key); ok {
			raw = v
		} else if c := n.Child(key); c != nil {
			raw = c.Text
		}
		if strings.TrimSpace(raw) == "" {
			continue
		}
		if v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64); err == nil {
			return v
		}
	}
	return 1
}

// answersOf collects answer nodes, either directly under the question
// or grouped inside an <answers> wrapper.
func answersOf(n *Node) []*Node {
	answers := n.ChildrenNamed("answer")
	if len(answers) == 0 {
		if wrap := n.Child("answers"); wrap != nil {
			answers = wrap.ChildrenNamed("answer")
		}
	}
	return answers
}

// fractionOf reads an answer's score fraction, probing attribute and
// child forms of fraction and grade in order. A present but unparseable
// value yields NaN, which never compares as correct.
func fractionOf(a *Node, def float64) float64 {
	read := func(key string) (string, bool) {
		if v, ok := a.Attr(key); ok && strings.TrimSpace(v) != "" {
			return v, true
		}
		if c := a.Child(key); c != nil && strings.TrimSpace(c.Text) != "" {
			return c.Text, true
		}
		return "", false
	}
	for _, key := range []string{"fraction", "grade"} {
		if raw, ok := read(key); ok {
			if v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64); err == nil {
				return v
			}
			return math.NaN()
		}
	}
	return def
}

// correctFraction accepts both fraction scales Moodle exports use:
// percentage (100) and unit (1).
func correctFraction(f float64) bool {
	return f == 100 || f == 1
}

func normalizeMultipleChoice(n *Node, q exam.Question) (exam.Question, error) {
	answers := answersOf(n)
	if len(answers) == 0 {
		return exam.Question{}, &NoAnswersError{}
	}

	options := []string{}
	correct := ""
	for _, a := range answers {
		text := extractText(a)
		if text == "" {
			continue
		}
		options = append(options, text)
		if correctFraction(fractionOf(a, 0)) {
			correct = text
		}
	}
	// No marked answer: fall back to the first option so the question
	// imports in a fixable state rather than failing the batch.
	if correct == "" && len(options) > 0 {
		correct = options[0]
	}

	q.QuestionType = exam.TypeMCQ
	q.Options = options
	q.CorrectAnswer = correct
	return q, nil
}

func normalizeTrueFalse(n *Node, q exam.Question) exam.Question {
	correct := "True"
	for _, a := range answersOf(n) {
		if correctFraction(fractionOf(a, 0)) {
			if strings.Contains(strings.ToLower(extractText(a)), "true") {
				correct = "True"
			} else {
				correct = "False"
			}
		}
	}
	q.QuestionType = exam.TypeTrueFalse
	q.Options = []string{"True", "False"}
	q.CorrectAnswer = correct
	return q
}

func normalizeShortAnswer(n *Node, q exam.Question) exam.Question {
	answers := answersOf(n)

	// The highest-fraction answer wins; Moodle short answers often list
	// several acceptable variants with partial credit.
	correct := ""
	highest := -1.0
	for _, a := range answers {
		if f := fractionOf(a, 0); f > highest {
			highest = f
			correct = extractText(a)
		}
	}
	if correct == "" && len(answers) > 0 {
		correct = extractText(answers[0])
	}
	if correct == "" {
		correct = answerNotFound
	}

	q.QuestionType = exam.TypeShortAnswer
	q.Options = []string{}
	q.CorrectAnswer = correct
	return q
}

// normalizeMatching flattens a matching question into an MCQ over the
// right-hand side values. Lossy, but it keeps the question gradable.
func normalizeMatching(n *Node, q exam.Question) exam.Question {
	subs := n.ChildrenNamed("subquestion")
	if wrap := n.Child("subquestions"); len(subs) == 0 && wrap != nil {
		subs = wrap.ChildrenNamed("subquestion")
	}
	if len(subs) == 0 {
		q.QuestionType = exam.TypeShortAnswer
		q.Options = []string{}
		q.CorrectAnswer = "Match the items"
		return q
	}

	options := make([]string, 0, len(subs))
	for _, sq := range subs {
		src := sq
		if a := sq.Child("answer"); a != nil {
			src = a
		}
		options = append(options, extractText(src))
	}
	correct := options[0]
	if correct == "" {
		correct = "Option A"
	}

	q.QuestionType = exam.TypeMCQ
	q.Options = options
	q.CorrectAnswer = correct
	return q
}

func normalizeNumerical(n *Node, q exam.Question) exam.Question {
	// Numerical answers usually omit the fraction entirely, so absence
	// means correct here, unlike the other types.
	correct := ""
	for _, a := range answersOf(n) {
		if correctFraction(fractionOf(a, 100)) {
			if s := extractText(a); s != "" {
				correct = s
			}
		}
	}
	if correct == "" {
		correct = "0"
	}

	q.QuestionType = exam.TypeShortAnswer
	q.Options = []string{}
	q.CorrectAnswer = correct
	return q
}

// extractText digs a human-readable string out of a node, trying its
// own character data, then the wrapper elements Moodle variants nest
// text under. The result is always HTML-cleaned and trimmed.
func extractText(n *Node) string {
	if n == nil {
		return ""
	}
	if own := strings.TrimSpace(n.Text); own != "" {
		return cleanHTML(own)
	}
	for _, key := range []string{"text", "name", "answertext", "value", "content", "answer"} {
		if c := n.Child(key); c != nil {
			if s := extractText(c); s != "" {
				return s
			}
		}
	}
	return ""
}

var (
	tagPattern = regexp.MustCompile(`<[^>]*>`)
	entities   = strings.NewReplacer(
		"&nbsp;", " ",
		"&amp;", "&",
		"&lt;", "<",
		"&gt;", ">",
		"&quot;", `"`,
	)
)

// cleanHTML strips markup tags, decodes the common entities and trims.
// Tags are removed before entity decoding, so escaped markup in the
// source survives as literal text.
func cleanHTML(s string) string {
	s = tagPattern.ReplaceAllString(s, "")
	return strings.TrimSpace(entities.Replace(s))
}
