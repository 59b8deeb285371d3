package moodle

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/examstack/examstack/internal/exam"
)

func mustParse(t *testing.T, xmlText string) *Node {
	t.Helper()
	n, err := parseDocument(xmlText)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	return n
}

func TestNormalizeMultipleChoice(t *testing.T) {
	n := mustParse(t, `
		<question type="multichoice">
			<name><text>Capitals</text></name>
			<questiontext format="html"><text><![CDATA[<p>Capital of France?</p>]]></text></questiontext>
			<defaultgrade>2.5</defaultgrade>
			<answer fraction="0"><text>London</text></answer>
			<answer fraction="100"><text>Paris</text></answer>
			<answer fraction="0"><text>Berlin</text></answer>
		</question>`)

	q, err := Normalize(n, "exam-1")
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if q.QuestionType != exam.TypeMCQ {
		t.Fatalf("type = %q, want %q", q.QuestionType, exam.TypeMCQ)
	}
	if q.QuestionText != "Capital of France?" {
		t.Errorf("text = %q", q.QuestionText)
	}
	if q.CorrectAnswer != "Paris" {
		t.Errorf("correct = %q, want Paris", q.CorrectAnswer)
	}
	if want := []string{"London", "Paris", "Berlin"}; !reflect.DeepEqual(q.Options, want) {
		t.Errorf("options = %v, want %v", q.Options, want)
	}
	if q.Marks != 2.5 {
		t.Errorf("marks = %v, want 2.5", q.Marks)
	}
	if q.ExamID != "exam-1" {
		t.Errorf("examID = %q", q.ExamID)
	}
}

func TestNormalizeFractionScales(t *testing.T) {
	// Both fraction dialects mark the same answer correct.
	for _, fraction := range []string{"100", "1"} {
		n := mustParse(t, `
			<question type="multichoice">
				<questiontext><text>Pick</text></questiontext>
				<answer fraction="0"><text>A</text></answer>
				<answer fraction="`+fraction+`"><text>B</text></answer>
			</question>`)
		q, err := Normalize(n, "e")
		if err != nil {
			t.Fatalf("fraction %s: %v", fraction, err)
		}
		if q.CorrectAnswer != "B" {
			t.Errorf("fraction %s: correct = %q, want B", fraction, q.CorrectAnswer)
		}
	}
}

func TestNormalizeMCQNoCorrectMarked(t *testing.T) {
	n := mustParse(t, `
		<question type="mcq">
			<questiontext><text>Pick</text></questiontext>
			<answer fraction="0"><text>First</text></answer>
			<answer fraction="0"><text>Second</text></answer>
		</question>`)
	q, err := Normalize(n, "e")
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if q.CorrectAnswer != "First" {
		t.Errorf("correct = %q, want fallback to first option", q.CorrectAnswer)
	}
}

func TestNormalizeMCQNoAnswers(t *testing.T) {
	n := mustParse(t, `
		<question type="multichoice">
			<questiontext><text>Pick</text></questiontext>
		</question>`)
	_, err := Normalize(n, "e")
	var noAnswers *NoAnswersError
	if !errors.As(err, &noAnswers) {
		t.Fatalf("err = %v, want NoAnswersError", err)
	}
}

func TestNormalizeTrueFalse(t *testing.T) {
	tests := []struct {
		name string
		xml  string
		want string
	}{
		{
			name: "true wins",
			xml: `<question type="truefalse">
				<questiontext><text>Go compiles to machine code.</text></questiontext>
				<answer fraction="100"><text>true</text></answer>
				<answer fraction="0"><text>false</text></answer>
			</question>`,
			want: "True",
		},
		{
			name: "false wins",
			xml: `<question type="truefalse">
				<questiontext><text>The moon is cheese.</text></questiontext>
				<answer fraction="0"><text>True</text></answer>
				<answer fraction="100"><text>False</text></answer>
			</question>`,
			want: "False",
		},
		{
			name: "no answers defaults to True",
			xml: `<question type="boolean">
				<questiontext><text>Statement</text></questiontext>
			</question>`,
			want: "True",
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			q, err := Normalize(mustParse(t, tc.xml), "e")
			if err != nil {
				t.Fatalf("Normalize: %v", err)
			}
			if q.QuestionType != exam.TypeTrueFalse {
				t.Fatalf("type = %q", q.QuestionType)
			}
			if q.CorrectAnswer != tc.want {
				t.Errorf("correct = %q, want %q", q.CorrectAnswer, tc.want)
			}
			if !reflect.DeepEqual(q.Options, []string{"True", "False"}) {
				t.Errorf("options = %v", q.Options)
			}
		})
	}
}

func TestNormalizeShortAnswerHighestFraction(t *testing.T) {
	n := mustParse(t, `
		<question type="shortanswer">
			<questiontext><text>Name a French city.</text></questiontext>
			<answer fraction="30"><text>Lyon</text></answer>
			<answer fraction="70"><text>Paris</text></answer>
			<answer fraction="50"><text>Nice</text></answer>
		</question>`)
	q, err := Normalize(n, "e")
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if q.QuestionType != exam.TypeShortAnswer {
		t.Fatalf("type = %q", q.QuestionType)
	}
	if q.CorrectAnswer != "Paris" {
		t.Errorf("correct = %q, want highest-fraction answer Paris", q.CorrectAnswer)
	}
}

func TestNormalizeShortAnswerSentinel(t *testing.T) {
	n := mustParse(t, `<question type="shortanswer"></question>`)
	q, err := Normalize(n, "e")
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if q.QuestionText != "Question text not found" {
		t.Errorf("text = %q", q.QuestionText)
	}
	if q.CorrectAnswer != "Answer not found" {
		t.Errorf("correct = %q", q.CorrectAnswer)
	}
	if q.Marks != 1 {
		t.Errorf("marks = %v, want default 1", q.Marks)
	}
}

func TestNormalizeEssayBecomesShortAnswer(t *testing.T) {
	n := mustParse(t, `
		<question type="essay">
			<questiontext><text>Discuss.</text></questiontext>
		</question>`)
	q, err := Normalize(n, "e")
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if q.QuestionType != exam.TypeShortAnswer {
		t.Errorf("type = %q, want %q", q.QuestionType, exam.TypeShortAnswer)
	}
}

func TestNormalizeMatching(t *testing.T) {
	n := mustParse(t, `
		<question type="matching">
			<questiontext><text>Match countries to capitals.</text></questiontext>
			<subquestion><text>France</text><answer><text>Paris</text></answer></subquestion>
			<subquestion><text>Germany</text><answer><text>Berlin</text></answer></subquestion>
		</question>`)
	q, err := Normalize(n, "e")
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if q.QuestionType != exam.TypeMCQ {
		t.Fatalf("type = %q, want mcq conversion", q.QuestionType)
	}
	if want := []string{"Paris", "Berlin"}; !reflect.DeepEqual(q.Options, want) {
		t.Errorf("options = %v, want %v", q.Options, want)
	}
	if q.CorrectAnswer != "Paris" {
		t.Errorf("correct = %q, want Paris", q.CorrectAnswer)
	}
}

func TestNormalizeMatchingNoSubquestions(t *testing.T) {
	n := mustParse(t, `
		<question type="matching">
			<questiontext><text>Match things.</text></questiontext>
		</question>`)
	q, err := Normalize(n, "e")
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if q.QuestionType != exam.TypeShortAnswer {
		t.Fatalf("type = %q", q.QuestionType)
	}
	if q.CorrectAnswer != "Match the items" {
		t.Errorf("correct = %q", q.CorrectAnswer)
	}
}

func TestNormalizeNumerical(t *testing.T) {
	// Numerical answers often carry no fraction at all; absence counts
	// as correct for this type.
	n := mustParse(t, `
		<question type="numerical">
			<questiontext><text>2+2?</text></questiontext>
			<answer><text>4</text></answer>
		</question>`)
	q, err := Normalize(n, "e")
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if q.QuestionType != exam.TypeShortAnswer {
		t.Fatalf("type = %q", q.QuestionType)
	}
	if q.CorrectAnswer != "4" {
		t.Errorf("correct = %q, want 4", q.CorrectAnswer)
	}

	empty := mustParse(t, `<question type="numerical"><questiontext><text>2+2?</text></questiontext></question>`)
	q, err = Normalize(empty, "e")
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if q.CorrectAnswer != "0" {
		t.Errorf("correct = %q, want fallback 0", q.CorrectAnswer)
	}
}

func TestNormalizeCategorySkipped(t *testing.T) {
	n := mustParse(t, `<question type="category"><category><text>Unit 1</text></category></question>`)
	if _, err := Normalize(n, "e"); !errors.Is(err, ErrCategory) {
		t.Fatalf("err = %v, want ErrCategory", err)
	}
}

func TestNormalizeMissingType(t *testing.T) {
	n := mustParse(t, `<question><questiontext><text>Typeless</text></questiontext></question>`)
	var missing *MissingTypeError
	if _, err := Normalize(n, "e"); !errors.As(err, &missing) {
		t.Fatalf("err = %v, want MissingTypeError", err)
	}
}

func TestNormalizeUnsupportedType(t *testing.T) {
	n := mustParse(t, `<question type="cloze"><questiontext><text>Fill in</text></questiontext></question>`)
	var unsupported *UnsupportedTypeError
	_, err := Normalize(n, "e")
	if !errors.As(err, &unsupported) {
		t.Fatalf("err = %v, want UnsupportedTypeError", err)
	}
	if unsupported.Type != "cloze" {
		t.Errorf("Type = %q, want original string preserved", unsupported.Type)
	}
	if !strings.Contains(err.Error(), "cloze") {
		t.Errorf("error message %q should name the type", err.Error())
	}
}

func TestNormalizeTypeChildElement(t *testing.T) {
	n := mustParse(t, `
		<question>
			<type>shortanswer</type>
			<questiontext><text>Where?</text></questiontext>
			<answer fraction="100"><text>Here</text></answer>
		</question>`)
	q, err := Normalize(n, "e")
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if q.QuestionType != exam.TypeShortAnswer {
		t.Errorf("type = %q", q.QuestionType)
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	n := mustParse(t, `
		<question type="multichoice">
			<questiontext><text>Pick one</text></questiontext>
			<answer fraction="100"><text>Yes</text></answer>
			<answer fraction="0"><text>No</text></answer>
		</question>`)
	first, err := Normalize(n, "e")
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	second, err := Normalize(n, "e")
	if err != nil {
		t.Fatalf("Normalize again: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Errorf("normalize is not stable: %+v vs %+v", first, second)
	}
}

func TestCleanHTML(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"<p>Hello&nbsp;World</p>", "Hello World"},
		{"  plain  ", "plain"},
		{"<b>Bold</b> &amp; <i>italic</i>", "Bold & italic"},
		{"&lt;p&gt;escaped&lt;/p&gt;", "<p>escaped</p>"},
		{"a &quot;quoted&quot; word", `a "quoted" word`},
		{"", ""},
	}
	for _, tc := range tests {
		if got := cleanHTML(tc.in); got != tc.want {
			t.Errorf("cleanHTML(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestMarksFallbackChain(t *testing.T) {
	tests := []struct {
		name string
		xml  string
		want float64
	}{
		{"defaultgrade", `<question type="shortanswer"><defaultgrade>3</defaultgrade><grade>9</grade></question>`, 3},
		{"grade", `<question type="shortanswer"><grade>2</grade></question>`, 2},
		{"mark", `<question type="shortanswer"><mark>4</mark></question>`, 4},
		{"unparseable falls through", `<question type="shortanswer"><defaultgrade>abc</defaultgrade><grade>2</grade></question>`, 2},
		{"absent", `<question type="shortanswer"></question>`, 1},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			q, err := Normalize(mustParse(t, tc.xml), "e")
			if err != nil {
				t.Fatalf("Normalize: %v", err)
			}
			if q.Marks != tc.want {
				t.Errorf("marks = %v, want %v", q.Marks, tc.want)
			}
		})
	}
}
