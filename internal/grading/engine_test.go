package grading

import (
	"reflect"
	"testing"
)

func TestEvaluate_ExactMatchIgnoresCaseAndWhitespace(t *testing.T) {
	qs := []Question{{ID: "q1", CorrectAnswer: "paris", Marks: 2}}

	ev := Evaluate([]Answer{{QuestionID: "q1", Answer: " Paris "}}, qs)
	if len(ev.Answers) != 1 || !ev.Answers[0].IsCorrect {
		t.Fatalf("expected ' Paris ' to match 'paris': %+v", ev.Answers)
	}
	if ev.Score != 2 || ev.TotalMarks != 2 || ev.Percentage != 100 {
		t.Fatalf("score=%v total=%v pct=%v", ev.Score, ev.TotalMarks, ev.Percentage)
	}
}

func TestEvaluate_WrongAnswerScoresZeroButCountsTotal(t *testing.T) {
	qs := []Question{{ID: "q1", CorrectAnswer: "A", Marks: 5}}

	ev := Evaluate([]Answer{{QuestionID: "q1", Answer: "B"}}, qs)
	a := ev.Answers[0]
	if a.IsCorrect || a.MarksObtained != 0 || a.TotalMarks != 5 {
		t.Fatalf("unexpected evaluated answer: %+v", a)
	}
	if ev.Score != 0 || ev.TotalMarks != 5 || ev.Percentage != 0 {
		t.Fatalf("score=%v total=%v pct=%v", ev.Score, ev.TotalMarks, ev.Percentage)
	}
}

func TestEvaluate_DanglingQuestionIDSkipped(t *testing.T) {
	qs := []Question{{ID: "q1", CorrectAnswer: "A", Marks: 5}}

	ev := Evaluate([]Answer{
		{QuestionID: "q1", Answer: "A"},
		{QuestionID: "ghost", Answer: "anything"},
	}, qs)
	if len(ev.Answers) != 1 {
		t.Fatalf("dangling answer must not appear in output: %+v", ev.Answers)
	}
	if ev.Score != 5 || ev.TotalMarks != 5 {
		t.Fatalf("dangling answer must not affect totals: score=%v total=%v", ev.Score, ev.TotalMarks)
	}
}

func TestEvaluate_EmptyInputs(t *testing.T) {
	ev := Evaluate(nil, nil)
	if ev.Score != 0 || ev.TotalMarks != 0 || ev.Percentage != 0 || len(ev.Answers) != 0 {
		t.Fatalf("empty evaluation not zero: %+v", ev)
	}
}

func TestEvaluate_PercentageRounding(t *testing.T) {
	// 1 of 3 single-mark questions correct: 33.333...% -> 33.33
	qs := []Question{
		{ID: "a", CorrectAnswer: "x", Marks: 1},
		{ID: "b", CorrectAnswer: "x", Marks: 1},
		{ID: "c", CorrectAnswer: "x", Marks: 1},
	}
	ev := Evaluate([]Answer{
		{QuestionID: "a", Answer: "x"},
		{QuestionID: "b", Answer: "y"},
		{QuestionID: "c", Answer: "y"},
	}, qs)
	if ev.Percentage != 33.33 {
		t.Fatalf("expected 33.33, got %v", ev.Percentage)
	}

	// 2 of 3: 66.666...% -> 66.67 (round half up on scaled value)
	ev = Evaluate([]Answer{
		{QuestionID: "a", Answer: "x"},
		{QuestionID: "b", Answer: "x"},
		{QuestionID: "c", Answer: "y"},
	}, qs)
	if ev.Percentage != 66.67 {
		t.Fatalf("expected 66.67, got %v", ev.Percentage)
	}
}

func TestEvaluate_ScoreInvariant(t *testing.T) {
	qs := []Question{
		{ID: "q1", CorrectAnswer: "A", Marks: 50},
		{ID: "q2", CorrectAnswer: "B", Marks: 50},
	}
	ev := Evaluate([]Answer{
		{QuestionID: "q1", Answer: "A"},
		{QuestionID: "q2", Answer: "C"},
	}, qs)

	sum := 0.0
	for _, a := range ev.Answers {
		sum += a.MarksObtained
	}
	if sum != ev.Score {
		t.Fatalf("score %v != sum of marksObtained %v", ev.Score, sum)
	}
	if ev.Score != 50 || ev.TotalMarks != 100 || ev.Percentage != 50.00 {
		t.Fatalf("score=%v total=%v pct=%v", ev.Score, ev.TotalMarks, ev.Percentage)
	}
	if !ev.Answers[0].IsCorrect || ev.Answers[1].IsCorrect {
		t.Fatalf("unexpected correctness: %+v", ev.Answers)
	}
}

func TestEvaluate_Deterministic(t *testing.T) {
	qs := []Question{
		{ID: "q1", CorrectAnswer: "True", Marks: 1.5},
		{ID: "q2", CorrectAnswer: "gopher", Marks: 2.5},
	}
	in := []Answer{
		{QuestionID: "q2", Answer: "GOPHER"},
		{QuestionID: "q1", Answer: "false"},
	}
	first := Evaluate(in, qs)
	second := Evaluate(in, qs)
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("evaluation not deterministic:\n%+v\n%+v", first, second)
	}
}

func TestEvaluate_SnapshotsCorrectAnswer(t *testing.T) {
	qs := []Question{{ID: "q1", CorrectAnswer: "42", Marks: 1}}
	ev := Evaluate([]Answer{{QuestionID: "q1", Answer: "41"}}, qs)
	if ev.Answers[0].CorrectAnswer != "42" {
		t.Fatalf("correct answer not snapshotted: %+v", ev.Answers[0])
	}
}

func TestRound2(t *testing.T) {
	cases := []struct{ in, want float64 }{
		{33.333333, 33.33},
		{66.666666, 66.67},
		{0.125, 0.13},
		{0, 0},
		{100, 100},
	}
	for _, c := range cases {
		if got := Round2(c.in); got != c.want {
			t.Errorf("Round2(%v) = %v, want %v", c.in, got, c.want)
		}
	}
}
