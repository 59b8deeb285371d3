package moodle

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/examstack/examstack/internal/exam"
)

// QuestionCreator is the slice of the exam store the importer needs.
type QuestionCreator interface {
	CreateQuestion(ctx context.Context, q exam.Question) error
}

// ImportError records one failed question without aborting the batch.
type ImportError struct {
	Question string `json:"question"`
	Error    string `json:"error"`
}

// Report summarizes one import run. Total counts real questions only;
// category markers are skipped before counting.
type Report struct {
	Total   int           `json:"total"`
	Success int           `json:"success"`
	Failed  int           `json:"failed"`
	Errors  []ImportError `json:"errors"`
}

// PreviewEntry is one positional slot in a preview: either the
// normalized question or the error that question produced.
type PreviewEntry struct {
	Question     *exam.Question `json:"question,omitempty"`
	Error        bool           `json:"error,omitempty"`
	Message      string         `json:"message,omitempty"`
	QuestionName string         `json:"questionName,omitempty"`
}

// Importer runs Moodle XML files through parse, normalize and persist.
type Importer struct {
	store QuestionCreator
	newID func() string
}

func NewImporter(store QuestionCreator) *Importer {
	return &Importer{store: store, newID: uuid.NewString}
}

// Import parses xmlText and persists every normalizable question under
// examID. Each question is isolated: a bad one is reported and skipped,
// the rest still import. Successes are persisted as they are produced,
// so a partial batch keeps its good questions.
func (im *Importer) Import(ctx context.Context, xmlText, examID string) (Report, error) {
	nodes, err := questionNodes(xmlText)
	if err != nil {
		return Report{}, err
	}

	rep := Report{Errors: []ImportError{}}
	for _, n := range nodes {
		if typeOf(n) == "category" {
			continue
		}
		rep.Total++

		q, err := Normalize(n, examID)
		if err != nil {
			rep.Failed++
			rep.Errors = append(rep.Errors, ImportError{Question: labelOf(n), Error: err.Error()})
			continue
		}
		q.ID = im.newID()
		if err := im.store.CreateQuestion(ctx, q); err != nil {
			rep.Failed++
			rep.Errors = append(rep.Errors, ImportError{Question: labelOf(n), Error: err.Error()})
			continue
		}
		rep.Success++
	}
	return rep, nil
}

// Preview normalizes without persisting. Entries keep file order, with
// per-question errors inline, so the trainer can review the exact
// outcome of an import before committing to it.
func (im *Importer) Preview(xmlText, examID string) ([]PreviewEntry, error) {
	nodes, err := questionNodes(xmlText)
	if err != nil {
		return nil, err
	}

	out := []PreviewEntry{}
	for _, n := range nodes {
		if typeOf(n) == "category" {
			continue
		}
		q, err := Normalize(n, examID)
		if err != nil {
			out = append(out, PreviewEntry{Error: true, Message: err.Error(), QuestionName: labelOf(n)})
			continue
		}
		out = append(out, PreviewEntry{Question: &q})
	}
	return out, nil
}

// questionNodes parses the document and locates the question list under
// the root shapes Moodle exports use: <quiz>, <questions>, or a single
// bare <question>.
func questionNodes(xmlText string) ([]*Node, error) {
	root, err := parseDocument(xmlText)
	if err != nil {
		return nil, &MalformedXMLError{Err: err}
	}
	switch strings.ToLower(root.Name) {
	case "quiz", "questions":
		if qs := root.ChildrenNamed("question"); len(qs) > 0 {
			return qs, nil
		}
	case "question":
		return []*Node{root}, nil
	}
	return nil, &MalformedXMLError{Reason: "no questions found in XML: please ensure the file is in Moodle XML format"}
}

// labelOf identifies a question in error reports.
func labelOf(n *Node) string {
	if c := n.Child("name"); c != nil {
		if s := extractText(c); s != "" {
			return s
		}
	}
	if c := n.Child("questiontext"); c != nil {
		if s := extractText(c); s != "" {
			return s
		}
	}
	return "Unknown"
}
