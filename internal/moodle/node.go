package moodle

import (
	"encoding/xml"
	"errors"
	"io"
	"strings"
)

// Node is a generic view of one parsed XML element. Moodle exports are
// only semi-standardized: the same logical field shows up as an
// attribute in one dialect and a child element in another, so the
// normalizer probes a Node rather than unmarshalling a fixed struct.
type Node struct {
	Name     string
	Attrs    map[string]string
	Text     string // accumulated character data, CDATA included
	Children []*Node
}

// Attr returns the attribute value for key, case-insensitively.
func (n *Node) Attr(key string) (string, bool) {
	v, ok := n.Attrs[strings.ToLower(key)]
	return v, ok
}

// Child returns the first direct child element with the given name
// (case-insensitive), or nil.
func (n *Node) Child(name string) *Node {
	for _, c := range n.Children {
		if strings.EqualFold(c.Name, name) {
			return c
		}
	}
	return nil
}

// ChildrenNamed returns all direct child elements with the given name.
func (n *Node) ChildrenNamed(name string) []*Node {
	out := []*Node{}
	for _, c := range n.Children {
		if strings.EqualFold(c.Name, name) {
			out = append(out, c)
		}
	}
	return out
}

// parse builds a Node tree from XML. The strict configuration matches
// the standard Moodle export; the permissive one tolerates the sloppier
// dialects some older exporters emit (unclosed tags, odd charsets).
func parse(r io.Reader, strict bool) (*Node, error) {
	dec := xml.NewDecoder(r)
	if !strict {
		dec.Strict = false
		dec.AutoClose = xml.HTMLAutoClose
		dec.CharsetReader = func(charset string, input io.Reader) (io.Reader, error) {
			return input, nil
		}
	}

	var root *Node
	var stack []*Node
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			n := &Node{Name: t.Name.Local, Attrs: map[string]string{}}
			for _, a := range t.Attr {
				n.Attrs[strings.ToLower(a.Name.Local)] = a.Value
			}
			if len(stack) == 0 {
				root = n
			} else {
				parent := stack[len(stack)-1]
				parent.Children = append(parent.Children, n)
			}
			stack = append(stack, n)
		case xml.EndElement:
			if len(stack) > 0 {
				stack = stack[:len(stack)-1]
			}
		case xml.CharData:
			if len(stack) > 0 {
				stack[len(stack)-1].Text += string(t)
			}
		}
	}
	if root == nil {
		return nil, errors.New("empty document")
	}
	return root, nil
}

// parseDocument tries the strict decoder first and falls back to the
// permissive configuration, since XML dialects vary across Moodle
// export versions.
func parseDocument(xmlText string) (*Node, error) {
	root, err := parse(strings.NewReader(xmlText), true)
	if err == nil {
		return root, nil
	}
	return parse(strings.NewReader(xmlText), false)
}
