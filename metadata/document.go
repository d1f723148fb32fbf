package metadata

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/arloliu/imd/errs"
)

// Node is one element of a parsed metadata document.
type Node struct {
	Name     string
	Attrs    map[string]string
	Children []*Node

	text strings.Builder
}

// Text returns the element's character data with surrounding space trimmed.
func (n *Node) Text() string {
	return strings.TrimSpace(n.text.String())
}

// Child returns the first direct child called name, or nil.
func (n *Node) Child(name string) *Node {
	for _, c := range n.Children {
		if c.Name == name {
			return c
		}
	}

	return nil
}

// ChildText returns the text of the first direct child called name.
func (n *Node) ChildText(name string) (string, bool) {
	c := n.Child(name)
	if c == nil {
		return "", false
	}

	return c.Text(), true
}

// ChildFloat parses the text of the first direct child called name as a float64.
func (n *Node) ChildFloat(name string) (float64, error) {
	s, ok := n.ChildText(name)
	if !ok {
		return 0, fmt.Errorf("%w: element %s has no %s child", errs.ErrMalformedInput, n.Name, name)
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: element %s/%s: %q is not a number", errs.ErrMalformedInput, n.Name, name, s)
	}

	return v, nil
}

// Select evaluates an absolute slash-separated path such as
// "/ExperimentSchema/AcquisitionMarkers" against the document rooted at n and
// returns every matching element in document order. The first path step must
// name n itself.
func (n *Node) Select(path string) []*Node {
	steps := strings.Split(strings.Trim(path, "/"), "/")
	if len(steps) == 0 || steps[0] != n.Name {
		return nil
	}

	current := []*Node{n}
	for _, step := range steps[1:] {
		var next []*Node
		for _, node := range current {
			for _, c := range node.Children {
				if c.Name == step {
					next = append(next, c)
				}
			}
		}
		if len(next) == 0 {
			return nil
		}
		current = next
	}

	return current
}

// Parse parses a metadata document into an element tree. Namespaces are
// dropped from element names. Syntax errors are reported as
// errs.ErrMalformedInput.
func Parse(text string) (*Node, error) {
	dec := xml.NewDecoder(strings.NewReader(text))
	// Instrument documents declare utf-16 even though the text is already decoded.
	dec.CharsetReader = func(_ string, input io.Reader) (io.Reader, error) {
		return input, nil
	}

	var (
		root  *Node
		stack []*Node
	)

	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: failed to parse experiment schema xml: %w", errs.ErrMalformedInput, err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			node := &Node{Name: t.Name.Local}
			if len(t.Attr) > 0 {
				node.Attrs = make(map[string]string, len(t.Attr))
				for _, a := range t.Attr {
					node.Attrs[a.Name.Local] = a.Value
				}
			}
			if len(stack) == 0 {
				if root != nil {
					return nil, fmt.Errorf("%w: multiple root elements", errs.ErrMalformedInput)
				}
				root = node
			} else {
				parent := stack[len(stack)-1]
				parent.Children = append(parent.Children, node)
			}
			stack = append(stack, node)
		case xml.EndElement:
			stack = stack[:len(stack)-1]
		case xml.CharData:
			if len(stack) > 0 {
				stack[len(stack)-1].text.Write(t)
			}
		}
	}

	if root == nil {
		return nil, fmt.Errorf("%w: empty experiment schema document", errs.ErrMalformedInput)
	}

	return root, nil
}
