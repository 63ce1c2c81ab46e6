package dom

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"
)

// Document is a parsed HTML document.
type Document struct {
	root *html.Node
}

// Parse reads a complete HTML document.
func Parse(r io.Reader) (*Document, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}
	return &Document{root: root}, nil
}

// ParseString is a convenience wrapper around Parse.
func ParseString(s string) (*Document, error) {
	return Parse(strings.NewReader(s))
}

// Root returns the document node. Every element of the document is a
// descendant of it.
func (d *Document) Root() Element {
	return Wrap(d.root)
}

// Render writes the document back out as HTML.
func (d *Document) Render(w io.Writer) error {
	return html.Render(w, d.root)
}

// Wrap exposes an existing html.Node as an Element.
func Wrap(n *html.Node) Element {
	return &node{n: n}
}

// node adapts *html.Node to Element.
type node struct {
	n *html.Node
}

func (e *node) Attr(name string) (string, bool) {
	for _, a := range e.n.Attr {
		if a.Namespace == "" && a.Key == name {
			return a.Val, true
		}
	}
	return "", false
}

func (e *node) SetAttr(name, value string) {
	for i, a := range e.n.Attr {
		if a.Namespace == "" && a.Key == name {
			e.n.Attr[i].Val = value
			return
		}
	}
	e.n.Attr = append(e.n.Attr, html.Attribute{Key: name, Val: value})
}

func (e *node) AddClass(class string) {
	current, _ := e.Attr("class")
	if strings.TrimSpace(current) == "" {
		e.SetAttr("class", class)
		return
	}
	e.SetAttr("class", current+" "+class)
}

func (e *node) Classes() []string {
	current, _ := e.Attr("class")
	return strings.Fields(current)
}

func (e *node) Text() string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(e.n)
	return sb.String()
}

func (e *node) SetText(text string) {
	for c := e.n.FirstChild; c != nil; {
		next := c.NextSibling
		e.n.RemoveChild(c)
		c = next
	}
	e.n.AppendChild(&html.Node{Type: html.TextNode, Data: text})
}

func (e *node) QueryAttr(name string) []Element {
	var found []Element
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.ElementNode {
				if _, ok := (&node{n: c}).Attr(name); ok {
					found = append(found, &node{n: c})
				}
			}
			walk(c)
		}
	}
	walk(e.n)
	return found
}

func (e *node) String() string {
	switch e.n.Type {
	case html.DocumentNode:
		return "#document"
	case html.ElementNode:
		if id, ok := e.Attr("id"); ok && id != "" {
			return e.n.Data + "#" + id
		}
		return "<" + e.n.Data + ">"
	default:
		return fmt.Sprintf("node(%d)", e.n.Type)
	}
}
