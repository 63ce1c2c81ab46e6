// Package dom defines the small slice of a document tree the broker needs and
// provides an implementation over golang.org/x/net/html.
package dom

// Element is a node of a document tree.
type Element interface {
	// Attr returns the value of the named attribute and whether it is present.
	Attr(name string) (string, bool)
	// SetAttr sets the named attribute, adding it if missing.
	SetAttr(name, value string)
	// AddClass appends class to the element's class list.
	AddClass(class string)
	// Classes returns the element's class list in order.
	Classes() []string
	// Text returns the concatenated text content of the element.
	Text() string
	// SetText replaces the element's children with a single text node.
	SetText(text string)
	// QueryAttr returns every descendant carrying the named attribute, in
	// document order. The element itself is never included.
	QueryAttr(name string) []Element
	// String is a short human-readable description used in logs and errors.
	String() string
}
