package testutil

import (
	"testing"

	"github.com/sabberworm/wok/internal/dom"
	"github.com/stretchr/testify/require"
)

// FindByID parses the rendered output and returns the element with the given
// id. It fails the test when there is none.
func FindByID(t *testing.T, result *HarnessResult, id string) dom.Element {
	t.Helper()
	doc, err := dom.ParseString(result.Output)
	require.NoError(t, err, "rendered output is not a document")

	for _, el := range doc.Root().QueryAttr("id") {
		if v, _ := el.Attr("id"); v == id {
			return el
		}
	}
	require.Failf(t, "element not found", "no element with id %q in output", id)
	return nil
}

// AssertText checks the text content of the element with the given id.
func AssertText(t *testing.T, result *HarnessResult, id, want string) {
	t.Helper()
	require.Equal(t, want, FindByID(t, result, id).Text(), "text of #%s", id)
}
