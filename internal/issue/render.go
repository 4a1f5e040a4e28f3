// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"strings"

	"github.com/charmbracelet/glamour"
)

// render is replaceable for tests.
var render = glamour.Render

// RenderMarkdown renders markdown for terminal display. Rendering failures
// fall back to the raw markdown so error output is never swallowed.
func RenderMarkdown(md string) string {
	out, err := render(md, "auto")
	if err != nil {
		return md
	}
	return strings.TrimRight(out, "\n")
}
