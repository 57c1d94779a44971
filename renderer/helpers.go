package renderer

import (
	"bytes"
	"io"
)

// ConditionalBlock renders an optional report section. block writes into a
// buffer and reports whether the section has content; only then is it copied
// to w, so empty sections leave no heading behind.
func ConditionalBlock(w io.Writer, block func(io.Writer) bool) {
	var buf bytes.Buffer
	if block(&buf) {
		io.Copy(w, &buf)
	}
}
