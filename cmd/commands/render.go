package commands

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/glamour"
	"golang.org/x/term"
)

const defaultWrap = 100

// renderer prints agent replies. On a terminal, replies are rendered as
// markdown; otherwise they are printed verbatim.
type renderer struct {
	out io.Writer
	md  *glamour.TermRenderer
}

func newRenderer(out *os.File) *renderer {
	r := &renderer{out: out}
	fd := int(out.Fd())
	if !term.IsTerminal(fd) {
		return r
	}

	width := defaultWrap
	if w, _, err := term.GetSize(fd); err == nil && w > 0 && w < width {
		width = w
	}
	md, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err == nil {
		r.md = md
	}
	return r
}

// Print writes a reply followed by a newline.
func (r *renderer) Print(text string) {
	if r.md != nil {
		if out, err := r.md.Render(text); err == nil {
			fmt.Fprint(r.out, out)
			return
		}
	}
	fmt.Fprintln(r.out, strings.TrimRight(text, "\n"))
}
