// Package label assigns each benchmark label a stable display colour for
// terminal diagnostics. It plays no part in measurement or in the data
// written to the result stream.
package label

import (
	"io"
	"os"

	"github.com/muesli/termenv"
	"golang.org/x/term"
)

// palette is cycled through in first-seen order: magenta, yellow, cyan,
// green.
var palette = []termenv.ANSIColor{
	termenv.ANSIMagenta,
	termenv.ANSIYellow,
	termenv.ANSICyan,
	termenv.ANSIGreen,
}

// Registry remembers the order in which labels were first seen. It is not
// safe for concurrent use.
type Registry struct {
	profile termenv.Profile
	index   map[string]int
}

// NewRegistry returns a Registry rendering with the given colour profile.
// termenv.Ascii disables colour entirely.
func NewRegistry(profile termenv.Profile) *Registry {
	return &Registry{
		profile: profile,
		index:   make(map[string]int),
	}
}

// ForWriter picks a profile for w: colour only when w is a terminal and
// colour was not disabled via noColor or the NO_COLOR environment
// variable.
func ForWriter(w io.Writer, noColor bool) *Registry {
	if noColor || os.Getenv("NO_COLOR") != "" {
		return NewRegistry(termenv.Ascii)
	}

	f, ok := w.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return NewRegistry(termenv.Ascii)
	}

	return NewRegistry(termenv.NewOutput(f).EnvColorProfile())
}

// Index returns the position at which label was first registered,
// registering it if needed.
func (r *Registry) Index(label string) int {
	if i, ok := r.index[label]; ok {
		return i
	}

	i := len(r.index)
	r.index[label] = i

	return i
}

// Format returns label styled with its colour.
func (r *Registry) Format(label string) string {
	color := palette[r.Index(label)%len(palette)]

	return r.profile.String(label).Foreground(r.profile.Convert(color)).String()
}
