package console

import "strings"

// Segment is a run of text inside a transcript line. A segment with an
// Href is an inline link; the host decides how to navigate it.
type Segment struct {
	Text string `json:"text"`
	Href string `json:"href,omitempty"`
}

// IsLink reports whether the segment renders as a link.
func (s Segment) IsLink() bool {
	return s.Href != ""
}

// Line is one row of console output: plain text or text mixed with links.
type Line struct {
	Segments []Segment `json:"segments"`
}

// Text builds a plain-text line.
func Text(s string) Line {
	return Line{Segments: []Segment{{Text: s}}}
}

// Linked builds a line from alternating segments, e.g.
// Linked(Segment{Text: "See "}, Segment{Text: "Projects", Href: "/projects"}).
func Linked(segments ...Segment) Line {
	return Line{Segments: segments}
}

// Link is shorthand for a link segment.
func Link(text, href string) Segment {
	return Segment{Text: text, Href: href}
}

// Plain is shorthand for a text segment.
func Plain(text string) Segment {
	return Segment{Text: text}
}

// HasLinks reports whether any segment of the line is a link.
func (l Line) HasLinks() bool {
	for _, s := range l.Segments {
		if s.IsLink() {
			return true
		}
	}
	return false
}

// String flattens the line to its visible text.
func (l Line) String() string {
	var b strings.Builder
	for _, s := range l.Segments {
		b.WriteString(s.Text)
	}
	return b.String()
}

// Strings flattens a slice of lines, mostly for assertions and plain renderers.
func Strings(lines []Line) []string {
	out := make([]string, len(lines))
	for i, l := range lines {
		out[i] = l.String()
	}
	return out
}

func textLines(ss ...string) []Line {
	out := make([]Line, len(ss))
	for i, s := range ss {
		out[i] = Text(s)
	}
	return out
}
