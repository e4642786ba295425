// Package report renders a run result as plain text, JSON or a WCIF document
// with the groups and assignments written back.
package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/okian/heats/internal/domain/model"
	"github.com/okian/heats/internal/domain/wcif"
)

// Format selects a rendering.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatWCIF Format = "wcif"
)

// ParseFormat accepts text, json and wcif.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatText, FormatJSON, FormatWCIF:
		return f, nil
	case "":
		return FormatText, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
	}
}

// Writer renders results.
type Writer struct {
	loc    *time.Location
	indent string
}

// Option configures a Writer.
type Option func(*Writer)

// WithLocation prints text windows in loc instead of the times' own zone.
func WithLocation(loc *time.Location) Option {
	return func(w *Writer) { w.loc = loc }
}

// WithIndent sets the JSON indent. An empty string writes compact JSON.
func WithIndent(indent string) Option {
	return func(w *Writer) { w.indent = indent }
}

// New returns a Writer.
func New(opts ...Option) *Writer {
	w := &Writer{indent: "  "}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Write renders r in format f. comp is only read for FormatWCIF, where it is
// the document the groups are written back into; it is not modified.
func (w *Writer) Write(out io.Writer, f Format, r *model.Result, comp *wcif.Competition) error {
	switch f {
	case FormatText:
		return w.Text(out, r)
	case FormatJSON:
		return w.JSON(out, r)
	case FormatWCIF:
		if comp == nil {
			return ErrMissingSchedule
		}
		doc, err := Apply(comp, r)
		if err != nil {
			return err
		}
		return wcif.Encode(out, doc)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, f)
	}
}

// Text writes one line per activity:
//
//	333/444bf, group 1, judging, 09:00-09:20, [Ada, Grace]
func (w *Writer) Text(out io.Writer, r *model.Result) error {
	for i := range r.Activities {
		a := &r.Activities[i]
		names := make([]string, len(a.Assigned))
		for j, p := range a.Assigned {
			names[j] = p.Name
		}
		_, err := fmt.Fprintf(out, "%s, group %d, %s, %s-%s, [%s]\n",
			a.Label(), a.Group, a.Role, w.clock(a.Start), w.clock(a.End), strings.Join(names, ", "))
		if err != nil {
			return err
		}
	}
	return nil
}

// JSON writes the whole result.
func (w *Writer) JSON(out io.Writer, r *model.Result) error {
	enc := json.NewEncoder(out)
	if w.indent != "" {
		enc.SetIndent("", w.indent)
	}
	return enc.Encode(r)
}

func (w *Writer) clock(t time.Time) string {
	if w.loc != nil {
		t = t.In(w.loc)
	}
	return t.Format("15:04")
}
