// Package diffs compares two decoded variable records key by key.
package diffs

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/sergi/go-diff/diffmatchpatch"

	"github.com/cancianpiero/deployvars/internal/vars"
)

// Kind classifies one entry of a comparison.
type Kind string

const (
	Added   Kind = "added"
	Removed Kind = "removed"
	Changed Kind = "changed"
)

// Entry is one differing key between two records.
type Entry struct {
	Name string `json:"key"`
	Op   Kind   `json:"op"`
	Old  string `json:"old,omitempty"`
	New  string `json:"new,omitempty"`
}

// Compare returns the keys whose rendered values differ between a and b, in
// registry order. A key empty on one side and set on the other reports as
// added or removed.
func Compare(a, b *vars.Config) []Entry {
	var entries []Entry
	for i := range vars.Registry {
		spec := &vars.Registry[i]
		oldValue := spec.StringValue(a)
		newValue := spec.StringValue(b)
		if oldValue == newValue {
			continue
		}
		entry := Entry{Name: spec.Name, Op: Changed, Old: oldValue, New: newValue}
		if spec.Kind == vars.KindString {
			switch {
			case oldValue == "":
				entry.Op = Added
				entry.Old = ""
			case newValue == "":
				entry.Op = Removed
				entry.New = ""
			}
		}
		entries = append(entries, entry)
	}
	return entries
}

// Render formats entries for the terminal. With colorize, changed values get
// a character-level diff: deletions red, insertions green.
func Render(entries []Entry, colorize bool) string {
	if len(entries) == 0 {
		return "no differences\n"
	}

	var (
		red   = color.New(color.FgRed)
		green = color.New(color.FgGreen)
		b     strings.Builder
	)

	for _, entry := range entries {
		switch entry.Op {
		case Added:
			line := fmt.Sprintf("+ %s = %q", entry.Name, entry.New)
			if colorize {
				line = green.Sprint(line)
			}
			b.WriteString(line + "\n")
		case Removed:
			line := fmt.Sprintf("- %s = %q", entry.Name, entry.Old)
			if colorize {
				line = red.Sprint(line)
			}
			b.WriteString(line + "\n")
		default:
			b.WriteString(fmt.Sprintf("~ %s = %s\n", entry.Name, inline(entry.Old, entry.New, colorize, red, green)))
		}
	}
	return b.String()
}

func inline(oldValue, newValue string, colorize bool, red, green *color.Color) string {
	if !colorize {
		return fmt.Sprintf("%q -> %q", oldValue, newValue)
	}

	dmp := diffmatchpatch.New()
	segments := dmp.DiffMain(oldValue, newValue, false)
	segments = dmp.DiffCleanupSemantic(segments)

	var b strings.Builder
	for _, segment := range segments {
		switch segment.Type {
		case diffmatchpatch.DiffDelete:
			b.WriteString(red.Sprint(segment.Text))
		case diffmatchpatch.DiffInsert:
			b.WriteString(green.Sprint(segment.Text))
		default:
			b.WriteString(segment.Text)
		}
	}
	return b.String()
}
