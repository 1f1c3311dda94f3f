// Package diag provides the diagnostic type shared by the lexer, parser,
// type checker, and evaluator, plus source-context/caret formatting.
// Terminal color is delegated to github.com/fatih/color rather than
// hand-rolled ANSI codes.
package diag

import (
	"fmt"
	"strings"

	"github.com/fatih/color"

	"github.com/toylang/toylang/internal/lexer"
)

// Kind is the coarse diagnostic category: which stage of the pipeline
// raised the error.
type Kind string

const (
	Lexical      Kind = "lexical"
	Syntactic    Kind = "syntax"
	NameResolution Kind = "name"
	TypeMismatch Kind = "type"
	Access       Kind = "access"
	Runtime      Kind = "runtime"
)

// Diagnostic is a single compiler or evaluator failure. Pos is optional:
// some errors (e.g. "program has no main function") have no single source
// location.
type Diagnostic struct {
	Kind    Kind
	Message string
	Context string // e.g. the function or statement being visited
	Pos     *lexer.Position
}

func New(kind Kind, pos lexer.Position, format string, args ...any) *Diagnostic {
	p := pos
	return &Diagnostic{Kind: kind, Message: fmt.Sprintf(format, args...), Pos: &p}
}

func NewWithoutPos(kind Kind, format string, args ...any) *Diagnostic {
	return &Diagnostic{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// WithContext returns a copy of d carrying a human-readable context string,
// attached by the visitor that produced d if it didn't set one already
//.
func (d *Diagnostic) WithContext(ctx string) *Diagnostic {
	cp := *d
	cp.Context = ctx
	return &cp
}

// WithPosIfMissing attaches pos to d only if d has no position yet,
// matching "attaching a location when missing is the responsibility of
// each visitor".
func (d *Diagnostic) WithPosIfMissing(pos lexer.Position) *Diagnostic {
	if d.Pos != nil {
		return d
	}
	cp := *d
	p := pos
	cp.Pos = &p
	return &cp
}

func (d *Diagnostic) Error() string {
	return d.Format("", false)
}

// Format renders the diagnostic with a source-line excerpt and a caret
// pointing at the column. When useColor is true the kind tag and caret
// are colorized via github.com/fatih/color; source is the full original
// source text, used to extract the offending line (pass "" to skip the
// excerpt).
func (d *Diagnostic) Format(source string, useColor bool) string {
	var sb strings.Builder

	tag := fmt.Sprintf("[%s]", d.Kind)
	if useColor {
		tag = color.New(color.Bold, color.FgRed).Sprint(tag)
	}

	if d.Pos != nil {
		fmt.Fprintf(&sb, "%s %d:%d: %s\n", tag, d.Pos.Line, d.Pos.Column, d.Message)
	} else {
		fmt.Fprintf(&sb, "%s %s\n", tag, d.Message)
	}

	if d.Context != "" {
		fmt.Fprintf(&sb, "  in %s\n", d.Context)
	}

	if source != "" && d.Pos != nil {
		if line := sourceLine(source, d.Pos.Line); line != "" {
			prefix := fmt.Sprintf("%4d | ", d.Pos.Line)
			sb.WriteString(prefix)
			sb.WriteString(line)
			sb.WriteString("\n")
			caret := strings.Repeat(" ", len(prefix)+max(d.Pos.Column-1, 0)) + "^"
			if useColor {
				caret = color.New(color.Bold, color.FgRed).Sprint(caret)
			}
			sb.WriteString(caret)
			sb.WriteString("\n")
		}
	}

	return strings.TrimRight(sb.String(), "\n")
}

func sourceLine(source string, line int) string {
	lines := strings.Split(source, "\n")
	if line < 1 || line > len(lines) {
		return ""
	}
	return lines[line-1]
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// List is an accumulator of diagnostics, used by the type checker's
// check_program_multiple_errors pass which collects every
// error across every function rather than stopping at the first.
type List struct {
	items []*Diagnostic
}

func (l *List) Add(d *Diagnostic) { l.items = append(l.items, d) }

func (l *List) HasErrors() bool { return len(l.items) > 0 }

func (l *List) Items() []*Diagnostic { return l.items }

func (l *List) Error() string {
	parts := make([]string, len(l.items))
	for i, d := range l.items {
		parts[i] = d.Error()
	}
	return strings.Join(parts, "\n")
}
