// Package diag implements the compiler's diagnostic collector: an
// arena-backed, append-only list of structured diagnostics shared by every
// pipeline stage.
package diag

import (
	"fmt"
	"io"
	"strings"

	"github.com/theSherwood/wacc/internal/arena"
)

// Severity classifies a Diagnostic. The first four are fatal; Warning is not.
type Severity int

const (
	Lexical Severity = iota
	Syntax
	Semantic
	Codegen
	Warning
)

// String renders the severity as "error" for every fatal kind, "warning"
// otherwise.
func (s Severity) String() string {
	if s == Warning {
		return "warning"
	}
	return "error"
}

// Diagnostic ids, grouped by 1000-series, grounded on
// original_source/src/compiler.h's ERROR_* defines.
const (
	LexInvalidCharacter   = 1001
	LexUnterminatedString = 1002
	LexUnterminatedComment = 1003
	LexInvalidEscape      = 1004
	LexNumberTooLarge     = 1005

	SyntaxExpectedToken       = 2001
	SyntaxUnexpectedToken     = 2002
	SyntaxMissingSemicolon    = 2003
	SyntaxMissingBrace        = 2004
	SyntaxMissingParen        = 2005
	SyntaxMalformedExpression = 2006
	SyntaxExpectedFunction    = 2007
	SyntaxExpectedStatement   = 2008
	SyntaxExpectedExpression  = 2009
	SyntaxMissingOperator     = 2010

	SemUndefinedVariable          = 3001
	SemUndefinedFunction          = 3002
	SemTypeMismatch               = 3003
	SemRedefinition               = 3004
	SemInvalidAssignment          = 3005
	SemInvalidCall                = 3006
	SemBreakOutsideLoop           = 3007
	SemContinueOutsideLoop        = 3008
	SemDependentStatementDecl     = 3009

	CodegenWASMLimitExceeded   = 4001
	CodegenInvalidMemoryAccess = 4002
	CodegenUnsupportedOperation = 4003
)

// Location pinpoints a diagnostic in the source.
type Location struct {
	File   string
	Line   int
	Column int
}

// Diagnostic is a single reported problem.
type Diagnostic struct {
	ID         int
	Severity   Severity
	Location   Location
	Message    string
	Suggestion string
	Context    string // the offending source line, verbatim
}

// List is a growable, arena-backed ordered list of diagnostics. Appending
// a fatal-severity diagnostic sets the sticky HasFatal flag.
type List struct {
	pool     *arena.Pool[Diagnostic]
	entries  []*Diagnostic
	hasFatal bool
}

// NewList creates an empty diagnostic list backed by a.
func NewList(a *arena.Arena) *List {
	return &List{pool: arena.NewPool[Diagnostic](a, 64)}
}

// Append adds d to the list, preserving insertion order.
func (l *List) Append(d Diagnostic) {
	entry := l.pool.New()
	*entry = d
	l.entries = append(l.entries, entry)
	if d.Severity != Warning {
		l.hasFatal = true
	}
}

// HasFatal reports the sticky fatal flag.
func (l *List) HasFatal() bool {
	return l.hasFatal
}

// Entries returns the diagnostics in discovery order. The slice must not
// be mutated by callers.
func (l *List) Entries() []*Diagnostic {
	return l.entries
}

// Len reports how many diagnostics have been appended.
func (l *List) Len() int {
	return len(l.entries)
}

// SourceLine returns the 1-indexed line of source, or "" if line is out of
// range. Used by every stage to fill in Diagnostic.Context.
func SourceLine(source string, line int) string {
	if line < 1 {
		return ""
	}
	lines := strings.Split(source, "\n")
	if line > len(lines) {
		return ""
	}
	return lines[line-1]
}

// Print renders every diagnostic to w in a fixed, human-readable format:
//
//	<file>:<line>:<col>: id: <id> <severity>: <message>
//	   <source line>
//	   <spaces>^
//	note: <suggestion>
func (l *List) Print(w io.Writer) {
	for _, d := range l.entries {
		fmt.Fprintf(w, "%s:%d:%d: id: %d %s: %s\n",
			d.Location.File, d.Location.Line, d.Location.Column, d.ID, d.Severity, d.Message)
		if d.Context != "" {
			fmt.Fprintf(w, "   %s\n", d.Context)
			col := d.Location.Column
			if col < 1 {
				col = 1
			}
			fmt.Fprintf(w, "   %s^\n", strings.Repeat(" ", col-1))
		}
		if d.Suggestion != "" {
			fmt.Fprintf(w, "note: %s\n", d.Suggestion)
		}
	}
}
