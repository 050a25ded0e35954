// Package symtab implements the chain-of-scopes symbol table shared by the
// semantic analyzer and the IR generator.
package symtab

import "github.com/theSherwood/wacc/internal/types"

// Binding is what a name resolves to: its declared type and its WASM local
// index, assigned once and never shifted.
type Binding struct {
	Type       types.Type
	LocalIndex int
}

// Scope is one link in the lexical scope chain.
type Scope struct {
	names  map[string]Binding
	parent *Scope
}

// NewScope opens a new scope chained to parent. parent may be nil for the
// outermost (function) scope.
func NewScope(parent *Scope) *Scope {
	return &Scope{names: make(map[string]Binding), parent: parent}
}

// Parent returns the enclosing scope, or nil at the outermost scope.
func (s *Scope) Parent() *Scope {
	return s.parent
}

// Declare binds name in this scope only. Callers must check
// LookupCurrentScope first to detect redefinition.
func (s *Scope) Declare(name string, b Binding) {
	s.names[name] = b
}

// Lookup searches this scope and, failing that, enclosing scopes
// (innermost outward).
func (s *Scope) Lookup(name string) (Binding, bool) {
	for scope := s; scope != nil; scope = scope.parent {
		if b, ok := scope.names[name]; ok {
			return b, true
		}
	}
	return Binding{}, false
}

// LookupCurrentScope searches only this scope, used by the semantic
// analyzer's redefinition check: a variable declaration whose name already
// exists in the current (not a parent) scope is a redefinition.
func (s *Scope) LookupCurrentScope(name string) (Binding, bool) {
	b, ok := s.names[name]
	return b, ok
}
