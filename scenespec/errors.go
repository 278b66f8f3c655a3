package scenespec

import "fmt"

// UnresolvedSymbolError reports a cross-module name reference with no
// matching declaration anywhere in the symbol table.
type UnresolvedSymbolError struct {
	Module string // module of the referencing construct
	Ref    string // referencing construct, e.g. `rule -> "move_right"`
	Symbol string // the missing name
}

func (e *UnresolvedSymbolError) Error() string {
	return fmt.Sprintf("%s: %s references undefined symbol %q", e.Module, e.Ref, e.Symbol)
}
