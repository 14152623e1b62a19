package errors

import (
	"fmt"

	"github.com/j-f1/forked-engine262/pkg/source"
)

// Position is a location inside a fixture file. Line and Column are 1-based.
type Position struct {
	Line   int
	Column int
	Source *source.SourceFile
}

func (p Position) String() string {
	if p.Source != nil {
		return fmt.Sprintf("%s:%d:%d", p.Source.DisplayPath(), p.Line, p.Column)
	}
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// IsValid reports whether the position carries line information.
func (p Position) IsValid() bool {
	return p.Line > 0
}
