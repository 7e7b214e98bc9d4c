package parser

import "fmt"

// Error defines a parse error with source context. The End position
// marks the end of the offending source range and may equal Pos.
type Error struct {
	Pos Position
	End Position
	Msg string
}

// NewError creates a new, formatted error message with the given source context.
func NewError(pos, end Position, f string, argv ...interface{}) *Error {
	return &Error{
		Pos: pos,
		End: end,
		Msg: fmt.Sprintf(f, argv...),
	}
}

func (e *Error) Error() string {
	return e.Pos.String() + " " + e.Msg
}
