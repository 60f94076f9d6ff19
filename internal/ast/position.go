package ast

import "strconv"

// Position identifies a point in KQL or Lucene source text.
//
// Offset is 0-based (bytes); Line and Column are 1-based, matching the
// convention used throughout kuery's decode errors.
type Position struct {
	Offset int
	Line   int
	Column int
}

// String renders the position as "line:column" for use in messages.
func (p Position) String() string {
	return strconv.Itoa(p.Line) + ":" + strconv.Itoa(p.Column)
}
