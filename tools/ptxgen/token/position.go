// Copyright 2022 The Firefly Authors.
//
// Use of this source code is governed by a BSD 3-clause
// license that can be found in the LICENSE file.

package token

import (
	"errors"
	"fmt"
	"strconv"
)

// Position describes an arbitrary source location
// within a specification or an instruction.
type Position uint64

// FileStart records the first position in a file.
const FileStart = Position(1<<lineShift) | Position(1<<columnShift)

// Position is encoded as a 16-bit line number,
// a 16-bit column number, and a 32-bit offset
// into the file. A position is valid if it has
// a non-zero line number.
const (
	lineShift = 16 + 32
	lineMax   = 0xffff
	lineMask  = lineMax << lineShift

	columnShift = 32
	columnMax   = 0xffff
	columnMask  = columnMax << columnShift

	offsetMax  = 0xffff_ffff
	offsetMask = offsetMax
)

// MaxOffset defines the largest offset into a file
// that can be represented in a Position.
const MaxOffset = offsetMax

var (
	errInvalidOffset = errors.New("invalid file offset")
	errInvalidLine   = errors.New("invalid line number")
	errInvalidColumn = errors.New("invalid column number")
)

// NewPosition returns a compact representation
// for the given position.
func NewPosition(offset, line, column int) (Position, error) {
	if offset < 0 || offsetMax < offset {
		return 0, errInvalidOffset
	}

	if line < 1 || lineMax < line {
		return 0, errInvalidLine
	}

	if column < 1 || columnMax < column {
		return 0, errInvalidColumn
	}

	p := Position(offset) |
		Position(line)<<lineShift |
		Position(column)<<columnShift

	return p, nil
}

// IsValid returns whether p is a valid position.
func (p Position) IsValid() bool {
	return p&lineMask != 0
}

// Line returns the line number for this position,
// starting from 1.
func (p Position) Line() int {
	return int((p & lineMask) >> lineShift)
}

// Column returns the column number for this position,
// starting from 1.
func (p Position) Column() int {
	return int((p & columnMask) >> columnShift)
}

// Offset returns the byte offset for this position,
// starting from 0.
func (p Position) Offset() int {
	return int(p & offsetMask)
}

// Advance returns a new position n bytes further
// along the same line as p.
//
// Advancing an invalid position returns it unchanged.
func (p Position) Advance(n int) Position {
	if !p.IsValid() {
		return p
	}

	next, err := NewPosition(p.Offset()+n, p.Line(), p.Column()+n)
	if err != nil {
		panic(err)
	}

	return next
}

// File describes this position within the given
// file, with one of the following forms:
//
//	file:line:column  (Valid position within the file)
//	line:column       (Valid position with filename "")
//	file              (Invalid position)
//	?                 (Invalid position with filename "")
func (p Position) File(filename string) string {
	if !p.IsValid() {
		if filename != "" {
			return filename
		}

		return "?"
	}

	if filename == "" {
		return p.String()
	}

	return filename + ":" + p.String()
}

// String describes this position as line:column,
// or ? if the position is invalid.
func (p Position) String() string {
	if !p.IsValid() {
		return "?"
	}

	return strconv.Itoa(p.Line()) + ":" + strconv.Itoa(p.Column())
}

func (p Position) GoString() string {
	return fmt.Sprintf("token.Position{Offset: %d, Line: %d, Column: %d}", p.Offset(), p.Line(), p.Column())
}

// Span is the half-open byte range [Start, End)
// covered by a token or syntax node.
type Span struct {
	Start Position
	End   Position
}

// SpanOf returns the span of n bytes starting at
// pos, which must not cross a line boundary.
func SpanOf(pos Position, n int) Span {
	return Span{Start: pos, End: pos.Advance(n)}
}

// IsValid returns whether s has a valid start.
func (s Span) IsValid() bool {
	return s.Start.IsValid()
}

// Len returns the number of bytes in s.
func (s Span) Len() int {
	if !s.Start.IsValid() || !s.End.IsValid() {
		return 0
	}

	return s.End.Offset() - s.Start.Offset()
}

// Text returns the source bytes covered by s.
func (s Span) Text(src []byte) string {
	start, end := s.Start.Offset(), s.End.Offset()
	if !s.IsValid() || end < start || len(src) < end {
		return ""
	}

	return string(src[start:end])
}

func (s Span) String() string {
	return s.Start.String()
}
