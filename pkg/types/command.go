package types

import (
	"errors"
	"fmt"
	"io"
	"strings"
)

// Op is the operation tag that starts a trace command line.
type Op string

// Operation tags.
const (
	OpAdd     Op = "ADD"
	OpGet     Op = "GET"
	OpRemove  Op = "REMOVE"
	OpReverse Op = "REVERSE"
)

// Lines inside a REVERSE block.
const (
	TagGetReverse = "GETREVERSE"
	TagReverseEnd = "REVERSE_END"
)

// Ops lists the operations in selection order.
var Ops = []Op{OpAdd, OpGet, OpRemove, OpReverse}

// Trace errors.
var (
	ErrTraceSyntax   = errors.New("malformed trace")
	ErrTraceMismatch = errors.New("trace expectation mismatch")
)

// Command is one emitted trace record.
//
//	ADD:     Args = [key, value]
//	GET:     Args = [query, answer]
//	REMOVE:  Args = [target]
//	REVERSE: Args = [query], Candidates in numeral order
type Command struct {
	Op         Op
	Args       []string
	Candidates []string
}

// Arity returns the number of operands that follow op on its line, or -1 if
// op is not a known operation.
func Arity(op Op) int {
	switch op {
	case OpAdd, OpGet:
		return 2
	case OpRemove, OpReverse:
		return 1
	}
	return -1
}

// Lines renders the command as trace lines without trailing newlines.
func (c Command) Lines() []string {
	lines := []string{string(c.Op) + " " + strings.Join(c.Args, " ")}
	if c.Op != OpReverse {
		return lines
	}
	for _, cand := range c.Candidates {
		lines = append(lines, TagGetReverse+" "+cand)
	}
	return append(lines, TagReverseEnd)
}

// WriteTo writes the command lines to w, each terminated by a newline.
func (c Command) WriteTo(w io.Writer) (int64, error) {
	var total int64
	for _, line := range c.Lines() {
		n, err := io.WriteString(w, line+"\n")
		total += int64(n)
		if err != nil {
			return total, fmt.Errorf("write %s: %w", c.Op, err)
		}
	}
	return total, nil
}

// String returns the command lines joined by newlines.
func (c Command) String() string {
	return strings.Join(c.Lines(), "\n")
}
