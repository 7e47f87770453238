package trace

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/mesh-intelligence/tracegen/pkg/types"
)

// SyntaxError reports a malformed trace line.
type SyntaxError struct {
	Line int
	Msg  string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("line %d: %s", e.Line, e.Msg)
}

func (e *SyntaxError) Unwrap() error { return types.ErrTraceSyntax }

// Parser reads trace commands line by line. Blank lines are skipped.
type Parser struct {
	sc       *bufio.Scanner
	alphabet *types.Alphabet
	line     int
}

// NewParser returns a Parser over r. Operands must be non-empty strings
// over alphabet.
func NewParser(r io.Reader, alphabet *types.Alphabet) *Parser {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	return &Parser{sc: sc, alphabet: alphabet}
}

// Next returns the next command and the line it starts on. It returns
// io.EOF after the last command.
func (p *Parser) Next() (types.Command, int, error) {
	fields, err := p.nextFields()
	if err != nil {
		return types.Command{}, p.line, err
	}
	start := p.line

	op := types.Op(fields[0])
	arity := types.Arity(op)
	if arity < 0 {
		return types.Command{}, start, p.errorf("unexpected tag %q", fields[0])
	}
	if len(fields)-1 != arity {
		return types.Command{}, start, p.errorf("%s takes %d operands, got %d", op, arity, len(fields)-1)
	}
	if err := p.checkOperands(fields[1:]); err != nil {
		return types.Command{}, start, err
	}
	cmd := types.Command{Op: op, Args: fields[1:]}
	if op != types.OpReverse {
		return cmd, start, nil
	}

	for {
		fields, err := p.nextFields()
		if err == io.EOF {
			return types.Command{}, start, p.errorf("%s block starting at line %d has no %s", op, start, types.TagReverseEnd)
		}
		if err != nil {
			return types.Command{}, start, err
		}
		switch {
		case fields[0] == types.TagReverseEnd && len(fields) == 1:
			return cmd, start, nil
		case fields[0] == types.TagGetReverse && len(fields) == 2:
			if err := p.checkOperands(fields[1:]); err != nil {
				return types.Command{}, start, err
			}
			cmd.Candidates = append(cmd.Candidates, fields[1])
		default:
			return types.Command{}, start, p.errorf("unexpected %q inside %s block", strings.Join(fields, " "), op)
		}
	}
}

func (p *Parser) nextFields() ([]string, error) {
	for p.sc.Scan() {
		p.line++
		if fields := strings.Fields(p.sc.Text()); len(fields) > 0 {
			return fields, nil
		}
	}
	if err := p.sc.Err(); err != nil {
		return nil, fmt.Errorf("read trace: %w", err)
	}
	return nil, io.EOF
}

func (p *Parser) checkOperands(ops []string) error {
	for _, s := range ops {
		if !p.alphabet.Contains(s) {
			return p.errorf("operand %q outside alphabet %q", s, p.alphabet.Symbols())
		}
	}
	return nil
}

func (p *Parser) errorf(format string, args ...any) error {
	return &SyntaxError{Line: p.line, Msg: fmt.Sprintf(format, args...)}
}
