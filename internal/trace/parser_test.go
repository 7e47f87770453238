package trace

import (
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/tracegen/pkg/types"
)

func TestParser_Next(t *testing.T) {
	input := `ADD 12 34

GET 125 345
REMOVE 1
REVERSE 34
GETREVERSE 12
GETREVERSE 34
REVERSE_END
REVERSE #
REVERSE_END
`
	p := NewParser(strings.NewReader(input), fullAlphabet)

	want := []struct {
		cmd  types.Command
		line int
	}{
		{cmd: types.Command{Op: types.OpAdd, Args: []string{"12", "34"}}, line: 1},
		{cmd: types.Command{Op: types.OpGet, Args: []string{"125", "345"}}, line: 3},
		{cmd: types.Command{Op: types.OpRemove, Args: []string{"1"}}, line: 4},
		{cmd: types.Command{Op: types.OpReverse, Args: []string{"34"}, Candidates: []string{"12", "34"}}, line: 5},
		{cmd: types.Command{Op: types.OpReverse, Args: []string{"#"}}, line: 9},
	}
	for _, w := range want {
		cmd, line, err := p.Next()
		require.NoError(t, err)
		assert.Equal(t, w.cmd, cmd)
		assert.Equal(t, w.line, line)
	}

	_, _, err := p.Next()
	assert.Equal(t, io.EOF, err)
}

func TestParser_Errors(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		wantLine int
		wantMsg  string
	}{
		{name: "unknown tag", input: "PUT 1 2\n", wantLine: 1, wantMsg: `unexpected tag "PUT"`},
		{name: "stray candidate", input: "ADD 1 2\nGETREVERSE 1\n", wantLine: 2, wantMsg: "unexpected tag"},
		{name: "missing operand", input: "ADD 12\n", wantLine: 1, wantMsg: "ADD takes 2 operands, got 1"},
		{name: "extra operand", input: "REMOVE 1 2\n", wantLine: 1, wantMsg: "REMOVE takes 1 operands, got 2"},
		{name: "operand outside alphabet", input: "GET 12 ab\n", wantLine: 1, wantMsg: `operand "ab" outside alphabet`},
		{name: "unterminated reverse", input: "REVERSE 12\nGETREVERSE 12\n", wantLine: 2, wantMsg: "has no REVERSE_END"},
		{name: "junk inside reverse", input: "REVERSE 12\nADD 1 2\n", wantLine: 2, wantMsg: `unexpected "ADD 1 2" inside REVERSE block`},
		{name: "bad candidate", input: "REVERSE 12\nGETREVERSE x\nREVERSE_END\n", wantLine: 2, wantMsg: `operand "x"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewParser(strings.NewReader(tt.input), fullAlphabet)
			var err error
			for err == nil {
				_, _, err = p.Next()
			}
			require.ErrorIs(t, err, types.ErrTraceSyntax)

			var syn *SyntaxError
			require.True(t, errors.As(err, &syn))
			assert.Equal(t, tt.wantLine, syn.Line)
			assert.Contains(t, syn.Msg, tt.wantMsg)
		})
	}
}
