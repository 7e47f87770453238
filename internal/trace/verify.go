package trace

import (
	"context"
	"fmt"
	"io"

	"github.com/mesh-intelligence/tracegen/pkg/types"
)

// MismatchError reports a trace command whose recorded expectation differs
// from the model's.
type MismatchError struct {
	Line int
	Op   types.Op
	Want string // recorded in the trace
	Got  string // computed by the model
}

func (e *MismatchError) Error() string {
	return fmt.Sprintf("line %d: %s mismatch:\ntrace:\n%s\nmodel:\n%s", e.Line, e.Op, e.Want, e.Got)
}

func (e *MismatchError) Unwrap() error { return types.ErrTraceMismatch }

// Verify replays the trace in r against model and stops at the first
// command whose recorded result disagrees with the model. ADD and REMOVE
// lines only mutate; GET answers and REVERSE candidate blocks are checked.
func Verify(ctx context.Context, r io.Reader, model *Model) (types.OpCounts, error) {
	var counts types.OpCounts
	p := NewParser(r, model.Alphabet())
	for {
		if err := ctx.Err(); err != nil {
			return counts, err
		}
		want, line, err := p.Next()
		if err == io.EOF {
			return counts, nil
		}
		if err != nil {
			return counts, err
		}

		got, err := replay(model, want)
		if err != nil {
			return counts, fmt.Errorf("line %d: %w", line, err)
		}
		if w, g := want.String(), got.String(); w != g {
			return counts, &MismatchError{Line: line, Op: want.Op, Want: w, Got: g}
		}
		counts.Inc(want.Op)
	}
}

func replay(model *Model, cmd types.Command) (types.Command, error) {
	switch cmd.Op {
	case types.OpAdd:
		return model.Add(cmd.Args[0], cmd.Args[1])
	case types.OpGet:
		return model.Get(cmd.Args[0])
	case types.OpRemove:
		return model.Remove(cmd.Args[0])
	case types.OpReverse:
		return model.Reverse(cmd.Args[0])
	}
	panic(fmt.Sprintf("trace: unknown op %q", cmd.Op))
}
