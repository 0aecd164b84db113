package assistant

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/andresuchdata/merchant-agent/backend-go/internal/tools"
)

// ToolCaller is the remote tool endpoint.
type ToolCaller interface {
	ListTools(ctx context.Context) ([]tools.Descriptor, error)
	Call(ctx context.Context, name string, args map[string]any) (json.RawMessage, error)
}

type Assistant struct {
	caller   ToolCaller
	fallback Interpreter
	out      io.Writer
}

// New builds an assistant writing to out. fallback may be nil.
func New(caller ToolCaller, fallback Interpreter, out io.Writer) *Assistant {
	return &Assistant{caller: caller, fallback: fallback, out: out}
}

// Handle runs one line of input and reports whether the session should end.
func (a *Assistant) Handle(ctx context.Context, line string) (bool, error) {
	line = strings.TrimSpace(line)
	if line == "" {
		return false, nil
	}

	cmd, err := Parse(line)
	if err != nil {
		fmt.Fprintln(a.out, "Error:", err)
		return false, nil
	}

	switch cmd.Kind {
	case KindQuit:
		return true, nil
	case KindListTools:
		return false, a.printTools(ctx)
	case KindCall:
		return false, a.call(ctx, cmd.Call)
	}

	if a.fallback == nil {
		fmt.Fprintln(a.out, Usage)
		return false, nil
	}

	call, err := a.fallback.Interpret(ctx, line)
	if errors.Is(err, ErrNoToolCall) {
		fmt.Fprintln(a.out, Usage)
		return false, nil
	}
	if err != nil {
		log.Warn().Err(err).Msg("assistant: interpreter failed")
		fmt.Fprintln(a.out, Usage)
		return false, nil
	}
	return false, a.call(ctx, call)
}

func (a *Assistant) printTools(ctx context.Context) error {
	descs, err := a.caller.ListTools(ctx)
	if err != nil {
		return err
	}
	names := make([]string, 0, len(descs))
	for _, d := range descs {
		names = append(names, d.Name)
	}
	fmt.Fprintf(a.out, "Tools: %s\n", strings.Join(names, ", "))
	return nil
}

// call prints the result or the tool's error. Tool errors do not end the session.
func (a *Assistant) call(ctx context.Context, c Call) error {
	raw, err := a.caller.Call(ctx, c.Tool, c.Args)
	if err != nil {
		fmt.Fprintln(a.out, "Error:", err)
		return nil
	}

	label := "Forecast:"
	if c.Tool == tools.RecommendPurchase {
		label = "Recommendation:"
	}

	var pretty any
	if err := json.Unmarshal(raw, &pretty); err != nil {
		fmt.Fprintln(a.out, label, string(raw))
		return nil
	}
	formatted, _ := json.MarshalIndent(pretty, "", "  ")
	fmt.Fprintln(a.out, label, string(formatted))
	return nil
}
