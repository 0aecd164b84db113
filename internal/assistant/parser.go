// Package assistant turns console input into tool calls.
package assistant

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/andresuchdata/merchant-agent/backend-go/internal/tools"
)

// Usage is printed for input that is not a known command.
const Usage = `Commands:
  predict <P1|P2|...> <YYYY-MM-DD> <periods>
  recommend <product_id> <season> [safety_ratio]
  tools
  quit | exit`

type Kind int

const (
	KindUnknown Kind = iota
	KindQuit
	KindListTools
	KindCall
)

// Call is one tool invocation.
type Call struct {
	Tool string
	Args map[string]any
}

type Command struct {
	Kind Kind
	Call Call
}

// Parse recognises the fixed command forms. Anything else is KindUnknown with a
// nil error; malformed known commands return an error.
func Parse(line string) (Command, error) {
	parts := strings.Fields(line)
	if len(parts) == 0 {
		return Command{}, nil
	}

	switch strings.ToLower(parts[0]) {
	case "quit", "exit":
		return Command{Kind: KindQuit}, nil

	case "tools":
		return Command{Kind: KindListTools}, nil

	case "predict":
		if len(parts) < 4 {
			return Command{}, nil
		}
		periods, err := strconv.Atoi(parts[3])
		if err != nil {
			return Command{}, fmt.Errorf("periods must be an integer, got %q", parts[3])
		}
		return Command{Kind: KindCall, Call: Call{
			Tool: tools.PredictDemand,
			Args: map[string]any{
				"product_id": parts[1],
				"start_date": parts[2],
				"periods":    periods,
			},
		}}, nil

	case "recommend":
		if len(parts) < 3 {
			return Command{}, nil
		}
		args := map[string]any{
			"product_id": parts[1],
			"season":     parts[2],
		}
		if len(parts) >= 4 {
			ratio, err := strconv.ParseFloat(parts[3], 64)
			if err != nil {
				return Command{}, fmt.Errorf("safety ratio must be a number, got %q", parts[3])
			}
			args["safety_stock_ratio"] = ratio
		}
		return Command{Kind: KindCall, Call: Call{Tool: tools.RecommendPurchase, Args: args}}, nil
	}

	return Command{}, nil
}
