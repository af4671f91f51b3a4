package migrate

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
)

// Confirmer decides whether a staged migration is committed.
type Confirmer interface {
	Confirm(ctx context.Context, s Summary) (bool, error)
}

// ConfirmFunc adapts a function to Confirmer.
type ConfirmFunc func(ctx context.Context, s Summary) (bool, error)

func (f ConfirmFunc) Confirm(ctx context.Context, s Summary) (bool, error) {
	return f(ctx, s)
}

// Always commits without asking.
var Always Confirmer = ConfirmFunc(func(context.Context, Summary) (bool, error) { return true, nil })

// Never declines every migration. It is useful for dry runs.
var Never Confirmer = ConfirmFunc(func(context.Context, Summary) (bool, error) { return false, nil })

type answer struct {
	line string
	err  error
}

// Prompt prints the summary to out and reads the answer from in. Only "y"
// or "yes" commits; an empty answer or end of input declines. Cancelling ctx
// stops the wait; the pending read then answers the next Confirm call.
// The returned Confirmer is not safe for concurrent use.
func Prompt(in io.Reader, out io.Writer) Confirmer {
	r := bufio.NewReader(in)
	var pending chan answer
	return ConfirmFunc(func(ctx context.Context, s Summary) (bool, error) {
		fmt.Fprint(out, s.Format())
		fmt.Fprint(out, "\nDo you want to commit changes? (y/N) ")
		if pending == nil {
			pending = make(chan answer, 1)
			go func(ch chan<- answer) {
				line, err := r.ReadString('\n')
				ch <- answer{line: line, err: err}
			}(pending)
		}
		var a answer
		select {
		case <-ctx.Done():
			fmt.Fprintln(out)
			return false, ctx.Err()
		case a = <-pending:
			pending = nil
		}
		if a.err != nil && a.err != io.EOF {
			return false, a.err
		}
		switch strings.ToLower(strings.TrimSpace(a.line)) {
		case "y", "yes":
			return true, nil
		}
		return false, nil
	})
}

// Format renders the summary for an operator.
func (s Summary) Format() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Transaction %s\n\n", s.Transaction)
	fmt.Fprintf(&sb, "%-8s %-60s %10s %10s\n", "", "GRAPH", "BEFORE", "AFTER")
	fmt.Fprintf(&sb, "%-8s %-60s %10d %10d\n", "source", s.From, s.Before.From, s.After.From)
	fmt.Fprintf(&sb, "%-8s %-60s %10d %10d\n", "target", s.To, s.Before.To, s.After.To)
	if len(s.Aliases) == 0 {
		sb.WriteString("\nNo aliases moved.\n")
		return sb.String()
	}
	fmt.Fprintf(&sb, "\nAliases moved to %s:\n", s.To)
	for _, a := range s.Aliases {
		fmt.Fprintf(&sb, "  %s\n", a)
	}
	return sb.String()
}
