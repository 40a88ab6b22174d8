package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
)

const (
	promptText = "Enter research question (type 'quit' to exit): "
	emptyHint  = "Please provide a question or type 'quit' to exit."
	separator  = "----------------------------------------"
)

// askFunc answers one research question.
type askFunc func(ctx context.Context, question string) (string, error)

// runLoop reads questions line by line and answers each one. Every turn is
// independent: a failed invocation is reported and the loop continues.
// The loop ends on "quit"/"exit" (any case) or end of input; both are
// normal termination.
func runLoop(ctx context.Context, in io.Reader, out, errOut io.Writer, ask askFunc) error {
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for {
		fmt.Fprint(out, promptText)
		if !scanner.Scan() {
			// Closed stdin counts as quitting.
			return scanner.Err()
		}

		question := strings.TrimSpace(scanner.Text())
		if question == "" {
			fmt.Fprintln(out, emptyHint)
			continue
		}
		if isQuit(question) {
			return nil
		}

		answer, err := ask(ctx, question)
		if err != nil {
			fmt.Fprintf(errOut, "error: %v\n", err)
			continue
		}

		fmt.Fprintln(out, answer)
		fmt.Fprintln(out, separator)
	}
}

func isQuit(s string) bool {
	switch strings.ToLower(s) {
	case "quit", "exit":
		return true
	}
	return false
}
