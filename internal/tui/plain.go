package tui

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/jamaly87/codebase-qa/internal/agent"
	"github.com/jamaly87/codebase-qa/internal/search"
)

// Banner is printed when a chat session starts
const Banner = "Codebase QA agent. Type 'exit' to quit."

// IsExit reports whether input ends the session
func IsExit(input string) bool {
	switch strings.ToLower(strings.TrimSpace(input)) {
	case "exit", "quit":
		return true
	}
	return false
}

// RunPlain runs a line-oriented chat loop without terminal control
// sequences, for pipes and dumb terminals. It returns at exit, quit or
// end of input.
func RunPlain(ctx context.Context, in io.Reader, out io.Writer, asker Asker) error {
	fmt.Fprintln(out, Banner)

	var st agent.ConversationState
	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "You: ")
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}

		question := strings.TrimSpace(scanner.Text())
		if question == "" {
			continue
		}
		if IsExit(question) {
			return nil
		}

		st = asker.Invoke(ctx, st.WithUserMessage(question))
		fmt.Fprintf(out, "Agent: %s\n", st.LastAnswer())
		fmt.Fprintln(out, "Retrieved context:")
		fmt.Fprintln(out, search.FormatContext(st.RetrievedContext))
		fmt.Fprintln(out)
	}
}
