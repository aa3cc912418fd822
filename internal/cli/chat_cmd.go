package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/alexanderramin/slotwise/internal/cli/formatter"
	"github.com/alexanderramin/slotwise/internal/contract"
)

func newChatCmd(st *state) *cobra.Command {
	var contextFile, output string
	var pretty bool

	cmd := &cobra.Command{
		Use:   "chat [message...]",
		Short: "Ask the planning assistant",
		Long: `Sends one message to the assistant. Tasks, free time and habits can be
supplied with --context; a full chat request can also be piped on stdin.
Without an API key the assistant answers from local heuristics.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			req, err := loadChatRequest(cmd, args, contextFile)
			if err != nil {
				return err
			}
			if strings.TrimSpace(req.Message) == "" && isTerminal(cmd.InOrStdin()) {
				if req.Message, err = promptLine(ctx, cmd, "Message", "What should I work on first?"); err != nil {
					return err
				}
			}
			if strings.TrimSpace(req.Message) == "" {
				return &contract.ValidationError{Problems: []string{`missing required field "message"`}}
			}

			a, err := st.App()
			if err != nil {
				return err
			}
			var resp *contract.ChatResponse
			ask := func() error {
				var err error
				resp, err = a.Assistant.Chat(ctx, req)
				return err
			}
			if isTerminal(cmd.ErrOrStderr()) {
				err = formatter.RunWithSpinner(cmd.ErrOrStderr(), "Thinking…", ask)
			} else {
				err = ask()
			}
			if err != nil {
				return err
			}

			if pretty {
				fmt.Fprint(cmd.ErrOrStderr(), formatter.FormatChat(resp))
			}
			return st.writeResult(cmd, output, resp)
		},
	}
	cmd.Flags().StringVarP(&contextFile, "context", "c", "", "JSON file with tasks, calendar_free, habits and conversation_history")
	cmd.Flags().StringVarP(&output, "output", "o", "", "write the response to this file instead of stdout")
	cmd.Flags().BoolVar(&pretty, "pretty", false, "render the reply on stderr")
	return cmd
}

// loadChatRequest merges the context file, a piped request and the message
// arguments. Arguments win over any message in the files.
func loadChatRequest(cmd *cobra.Command, args []string, contextFile string) (*contract.ChatRequest, error) {
	req := &contract.ChatRequest{}
	switch {
	case contextFile != "":
		data, err := os.ReadFile(contextFile)
		if err != nil {
			return nil, fmt.Errorf("reading context: %w", err)
		}
		if err := json.Unmarshal(data, req); err != nil {
			return nil, fmt.Errorf("%w: %v", contract.ErrMalformedJSON, err)
		}
	case len(args) == 0 && !isTerminal(cmd.InOrStdin()):
		data, err := readInput(cmd, "")
		if err != nil {
			return nil, err
		}
		return contract.DecodeChatRequest(data)
	}
	if len(args) > 0 {
		req.Message = strings.Join(args, " ")
	}
	return req, nil
}
