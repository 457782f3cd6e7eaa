package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func askCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ask <message>",
		Short: "Send one message and print the reply",
		Long: `Send a single message to the assistant and print its reply.

Conversation state persists between invocations when session.backend is
sqlite, so a transaction can be completed across several calls:

  spice ask "lunch at the cafe 30 yuan"
  spice ask yes`,
		Args: cobra.MinimumNArgs(1),
		RunE: runAsk,
	}
}

func runAsk(cmd *cobra.Command, args []string) error {
	settings, err := loadSettings()
	if err != nil {
		return err
	}

	a, err := initApp(cmd.Context(), settings)
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	reply := a.engine.Reply(cmd.Context(), settings.User.Name, strings.Join(args, " "))
	if reply.IsError() {
		return fmt.Errorf("%s", reply.Error)
	}
	fmt.Fprintln(cmd.OutOrStdout(), reply.Text)
	return nil
}
