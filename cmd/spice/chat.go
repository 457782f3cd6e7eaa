package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Veraticus/spice-assistant/internal/cli"
	"github.com/Veraticus/spice-assistant/internal/tui"
)

func chatCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Talk to the assistant in the terminal",
		Long: `Open a conversation with the assistant.

By default a full-screen chat window is used. --plain switches to a simple
line-by-line prompt, which also works with piped input:

  printf 'lunch 30 yuan\ntoday\nfood\ncafe\nyes\n' | spice chat --plain`,
		RunE: runChat,
	}

	cmd.Flags().Bool("plain", false, "use a line-oriented prompt instead of the chat window")
	cmd.Flags().Bool("no-alt-screen", false, "keep the chat window in the normal screen buffer")

	return cmd
}

func runChat(cmd *cobra.Command, _ []string) error {
	plain, _ := cmd.Flags().GetBool("plain")
	noAltScreen, _ := cmd.Flags().GetBool("no-alt-screen")
	ctx := cmd.Context()

	settings, err := loadSettings()
	if err != nil {
		return err
	}
	if settings.User.Name == "" {
		return fmt.Errorf("no user configured: pass --user or set user.name")
	}

	a, err := initApp(ctx, settings)
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	if plain {
		interactive := isTerminal(os.Stdin)
		return cli.NewREPL(a.engine, settings.User.Name, cmd.InOrStdin(), cmd.OutOrStdout(), interactive).Run(ctx)
	}

	return tui.Run(ctx,
		tui.WithReplier(a.engine),
		tui.WithUser(settings.User.Name),
		tui.WithAltScreen(!noAltScreen),
	)
}

// isTerminal reports whether f is a character device rather than a pipe or file.
func isTerminal(f *os.File) bool {
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}
