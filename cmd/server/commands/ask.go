package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"nestlink/server/internal/chat"
)

func askCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ask <message>",
		Short: "Print the assistant's reply to a message",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			message := strings.Join(args, " ")
			logger.WithField("topic", chat.TopicOf(message)).Debug("Classified message")
			_, err := fmt.Fprintln(cmd.OutOrStdout(), chat.Classify(message))
			return err
		},
	}
}
