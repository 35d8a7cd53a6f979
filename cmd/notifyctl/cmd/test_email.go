package cmd

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

var testEmailCmd = &cobra.Command{
	Use:   "test-email",
	Short: "Send the diagnostic email to the operator mailbox",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := NewCommandContext(context.Background())
		defer cancel()

		var res struct {
			Success   bool   `json:"success"`
			Message   string `json:"message"`
			MessageID string `json:"messageId"`
		}
		if err := newClient().call(ctx, "/testGmailEmail", nil, &res); err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if jsonOut {
			data, _ := json.MarshalIndent(res, "", "  ")
			fmt.Fprintln(out, string(data))
			return nil
		}
		fmt.Fprintf(out, "%s (message id %s)\n", res.Message, res.MessageID)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(testEmailCmd)
}
