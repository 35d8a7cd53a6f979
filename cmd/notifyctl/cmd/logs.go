package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var (
	logsOrderID string
	logsLimit   int
)

type emailLog struct {
	ID            string `json:"id"`
	Recipient     string `json:"recipient"`
	CorrelationID string `json:"correlationId"`
	Status        string `json:"status"`
	MessageID     string `json:"messageId"`
	Error         string `json:"error"`
	Service       string `json:"service"`
	Timestamp     string `json:"timestamp"`
	EmailType     string `json:"emailType"`
}

var logsCmd = &cobra.Command{
	Use:   "logs",
	Short: "View delivery logs",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := NewCommandContext(context.Background())
		defer cancel()

		query := url.Values{}
		if logsOrderID != "" {
			query.Set("orderId", logsOrderID)
		}
		if logsLimit > 0 {
			query.Set("limit", strconv.Itoa(logsLimit))
		}

		var resp struct {
			Logs  []emailLog `json:"logs"`
			Count int        `json:"count"`
		}
		if err := newClient().get(ctx, "/api/v1/email-logs", query, &resp); err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if jsonOut {
			data, _ := json.MarshalIndent(resp.Logs, "", "  ")
			fmt.Fprintln(out, string(data))
			return nil
		}

		if len(resp.Logs) == 0 {
			fmt.Fprintln(out, "No logs found.")
			return nil
		}

		w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "TIMESTAMP\tORDER\tTYPE\tRECIPIENT\tSTATUS\tDETAIL")
		for _, l := range resp.Logs {
			detail := l.MessageID
			if l.Status != "sent" {
				detail = l.Error
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
				l.Timestamp,
				l.CorrelationID,
				l.EmailType,
				l.Recipient,
				l.Status,
				detail,
			)
		}
		w.Flush()

		return nil
	},
}

func init() {
	rootCmd.AddCommand(logsCmd)
	logsCmd.Flags().StringVar(&logsOrderID, "order", "", "filter by order id")
	logsCmd.Flags().IntVar(&logsLimit, "limit", 0, "maximum number of records")
}
