package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	sendOrderPath      string
	sendOrderTo        string
	sendOrderSkipAdmin bool
)

// sampleOrder is sent when no --file is given.
const sampleOrder = `{
  "toEmail": "a@b.com",
  "customerName": "Jane Doe",
  "orderId": "ORD-1",
  "orderItems": [{"name": "Shirt", "price": 100, "quantity": 2}],
  "totalAmount": 200,
  "paymentMethod": "GCash",
  "deliveryAddress": {"fullName": "Jane Doe", "phone": "0912", "city": "Manila", "street": "1 Ave"}
}`

var sendOrderCmd = &cobra.Command{
	Use:   "send-order",
	Short: "Send an order confirmation email",
	Long: `Send an order confirmation email through the server.

Without --file a built-in sample order (ORD-1) is sent.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		data := []byte(sampleOrder)
		if sendOrderPath != "" {
			var err error
			data, err = os.ReadFile(sendOrderPath)
			if err != nil {
				return fmt.Errorf("read order file: %w", err)
			}
		}

		var order map[string]interface{}
		if err := json.Unmarshal(data, &order); err != nil {
			return fmt.Errorf("parse order JSON: %w", err)
		}
		if sendOrderTo != "" {
			order["toEmail"] = sendOrderTo
		}
		if sendOrderSkipAdmin {
			order["skipAdminNotification"] = true
		}

		ctx, cancel := NewCommandContext(context.Background())
		defer cancel()

		var res struct {
			Success   bool   `json:"success"`
			Message   string `json:"message"`
			MessageID string `json:"messageId"`
			OrderID   string `json:"orderId"`
		}
		if err := newClient().call(ctx, "/sendOrderConfirmationEmail", order, &res); err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if jsonOut {
			data, _ := json.MarshalIndent(res, "", "  ")
			fmt.Fprintln(out, string(data))
			return nil
		}
		fmt.Fprintf(out, "order %s: %s (message id %s)\n", res.OrderID, res.Message, res.MessageID)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(sendOrderCmd)

	sendOrderCmd.Flags().StringVar(&sendOrderPath, "file", "", "path to an order JSON file")
	sendOrderCmd.Flags().StringVar(&sendOrderTo, "to", "", "override the customer email address")
	sendOrderCmd.Flags().BoolVar(&sendOrderSkipAdmin, "skip-admin", false, "do not send the operator order alert")
}
