package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/annedfinds/storefront-notify/internal/auth"
)

var keygenCmd = &cobra.Command{
	Use:   "keygen",
	Short: "Generate an operator key and its bcrypt hash",
	Long: `Generate a random operator key.

Give the key to the operator and put the hash in auth.operator_key_hash
(or STOREFRONT_NOTIFY_AUTH_OPERATOR_KEY_HASH).`,
	RunE: func(cmd *cobra.Command, args []string) error {
		key, err := auth.GenerateOperatorKey()
		if err != nil {
			return err
		}
		hash, err := auth.HashOperatorKey(key)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "key:  %s\n", key)
		fmt.Fprintf(out, "hash: %s\n", hash)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(keygenCmd)
}
