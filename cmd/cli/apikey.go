package cli

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/axellelanca/edgelink/cmd"
)

var apiKeyLabel string

// APIKeyCmd groups the credential commands.
var APIKeyCmd = &cobra.Command{
	Use:   "apikey",
	Short: "Manage API bearer tokens",
}

var apiKeyAddCmd = &cobra.Command{
	Use:   "add [token]",
	Short: "Provision an API token, a random one when omitted",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(c *cobra.Command, args []string) error {
		token := uuid.NewString()
		if len(args) == 1 {
			token = args[0]
		}

		a, err := cmd.OpenApp(c.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.Credentials.AddToken(c.Context(), token, apiKeyLabel); err != nil {
			return err
		}
		fmt.Printf("Token: %s\n", token)
		return nil
	},
}

func init() {
	apiKeyAddCmd.Flags().StringVar(&apiKeyLabel, "label", "cli", "Label stored with the token")
	APIKeyCmd.AddCommand(apiKeyAddCmd)
	cmd.RootCmd.AddCommand(APIKeyCmd)
}
