package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/axellelanca/edgelink/cmd"
)

// DomainCmd groups the custom domain commands.
var DomainCmd = &cobra.Command{
	Use:   "domain",
	Short: "Manage custom domains",
}

var domainAddCmd = &cobra.Command{
	Use:     "add [domain] [target-base-url]",
	Short:   "Redirect unknown codes on a domain to a base URL",
	Example: "  edgelink domain add go.example.com https://example.com/docs",
	Args:    cobra.ExactArgs(2),
	RunE: func(c *cobra.Command, args []string) error {
		a, err := cmd.OpenApp(c.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		d, err := a.Domains.RegisterDomain(c.Context(), args[0], args[1])
		if err != nil {
			return err
		}
		fmt.Printf("Domain %s -> %s\n", d.Domain, d.Target)
		return nil
	},
}

var domainRemoveCmd = &cobra.Command{
	Use:   "remove [domain]",
	Short: "Remove a custom domain",
	Args:  cobra.ExactArgs(1),
	RunE: func(c *cobra.Command, args []string) error {
		a, err := cmd.OpenApp(c.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.Domains.RemoveDomain(c.Context(), args[0]); err != nil {
			return err
		}
		fmt.Printf("Domain %s removed\n", args[0])
		return nil
	},
}

func init() {
	DomainCmd.AddCommand(domainAddCmd, domainRemoveCmd)
	cmd.RootCmd.AddCommand(DomainCmd)
}
