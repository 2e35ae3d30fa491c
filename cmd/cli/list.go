package cli

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/axellelanca/edgelink/cmd"
	"github.com/axellelanca/edgelink/internal/models"
)

// ListCmd prints every stored link.
var ListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all short URLs",
	RunE: func(c *cobra.Command, _ []string) error {
		a, err := cmd.OpenApp(c.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		links, err := a.Links.ListLinks(c.Context())
		if err != nil {
			return err
		}
		return printLinks(os.Stdout, links, a.Links.Now())
	},
}

func init() {
	cmd.RootCmd.AddCommand(ListCmd)
}

func printLinks(w io.Writer, links []models.Link, now time.Time) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "CODE\tURL\tCREATED\tEXPIRES")
	for _, l := range links {
		expires := "-"
		if l.ExpiresAt != nil {
			expires = l.ExpiresAt.Format(time.DateTime)
			if l.IsExpired(now) {
				expires += " (expired)"
			}
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", l.ShortCode, l.LongURL, l.CreatedAt.Format(time.DateTime), expires)
	}
	return tw.Flush()
}
