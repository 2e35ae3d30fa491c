package cli

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/axellelanca/edgelink/cmd"
	"github.com/axellelanca/edgelink/internal/monitor"
)

var (
	checkWorkers int
	checkTimeout time.Duration
)

// CheckCmd probes the target of every live link once and prints its state.
var CheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Check that the target URLs of live links are reachable",
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
		now := a.Links.Now()
		live := links[:0]
		for _, l := range links {
			if !l.IsExpired(now) {
				live = append(live, l)
			}
		}

		checker := monitor.NewChecker(nil, checkWorkers, checkTimeout, cmd.Logger)
		reports := checker.CheckAll(c.Context(), live)

		tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "CODE\tSTATE\tSTATUS\tURL")
		failed := 0
		for _, r := range reports {
			state := "ACCESSIBLE"
			if !r.Accessible {
				state = "INACCESSIBLE"
				failed++
			}
			fmt.Fprintf(tw, "%s\t%s\t%d\t%s\n", r.ShortCode, state, r.StatusCode, r.LongURL)
		}
		if err := tw.Flush(); err != nil {
			return err
		}
		if failed > 0 {
			return fmt.Errorf("%d of %d targets are not reachable", failed, len(reports))
		}
		return nil
	},
}

func init() {
	CheckCmd.Flags().IntVar(&checkWorkers, "workers", 4, "Number of concurrent probes")
	CheckCmd.Flags().DurationVar(&checkTimeout, "timeout", 5*time.Second, "Timeout of each probe")
	cmd.RootCmd.AddCommand(CheckCmd)
}
