package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/axellelanca/edgelink/cmd"
	customerrors "github.com/axellelanca/edgelink/internal/errors"
)

// StatsCmd représente la commande 'stats'
var StatsCmd = &cobra.Command{
	Use:   "stats [short-code]",
	Short: "Get statistics for a short URL",
	Long:  `Get click statistics for the provided short code.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runStats,
}

func init() {
	cmd.RootCmd.AddCommand(StatsCmd)
}

// runStats exécute la logique pour la commande stats
func runStats(c *cobra.Command, args []string) error {
	shortCode := args[0]

	a, err := cmd.OpenApp(c.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	link, totalClicks, err := a.Links.GetLinkStats(c.Context(), shortCode)
	if err != nil {
		if customerrors.IsNotFound(err) {
			return fmt.Errorf("short code '%s' not found", shortCode)
		}
		return fmt.Errorf("error retrieving statistics: %w", err)
	}

	fmt.Printf("Statistiques pour le code court: %s\n", shortCode)
	fmt.Printf("URL longue: %s\n", link.LongURL)
	fmt.Printf("Total de clics: %d\n", totalClicks)
	fmt.Printf("Date de création: %s\n", link.CreatedAt.Format("2006-01-02 15:04:05"))
	if link.ExpiresAt != nil {
		state := "actif"
		if link.IsExpired(a.Links.Now()) {
			state = "expiré"
		}
		fmt.Printf("Expiration: %s (%s)\n", link.ExpiresAt.Format("2006-01-02 15:04:05"), state)
	}
	return nil
}
