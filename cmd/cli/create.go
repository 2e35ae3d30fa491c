package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/axellelanca/edgelink/cmd"
	"github.com/axellelanca/edgelink/internal/services"
)

var (
	longURLFlag   string
	customCode    string
	expiresInFlag int64
)

// CreateCmd représente la commande 'create'
var CreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Crée une URL courte à partir d'une URL longue.",
	Long: `Cette commande raccourcit une URL longue fournie et affiche le code court généré.
Si l'URL est déjà raccourcie par un lien actif, le code existant est affiché.

Exemple:
  edgelink create --url="https://www.google.com/search?q=go+lang" --expires-in=3600`,
	RunE: func(c *cobra.Command, _ []string) error {
		a, err := cmd.OpenApp(c.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		in := services.CreateLinkInput{URL: longURLFlag, CustomCode: customCode}
		if c.Flags().Changed("expires-in") {
			in.ExpiresIn = &expiresInFlag
		}

		link, created, err := a.Links.CreateLink(c.Context(), in)
		if err != nil {
			return fmt.Errorf("échec de la création du lien court : %w", err)
		}

		if created {
			fmt.Println("URL courte créée avec succès:")
		} else {
			fmt.Println("URL déjà raccourcie:")
		}
		fmt.Printf("Code: %s\n", link.ShortCode)
		fmt.Printf("URL complète: %s/%s\n", cmd.Cfg.Server.BaseURL, link.ShortCode)
		if link.ExpiresAt != nil {
			fmt.Printf("Expire le: %s\n", link.ExpiresAt.Format("2006-01-02 15:04:05"))
		}
		return nil
	},
}

func init() {
	CreateCmd.Flags().StringVar(&longURLFlag, "url", "", "The long URL to shorten")
	CreateCmd.Flags().StringVar(&customCode, "code", "", "Custom short code (3-64 of A-Z a-z 0-9 - _)")
	CreateCmd.Flags().Int64Var(&expiresInFlag, "expires-in", 0, "Lifetime in seconds")
	_ = CreateCmd.MarkFlagRequired("url")

	cmd.RootCmd.AddCommand(CreateCmd)
}
