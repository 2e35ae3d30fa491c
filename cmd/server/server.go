package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/axellelanca/edgelink/cmd"
)

// RunServerCmd représente la commande 'run-server' de Cobra.
// C'est le point d'entrée pour lancer le serveur de l'application.
var RunServerCmd = &cobra.Command{
	Use:   "run-server",
	Short: "Lance le serveur HTTP de raccourcissement d'URLs.",
	Long: `Cette commande ouvre le stockage clé-valeur configuré, provisionne les clés
d'API initiales, configure les routes puis lance le serveur HTTP. SIGINT et
SIGTERM déclenchent un arrêt propre.`,
	RunE: func(_ *cobra.Command, _ []string) error {
		cfg, logger := cmd.Cfg, cmd.Logger

		if !logger.IsLevelEnabled(logrus.DebugLevel) {
			gin.SetMode(gin.ReleaseMode)
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		a, err := cmd.OpenApp(ctx)
		if err != nil {
			return err
		}
		defer func() {
			if err := a.Close(); err != nil {
				logger.WithError(err).Warn("failed to close store")
			}
		}()

		serverAddr := fmt.Sprintf(":%d", cfg.Server.Port)
		srv := &http.Server{
			Addr:    serverAddr,
			Handler: a.Router(),
		}

		// Démarrer le serveur dans une goroutine pour ne pas bloquer.
		errCh := make(chan error, 1)
		go func() {
			logger.WithField("addr", serverAddr).Info("Démarrage du serveur")
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- err
			}
			close(errCh)
		}()

		select {
		case err := <-errCh:
			if err != nil {
				return fmt.Errorf("échec du démarrage du serveur : %w", err)
			}
			return nil
		case <-ctx.Done():
		}

		logger.Info("Signal d'arrêt reçu. Arrêt du serveur...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout())
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("arrêt forcé du serveur : %w", err)
		}

		logger.Info("Serveur arrêté proprement.")
		return nil
	},
}

func init() {
	cmd.RootCmd.AddCommand(RunServerCmd)
}
