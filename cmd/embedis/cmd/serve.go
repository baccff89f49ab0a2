/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ssargent/embedis/pkg/api"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long: `Start the Embedis REST API server. Every /api/v1 request must carry the
configured API key in the X-API-Key header. /metrics is served without a key.

Examples:
  embedis serve
  embedis serve --port=8080 --bind=127.0.0.1 --api-key=mysecretkey`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		serverConfig := api.ServerConfig{
			Port:   current.Port,
			Bind:   current.Bind,
			APIKey: current.Security.APIKey,
		}
		if cmd.Flags().Changed("port") {
			serverConfig.Port, _ = cmd.Flags().GetInt("port")
		}
		if cmd.Flags().Changed("bind") {
			serverConfig.Bind, _ = cmd.Flags().GetString("bind")
		}
		if cmd.Flags().Changed("api-key") {
			serverConfig.APIKey, _ = cmd.Flags().GetString("api-key")
		}

		if serverConfig.APIKey == "" || serverConfig.APIKey == "auto" {
			return errors.New("an API key is required: run 'embedis init' or pass --api-key")
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		starter := container.GetServerFactory().CreateServerStarter()
		return starter.StartServer(ctx, container.Dependencies(), serverConfig)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().IntP("port", "p", 8080, "Port to listen on, overrides the configuration")
	serveCmd.Flags().String("bind", "", "Address to bind, overrides the configuration")
	serveCmd.Flags().String("api-key", "", "API key for authentication, overrides the configuration")
}
