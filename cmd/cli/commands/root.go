// Package commands implements the CLI subcommands.
package commands

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/saymi-el/looply/pkg/api/v1/client"
)

// flag names
const (
	flagServerAddress = "server-address"
	flagToken         = "token"
)

// environment variable names
const (
	envServerAddress = "LOOPLY_SERVER_ADDRESS"
	envToken         = "LOOPLY_TOKEN"
)

var (
	// apiClient is the shared API client instance
	apiClient *client.APIClient
	// serverAddress holds the target API server address. Flag parsing sets this.
	serverAddress string
	// authToken is the bearer token for authenticated endpoints.
	authToken string
)

// initClient initializes the API client
func initClient() error {
	opts := client.DefaultOptions()
	opts.BaseURL = serverAddress
	opts.AuthToken = authToken

	var err error
	apiClient, err = client.NewClient(opts)
	return err
}

func init() {
	RootCmd.PersistentFlags().StringVarP(&serverAddress, flagServerAddress, "s", client.DefaultBaseURL,
		"Address of the API server (env: LOOPLY_SERVER_ADDRESS)")
	RootCmd.PersistentFlags().StringVarP(&authToken, flagToken, "t", "",
		"Bearer token for authenticated endpoints (env: LOOPLY_TOKEN)")

	RootCmd.AddCommand(GetVideosCmd())
}

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:   "looply",
	Short: "Looply CLI - A command line interface for the video generation API",
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		if !cmd.Flags().Changed(flagServerAddress) {
			if addr := os.Getenv(envServerAddress); addr != "" {
				serverAddress = addr
			}
		}
		if !cmd.Flags().Changed(flagToken) {
			if token := os.Getenv(envToken); token != "" {
				authToken = token
			}
		}
		return initClient()
	},
}
