package main

import (
	"fmt"
	"os"

	"github.com/VladKovDev/checkout-bridge/internal/app"
	"github.com/VladKovDev/checkout-bridge/internal/services/checkout"
	"github.com/spf13/cobra"
)

var Version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string

	rootCmd := &cobra.Command{
		Use:           "checkout-bridge",
		Short:         "Checkout bridge to a hosted payment processor",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", app.ConfigPathFromEnv(),
		"directory with config.yaml and .env (env "+app.ConfigPathEnv+")")

	rootCmd.AddCommand(serveCmd(&configPath))
	rootCmd.AddCommand(checkoutCmd(&configPath))

	return rootCmd
}

func serveCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the checkout form and webhook endpoint",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.Run(cmd.Context(), *configPath)
		},
	}
}

func checkoutCmd(configPath *string) *cobra.Command {
	var req checkout.Request

	cmd := &cobra.Command{
		Use:   "checkout",
		Short: "Create one checkout and print the payment page URL",
		Long: `Create one checkout with the configured processor credentials.

Examples:
  checkout-bridge checkout --name "Jane Doe" --email jane@example.com --amount 25.00`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.RunCheckout(cmd.Context(), *configPath, req, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVarP(&req.UserName, "name", "n", "", "customer name")
	cmd.Flags().StringVarP(&req.UserEmail, "email", "e", "", "customer email")
	cmd.Flags().StringVarP(&req.Amount, "amount", "a", "", "amount, e.g. 25.00")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("amount")

	return cmd
}
