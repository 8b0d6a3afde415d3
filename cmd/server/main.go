package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var resetDB bool

var rootCmd = &cobra.Command{
	Use:   "shopapi",
	Short: "Products, todos and users REST API",
	// Running the binary without a subcommand serves the API.
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd, args)
	},
	SilenceUsage: true,
}

// @title Shop API
// @version 1.0
// @description Products, todos and users behind JWT authentication.
// @BasePath /
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	rootCmd.PersistentFlags().BoolVar(&resetDB, "reset-db", false, "drop all tables before migrating")
	rootCmd.AddCommand(serveCmd, migrateCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
