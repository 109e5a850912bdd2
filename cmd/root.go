package cmd

import "github.com/spf13/cobra"

var rootCmd = &cobra.Command{
	Use:   "ger-comercial",
	Short: "Sales report scheduling service for Germani Alimentos",
}

func Execute() error {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(dispatchCmd)
	rootCmd.AddCommand(migrateCmd)
	return rootCmd.Execute()
}
