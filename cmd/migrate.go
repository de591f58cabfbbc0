package main

import (
	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema and exit",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, log, _, err := bootstrap()
		if err != nil {
			return err
		}
		log.Info("schema up to date")
		return nil
	},
}
