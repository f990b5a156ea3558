// Package main is the entry point for the scrimmage Discord bot
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "scrimmage",
	Short: "Scrimmage Discord bot",
	Long:  `Scrimmage is a Discord leveling and dueling bot: chat for experience, learn and equip skills, and challenge other members to turn-based battles.`,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(botCmd)
}
