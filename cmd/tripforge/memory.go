package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var memoryCmd = &cobra.Command{
	Use:   "memory",
	Short: "Inspect or erase the travel memory",
}

var memoryShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the stored memory document",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		closeLog := setupLogger(cfg, true)
		defer closeLog.Close()

		a, err := buildMemoryApp(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer a.Close()

		doc, err := a.memory.Load(cmd.Context())
		if err != nil {
			return err
		}
		return printJSON(doc)
	},
}

var memoryClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Reset the memory to an empty document",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		closeLog := setupLogger(cfg, true)
		defer closeLog.Close()

		a, err := buildMemoryApp(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.memory.Clear(cmd.Context()); err != nil {
			return err
		}
		fmt.Println("Memory cleared")
		return nil
	},
}

func init() {
	memoryCmd.AddCommand(memoryShowCmd, memoryClearCmd)
	rootCmd.AddCommand(memoryCmd)
}
