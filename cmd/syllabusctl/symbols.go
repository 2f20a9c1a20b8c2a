package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/moondec/syllabus/internal/service"
)

func symbolsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "symbols",
		Short: "Operacje na liście symboli efektów",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "toggle <wartość> <symbol>",
		Short: "Dodaje symbol lub usuwa go, jeśli już występuje",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintln(cmd.OutOrStdout(), service.ToggleSymbol(args[0], args[1]))
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "decode <wartość>",
		Short: "Rozbija wartość pola na pojedyncze symbole",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintln(cmd.OutOrStdout(), strings.Join(service.DecodeSymbols(args[0]), "\n"))
			return nil
		},
	})
	return cmd
}
