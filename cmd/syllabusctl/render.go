package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/moondec/syllabus/internal/model"
	"github.com/moondec/syllabus/internal/service"
)

// renderCmd 离线导出 xlsx；docx / pdf 依赖渲染服务，不在命令行提供
func renderCmd() *cobra.Command {
	var (
		output string
		index  int
		lang   string
	)

	cmd := &cobra.Command{
		Use:   "render <plik.json>",
		Short: "Generuje sylabus w formacie .xlsx bez usługi renderującej",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			records, err := readRecords(args[0])
			if err != nil {
				return err
			}
			if index < 0 || index >= len(records) {
				return fmt.Errorf("nieprawidłowy numer przedmiotu %d (w pliku: %d)", index, len(records))
			}
			l, ok := model.ParseLanguage(lang)
			if !ok {
				return fmt.Errorf("nieobsługiwany język %q", lang)
			}

			doc, err := service.NewXLSXRenderer().Render(cmd.Context(), records[index], l, service.FormatXLSX)
			if err != nil {
				return err
			}
			if output == "" {
				output = doc.FileName
			}
			if err := os.WriteFile(output, doc.Content, 0o644); err != nil {
				return fmt.Errorf("zapis pliku %s: %w", output, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Zapisano %s (%d B)\n", output, len(doc.Content))
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "Plik wynikowy (domyślnie nazwa z przedmiotu)")
	cmd.Flags().IntVar(&index, "index", 0, "Numer przedmiotu w pliku")
	cmd.Flags().StringVar(&lang, "lang", "pl", "Język dokumentu (pl|en)")
	return cmd
}
