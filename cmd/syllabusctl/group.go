package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/moondec/syllabus/internal/model"
	"github.com/moondec/syllabus/internal/service"
)

// groupCmd 读取抽取服务格式的 JSON（单个对象或数组），按培养层次分组输出
func groupCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "group <plik.json>",
		Short: "Grupuje przedmioty według poziomu kształcenia",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			records, err := readRecords(args[0])
			if err != nil {
				return err
			}
			groups := service.GroupSubjects(records)

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(groupView(groups))
			}
			if len(groups) == 0 {
				fmt.Fprintln(out, "Brak przedmiotów w pliku")
				return nil
			}
			for _, g := range groups {
				fmt.Fprintf(out, "%s (%d)\n", g.Level, len(g.Members))
				for _, m := range g.Members {
					fmt.Fprintf(out, "  [%d] %s\n", m.Index, displayName(m.Record))
				}
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Wynik w formacie JSON")
	return cmd
}

func readRecords(path string) ([]*model.SyllabusRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("odczyt pliku %s: %w", path, err)
	}
	records, err := model.DecodeRecords(data)
	if err != nil {
		return nil, fmt.Errorf("nieprawidłowy format pliku %s: %w", path, err)
	}
	return records, nil
}

func displayName(rec *model.SyllabusRecord) string {
	if name := rec.SubjectName(); name != "" {
		return name
	}
	return "Przedmiot bez nazwy"
}

type groupJSON struct {
	Level    string   `json:"level"`
	Indices  []int    `json:"indices"`
	Subjects []string `json:"subjects"`
}

func groupView(groups []service.SubjectGroup) []groupJSON {
	out := make([]groupJSON, 0, len(groups))
	for _, g := range groups {
		v := groupJSON{Level: g.Level}
		for _, m := range g.Members {
			v.Indices = append(v.Indices, m.Index)
			v.Subjects = append(v.Subjects, displayName(m.Record))
		}
		out = append(out, v)
	}
	return out
}
