// Package main syllabusctl：向导核心逻辑的离线命令行工具
//
// 不依赖数据库与外部服务，适合排查抽取结果、维护本地提供方配置。
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const (
	appName = "syllabusctl"
	Version = "0.1.0"
)

func main() {
	// 与服务端共用 .env 中的 SYLLABUS_* 变量
	_ = godotenv.Load()

	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// envOr 读取环境变量，未设置时返回默认值
func envOr(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return def
}

// globalFlags 所有子命令共享的参数
type globalFlags struct {
	verbose bool
}

func (g *globalFlags) logger() *zap.Logger {
	if !g.verbose {
		return zap.NewNop()
	}
	l, err := zap.NewDevelopment()
	if err != nil {
		return zap.NewNop()
	}
	return l
}

func rootCmd() *cobra.Command {
	g := &globalFlags{}

	cmd := &cobra.Command{
		Use:           appName,
		Short:         "Narzędzia wiersza poleceń kreatora sylabusów",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().BoolVarP(&g.verbose, "verbose", "v", false, "Szczegółowe logi")

	cmd.AddCommand(
		groupCmd(),
		settingsCmd(g),
		symbolsCmd(),
		renderCmd(),
		&cobra.Command{
			Use:   "version",
			Short: "Wersja programu",
			Run: func(cmd *cobra.Command, _ []string) {
				fmt.Fprintf(cmd.OutOrStdout(), "%s version %s\n", appName, Version)
			},
		},
	)
	return cmd
}
