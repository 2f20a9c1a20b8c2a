package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/moondec/syllabus/internal/model"
	"github.com/moondec/syllabus/internal/repository"
	"github.com/moondec/syllabus/internal/service"
)

const defaultSettingsKey = "syllabus.provider_config"

// settingsCmd 维护文件存储中的提供方配置，与服务端 settings.backend=file 共用格式
func settingsCmd(g *globalFlags) *cobra.Command {
	var dir, key string

	open := func() service.ProviderConfigService {
		svc := service.NewProviderConfigService(
			repository.NewFileSettingsRepo(dir), key, model.ProviderConfig{}, g.logger(),
		)
		return svc
	}

	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Konfiguracja dostawcy modelu językowego",
	}
	cmd.PersistentFlags().StringVar(&dir, "dir", envOr("SYLLABUS_SETTINGS_DIR", "./data"), "Katalog przechowywania ustawień")
	cmd.PersistentFlags().StringVar(&key, "key", defaultSettingsKey, "Klucz ustawień")

	show := &cobra.Command{
		Use:   "show",
		Short: "Wyświetla bieżącą konfigurację (klucz API ukryty)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := open().Load(cmd.Context())
			printProvider(cmd, cfg)
			return nil
		},
	}

	var endpoint, modelName, apiKey string
	set := &cobra.Command{
		Use:   "set",
		Short: "Zmienia konfigurację; pominięte flagi zachowują bieżące wartości",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc := open()
			cfg := svc.Load(cmd.Context())
			if cmd.Flags().Changed("endpoint") {
				cfg.EndpointURL = endpoint
			}
			if cmd.Flags().Changed("model") {
				cfg.Model = modelName
			}
			if cmd.Flags().Changed("api-key") {
				cfg.APIKey = apiKey
			}
			printProvider(cmd, svc.Save(cmd.Context(), cfg))
			return nil
		},
	}
	set.Flags().StringVar(&endpoint, "endpoint", "", "Adres punktu końcowego (OpenAI-compatible)")
	set.Flags().StringVar(&modelName, "model", "", "Nazwa modelu")
	set.Flags().StringVar(&apiKey, "api-key", "", "Klucz API (pusty usuwa klucz)")

	cmd.AddCommand(show, set)
	return cmd
}

func printProvider(cmd *cobra.Command, cfg model.ProviderConfig) {
	r := cfg.Redacted()
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "endpoint: %s\n", r.EndpointURL)
	fmt.Fprintf(out, "model:    %s\n", r.Model)
	if cfg.HasCredential() {
		fmt.Fprintf(out, "api key:  %s\n", r.APIKey)
	} else {
		fmt.Fprintln(out, "api key:  (brak)")
	}
}
