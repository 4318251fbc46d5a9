// Package main implements the hitlog CLI for maintenance tasks from the command line.
package main

import (
	"fmt"
	"os"

	"github.com/dsjohal14/hitlog/internal/app"
	"github.com/dsjohal14/hitlog/internal/libs/config"
	"github.com/dsjohal14/hitlog/internal/libs/obs"
	"github.com/dsjohal14/hitlog/internal/traffic"
	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var envFile string

	root := &cobra.Command{
		Use:          "hitlog",
		Short:        "hitlog CLI",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&envFile, "env-file", "", "load variables from this .env file")

	loadConfig := func() (*config.Config, error) {
		if envFile != "" {
			return config.LoadFiles(envFile)
		}
		return config.Load()
	}

	root.AddCommand(newInitDBCmd(loadConfig), newHitCmd(loadConfig), newGenTextCmd())
	return root
}

func newInitDBCmd(loadConfig func() (*config.Config, error)) *cobra.Command {
	return &cobra.Command{
		Use:   "initdb",
		Short: "Create the counter table and seed row if absent",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			obs.InitLogger(cfg.LogLevel)
			logger := obs.Logger("cli")

			store, err := app.OpenStore(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}
			defer store.Close()

			if !app.InitSchema(cmd.Context(), store, logger) {
				return fmt.Errorf("schema initialization failed")
			}
			return nil
		},
	}
}

func newHitCmd(loadConfig func() (*config.Config, error)) *cobra.Command {
	return &cobra.Command{
		Use:   "hit",
		Short: "Increment the hit counter once and print the new value",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			obs.InitLogger(cfg.LogLevel)

			store, err := app.OpenStore(cmd.Context(), cfg, obs.Logger("cli"))
			if err != nil {
				return err
			}
			defer store.Close()

			hits, err := store.IncrementAndGetHits(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), hits)
			return nil
		},
	}
}

func newGenTextCmd() *cobra.Command {
	var (
		size   int
		prefix string
	)

	cmd := &cobra.Command{
		Use:   "gentext",
		Short: "Print one generated log message",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if size < 0 {
				return fmt.Errorf("--bytes must not be negative")
			}
			fmt.Fprintln(cmd.OutOrStdout(), traffic.GenerateText(nil, size, prefix))
			return nil
		},
	}
	cmd.Flags().IntVar(&size, "bytes", 1000, "message length in bytes")
	cmd.Flags().StringVar(&prefix, "prefix", "", "fixed message prefix")
	return cmd
}
