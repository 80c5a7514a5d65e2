package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"bi-service/internal/config"
	"bi-service/internal/logger"
)

var interpretCmd = &cobra.Command{
	Use:   "interpret <question>",
	Short: "Print the intent a question resolves to",
	Long: `Runs a question through the interpreter (relay first when
INTERPRETER_RELAY_URL is set, keyword rules otherwise) and prints the
resulting intent as JSON. No data is queried.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		in := newInterpreter(cfg, logger.New(cfg.Environment))
		intent, source := in.InterpretWithSource(cmd.Context(), strings.Join(args, " "), nil)

		out, err := json.MarshalIndent(struct {
			Source string      `json:"source"`
			Intent interface{} `json:"intent"`
		}{Source: string(source), Intent: intent}, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(out))
		return nil
	},
}
