package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"bi-service/internal/auth"
	"bi-service/internal/config"
	"bi-service/internal/model"
)

var (
	tokenUser string
	tokenRole string
	tokenTTL  time.Duration
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Sign a local access token",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		userID := uuid.New()
		if tokenUser != "" {
			if userID, err = uuid.Parse(tokenUser); err != nil {
				return fmt.Errorf("invalid --user: %w", err)
			}
		}

		role := model.UserRole(strings.ToUpper(tokenRole))
		switch role {
		case model.RoleAdmin, model.RoleAnalyst, model.RoleViewer:
		default:
			return fmt.Errorf("unknown role %q", tokenRole)
		}

		token, err := auth.NewParser(cfg.Auth.AccessSecret).Issue(userID, role, tokenTTL)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), token)
		return nil
	},
}

func init() {
	tokenCmd.Flags().StringVar(&tokenUser, "user", "", "user id (random when empty)")
	tokenCmd.Flags().StringVar(&tokenRole, "role", string(model.RoleAnalyst), "ADMIN, ANALYST or VIEWER")
	tokenCmd.Flags().DurationVar(&tokenTTL, "ttl", 12*time.Hour, "token lifetime")
}
