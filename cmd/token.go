package cmd

import (
	"fmt"

	"github.com/ellavondegurechaff/packforge/backend/config"
	"github.com/ellavondegurechaff/packforge/backend/models"
	"github.com/ellavondegurechaff/packforge/backend/services"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var (
	tokenUserID   string
	tokenUsername string
	tokenEmail    string
	tokenAdmin    bool
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Issue a bearer token for a user",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		tokens, err := services.NewTokenService(config.NewWebAppConfig(cfg))
		if err != nil {
			return err
		}

		userID := tokenUserID
		if userID == "" {
			userID = uuid.NewString()
		} else if err := uuid.Validate(userID); err != nil {
			return fmt.Errorf("invalid user id: %w", err)
		}

		token, err := tokens.Generate(&models.UserSession{
			UserID:   userID,
			Username: tokenUsername,
			Email:    tokenEmail,
			IsAdmin:  tokenAdmin,
		})
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), token)
		return nil
	},
}

func init() {
	tokenCmd.Flags().StringVar(&tokenUserID, "user", "", "user id (uuid); generated when empty")
	tokenCmd.Flags().StringVar(&tokenUsername, "username", "", "username claim")
	tokenCmd.Flags().StringVar(&tokenEmail, "email", "", "email claim")
	tokenCmd.Flags().BoolVar(&tokenAdmin, "admin", false, "grant admin access")
	rootCmd.AddCommand(tokenCmd)
}
