package commands

import (
	"fmt"
	"time"

	"github.com/arturoeanton/redcross-volunteers/internal/domain"
	"github.com/arturoeanton/redcross-volunteers/internal/middleware"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

// TokenCmd issues a staff token signed with the configured secret, for
// operators and scripts that cannot go through the session provider.
func TokenCmd(app *AppContext) *cobra.Command {
	var (
		email string
		name  string
		role  string
		ttl   time.Duration
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue a signed staff JWT",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			token, err := issueToken(app, domain.UserContext{
				UserID: uuid.NewString(),
				Email:  email,
				Name:   name,
				Role:   role,
			}, ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Staff email (required)")
	cmd.Flags().StringVar(&name, "name", "", "Display name")
	cmd.Flags().StringVar(&role, "role", domain.RoleAdmin, "Role claim")
	cmd.Flags().DurationVar(&ttl, "ttl", 0, "Token lifetime (default: JWT_EXPIRATION_HOURS)")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func issueToken(app *AppContext, user domain.UserContext, ttl time.Duration) (string, error) {
	if ttl <= 0 {
		ttl = app.Cfg.JWTTTL()
	}
	token, err := middleware.GenerateJWT(user, middleware.JWTConfig{
		Secret:    app.Cfg.JWTSecret,
		Issuer:    app.Cfg.JWTIssuer,
		ExpiresIn: ttl,
	})
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return token, nil
}
