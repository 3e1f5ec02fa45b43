package cli

import (
	"fmt"
	"time"

	"github.com/cmlabs-hris/attendance-engine/internal/config"
	"github.com/cmlabs-hris/attendance-engine/internal/domain/auth"
	"github.com/cmlabs-hris/attendance-engine/internal/pkg/jwt"
	"github.com/spf13/cobra"
)

// tokenCmd needs only the JWT settings, so it loads config itself instead of connecting.
var tokenCmd = &cobra.Command{
	Use:   "token <user-id>",
	Short: "Mint an operator access token for the attendance API",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}

		roleFlag, _ := cmd.Flags().GetString("role")
		isAdmin, _ := cmd.Flags().GetBool("admin")

		svc := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration)
		return runToken(cmd, svc, args[0], roleFlag, isAdmin)
	},
}

func init() {
	tokenCmd.Flags().String("role", string(auth.RoleManager), "role claim (owner, manager, employee)")
	tokenCmd.Flags().Bool("admin", false, "set the is_admin claim")
}

func runToken(cmd *cobra.Command, svc jwt.Service, userID, roleFlag string, isAdmin bool) error {
	role := auth.Role(roleFlag)
	switch role {
	case auth.RoleOwner, auth.RoleManager, auth.RoleEmployee:
	default:
		return fmt.Errorf("invalid --role value %q", roleFlag)
	}

	token, expiresAt, err := svc.GenerateAccessToken(userID, role, isAdmin)
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), token)
	fmt.Fprintf(cmd.ErrOrStderr(), "expires at %s\n", time.Unix(expiresAt, 0).UTC().Format(time.RFC3339))
	return nil
}
