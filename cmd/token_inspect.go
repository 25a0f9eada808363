package cmd

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/golang-jwt/jwt/v5"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"

	"github.com/darmiel/lakegate/internal/audit"
	"github.com/darmiel/lakegate/internal/core"
)

// tokenInspectCmd decodes a token's claims without verifying the
// signature. Inspection only, never use this to authorize anything.
var tokenInspectCmd = &cobra.Command{
	Use:     "inspect <token>",
	Short:   "Decode and display the claims of a token",
	Example: `  lakegate token inspect eyJhbGciOi...`,
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		claims := &core.Claims{}
		if _, _, err := jwt.NewParser().ParseUnverified(args[0], claims); err != nil {
			return fmt.Errorf("decoding token: %w", err)
		}

		bold := color.New(color.Bold).SprintFunc()
		faint := color.New(color.Faint).SprintFunc()

		t := table.NewWriter()
		t.SetOutputMirror(os.Stdout)
		t.AppendHeader(table.Row{"Claim", "Value"})

		t.AppendRow(table.Row{"Subject", bold(claims.Subject)})
		t.AppendRow(table.Row{"Tenant", bold(claims.TenantID)})
		if len(claims.TenantIDs) > 0 {
			t.AppendRow(table.Row{"Additional Tenants", strings.Join(claims.TenantIDs, ", ")})
		}
		t.AppendRow(table.Row{"Roles", strings.Join(claims.Roles, ", ")})
		t.AppendRow(table.Row{"Permissions", strings.Join(claims.Permissions, ", ")})
		if claims.IssuedAt != nil {
			t.AppendRow(table.Row{"Issued", claims.IssuedAt.Format(time.RFC3339)})
		}
		if claims.ExpiresAt != nil {
			expires := claims.ExpiresAt.Format(time.RFC3339)
			if left := time.Until(claims.ExpiresAt.Time).Round(time.Minute); left > 0 {
				expires = fmt.Sprintf("%s (%s)", expires, faint(left.String()))
			} else {
				expires = fmt.Sprintf("%s (%s)", expires, color.RedString("expired"))
			}
			t.AppendRow(table.Row{"Expires", expires})
		}
		t.AppendRow(table.Row{"Fingerprint", faint(audit.Fingerprint(args[0]))})

		s := table.StyleRounded
		s.Format.Header = text.FormatDefault
		t.SetStyle(s)
		t.Render()
		return nil
	},
}

func init() {
	tokenCmd.AddCommand(tokenInspectCmd)
}
