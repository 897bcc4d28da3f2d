package cli

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"spincrm/internal/domain/auth"
	"spincrm/internal/domain/lead"
)

func newMigrateCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the SQL tables",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := o.open(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close(cmd.Context())

			if err := a.Migrate(); err != nil {
				return err
			}
			o.printf("migrated store=%s\n", a.Config.StoreBackend)
			return nil
		},
	}
}

func newUserCmd(o *options) *cobra.Command {
	userCmd := &cobra.Command{
		Use:   "user",
		Short: "Manage sign-in accounts",
	}

	var in auth.CreateUserInput
	var role string
	addCmd := &cobra.Command{
		Use:   "add",
		Short: "Create a user and its profile",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := o.open(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close(cmd.Context())

			in.Role = auth.Role(role)
			u, err := a.Sessions.CreateUser(cmd.Context(), in)
			if err != nil {
				return err
			}
			o.printf("created user id=%s email=%s role=%s\n", u.ID, u.Email, in.Role)
			return nil
		},
	}
	addCmd.Flags().StringVar(&in.Email, "email", "", "sign-in email")
	addCmd.Flags().StringVar(&in.Password, "password", "", "password, at least 8 characters")
	addCmd.Flags().StringVar(&in.FullName, "name", "", "display name")
	addCmd.Flags().StringVar(&in.Gender, "gender", "", "Male or Female, picks the avatar")
	addCmd.Flags().StringVar(&role, "role", string(auth.RoleMember), "admin or member")
	_ = addCmd.MarkFlagRequired("email")
	_ = addCmd.MarkFlagRequired("password")

	var roleEmail, newRole string
	roleCmd := &cobra.Command{
		Use:   "role",
		Short: "Change a user's role, effective from the next sign-in",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := o.open(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close(cmd.Context())

			u, err := a.Sessions.SetRole(cmd.Context(), roleEmail, auth.Role(newRole))
			if err != nil {
				return err
			}
			o.printf("updated user id=%s email=%s role=%s\n", u.ID, u.Email, newRole)
			return nil
		},
	}
	roleCmd.Flags().StringVar(&roleEmail, "email", "", "sign-in email")
	roleCmd.Flags().StringVar(&newRole, "role", "", "admin or member")
	_ = roleCmd.MarkFlagRequired("email")
	_ = roleCmd.MarkFlagRequired("role")

	userCmd.AddCommand(addCmd, roleCmd)
	return userCmd
}

func newProgressCmd(o *options) *cobra.Command {
	progressCmd := &cobra.Command{
		Use:   "progress",
		Short: "Administrative progress corrections",
	}
	progressCmd.AddCommand(&cobra.Command{
		Use:   "reset <client-id> <value>",
		Short: "Set a client's progress to any value, lower included",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid client id %q", args[0])
			}
			value, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("invalid progress %q", args[1])
			}

			a, err := o.open(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close(cmd.Context())

			c, err := a.Clients.ResetProgress(cmd.Context(), id, value)
			if err != nil {
				return err
			}
			o.printf("client %s progress=%d version=%d\n", c.ID, c.Progress, c.Version)
			return nil
		},
	})
	return progressCmd
}

func newLeadsCmd(o *options) *cobra.Command {
	leadsCmd := &cobra.Command{
		Use:   "leads",
		Short: "Lead operations",
	}

	var status, out string
	exportCmd := &cobra.Command{
		Use:   "export",
		Short: "Write leads as CSV",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			filter, ok := lead.ParseFilter(status)
			if !ok {
				return lead.ErrInvalidFilter
			}

			a, err := o.open(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close(cmd.Context())

			var buf bytes.Buffer
			name, err := a.Leads.Export(cmd.Context(), filter, time.Now(), &buf)
			if err != nil {
				return err
			}
			if out == "-" {
				_, err := o.out.Write(buf.Bytes())
				return err
			}
			if out == "" {
				out = name
			}
			if err := os.WriteFile(out, buf.Bytes(), 0o644); err != nil {
				return fmt.Errorf("write %s: %w", out, err)
			}
			o.printf("exported leads filter=%s file=%s\n", filter, out)
			return nil
		},
	}
	exportCmd.Flags().StringVar(&status, "status", string(lead.FilterAll), "all, new, accepted, pending or rejected")
	exportCmd.Flags().StringVar(&out, "out", "", "output file, - for stdout, default leads_<status>_<date>.csv")

	leadsCmd.AddCommand(exportCmd)
	return leadsCmd
}

func newTokensCmd(o *options) *cobra.Command {
	tokensCmd := &cobra.Command{
		Use:   "tokens",
		Short: "Session token maintenance",
	}
	tokensCmd.AddCommand(&cobra.Command{
		Use:   "cleanup",
		Short: "Delete revocation entries for tokens that have expired",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := o.open(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close(cmd.Context())

			n, err := a.Sessions.CleanupRevoked(cmd.Context(), time.Now())
			if err != nil {
				return err
			}
			o.printf("token cleanup completed: revoked_tokens=%d\n", n)
			return nil
		},
	})
	return tokensCmd
}

func skipExisting(err error) bool {
	return errors.Is(err, auth.ErrEmailAlreadyExists)
}
