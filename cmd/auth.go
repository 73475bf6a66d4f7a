package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/omergehad405/EduMaster/internal/identity"
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in and remember the session",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withEnv(cmd, func(ctx context.Context, e *env) error {
			p := newPrompter(cmd.InOrStdin(), cmd.OutOrStdout())
			email, _ := cmd.Flags().GetString("email")
			password, _ := cmd.Flags().GetString("password")
			var err error
			if email, err = p.askDefault("Email", email); err != nil {
				return err
			}
			if password, err = p.askDefault("Password", password); err != nil {
				return err
			}
			err = e.session.Login(ctx, identity.Credentials{Email: email, Password: password})
			if err != nil {
				return err
			}
			printWelcome(cmd, e.session.Snapshot())
			return nil
		})
	},
}

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Create an account and sign in",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withEnv(cmd, func(ctx context.Context, e *env) error {
			p := newPrompter(cmd.InOrStdin(), cmd.OutOrStdout())
			var reg identity.Registration
			reg.Username, _ = cmd.Flags().GetString("username")
			reg.Email, _ = cmd.Flags().GetString("email")
			reg.Password, _ = cmd.Flags().GetString("password")
			reg.AvatarPath, _ = cmd.Flags().GetString("avatar")
			var err error
			if reg.Username, err = p.askDefault("Username", reg.Username); err != nil {
				return err
			}
			if reg.Email, err = p.askDefault("Email", reg.Email); err != nil {
				return err
			}
			if reg.Password, err = p.askDefault("Password", reg.Password); err != nil {
				return err
			}
			if err := e.session.Register(ctx, reg); err != nil {
				return err
			}
			printWelcome(cmd, e.session.Snapshot())
			return nil
		})
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the stored session",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withEnv(cmd, func(ctx context.Context, e *env) error {
			if err := e.session.Logout(ctx); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Logged out.")
			return nil
		})
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the signed-in learner",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withEnv(cmd, func(ctx context.Context, e *env) error {
			if err := e.requireLogin(ctx); err != nil {
				return err
			}
			snap := e.session.Snapshot()
			u := snap.User
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%-10s %s\n", "User:", u.Username)
			fmt.Fprintf(out, "%-10s %s\n", "Email:", u.Email)
			fmt.Fprintf(out, "%-10s %d\n", "XP:", u.XP)
			fmt.Fprintf(out, "%-10s %d day(s)\n", "Streak:", u.Streak)
			fmt.Fprintf(out, "%-10s %d enrolled, %d completed\n", "Tracks:",
				len(snap.Progression.Enrolled), len(snap.Progression.Completed))
			return nil
		})
	},
}

func printWelcome(cmd *cobra.Command, snap identity.Snapshot) {
	if snap.User == nil {
		return
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Signed in as %s (%d XP, %d day streak).\n",
		snap.User.Username, snap.User.XP, snap.User.Streak)
}

func init() {
	loginCmd.Flags().String("email", "", "Account email")
	loginCmd.Flags().String("password", "", "Account password")

	registerCmd.Flags().String("username", "", "Display name")
	registerCmd.Flags().String("email", "", "Account email")
	registerCmd.Flags().String("password", "", "Account password")
	registerCmd.Flags().String("avatar", "", "Optional avatar image file")
}
