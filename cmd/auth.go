package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"

	"movix-cli/model"
)

type credentialFlags struct {
	username string
	password string
}

func (f *credentialFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.username, "username", "u", "", "username (prompted when empty)")
	cmd.Flags().StringVarP(&f.password, "password", "p", "", "password (prompted when empty)")
}

// complete prompts for whatever the flags left empty.
func (f *credentialFlags) complete() error {
	if strings.TrimSpace(f.username) == "" {
		username, err := promptUsername()
		if err != nil {
			return err
		}
		f.username = username
	}
	if f.password == "" {
		password, err := promptPassword()
		if err != nil {
			return err
		}
		f.password = password
	}
	return nil
}

func notBlank(label string) promptui.ValidateFunc {
	return func(input string) error {
		if strings.TrimSpace(input) == "" {
			return errors.New(label + " is required")
		}
		return nil
	}
}

func promptUsername() (string, error) {
	prompt := promptui.Prompt{
		Label:    "Username",
		Validate: notBlank("username"),
	}
	value, err := prompt.Run()
	return strings.TrimSpace(value), err
}

func promptPassword() (string, error) {
	prompt := promptui.Prompt{
		Label:    "Password",
		Mask:     '*',
		Validate: notBlank("password"),
	}
	return prompt.Run()
}

func newLoginCmd(o *rootOptions) *cobra.Command {
	var creds credentialFlags
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and remember the session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := creds.complete(); err != nil {
				return err
			}
			a := o.app
			err := a.run(cmd.Context(), a.store.Login(model.LoginCredentials{
				Username: creds.username,
				Password: creds.password,
			}), a.authError)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s\n", describeUser(a.store.Auth().User))
			return nil
		},
	}
	creds.bind(cmd)
	return cmd
}

func newRegisterCmd(o *rootOptions) *cobra.Command {
	var (
		creds   credentialFlags
		isAdmin bool
	)
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account and sign in",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := creds.complete(); err != nil {
				return err
			}
			a := o.app
			err := a.run(cmd.Context(), a.store.Register(model.RegisterCredentials{
				Username: creds.username,
				Password: creds.password,
				IsAdmin:  isAdmin,
			}), a.authError)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Registered and logged in as %s\n", describeUser(a.store.Auth().User))
			return nil
		},
	}
	creds.bind(cmd)
	cmd.Flags().BoolVar(&isAdmin, "admin", false, "register as an administrator")
	return cmd
}

func newLogoutCmd(o *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a := o.app
			if err := a.run(cmd.Context(), a.store.Logout(), a.authError); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Logged out")
			return nil
		},
	}
}

func newWhoamiCmd(o *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the stored session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			auth := o.app.store.Auth()
			if !auth.IsAuthenticated {
				fmt.Fprintln(cmd.OutOrStdout(), "Not logged in")
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), describeUser(auth.User))
			return nil
		},
	}
}

func describeUser(user *model.User) string {
	if user == nil {
		return "unknown user"
	}
	if user.IsAdmin {
		return user.Username + " (admin)"
	}
	return user.Username
}
