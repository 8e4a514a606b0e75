package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/nhle/too-doo/internal/credential"
	"github.com/nhle/too-doo/internal/model"
)

var (
	accountEmail    string
	accountPassword string
)

func init() {
	for _, c := range []*cobra.Command{signupCmd, loginCmd} {
		c.Flags().StringVar(&accountEmail, "email", "", "account email")
		c.Flags().StringVar(&accountPassword, "password", "", "account password (prompted when empty)")
	}
	rootCmd.AddCommand(signupCmd, loginCmd, logoutCmd, whoamiCmd)
}

var signupCmd = &cobra.Command{
	Use:   "signup",
	Short: "Create an account and sign in",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runAccount(cmd, true)
	},
}

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in and remember the session in the system keyring",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runAccount(cmd, false)
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "End the stored session",
	Args:  cobra.NoArgs,
	RunE:  runLogout,
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the signed in account",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		e, err := setup(cmd.Context(), logStderr)
		if err != nil {
			return err
		}
		defer e.Close()

		user, err := e.currentUser(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), user.Email)
		return nil
	},
}

func runAccount(cmd *cobra.Command, create bool) error {
	ctx := cmd.Context()
	if err := promptCredentials(); err != nil {
		return err
	}

	e, err := setup(ctx, logStderr)
	if err != nil {
		return err
	}
	defer e.Close()

	creds, err := e.credentials()
	if err != nil {
		return err
	}

	signIn := e.auth.SignIn
	if create {
		signIn = e.auth.SignUp
	}
	user, sess, err := signIn(ctx, accountEmail, accountPassword)
	if err != nil {
		return err
	}
	if err := creds.Set(credential.SessionTokenKey, sess.Token); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Signed in as %s\n", user.Email)
	return nil
}

// promptCredentials asks for whatever the flags left out.
func promptCredentials() error {
	var fields []huh.Field
	if accountEmail == "" {
		fields = append(fields, huh.NewInput().
			Title("Email").
			Value(&accountEmail).
			Validate(validateRequired("Email")))
	}
	if accountPassword == "" {
		fields = append(fields, huh.NewInput().
			Title("Password").
			EchoMode(huh.EchoModePassword).
			Value(&accountPassword).
			Validate(validateRequired("Password")))
	}
	if len(fields) == 0 {
		return nil
	}
	return huh.NewForm(huh.NewGroup(fields...)).Run()
}

func runLogout(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	e, err := setup(ctx, logStderr)
	if err != nil {
		return err
	}
	defer e.Close()

	creds, err := e.credentials()
	if err != nil {
		return err
	}
	token, err := creds.SessionToken()
	if err != nil {
		return err
	}
	if token == "" {
		fmt.Fprintln(cmd.OutOrStdout(), "Not signed in")
		return nil
	}
	if err := e.auth.SignOut(ctx, token); err != nil {
		return err
	}
	if err := creds.Delete(credential.SessionTokenKey); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Signed out")
	return nil
}

func validateRequired(field string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return errors.New(field + " is required")
		}
		return nil
	}
}

func init() {
	configCmd.AddCommand(configInitCmd, configMailPasswordCmd, configOAuthSecretCmd)
	rootCmd.AddCommand(configCmd)
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration and stored secrets",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default configuration file",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if err := model.SaveConfig(configPath, model.DefaultConfig()); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", configPath)
		return nil
	},
}

var configMailPasswordCmd = &cobra.Command{
	Use:   "mail-password",
	Short: "Store the IMAP password used by mail capture",
	Args:  cobra.NoArgs,
	RunE: func(_ *cobra.Command, _ []string) error {
		return storeSecret("IMAP password", model.MailPasswordKey)
	},
}

var configOAuthSecretCmd = &cobra.Command{
	Use:   "oauth-secret",
	Short: "Store the OAuth client secret",
	Args:  cobra.NoArgs,
	RunE: func(_ *cobra.Command, _ []string) error {
		return storeSecret("Client secret", credential.OAuthClientSecretKey)
	},
}

func storeSecret(title, key string) error {
	var value string
	err := huh.NewForm(huh.NewGroup(
		huh.NewInput().
			Title(title).
			EchoMode(huh.EchoModePassword).
			Value(&value).
			Validate(validateRequired(title)),
	)).Run()
	if err != nil {
		return err
	}
	creds, err := credential.Open()
	if err != nil {
		return err
	}
	return creds.Set(key, strings.TrimSpace(value))
}
