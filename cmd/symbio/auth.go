package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/sandeepkv93/symbio/internal/update"
)

const captchaAttempts = 3

type authFlags struct {
	username   string
	password   string
	captchaOut string
}

func (f *authFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.username, "username", "u", "", "account username")
	cmd.Flags().StringVarP(&f.password, "password", "p", "", "account password (prompted when empty)")
	cmd.Flags().StringVar(&f.captchaOut, "captcha-out", filepath.Join(os.TempDir(), "symbio-captcha.png"), "where to write the captcha image")
}

// solveCaptcha fetches a challenge and retries build with fresh answers until
// the exchange succeeds or attempts run out. A failed exchange has already
// loaded the next challenge.
func (a *app) solveCaptcha(ctx context.Context, out string, build func(answer string) tea.Msg) error {
	if err := a.dispatch(ctx, update.FetchCaptchaMsg{}); err != nil {
		return err
	}
	var last error
	for attempt := 1; attempt <= captchaAttempts; attempt++ {
		if !a.model.HasCaptcha {
			if err := a.dispatch(ctx, update.FetchCaptchaMsg{}); err != nil {
				return err
			}
		}
		if err := os.WriteFile(out, a.model.Captcha.Image, 0o600); err != nil {
			return fmt.Errorf("write captcha: %w", err)
		}
		fmt.Fprintf(a.out, "captcha written to %s\n", out)
		answer, err := a.prompt("captcha", "")
		if err != nil {
			return err
		}
		if last = a.dispatch(ctx, build(answer)); last == nil {
			return nil
		}
		fmt.Fprintf(a.out, "%v\n", last)
	}
	return last
}

func loginCmd(flags *globalFlags) *cobra.Command {
	var f authFlags
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in with username, password and captcha",
		Args:  cobra.NoArgs,
		RunE: withApp(flags, func(ctx context.Context, a *app, _ []string) error {
			username, err := a.prompt("username", f.username)
			if err != nil {
				return err
			}
			password, err := a.prompt("password", f.password)
			if err != nil {
				return err
			}
			err = a.solveCaptcha(ctx, f.captchaOut, func(answer string) tea.Msg {
				return update.LoginMsg{Username: username, Password: password, Answer: answer}
			})
			if err != nil {
				return err
			}
			a.status()
			return nil
		}),
	}
	f.bind(cmd)
	return cmd
}

func registerCmd(flags *globalFlags) *cobra.Command {
	var f authFlags
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account and print its recovery mnemonic",
		Args:  cobra.NoArgs,
		RunE: withApp(flags, func(ctx context.Context, a *app, _ []string) error {
			username, err := a.prompt("username", f.username)
			if err != nil {
				return err
			}
			password, err := a.prompt("password", f.password)
			if err != nil {
				return err
			}
			err = a.solveCaptcha(ctx, f.captchaOut, func(answer string) tea.Msg {
				return update.RegisterMsg{Username: username, Password: password, Answer: answer}
			})
			if err != nil {
				return err
			}
			reg := a.model.Registration
			if reg.Message != "" {
				fmt.Fprintln(a.out, reg.Message)
			}
			if reg.Mnemonic != "" {
				fmt.Fprintf(a.out, "recovery mnemonic: %s\n", reg.Mnemonic)
			}
			a.status()
			return nil
		}),
	}
	f.bind(cmd)
	return cmd
}

func restoreCmd(flags *globalFlags) *cobra.Command {
	var f authFlags
	var mnemonic string
	cmd := &cobra.Command{
		Use:   "restore",
		Short: "Reset a password with the recovery mnemonic",
		Args:  cobra.NoArgs,
		RunE: withApp(flags, func(ctx context.Context, a *app, _ []string) error {
			username, err := a.prompt("username", f.username)
			if err != nil {
				return err
			}
			words, err := a.prompt("mnemonic", mnemonic)
			if err != nil {
				return err
			}
			password, err := a.prompt("new password", f.password)
			if err != nil {
				return err
			}
			err = a.solveCaptcha(ctx, f.captchaOut, func(answer string) tea.Msg {
				return update.RestoreMsg{Username: username, Mnemonic: words, NewPassword: password, Answer: answer}
			})
			if err != nil {
				return err
			}
			a.status()
			return nil
		}),
	}
	f.bind(cmd)
	cmd.Flags().StringVar(&mnemonic, "mnemonic", "", "recovery mnemonic (prompted when empty)")
	return cmd
}

func logoutCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out and forget the stored session",
		Args:  cobra.NoArgs,
		RunE: withApp(flags, func(ctx context.Context, a *app, _ []string) error {
			if err := a.dispatch(ctx, update.LogoutMsg{}); err != nil {
				return err
			}
			a.status()
			return nil
		}),
	}
}

func whoamiCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in identity",
		Args:  cobra.NoArgs,
		RunE: withApp(flags, func(_ context.Context, a *app, _ []string) error {
			if err := a.requireSession(); err != nil {
				return err
			}
			printIdentity(a.out, a.view, a.model.Session.Identity)
			return nil
		}),
	}
}
