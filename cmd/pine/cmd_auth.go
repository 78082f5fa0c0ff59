package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"pinecli/internal/api"
	"pinecli/internal/config"
	"pinecli/internal/input"
	"pinecli/internal/render"
)

// authCmd manages Pine AI authentication
var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Authentication commands",
	Long: `Manage Pine AI credentials.

Subcommands:
  login   - Log in with email verification (interactive)
  request - Request a verification code (non-interactive)
  verify  - Verify a code and save credentials (non-interactive)
  status  - Show current authentication status
  logout  - Clear saved credentials`,
}

var (
	authBaseURL      string
	authEmail        string
	authRequestToken string
	authCode         string
	authJSONOutput   bool
)

var authLoginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in with email verification (interactive)",
	RunE:  runAuthLogin,
}

var authRequestCmd = &cobra.Command{
	Use:   "request",
	Short: "Request a verification code (non-interactive)",
	RunE:  runAuthRequest,
}

var authVerifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Verify code and save credentials (non-interactive)",
	RunE:  runAuthVerify,
}

var authStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show current authentication status",
	RunE:  runAuthStatus,
}

var authLogoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Clear saved credentials",
	RunE:  runAuthLogout,
}

func init() {
	authLoginCmd.Flags().StringVar(&authBaseURL, "base-url", "", "Pine AI base URL override")

	authRequestCmd.Flags().StringVar(&authEmail, "email", "", "Pine AI account email")
	authRequestCmd.Flags().StringVar(&authBaseURL, "base-url", "", "Pine AI base URL override")
	_ = authRequestCmd.MarkFlagRequired("email")

	authVerifyCmd.Flags().StringVar(&authEmail, "email", "", "Pine AI account email")
	authVerifyCmd.Flags().StringVar(&authRequestToken, "request-token", "", "Token from 'pine auth request'")
	authVerifyCmd.Flags().StringVar(&authCode, "code", "", "Verification code from email")
	authVerifyCmd.Flags().StringVar(&authBaseURL, "base-url", "", "Pine AI base URL override")
	_ = authVerifyCmd.MarkFlagRequired("email")
	_ = authVerifyCmd.MarkFlagRequired("request-token")
	_ = authVerifyCmd.MarkFlagRequired("code")

	authStatusCmd.Flags().BoolVar(&authJSONOutput, "json", false, "Output as JSON")

	authCmd.AddCommand(authLoginCmd, authRequestCmd, authVerifyCmd, authStatusCmd, authLogoutCmd)
}

// anonClient builds an unauthenticated client for the code endpoints.
func anonClient(creds *config.Credentials) *api.Client {
	return api.New(api.Config{BaseURL: creds.ResolveBaseURL(authBaseURL)})
}

func runAuthLogin(cmd *cobra.Command, args []string) error {
	return runGuarded(cmd, func(ctx context.Context) error {
		console := render.Stdout()
		creds, err := config.Load(credentialsPath())
		if err != nil {
			return err
		}
		url := creds.ResolveBaseURL(authBaseURL)
		client := anonClient(creds)
		lines := input.NewLineReader(os.Stdin)
		defer lines.Close()

		email, err := promptLine(ctx, console, lines, "Email: ")
		if err != nil {
			return err
		}

		console.Dimf("Sending verification code…")
		grant, err := client.RequestCode(ctx, email)
		if err != nil {
			return err
		}
		console.Successf("Code sent — check your email.")

		code, err := promptLine(ctx, console, lines, "Verification code: ")
		if err != nil {
			return err
		}

		identity, err := client.VerifyCode(ctx, email, code, grant.RequestToken)
		if err != nil {
			return err
		}

		if err := saveIdentity(identity, url); err != nil {
			return err
		}
		console.Successf("Logged in as %s  (user %s)", identity.Email, identity.ID)
		console.Dimf("Credentials saved to %s", credentialsPath())
		return nil
	})
}

func runAuthRequest(cmd *cobra.Command, args []string) error {
	return runGuarded(cmd, func(ctx context.Context) error {
		creds, err := config.Load(credentialsPath())
		if err != nil {
			return err
		}
		grant, err := anonClient(creds).RequestCode(ctx, authEmail)
		if err != nil {
			return err
		}
		return printJSON(map[string]string{
			"request_token": grant.RequestToken,
			"email":         authEmail,
		})
	})
}

func runAuthVerify(cmd *cobra.Command, args []string) error {
	return runGuarded(cmd, func(ctx context.Context) error {
		creds, err := config.Load(credentialsPath())
		if err != nil {
			return err
		}
		url := creds.ResolveBaseURL(authBaseURL)

		identity, err := anonClient(creds).VerifyCode(ctx, authEmail, authCode, authRequestToken)
		if err != nil {
			return err
		}
		if err := saveIdentity(identity, url); err != nil {
			return err
		}
		return printJSON(map[string]string{
			"status":  "authenticated",
			"email":   identity.Email,
			"user_id": identity.ID,
		})
	})
}

func runAuthStatus(cmd *cobra.Command, args []string) error {
	console := render.Stdout()
	creds, err := config.Load(credentialsPath())
	if err != nil {
		return err
	}

	if authJSONOutput {
		return printJSON(map[string]any{
			"authenticated": creds.LoggedIn(),
			"email":         creds.Email,
			"user_id":       creds.UserID,
			"base_url":      creds.ResolveBaseURL(""),
		})
	}

	if creds.LoggedIn() {
		console.Successf("Logged in  %s  (user %s)", creds.Email, creds.UserID)
		console.Dimf("Base URL: %s", creds.ResolveBaseURL(""))
	} else {
		console.Warnf("○ Not logged in.  Run 'pine auth login'.")
	}
	return nil
}

func runAuthLogout(cmd *cobra.Command, args []string) error {
	if err := config.Clear(credentialsPath()); err != nil {
		return err
	}
	render.Stdout().Successf("Logged out. Credentials removed.")
	return nil
}

// saveIdentity persists a fresh login, overwriting any previous one.
func saveIdentity(identity *api.Identity, baseURL string) error {
	creds := &config.Credentials{
		AccessToken: identity.AccessToken,
		UserID:      identity.ID,
		Email:       identity.Email,
		BaseURL:     baseURL,
	}
	return creds.Save(credentialsPath())
}

// promptLine asks and blocks for one line. The wait is cancellable, so an
// interrupt surfaces as the context's error instead of a stuck read.
func promptLine(ctx context.Context, console *render.Console, lines *input.LineReader, prompt string) (string, error) {
	console.Prompt(prompt)
	line, err := lines.ReadLine(ctx)
	if err != nil {
		if errors.Is(err, io.EOF) {
			return "", fmt.Errorf("no input: %w", err)
		}
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func printJSON(v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}
