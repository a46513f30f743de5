package cli

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"time"

	"cashloan/internal/domain/models"
	"cashloan/internal/session"

	"github.com/spf13/cobra"
)

func newLoginCmd() *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and store the session token",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := commandContext(cmd)
			in := bufio.NewReader(cmd.InOrStdin())
			if strings.TrimSpace(email) == "" {
				v, err := prompt(in, cmd.OutOrStdout(), "Email: ")
				if err != nil {
					return err
				}
				email = v
			}
			if password == "" {
				v, err := prompt(in, cmd.OutOrStdout(), "Password: ")
				if err != nil {
					return err
				}
				password = v
			}

			store, err := getSession()
			if err != nil {
				return err
			}
			client, err := getAPIClient()
			if err != nil {
				return err
			}
			out, err := client.Login(ctx, models.LoginRequest{Email: strings.TrimSpace(email), Password: password})
			if err != nil {
				return fmt.Errorf("login failed: %w", handleAPIError(nil, err))
			}
			if err := store.Save(out.Token); err != nil {
				return fmt.Errorf("failed to save token: %w", err)
			}
			name := email
			if out.User != nil && out.User.FullName() != "" {
				name = out.User.FullName()
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s\n", name)
			return nil
		},
	}

	cmd.Flags().StringVarP(&email, "email", "e", "", "Account email")
	cmd.Flags().StringVarP(&password, "password", "p", "", "Account password (prompted when empty)")

	return cmd
}

func newLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out and forget the session token",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := getSession()
			if err != nil {
				return err
			}
			if token, ok := store.Token(); ok {
				client, err := getAPIClient()
				if err != nil {
					return err
				}
				// the local token is dropped whatever the server says
				_ = client.Logout(commandContext(cmd), token)
			}
			if err := store.Clear(); err != nil {
				return fmt.Errorf("failed to remove token: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Logged out")
			return nil
		},
	}
}

func newWhoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, store, token, err := getAuthedClient()
			if err != nil {
				return err
			}
			user, err := client.Me(commandContext(cmd), token)
			if err != nil {
				return handleAPIError(store, err)
			}
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "User:    %s\n", orDash(user.FullName()))
			fmt.Fprintf(w, "Email:   %s\n", orDash(user.Email))
			fmt.Fprintf(w, "Role:    %s\n", labelOrDash(user.Role))
			fmt.Fprintf(w, "Status:  %s\n", labelOrDash(user.Status))

			// Sanctum tokens are opaque; only JWTs carry an expiry.
			claims, err := session.Inspect(token)
			if err == nil && !claims.ExpiresAt.IsZero() {
				state := "valid"
				if claims.Expired(time.Now()) {
					state = "expired"
				}
				fmt.Fprintf(w, "Expires: %s (%s)\n", claims.ExpiresAt.Local().Format(time.RFC1123), state)
			}
			return nil
		},
	}
}

func prompt(in *bufio.Reader, out io.Writer, label string) (string, error) {
	fmt.Fprint(out, label)
	line, err := in.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	return strings.TrimSpace(line), nil
}

// confirm asks a yes/no question; anything but y/yes is a no.
func confirm(in *bufio.Reader, out io.Writer, question string) (bool, error) {
	answer, err := prompt(in, out, question+" [y/N]: ")
	if err != nil {
		return false, err
	}
	switch strings.ToLower(answer) {
	case "y", "yes":
		return true, nil
	}
	return false, nil
}
