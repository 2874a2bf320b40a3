package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/me/storecms/internal/service"
	"github.com/me/storecms/pkg/cmsapi"
)

func newLoginCmd() *cobra.Command {
	var token, email string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in to the CMS",
		Long: `Sign in with --email (the password is prompted for) or store a raw
bearer token with --token. Without either flag the token is prompted for.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			in := bufio.NewReader(cmd.InOrStdin())
			out := cmd.OutOrStdout()

			if email != "" {
				if token != "" {
					return errors.New("--email and --token are mutually exclusive")
				}
				if cfg.API.URL == "" {
					return fmt.Errorf("no CMS backend configured: pass --api-url or set STORECMS_API_URL")
				}
				password, err := readSecret(cmd, in, "Password: ")
				if err != nil {
					return fmt.Errorf("read password: %w", err)
				}
				if _, err := service.NewAuth(deps(), sess).Login(cmd.Context(), email, password); err != nil {
					return fmt.Errorf("sign in: %s", cmsapi.Message(err))
				}
				logger.Info("signed in", "email", email)
				fmt.Fprintf(out, "Signed in as %s; credentials saved to %s\n", email, sess.Path())
				return nil
			}

			if token == "" {
				fmt.Fprint(out, "CMS token: ")
				line, err := in.ReadString('\n')
				if err != nil && line == "" {
					return fmt.Errorf("read token: %w", err)
				}
				token = strings.TrimSpace(line)
			}

			if err := sess.Set(token); err != nil {
				return err
			}
			fmt.Fprintf(out, "Credentials saved to %s\n", sess.Path())
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Sign in with this account email")
	cmd.Flags().StringVar(&token, "token", "", "CMS access token (prompted if omitted)")
	return cmd
}

// readSecret prompts for a line without echo when stdin is a terminal.
func readSecret(cmd *cobra.Command, in *bufio.Reader, prompt string) (string, error) {
	fmt.Fprint(cmd.OutOrStdout(), prompt)
	if f, ok := cmd.InOrStdin().(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		b, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(cmd.OutOrStdout())
		return string(b), err
	}
	line, err := in.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func newLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored CMS token",
		RunE: func(cmd *cobra.Command, args []string) error {
			sess.Clear()
			fmt.Fprintln(cmd.OutOrStdout(), "Signed out.")
			return nil
		},
	}
}
