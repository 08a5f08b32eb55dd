package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/fatih/color"
	"github.com/soyeahso/quizsmith/internal/auth0"
	"github.com/spf13/cobra"
)

func newTokenCmd() *cobra.Command {
	var (
		domain       string
		clientID     string
		clientSecret string
		copyToken    bool
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Obtain an Auth0 access token for testing",
		Long:  "Exchanges client credentials for an Auth0 management-API access token and optionally copies it to the clipboard.",
		RunE: func(cmd *cobra.Command, args []string) error {
			creds := auth0.Credentials{
				Domain:       fallbackEnv(domain, "AUTH0_DOMAIN"),
				ClientID:     fallbackEnv(clientID, "AUTH0_CLIENT_ID"),
				ClientSecret: fallbackEnv(clientSecret, "AUTH0_CLIENT_SECRET"),
			}

			if missing := creds.Missing(); len(missing) > 0 {
				return fmt.Errorf("missing required arguments: %s", formatMissing(missing))
			}

			fetcher := &auth0.Fetcher{}
			token, err := fetcher.Token(cmd.Context(), creds)
			if err != nil {
				return err
			}

			printTokenPanel(cmd.OutOrStdout(), token)

			if copyToken {
				if err := clipboard.WriteAll(token); err != nil {
					log.Warn().Err(err).Msg("could not copy token to clipboard")
				} else {
					color.New(color.FgGreen).Fprintln(cmd.OutOrStdout(), "\n✓ Token copied to clipboard!")
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&domain, "domain", "", "Auth0 domain (e.g. dev-xxx.us.auth0.com); falls back to AUTH0_DOMAIN")
	cmd.Flags().StringVar(&clientID, "client-id", "", "Auth0 client ID; falls back to AUTH0_CLIENT_ID")
	cmd.Flags().StringVar(&clientSecret, "client-secret", "", "Auth0 client secret; falls back to AUTH0_CLIENT_SECRET")
	cmd.Flags().BoolVar(&copyToken, "copy", true, "copy the token to the clipboard")

	return cmd
}

func fallbackEnv(value, envName string) string {
	if value != "" {
		return value
	}
	return os.Getenv(envName)
}

// formatMissing renders missing credentials as "--flag or ENV_VAR" pairs.
func formatMissing(missing []string) string {
	pairs := make([]string, len(missing))
	for i, name := range missing {
		env := "AUTH0_" + strings.ToUpper(strings.ReplaceAll(name, "-", "_"))
		pairs[i] = fmt.Sprintf("--%s or %s", name, env)
	}
	return strings.Join(pairs, ", ")
}

// printTokenPanel prints the token inside a bordered panel, green on TTYs.
func printTokenPanel(w io.Writer, token string) {
	green := color.New(color.FgGreen)
	bold := color.New(color.FgGreen, color.Bold)

	width := len(token)
	if width < 24 {
		width = 24
	}
	border := strings.Repeat("─", width+2)

	green.Fprintf(w, "╭%s╮\n", border)
	bold.Fprintln(w, "│ ✓ Auth0 Access Token")
	fmt.Fprintf(w, "│ %s\n", token)
	green.Fprintf(w, "╰%s╯\n", border)
}
