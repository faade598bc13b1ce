package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/aman3729/credit-score/pkg/auth"
)

func tokenCmd() *cobra.Command {
	var (
		subject    string
		roles      []string
		secret     string
		privateKey string
		issuer     string
		ttl        time.Duration
	)
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue a bearer token for decisiond",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := auth.JWTConfig{Issuer: issuer, Expiration: ttl}
			switch {
			case privateKey != "":
				pem, err := auth.LoadKeyFromFile(privateKey)
				if err != nil {
					return err
				}
				cfg.PrivateKeyPEM = string(pem)
			case secret != "":
				cfg.Secret = secret
			default:
				cfg.Secret = os.Getenv("AUTH_JWT_SECRET")
			}
			if cfg.Secret == "" && cfg.PrivateKeyPEM == "" {
				return fmt.Errorf("token: one of --secret, --private-key or AUTH_JWT_SECRET is required")
			}

			svc, err := auth.NewJWTService(cfg)
			if err != nil {
				return err
			}
			token, err := svc.GenerateToken(subject, roles)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().StringVar(&subject, "subject", "", "Token subject (user or client id)")
	cmd.Flags().StringSliceVar(&roles, "roles", []string{auth.RoleLender}, "Roles to grant")
	cmd.Flags().StringVar(&secret, "secret", "", "HMAC signing secret")
	cmd.Flags().StringVar(&privateKey, "private-key", "", "RSA private key PEM file")
	cmd.Flags().StringVar(&issuer, "issuer", "credit-score", "Token issuer")
	cmd.Flags().DurationVar(&ttl, "ttl", time.Hour, "Token lifetime")
	_ = cmd.MarkFlagRequired("subject")
	return cmd
}
