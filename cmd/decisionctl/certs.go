package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aman3729/credit-score/pkg/tlsutil"
)

func certsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "certs",
		Short: "Manage development TLS material",
	}

	var (
		hosts  []string
		outDir string
	)
	generate := &cobra.Command{
		Use:   "generate",
		Short: "Write a self-signed certificate and key for local TLS",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := tlsutil.GenerateSelfSignedCert(hosts, outDir); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote certificate and key to %s\n", outDir)
			return nil
		},
	}
	generate.Flags().StringSliceVar(&hosts, "hosts", []string{"localhost", "127.0.0.1"}, "DNS names and IPs")
	generate.Flags().StringVarP(&outDir, "out", "o", "certs", "Output directory")

	cmd.AddCommand(generate)
	return cmd
}
