// Command decisionctl is the operator CLI for the decision engine. Policy
// and evaluate commands work offline; decision commands talk to decisiond.
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

var Version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "decisionctl",
		Short:         "Operate the lending decision engine",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(policyCmd())
	rootCmd.AddCommand(evaluateCmd())
	rootCmd.AddCommand(decisionCmd())
	rootCmd.AddCommand(eventsCmd())
	rootCmd.AddCommand(certsCmd())
	rootCmd.AddCommand(tokenCmd())

	return rootCmd
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
