package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/aman3729/credit-score/internal/application/dto"
	"github.com/aman3729/credit-score/internal/application/usecase"
	"github.com/aman3729/credit-score/internal/domain/model"
	"github.com/aman3729/credit-score/internal/infrastructure/memory"
	"github.com/aman3729/credit-score/internal/infrastructure/policyfile"
)

func policyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "policy",
		Short: "Inspect and publish partner bank policies",
	}
	cmd.AddCommand(policyValidateCmd())
	cmd.AddCommand(policyTemplateCmd())
	cmd.AddCommand(policyPublishCmd())
	return cmd
}

func policyValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate [file]",
		Short: "Check a policy document against the schema and policy rules",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			parser, err := policyfile.NewParser()
			if err != nil {
				return err
			}
			policies, err := memory.NewPolicyStore()
			if err != nil {
				return err
			}

			uc := usecase.NewValidatePolicyUseCase(policies, parser)
			resp, err := uc.Execute(cmd.Context(), model.SystemCaller(), dto.ValidatePolicyRequest{Document: doc})
			if err != nil {
				return err
			}
			if err := printJSON(cmd.OutOrStdout(), resp); err != nil {
				return err
			}
			if !resp.Valid {
				return fmt.Errorf("policy %s is invalid: %s %s", args[0], resp.Field, resp.Reason)
			}
			return nil
		},
	}
}

func policyTemplateCmd() *cobra.Command {
	var bankCode string
	cmd := &cobra.Command{
		Use:   "template",
		Short: "Print the baseline policy as a starting document",
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := policyfile.Marshal(model.BaselinePolicy(bankCode))
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(out)
			return err
		},
	}
	cmd.Flags().StringVar(&bankCode, "bank", "BANK-DEMO", "Partner bank code")
	return cmd
}

func policyPublishCmd() *cobra.Command {
	var rf remoteFlags
	cmd := &cobra.Command{
		Use:   "publish [file]",
		Short: "Publish a policy document as a new version on the server",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			client, err := rf.dial()
			if err != nil {
				return err
			}
			defer client.Close()

			resp, err := client.PublishPolicy(cmd.Context(), dto.PublishPolicyRequest{Document: doc})
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), resp)
		},
	}
	rf.register(cmd)
	return cmd
}
