package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/aman3729/credit-score/internal/application/dto"
	"github.com/aman3729/credit-score/internal/application/usecase"
	"github.com/aman3729/credit-score/internal/domain/model"
	"github.com/aman3729/credit-score/internal/domain/service"
	"github.com/aman3729/credit-score/internal/infrastructure/memory"
	"github.com/aman3729/credit-score/internal/infrastructure/policyfile"
	"github.com/aman3729/credit-score/pkg/observability"
)

type evaluateOptions struct {
	remote      remoteFlags
	useRemote   bool
	policyFile  string
	profileFile string
	borrowerID  string
	loanType    string
	amount      float64
	term        int
	logLevel    string
}

func evaluateCmd() *cobra.Command {
	var opts evaluateOptions
	cmd := &cobra.Command{
		Use:   "evaluate",
		Short: "Evaluate a borrower profile",
		Long: `Evaluate a borrower profile read from a JSON file.

Without --remote the decision is computed locally against the given policy
file, or the baseline policy when none is given. Nothing is stored.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := opts.request(cmd)
			if err != nil {
				return err
			}

			var resp dto.DecisionResponse
			if opts.useRemote {
				client, err := opts.remote.dial()
				if err != nil {
					return err
				}
				defer client.Close()
				resp, err = client.EvaluateBorrower(cmd.Context(), req)
				if err != nil {
					return err
				}
			} else {
				resp, err = opts.evaluateLocally(cmd, req)
				if err != nil {
					return err
				}
			}
			return printJSON(cmd.OutOrStdout(), resp)
		},
	}

	opts.remote.register(cmd)
	cmd.Flags().BoolVar(&opts.useRemote, "remote", false, "Evaluate on the server instead of locally")
	cmd.Flags().StringVar(&opts.policyFile, "policy", "", "Policy document (local mode)")
	cmd.Flags().StringVarP(&opts.profileFile, "profile", "f", "", "Borrower profile JSON file")
	cmd.Flags().StringVar(&opts.borrowerID, "borrower", "cli-borrower", "Borrower id")
	cmd.Flags().StringVar(&opts.loanType, "loan-type", "personal", "Loan type")
	cmd.Flags().Float64Var(&opts.amount, "amount", 0, "Requested amount")
	cmd.Flags().IntVar(&opts.term, "term", 0, "Requested term in months")
	cmd.Flags().StringVar(&opts.logLevel, "log-level", "warn", "Log level for local evaluation")
	_ = cmd.MarkFlagRequired("profile")
	return cmd
}

func (o *evaluateOptions) request(cmd *cobra.Command) (dto.EvaluateBorrowerRequest, error) {
	raw, err := os.ReadFile(o.profileFile)
	if err != nil {
		return dto.EvaluateBorrowerRequest{}, err
	}
	var profile dto.BorrowerProfileInput
	if err := json.Unmarshal(raw, &profile); err != nil {
		return dto.EvaluateBorrowerRequest{}, fmt.Errorf("decode profile %s: %w", o.profileFile, err)
	}

	req := dto.EvaluateBorrowerRequest{
		BorrowerID:    o.borrowerID,
		LoanType:      o.loanType,
		RequestedTerm: o.term,
		Profile:       &profile,
	}
	if cmd.Flags().Changed("amount") {
		amount := decimal.NewFromFloat(o.amount)
		req.RequestedAmount = &amount
	}
	return req, nil
}

func (o *evaluateOptions) loadPolicy(bankCode string) (model.PartnerBankPolicy, error) {
	if o.policyFile == "" {
		return model.BaselinePolicy(bankCode), nil
	}
	doc, err := os.ReadFile(o.policyFile)
	if err != nil {
		return model.PartnerBankPolicy{}, err
	}
	parser, err := policyfile.NewParser()
	if err != nil {
		return model.PartnerBankPolicy{}, err
	}
	return parser.Parse(doc)
}

func (o *evaluateOptions) evaluateLocally(cmd *cobra.Command, req dto.EvaluateBorrowerRequest) (dto.DecisionResponse, error) {
	logger := observability.InitLogger(observability.LogConfig{
		Level:  o.logLevel,
		Format: "text",
		Output: cmd.ErrOrStderr(),
	})

	bankCode := req.Profile.BankCode
	if bankCode == "" {
		bankCode = "BANK-DEMO"
	}
	policy, err := o.loadPolicy(bankCode)
	if err != nil {
		return dto.DecisionResponse{}, err
	}
	req.Profile.BankCode = policy.BankCode

	policies, err := memory.NewPolicyStore(policy)
	if err != nil {
		return dto.DecisionResponse{}, err
	}
	store := memory.NewStore()
	uc := usecase.NewEvaluateBorrowerUseCase(
		policies, store, store, store,
		service.NewDecisionPipeline(nil), nil, logger,
	)
	return uc.Execute(cmd.Context(), model.SystemCaller(), req)
}
