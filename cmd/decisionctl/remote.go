package main

import (
	"os"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"google.golang.org/grpc/credentials"

	"github.com/aman3729/credit-score/internal/application/dto"
	grpcPresentation "github.com/aman3729/credit-score/internal/presentation/grpc"
	"github.com/aman3729/credit-score/pkg/tlsutil"
)

type remoteFlags struct {
	addr      string
	token     string
	caFile    string
	plaintext bool
}

func (f *remoteFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.addr, "addr", "localhost:9090", "decisiond gRPC address")
	cmd.Flags().StringVar(&f.token, "token", "", "Bearer token (defaults to $DECISION_TOKEN)")
	cmd.Flags().StringVar(&f.caFile, "ca-file", "", "CA certificate for the server")
	cmd.Flags().BoolVar(&f.plaintext, "plaintext", false, "Connect without TLS")
}

func (f *remoteFlags) dial() (*grpcPresentation.Client, error) {
	token := f.token
	if token == "" {
		token = os.Getenv("DECISION_TOKEN")
	}

	var creds credentials.TransportCredentials
	if !f.plaintext {
		var err error
		creds, err = tlsutil.ClientTLSConfig(f.caFile, false)
		if err != nil {
			return nil, err
		}
	}
	return grpcPresentation.Dial(f.addr, token, creds)
}

func decisionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "decision",
		Short: "Read and change decisions on a running server",
	}
	cmd.AddCommand(decisionGetCmd())
	cmd.AddCommand(decisionHistoryCmd())
	cmd.AddCommand(decisionOverrideCmd())
	cmd.AddCommand(decisionRecalculateCmd())
	return cmd
}

func decisionGetCmd() *cobra.Command {
	var rf remoteFlags
	cmd := &cobra.Command{
		Use:   "get [borrower-id]",
		Short: "Show a borrower's current decision",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := rf.dial()
			if err != nil {
				return err
			}
			defer client.Close()

			resp, err := client.GetCurrentDecision(cmd.Context(), dto.GetCurrentDecisionRequest{BorrowerID: args[0]})
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), resp)
		},
	}
	rf.register(cmd)
	return cmd
}

func decisionHistoryCmd() *cobra.Command {
	var (
		rf    remoteFlags
		after int
		limit int
	)
	cmd := &cobra.Command{
		Use:   "history [borrower-id]",
		Short: "Page through a borrower's decision history",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := rf.dial()
			if err != nil {
				return err
			}
			defer client.Close()

			resp, err := client.GetDecisionHistory(cmd.Context(), dto.GetDecisionHistoryRequest{
				BorrowerID:    args[0],
				AfterSequence: after,
				Limit:         limit,
			})
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), resp)
		},
	}
	rf.register(cmd)
	cmd.Flags().IntVar(&after, "after", 0, "Return entries after this sequence")
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "Page size (server default when 0)")
	return cmd
}

func decisionOverrideCmd() *cobra.Command {
	var (
		rf  remoteFlags
		req dto.RecordManualDecisionRequest
	)
	cmd := &cobra.Command{
		Use:   "override [borrower-id]",
		Short: "Record a manual decision",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := rf.dial()
			if err != nil {
				return err
			}
			defer client.Close()

			req.BorrowerID = args[0]
			resp, err := client.RecordManualDecision(cmd.Context(), req)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), resp)
		},
	}
	rf.register(cmd)
	cmd.Flags().StringVar(&req.Decision, "decision", "", "APPROVE, REJECT, REVIEW or HOLD")
	cmd.Flags().StringVar(&req.OverrideJustification, "justification", "", "Why the automatic outcome is overridden")
	cmd.Flags().StringVar(&req.Notes, "notes", "", "Free-form notes")
	cmd.Flags().StringVar(&req.RiskTierOverride, "risk-tier", "", "Replacement risk tier")
	cmd.Flags().BoolVar(&req.FlagForReview, "flag-for-review", false, "Flag the decision for a second review")
	cmd.Flags().StringVar(&req.ReviewNote, "review-note", "", "Note attached to the review flag")
	_ = cmd.MarkFlagRequired("decision")
	_ = cmd.MarkFlagRequired("justification")
	return cmd
}

func decisionRecalculateCmd() *cobra.Command {
	var (
		rf         remoteFlags
		loanType   string
		income     float64
		collateral float64
		quality    float64
		term       int
	)
	cmd := &cobra.Command{
		Use:   "recalculate [borrower-id]",
		Short: "Re-run the engines with new income or collateral data",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := rf.dial()
			if err != nil {
				return err
			}
			defer client.Close()

			req := dto.RecalculateDecisionRequest{
				BorrowerID:    args[0],
				LoanType:      loanType,
				RequestedTerm: term,
			}
			flags := cmd.Flags()
			if flags.Changed("income") {
				req.MonthlyIncome = decimalPtr(income)
			}
			if flags.Changed("collateral") {
				req.CollateralValue = decimalPtr(collateral)
			}
			if flags.Changed("collateral-quality") {
				req.CollateralQuality = decimalPtr(quality)
			}

			resp, err := client.RecalculateDecision(cmd.Context(), req)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), resp)
		},
	}
	rf.register(cmd)
	cmd.Flags().StringVar(&loanType, "loan-type", "", "Loan type (defaults to the current decision's)")
	cmd.Flags().Float64Var(&income, "income", 0, "New monthly income")
	cmd.Flags().Float64Var(&collateral, "collateral", 0, "Collateral value")
	cmd.Flags().Float64Var(&quality, "collateral-quality", 0, "Collateral quality between 0 and 1")
	cmd.Flags().IntVar(&term, "term", 0, "Requested term in months")
	return cmd
}

func decimalPtr(v float64) *decimal.Decimal {
	d := decimal.NewFromFloat(v)
	return &d
}
