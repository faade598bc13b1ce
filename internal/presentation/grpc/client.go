package grpc

import (
	"context"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"

	"github.com/aman3729/credit-score/internal/application/dto"
)

// Client calls DecisionService with the JSON codec.
type Client struct {
	conn  *grpc.ClientConn
	token string
}

// Dial connects to addr. A nil creds value means plaintext.
func Dial(addr, token string, creds credentials.TransportCredentials, opts ...grpc.DialOption) (*Client, error) {
	if creds == nil {
		creds = insecure.NewCredentials()
	}
	opts = append(opts,
		grpc.WithTransportCredentials(creds),
		grpc.WithDefaultCallOptions(grpc.CallContentSubtype(jsonCodec{}.Name())),
	)
	conn, err := grpc.NewClient(addr, opts...)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", addr, err)
	}
	return &Client{conn: conn, token: token}, nil
}

func (c *Client) Close() error { return c.conn.Close() }

func (c *Client) EvaluateBorrower(ctx context.Context, req dto.EvaluateBorrowerRequest) (dto.DecisionResponse, error) {
	var resp dto.DecisionResponse
	err := c.invoke(ctx, MethodEvaluateBorrower, &req, &resp)
	return resp, err
}

func (c *Client) RecordManualDecision(ctx context.Context, req dto.RecordManualDecisionRequest) (dto.DecisionResponse, error) {
	var resp dto.DecisionResponse
	err := c.invoke(ctx, MethodRecordManualDecision, &req, &resp)
	return resp, err
}

func (c *Client) RecalculateDecision(ctx context.Context, req dto.RecalculateDecisionRequest) (dto.DecisionResponse, error) {
	var resp dto.DecisionResponse
	err := c.invoke(ctx, MethodRecalculateDecision, &req, &resp)
	return resp, err
}

func (c *Client) GetCurrentDecision(ctx context.Context, req dto.GetCurrentDecisionRequest) (dto.DecisionResponse, error) {
	var resp dto.DecisionResponse
	err := c.invoke(ctx, MethodGetCurrentDecision, &req, &resp)
	return resp, err
}

func (c *Client) GetDecisionHistory(ctx context.Context, req dto.GetDecisionHistoryRequest) (dto.DecisionHistoryResponse, error) {
	var resp dto.DecisionHistoryResponse
	err := c.invoke(ctx, MethodGetDecisionHistory, &req, &resp)
	return resp, err
}

func (c *Client) ValidatePolicy(ctx context.Context, req dto.ValidatePolicyRequest) (dto.PolicyValidationResponse, error) {
	var resp dto.PolicyValidationResponse
	err := c.invoke(ctx, MethodValidatePolicy, &req, &resp)
	return resp, err
}

func (c *Client) PublishPolicy(ctx context.Context, req dto.PublishPolicyRequest) (dto.PolicyValidationResponse, error) {
	var resp dto.PolicyValidationResponse
	err := c.invoke(ctx, MethodPublishPolicy, &req, &resp)
	return resp, err
}

func (c *Client) invoke(ctx context.Context, method string, req, resp any) error {
	if c.token != "" {
		ctx = metadata.AppendToOutgoingContext(ctx, "authorization", "Bearer "+c.token)
	}
	return c.conn.Invoke(ctx, method, req, resp)
}
