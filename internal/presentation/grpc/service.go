package grpc

// service.go hand-writes the service descriptor for
// creditscore.decision.v1.DecisionService. Messages are the application DTOs
// carried by the JSON codec, so no generated code is involved.

import (
	"context"

	grpclib "google.golang.org/grpc"

	"github.com/aman3729/credit-score/internal/application/dto"
)

const serviceName = "creditscore.decision.v1.DecisionService"

// Full method names, as seen by interceptors.
const (
	MethodEvaluateBorrower     = "/" + serviceName + "/EvaluateBorrower"
	MethodRecordManualDecision = "/" + serviceName + "/RecordManualDecision"
	MethodRecalculateDecision  = "/" + serviceName + "/RecalculateDecision"
	MethodGetCurrentDecision   = "/" + serviceName + "/GetCurrentDecision"
	MethodGetDecisionHistory   = "/" + serviceName + "/GetDecisionHistory"
	MethodValidatePolicy       = "/" + serviceName + "/ValidatePolicy"
	MethodPublishPolicy        = "/" + serviceName + "/PublishPolicy"
)

// DecisionServiceServer is the server API for DecisionService.
type DecisionServiceServer interface {
	EvaluateBorrower(context.Context, *dto.EvaluateBorrowerRequest) (*dto.DecisionResponse, error)
	RecordManualDecision(context.Context, *dto.RecordManualDecisionRequest) (*dto.DecisionResponse, error)
	RecalculateDecision(context.Context, *dto.RecalculateDecisionRequest) (*dto.DecisionResponse, error)
	GetCurrentDecision(context.Context, *dto.GetCurrentDecisionRequest) (*dto.DecisionResponse, error)
	GetDecisionHistory(context.Context, *dto.GetDecisionHistoryRequest) (*dto.DecisionHistoryResponse, error)
	ValidatePolicy(context.Context, *dto.ValidatePolicyRequest) (*dto.PolicyValidationResponse, error)
	PublishPolicy(context.Context, *dto.PublishPolicyRequest) (*dto.PolicyValidationResponse, error)
}

// RegisterDecisionServiceServer registers srv with the gRPC server.
func RegisterDecisionServiceServer(s grpclib.ServiceRegistrar, srv DecisionServiceServer) {
	s.RegisterService(&decisionServiceDesc, srv)
}

var decisionServiceDesc = grpclib.ServiceDesc{
	ServiceName: serviceName,
	HandlerType: (*DecisionServiceServer)(nil),
	Methods: []grpclib.MethodDesc{
		{MethodName: "EvaluateBorrower", Handler: unaryHandler(MethodEvaluateBorrower, DecisionServiceServer.EvaluateBorrower)},
		{MethodName: "RecordManualDecision", Handler: unaryHandler(MethodRecordManualDecision, DecisionServiceServer.RecordManualDecision)},
		{MethodName: "RecalculateDecision", Handler: unaryHandler(MethodRecalculateDecision, DecisionServiceServer.RecalculateDecision)},
		{MethodName: "GetCurrentDecision", Handler: unaryHandler(MethodGetCurrentDecision, DecisionServiceServer.GetCurrentDecision)},
		{MethodName: "GetDecisionHistory", Handler: unaryHandler(MethodGetDecisionHistory, DecisionServiceServer.GetDecisionHistory)},
		{MethodName: "ValidatePolicy", Handler: unaryHandler(MethodValidatePolicy, DecisionServiceServer.ValidatePolicy)},
		{MethodName: "PublishPolicy", Handler: unaryHandler(MethodPublishPolicy, DecisionServiceServer.PublishPolicy)},
	},
	Streams: []grpclib.StreamDesc{},
}

// unaryHandler adapts a typed server method to grpc.MethodHandler, running
// it through the interceptor chain when one is installed.
func unaryHandler[Req, Resp any](
	fullMethod string,
	call func(DecisionServiceServer, context.Context, *Req) (*Resp, error),
) func(any, context.Context, func(any) error, grpclib.UnaryServerInterceptor) (any, error) {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpclib.UnaryServerInterceptor) (any, error) {
		in := new(Req)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(DecisionServiceServer), ctx, in)
		}
		info := &grpclib.UnaryServerInfo{
			Server:     srv,
			FullMethod: fullMethod,
		}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(DecisionServiceServer), ctx, req.(*Req))
		}
		return interceptor(ctx, in, info, handler)
	}
}
