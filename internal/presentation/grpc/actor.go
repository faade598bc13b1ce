package grpc

import (
	"context"

	"github.com/aman3729/credit-score/internal/domain/model"
	"github.com/aman3729/credit-score/pkg/auth"
)

// CapabilitiesForRoles unions the capabilities of every role held. Unknown
// roles grant nothing.
func CapabilitiesForRoles(roles []string) model.Capabilities {
	var c model.Capabilities
	for _, role := range roles {
		switch role {
		case auth.RoleAdmin:
			return model.SystemCaller().Capabilities
		case auth.RoleLender, auth.RoleOperator:
			c.CanEvaluate = true
			c.CanOverrideDecision = true
			c.CanRecalculate = true
			c.CanViewDecisions = true
		case auth.RoleAuditor:
			c.CanViewDecisions = true
			c.CanViewConfig = true
		case auth.RoleAPIClient:
			c.CanEvaluate = true
			c.CanRecalculate = true
			c.CanViewDecisions = true
		}
	}
	return c
}

// actorFromContext builds the caller from the claims the auth interceptor
// attached. Without claims the caller has no capabilities.
func actorFromContext(ctx context.Context) model.Actor {
	claims, ok := auth.ClaimsFromContext(ctx)
	if !ok {
		return model.Actor{}
	}
	return model.Actor{
		ID:           claims.Subject,
		Capabilities: CapabilitiesForRoles(claims.Roles),
	}
}
