package auth

import (
	"context"
	"testing"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

func TestUnaryAuthInterceptor(t *testing.T) {
	svc := newTestJWTService(t, "interceptor-secret", time.Minute)
	token, err := svc.GenerateToken("officer-1", []string{RoleLender})
	if err != nil {
		t.Fatalf("GenerateToken() error = %v", err)
	}

	interceptor := UnaryAuthInterceptor(svc, []string{"/grpc.health.v1.Health/Check"})
	echoSubject := func(ctx context.Context, _ any) (any, error) {
		claims, ok := ClaimsFromContext(ctx)
		if !ok {
			return "", nil
		}
		return claims.Subject, nil
	}

	tests := []struct {
		name     string
		method   string
		md       metadata.MD
		wantCode codes.Code
		wantSub  string
	}{
		{name: "bearer token", method: "/x/Evaluate", md: metadata.Pairs("authorization", "Bearer "+token), wantCode: codes.OK, wantSub: "officer-1"},
		{name: "bare token", method: "/x/Evaluate", md: metadata.Pairs("authorization", token), wantCode: codes.OK, wantSub: "officer-1"},
		{name: "no metadata", method: "/x/Evaluate", wantCode: codes.Unauthenticated},
		{name: "no header", method: "/x/Evaluate", md: metadata.Pairs("x-other", "1"), wantCode: codes.Unauthenticated},
		{name: "bad token", method: "/x/Evaluate", md: metadata.Pairs("authorization", "Bearer nope"), wantCode: codes.Unauthenticated},
		{name: "skipped method", method: "/grpc.health.v1.Health/Check", wantCode: codes.OK, wantSub: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			if tt.md != nil {
				ctx = metadata.NewIncomingContext(ctx, tt.md)
			}
			resp, err := interceptor(ctx, nil, &grpc.UnaryServerInfo{FullMethod: tt.method}, echoSubject)
			if code := status.Code(err); code != tt.wantCode {
				t.Fatalf("code = %v, want %v (err %v)", code, tt.wantCode, err)
			}
			if err == nil && resp != tt.wantSub {
				t.Errorf("subject = %v, want %q", resp, tt.wantSub)
			}
		})
	}
}
