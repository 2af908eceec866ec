package grpc

import (
	"context"
	"testing"

	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
)

type staticSource string

func (s staticSource) AccessToken() string { return string(s) }

func TestSessionCredentials_GetRequestMetadata(t *testing.T) {
	creds := SessionCredentials{Source: staticSource("tok-123")}

	md, err := creds.GetRequestMetadata(context.Background())
	if err != nil {
		t.Fatalf("GetRequestMetadata() error = %v", err)
	}
	if got := md["authorization"]; got != "Bearer tok-123" {
		t.Errorf("authorization = %q, want Bearer tok-123", got)
	}
}

func TestSessionCredentials_SignedOut(t *testing.T) {
	creds := SessionCredentials{Source: staticSource("")}

	md, err := creds.GetRequestMetadata(context.Background())
	if err != nil {
		t.Fatalf("GetRequestMetadata() error = %v", err)
	}
	if md != nil {
		t.Errorf("metadata = %v, want nil when signed out", md)
	}
}

func TestSessionCredentials_RequireTransportSecurity(t *testing.T) {
	if !(SessionCredentials{Source: staticSource("t")}).RequireTransportSecurity() {
		t.Error("RequireTransportSecurity() = false by default, want true")
	}
	if (SessionCredentials{Source: staticSource("t"), AllowInsecure: true}).RequireTransportSecurity() {
		t.Error("RequireTransportSecurity() = true with AllowInsecure, want false")
	}
}

func TestUnaryClientInterceptor_AddsToken(t *testing.T) {
	interceptor := UnaryClientInterceptor(staticSource("tok-456"))

	var gotCtx context.Context
	invoker := func(ctx context.Context, method string, req, reply any, cc *grpc.ClientConn, opts ...grpc.CallOption) error {
		gotCtx = ctx
		return nil
	}

	if err := interceptor(context.Background(), "/habits.v1.HabitService/ListHabits", nil, nil, nil, invoker); err != nil {
		t.Fatalf("interceptor error = %v", err)
	}

	md, ok := metadata.FromOutgoingContext(gotCtx)
	if !ok {
		t.Fatal("no outgoing metadata on invoked context")
	}
	if got := md.Get("authorization"); len(got) != 1 || got[0] != "Bearer tok-456" {
		t.Errorf("authorization = %v, want [Bearer tok-456]", got)
	}
}

func TestUnaryClientInterceptor_SignedOut(t *testing.T) {
	interceptor := UnaryClientInterceptor(staticSource(""))

	var gotCtx context.Context
	invoker := func(ctx context.Context, method string, req, reply any, cc *grpc.ClientConn, opts ...grpc.CallOption) error {
		gotCtx = ctx
		return nil
	}

	if err := interceptor(context.Background(), "/habits.v1.HabitService/ListHabits", nil, nil, nil, invoker); err != nil {
		t.Fatalf("interceptor error = %v", err)
	}

	if md, ok := metadata.FromOutgoingContext(gotCtx); ok && len(md.Get("authorization")) > 0 {
		t.Errorf("authorization = %v, want none when signed out", md.Get("authorization"))
	}
}
