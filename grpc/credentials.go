// Package grpc attaches the current auth session to outgoing gRPC calls
// from the app to its own API services.
package grpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
)

// metadataKeyAuthorization is the gRPC metadata key carrying the bearer token
const metadataKeyAuthorization = "authorization"

// TokenSource supplies the current access token, or "" when signed out.
// *habitauth.SessionStore satisfies this.
type TokenSource interface {
	AccessToken() string
}

// SessionCredentials implements credentials.PerRPCCredentials backed by a
// live session. Calls made while signed out carry no credentials; the
// server decides whether to reject them.
type SessionCredentials struct {
	Source TokenSource

	// AllowInsecure permits sending the token over non-TLS connections.
	// Only for local development.
	AllowInsecure bool
}

// GetRequestMetadata returns the authorization metadata for a request
func (c SessionCredentials) GetRequestMetadata(ctx context.Context, uri ...string) (map[string]string, error) {
	token := c.Source.AccessToken()
	if token == "" {
		return nil, nil
	}
	return map[string]string{metadataKeyAuthorization: "Bearer " + token}, nil
}

// RequireTransportSecurity reports whether the connection must use TLS
func (c SessionCredentials) RequireTransportSecurity() bool {
	return !c.AllowInsecure
}

// UnaryClientInterceptor returns an interceptor that adds the bearer token
// to each unary call, for connections that cannot use per-RPC credentials.
func UnaryClientInterceptor(source TokenSource) grpc.UnaryClientInterceptor {
	return func(ctx context.Context, method string, req, reply any, cc *grpc.ClientConn, invoker grpc.UnaryInvoker, opts ...grpc.CallOption) error {
		if token := source.AccessToken(); token != "" {
			ctx = metadata.AppendToOutgoingContext(ctx, metadataKeyAuthorization, "Bearer "+token)
		}
		return invoker(ctx, method, req, reply, cc, opts...)
	}
}
