// Package common contains shared constants and sentinel errors used across
// quzhan components.
package common

// Reserved business codes carried in the "code" field of every gateway
// response envelope. They are a fixed protocol contract with the backend.
const (
	CodeOK = 0

	// CodeCredentialInvalid means the Authorization header was missing or
	// malformed. It is not recoverable by a refresh.
	CodeCredentialInvalid = 40101

	// CodeAccessTokenExpired triggers a token refresh.
	CodeAccessTokenExpired = 40102

	// CodeRefreshTokenExpired means the refresh cookie is no longer valid.
	CodeRefreshTokenExpired = 40103
)

// Header names attached to outbound requests.
const (
	AuthorizationHeaderName = "Authorization"
	PlatformHeaderName      = "X-Platform"
	RequestIDHeaderName     = "X-Request-ID"
)

// DefaultPlatform identifies this client to the gateway.
const DefaultPlatform = "web"

// RefreshCookieName is the HTTP-only cookie that carries the refresh token.
const RefreshCookieName = "refresh_token"
