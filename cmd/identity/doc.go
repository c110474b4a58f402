// Package identity is the boundary to the managed identity provider.
//
// It defines the Provider contract consumed by the auth operations, the tagged failure
// value (ProviderError + Failure) every provider call reports, and a Cognito-backed
// implementation. No decision logic lives here: classification of failures into response
// codes happens in the caller.
package identity
