// Package token holds the small token primitives the service needs:
//
//   - SECRET_HASH computation for identity-provider app clients that have a secret;
//   - log-safe fingerprints of bearer tokens;
//   - the structural bearer check used in front of profile routes.
//
// The bearer check is a placeholder. It confirms the token is a three-segment JWT whose
// header and payload decode as JSON. It does NOT verify the signature, issuer, audience or
// expiry, and must not be relied on for authorization.
package token
