// Package authflow implements the identity operations of the service on top of an
// identity.Provider.
//
// Every operation returns an envelope; provider failures are classified into the closed
// envelope code set per operation and never escape as raw errors. An operation makes at most
// one provider call and never retries.
package authflow
