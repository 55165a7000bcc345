//go:build !insecurenoverify

package zk

// Proof verification is always enforced in default builds.
const verificationBypassed = false
