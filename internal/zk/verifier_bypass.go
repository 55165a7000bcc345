//go:build insecurenoverify

package zk

import "github.com/sirupsen/logrus"

// verificationBypassed skips the pairing check entirely. This file only
// compiles under the insecurenoverify tag, producing a binary for local
// circuit development that must never be deployed.
const verificationBypassed = true

func init() {
	logrus.Warn("PROOF VERIFICATION IS DISABLED: built with the insecurenoverify tag")
}
