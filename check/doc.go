// Package check contains the pipeline stages of mailprobe: syntax, MX
// lookup, RCPT probe of the real recipient and catch-all detection.
// Each stage returns a types.CheckResult and never panics or returns a raw
// transport error. These types can be used directly, but the recommended
// approach is the builder API of the github.com/optimode/mailprobe package.
package check
