//go:build lendingdebug

package lending

// StrictRelease reports whether releasing a copy beyond TotalCopies fails instead of clamping.
const StrictRelease = true
