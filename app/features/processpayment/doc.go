// Package processpayment implements the Process Payment use case.
//
// Paying the frozen penalty of a pending_payment loan closes it and releases its copy atomically.
// The amount paid is always the snapshot taken at return, however late the payment arrives.
package processpayment
