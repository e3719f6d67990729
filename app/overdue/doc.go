// Package overdue runs the periodic overdue sweep.
//
// A sweep lists the active loans whose due date has passed, logs a summary and records two gauges:
// the number of overdue loans and the sum of their accrued penalties in cents.
// It never changes any loan.
package overdue
