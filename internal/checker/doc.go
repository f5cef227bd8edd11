// Package checker defines the monitored-site model shared by the client:
// checkers, their probe log entries, and the derivation of a checker's
// display status from its history.
package checker
