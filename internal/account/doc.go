// Package account registers, logs in and logs out users, keeping the
// session credential in step with the backend.
package account
