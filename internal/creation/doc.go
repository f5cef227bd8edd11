// Package creation validates and submits new checkers.
package creation
