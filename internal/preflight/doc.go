// Package preflight provides readiness checks for the folders a packing run
// reads from and writes to.
//
// The workflow runs them after scanning. Failed checks are reported as
// warnings; the run still proceeds and surfaces the real I/O error if one
// occurs.
package preflight
