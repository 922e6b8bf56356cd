// Package main hosts the stemzipper CLI entrypoint and command graph.
//
// The Cobra command tree resolves configuration once, builds the logger and
// translator, and hands the real work to the internal packages: workflow for
// packing runs, scan and packing for previews, history for the run ledger,
// and deps for tool checks. Output meant for people is localized; --json
// output is not.
package main
