// Package scan discovers candidate audio files in a folder and previews how
// the packer will treat each of them.
//
// Discovery is non-recursive and deterministic (entries sorted by name). The
// preview is read-only: it classifies files by size and extension and sniffs
// headers, but never splits or moves anything.
package scan
