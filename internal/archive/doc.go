// Package archive materializes packing bins as zip containers.
//
// Each container is named <prefix>-NN.zip, holds its members flattened to
// their base names, and carries a stored _stem-zipper.txt marker. Containers
// that still exceed the capacity after compression are handed to a
// VolumeSplitter, which rewrites them as numbered fixed-size parts using the
// platform's zip or 7z binary. A missing splitter is a reported condition,
// never a failure.
package archive
