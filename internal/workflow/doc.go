// Package workflow runs one packing pass over a folder.
//
// A run takes a per-folder lock, scans for candidates, splits oversized
// stereo WAV files, packs the resulting items, and builds one archive per
// bin. Progress is reported synchronously through a ProgressFunc and
// cancellation is honored between split operations and between bins.
// Recoverable problems are collected on Summary.Warnings; only archive write
// failures, lock contention, bad paths, and cancellation end a run early.
package workflow
