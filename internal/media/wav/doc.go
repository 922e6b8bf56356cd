// Package wav reads RIFF/WAVE headers and splits two-channel recordings into
// a pair of mono files.
//
// Only uncompressed PCM and IEEE float payloads (including their
// WAVE_FORMAT_EXTENSIBLE wrappers) are split. Anything else is reported with
// packerr.ErrUnsupportedAudio and handed back unchanged so the caller can pack
// the original file as-is.
package wav
