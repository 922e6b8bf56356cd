package testsupport

import (
	"math/rand"
	"os"
	"path/filepath"
	"testing"

	"stemzipper/internal/media/wav"
)

// WriteFile fills the target path with the requested number of bytes using a
// simple repeating pattern. A size <= 0 writes a single byte.
func WriteFile(t testing.TB, path string, size int64) {
	t.Helper()

	if size <= 0 {
		size = 1
	}
	buf := make([]byte, 32*1024)
	for i := range buf {
		buf[i] = 0x42
	}
	writeChunks(t, path, size, func(chunk []byte) {
		copy(chunk, buf)
	})
}

// WriteRandomFile writes size bytes of seeded noise. Deflate cannot shrink
// the result, so archive sizes track the input sizes closely.
func WriteRandomFile(t testing.TB, path string, size int64, seed int64) {
	t.Helper()

	rng := rand.New(rand.NewSource(seed))
	writeChunks(t, path, size, func(chunk []byte) {
		_, _ = rng.Read(chunk)
	})
}

func writeChunks(t testing.TB, path string, size int64, fill func([]byte)) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create %s: %v", path, err)
	}
	defer f.Close()

	const chunkSize = 32 * 1024
	buf := make([]byte, chunkSize)
	remaining := size
	for remaining > 0 {
		toWrite := int64(chunkSize)
		if remaining < toWrite {
			toWrite = remaining
		}
		fill(buf[:toWrite])
		if _, err := f.Write(buf[:toWrite]); err != nil {
			t.Fatalf("write %s: %v", path, err)
		}
		remaining -= toWrite
	}
}

// WriteWAV writes a PCM WAV file with the given layout. Sample bytes are
// seeded noise so each channel is distinguishable after a split.
func WriteWAV(t testing.TB, path string, channels, bits, frames int) []byte {
	t.Helper()

	header := wav.Header{Format: wav.FormatPCM, Channels: channels, SampleRate: 44100, BitsPerSample: bits}
	samples := make([]byte, frames*channels*((bits+7)/8))
	rng := rand.New(rand.NewSource(int64(len(samples))))
	_, _ = rng.Read(samples)

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, header.Encode(samples), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return samples
}
