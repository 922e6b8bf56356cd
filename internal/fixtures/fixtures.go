// Package fixtures generates dummy audio folders for trying out the packer.
package fixtures

import (
	"bufio"
	"fmt"
	"math/rand/v2"
	"os"
	"path/filepath"

	"stemzipper/internal/config"
	"stemzipper/internal/media/wav"
)

// fakeHeader opens every dummy file so it is recognizable in a hex dump.
const fakeHeader = "FAKEAUDIO"

// Extensions cycles through the dummy file extensions.
var Extensions = []string{".wav", ".flac", ".mp3", ".aiff", ".ogg", ".aac", ".m4a", ".opus", ".wma"}

// Options controls Generate.
type Options struct {
	Count int
	MinMB float64
	MaxMB float64
	// StereoWAV writes real 16-bit stereo WAV files instead of noise with a
	// fake header, so oversized files exercise the channel splitter.
	StereoWAV bool
	Seed      uint64
}

func (o Options) withDefaults() Options {
	if o.Count <= 0 {
		o.Count = 20
	}
	if o.MinMB <= 0 {
		o.MinMB = 2
	}
	if o.MaxMB < o.MinMB {
		o.MaxMB = o.MinMB + 18
	}
	return o
}

// Generate writes dummy files named testfile_NNN<ext> into dir and returns
// their paths.
func Generate(dir string, opts Options) ([]string, error) {
	opts = opts.withDefaults()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create folder: %w", err)
	}
	rng := rand.New(rand.NewPCG(opts.Seed, opts.Seed^0x5354454d))

	paths := make([]string, 0, opts.Count)
	for i := 1; i <= opts.Count; i++ {
		sizeMB := opts.MinMB + rng.Float64()*(opts.MaxMB-opts.MinMB)
		size := max(int64(sizeMB*config.BytesPerMB), 1)

		ext := Extensions[i%len(Extensions)]
		if opts.StereoWAV {
			ext = ".wav"
		}
		path := filepath.Join(dir, fmt.Sprintf("testfile_%03d%s", i, ext))

		var err error
		if opts.StereoWAV {
			err = writeStereoWAV(path, size, rng)
		} else {
			err = writeDummy(path, size, rng)
		}
		if err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

func writeDummy(path string, size int64, rng *rand.Rand) error {
	return writeFile(path, func(w *bufio.Writer) error {
		header := []byte(fakeHeader)
		if int64(len(header)) > size {
			header = header[:size]
		}
		if _, err := w.Write(header); err != nil {
			return err
		}
		return writeNoise(w, size-int64(len(header)), rng)
	})
}

func writeStereoWAV(path string, size int64, rng *rand.Rand) error {
	const frameSize = 4
	frames := max((size-wav.HeaderSize)/frameSize, 0)
	dataSize := frames * frameSize
	header := wav.Header{Format: wav.FormatPCM, Channels: 2, SampleRate: 44100, BitsPerSample: 16}
	return writeFile(path, func(w *bufio.Writer) error {
		if _, err := w.Write(header.Bytes(uint32(dataSize))); err != nil {
			return err
		}
		return writeNoise(w, dataSize, rng)
	})
}

func writeNoise(w *bufio.Writer, n int64, rng *rand.Rand) error {
	buf := make([]byte, 64*1024)
	for n > 0 {
		chunk := min(int64(len(buf)), n)
		for i := int64(0); i < chunk; i += 8 {
			v := rng.Uint64()
			for j := int64(0); j < 8 && i+j < chunk; j++ {
				buf[i+j] = byte(v >> (8 * j))
			}
		}
		if _, err := w.Write(buf[:chunk]); err != nil {
			return err
		}
		n -= chunk
	}
	return nil
}

func writeFile(path string, fill func(*bufio.Writer) error) (err error) {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", filepath.Base(path), err)
	}
	defer func() {
		if closeErr := file.Close(); err == nil && closeErr != nil {
			err = fmt.Errorf("close %s: %w", filepath.Base(path), closeErr)
		}
	}()
	w := bufio.NewWriter(file)
	if err := fill(w); err != nil {
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("flush %s: %w", filepath.Base(path), err)
	}
	return nil
}
