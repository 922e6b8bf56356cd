package wav

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"stemzipper/internal/logging"
	"stemzipper/internal/packerr"
	"stemzipper/internal/packing"
)

const framesPerChunk = 64 * 1024

// ChannelPaths returns the mono output paths for a stereo source:
// "<base>_L<ext>" and "<base>_R<ext>".
func ChannelPaths(path string) (string, string) {
	ext := filepath.Ext(path)
	base := strings.TrimSuffix(path, ext)
	return base + "_L" + ext, base + "_R" + ext
}

// Splitter turns stereo WAV files into two mono files.
type Splitter struct {
	logger *slog.Logger
}

// NewSplitter constructs a Splitter logging through logger.
func NewSplitter(logger *slog.Logger) *Splitter {
	return &Splitter{logger: logging.NewComponentLogger(logger, "wav")}
}

// Split replaces a stereo WAV with its left and right mono channels. Files
// that are not two-channel come back unchanged. On any failure the original
// stays in place, partial outputs are removed, and the unsplit item is
// returned together with a recoverable error. Existing _L/_R files are never
// overwritten.
func (s *Splitter) Split(ctx context.Context, item packing.Item) ([]packing.Item, error) {
	unsplit := []packing.Item{item}
	name := filepath.Base(item.Path)

	info, err := Probe(item.Path)
	if err != nil {
		return unsplit, packerr.Wrap(packerr.ErrUnsupportedAudio, "wav", "probe", name, err)
	}
	if info.Channels != 2 {
		s.logger.Debug("not stereo; passing through",
			logging.String("file", name),
			logging.Int("channels", info.Channels),
		)
		return unsplit, nil
	}
	if !info.Splittable() {
		return unsplit, packerr.Wrap(packerr.ErrUnsupportedAudio, "wav", "probe", name,
			fmt.Errorf("sample format %s", info.Format))
	}
	if err := ctx.Err(); err != nil {
		return unsplit, err
	}

	leftPath, rightPath := ChannelPaths(item.Path)
	for _, path := range []string{leftPath, rightPath} {
		if _, err := os.Lstat(path); err == nil {
			return unsplit, packerr.Wrap(packerr.ErrSplit, "wav", "split", name,
				fmt.Errorf("%w: %s", ErrOutputExists, filepath.Base(path)))
		}
	}
	if err := writeChannels(item.Path, info, leftPath, rightPath); err != nil {
		return unsplit, packerr.Wrap(packerr.ErrSplit, "wav", "split", name, err)
	}
	if err := os.Remove(item.Path); err != nil {
		removeQuietly(leftPath, rightPath)
		return unsplit, packerr.Wrap(packerr.ErrSplit, "wav", "remove original", name, err)
	}

	out := make([]packing.Item, 0, 2)
	for _, path := range []string{leftPath, rightPath} {
		stat, err := os.Stat(path)
		if err != nil {
			return unsplit, packerr.Wrap(packerr.ErrSplit, "wav", "stat output", filepath.Base(path), err)
		}
		out = append(out, packing.Item{Path: path, Size: stat.Size(), Order: item.Order})
	}

	s.logger.Info("stereo file split into mono channels",
		logging.String("file", name),
		logging.Int64("frames", info.Frames()),
		logging.Int("bits_per_sample", info.BitsPerSample),
		logging.Int("sample_rate", info.SampleRate),
		logging.Size("left_size", out[0].Size),
		logging.Size("right_size", out[1].Size),
	)
	return out, nil
}

// ErrOutputExists reports that a channel output path is already taken.
var ErrOutputExists = errors.New("channel output already exists")

// writeChannels creates both outputs exclusively and removes whichever of
// them it created when anything fails.
func writeChannels(srcPath string, info Info, leftPath, rightPath string) (err error) {
	var created []string
	defer func() {
		if err != nil {
			removeQuietly(created...)
		}
	}()

	src, err := os.Open(srcPath)
	if err != nil {
		return err
	}
	defer src.Close()

	width := info.SampleWidth()
	frames := info.Frames()
	monoSize := frames * int64(width)
	if monoSize > int64(^uint32(0)) {
		return fmt.Errorf("channel data of %d bytes exceeds the WAV size limit", monoSize)
	}
	header := Header{
		Format:        info.Format,
		Channels:      1,
		SampleRate:    info.SampleRate,
		BitsPerSample: info.BitsPerSample,
	}.Bytes(uint32(monoSize))

	left, err := newChannelWriter(leftPath, header)
	if err != nil {
		return err
	}
	created = append(created, leftPath)
	defer func() {
		if cerr := left.close(monoSize); err == nil {
			err = cerr
		}
	}()
	right, err := newChannelWriter(rightPath, header)
	if err != nil {
		return err
	}
	created = append(created, rightPath)
	defer func() {
		if cerr := right.close(monoSize); err == nil {
			err = cerr
		}
	}()

	if _, err := src.Seek(info.DataOffset, io.SeekStart); err != nil {
		return fmt.Errorf("seek data: %w", err)
	}
	reader := bufio.NewReader(io.LimitReader(src, frames*int64(2*width)))
	buf := make([]byte, framesPerChunk*2*width)
	for {
		n, readErr := io.ReadFull(reader, buf)
		if n > 0 {
			l, r := Deinterleave(buf[:n], width)
			if _, err := left.Write(l); err != nil {
				return err
			}
			if _, err := right.Write(r); err != nil {
				return err
			}
		}
		if readErr == io.EOF || readErr == io.ErrUnexpectedEOF {
			return nil
		}
		if readErr != nil {
			return fmt.Errorf("read frames: %w", readErr)
		}
	}
}

type channelWriter struct {
	*bufio.Writer
	file *os.File
}

func newChannelWriter(path string, header []byte) (*channelWriter, error) {
	file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			return nil, fmt.Errorf("%w: %s", ErrOutputExists, filepath.Base(path))
		}
		return nil, err
	}
	w := &channelWriter{Writer: bufio.NewWriter(file), file: file}
	if _, err := w.Write(header); err != nil {
		file.Close()
		_ = os.Remove(path)
		return nil, err
	}
	return w, nil
}

// close writes the RIFF pad byte for odd-sized data, flushes, and closes.
func (w *channelWriter) close(dataSize int64) error {
	var err error
	if dataSize%2 == 1 {
		err = w.WriteByte(0)
	}
	if ferr := w.Flush(); err == nil {
		err = ferr
	}
	if cerr := w.file.Close(); err == nil {
		err = cerr
	}
	return err
}

func removeQuietly(paths ...string) {
	for _, path := range paths {
		_ = os.Remove(path)
	}
}

// Deinterleave separates two-channel frames into left and right sample
// buffers. A trailing partial frame is dropped.
func Deinterleave(frames []byte, width int) ([]byte, []byte) {
	if width <= 0 {
		return nil, nil
	}
	frameSize := 2 * width
	count := len(frames) / frameSize
	left := make([]byte, 0, count*width)
	right := make([]byte, 0, count*width)
	for i := 0; i+frameSize <= len(frames); i += frameSize {
		left = append(left, frames[i:i+width]...)
		right = append(right, frames[i+width:i+frameSize]...)
	}
	return left, right
}

// Interleave is the inverse of Deinterleave. Extra samples in the longer
// buffer are ignored.
func Interleave(left, right []byte, width int) []byte {
	if width <= 0 {
		return nil
	}
	count := min(len(left), len(right)) / width
	out := make([]byte, 0, count*2*width)
	for i := 0; i < count; i++ {
		out = append(out, left[i*width:(i+1)*width]...)
		out = append(out, right[i*width:(i+1)*width]...)
	}
	return out
}
