package wav

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"time"
)

// Format is the WAVE format tag from the fmt chunk.
type Format uint16

const (
	FormatPCM        Format = 1
	FormatFloat      Format = 3
	FormatExtensible Format = 0xFFFE
)

func (f Format) String() string {
	switch f {
	case FormatPCM:
		return "pcm"
	case FormatFloat:
		return "float"
	case FormatExtensible:
		return "extensible"
	default:
		return fmt.Sprintf("0x%04x", uint16(f))
	}
}

// HeaderSize is the length of the canonical header written for mono outputs.
const HeaderSize = 44

// maxFmtSize bounds the fmt body; WAVE_FORMAT_EXTENSIBLE needs 40 bytes.
const maxFmtSize = 256

var (
	errNotRIFF      = errors.New("not a RIFF/WAVE stream")
	errMissingFmt   = errors.New("fmt chunk missing")
	errMissingData  = errors.New("data chunk missing")
	errShortFmt     = errors.New("fmt chunk too short")
	errLongFmt      = errors.New("fmt chunk size out of range")
	errInvalidShape = errors.New("invalid channel count or bit depth")
)

// Info describes the stream found in a WAV file.
type Info struct {
	// Format is the effective sample format; extensible headers are resolved
	// to their sub-format.
	Format        Format
	Extensible    bool
	Channels      int
	SampleRate    int
	BitsPerSample int
	BlockAlign    int
	DataOffset    int64
	DataSize      int64
}

// SampleWidth returns the bytes per sample for one channel.
func (i Info) SampleWidth() int {
	return (i.BitsPerSample + 7) / 8
}

// FrameSize returns the bytes per interleaved frame.
func (i Info) FrameSize() int {
	return i.SampleWidth() * i.Channels
}

// Frames returns the number of complete frames in the data chunk.
func (i Info) Frames() int64 {
	size := i.FrameSize()
	if size <= 0 {
		return 0
	}
	return i.DataSize / int64(size)
}

// Duration returns the playback length of the complete frames.
func (i Info) Duration() time.Duration {
	if i.SampleRate <= 0 {
		return 0
	}
	return time.Duration(i.Frames()) * time.Second / time.Duration(i.SampleRate)
}

// Splittable reports whether the payload is raw samples that can be
// deinterleaved byte-wise.
func (i Info) Splittable() bool {
	return i.Format == FormatPCM || i.Format == FormatFloat
}

// Probe opens path and parses its RIFF chunk list.
func Probe(path string) (Info, error) {
	file, err := os.Open(path)
	if err != nil {
		return Info{}, err
	}
	defer file.Close()

	stat, err := file.Stat()
	if err != nil {
		return Info{}, err
	}
	return ReadInfo(file, stat.Size())
}

// ReadInfo walks the chunks of a WAV stream of the given total size until it
// has seen both fmt and data. A data chunk that claims more bytes than the
// file holds is clamped to the bytes actually present.
func ReadInfo(r io.ReadSeeker, size int64) (Info, error) {
	var riff [12]byte
	if _, err := io.ReadFull(r, riff[:]); err != nil {
		return Info{}, errNotRIFF
	}
	if string(riff[0:4]) != "RIFF" || string(riff[8:12]) != "WAVE" {
		return Info{}, errNotRIFF
	}

	var info Info
	haveFmt := false
	offset := int64(12)
	for {
		var chunk [8]byte
		if _, err := io.ReadFull(r, chunk[:]); err != nil {
			break
		}
		offset += 8
		id := string(chunk[0:4])
		chunkSize := int64(binary.LittleEndian.Uint32(chunk[4:8]))

		switch id {
		case "fmt ":
			if chunkSize < 16 {
				return Info{}, errShortFmt
			}
			if chunkSize > maxFmtSize || chunkSize > size-offset {
				return Info{}, errLongFmt
			}
			body := make([]byte, chunkSize)
			if _, err := io.ReadFull(r, body); err != nil {
				return Info{}, fmt.Errorf("read fmt chunk: %w", err)
			}
			parseFmt(&info, body)
			haveFmt = true
		case "data":
			if !haveFmt {
				return Info{}, errMissingFmt
			}
			info.DataOffset = offset
			info.DataSize = chunkSize
			if remaining := size - offset; remaining < info.DataSize {
				info.DataSize = max(remaining, 0)
			}
			if info.Channels <= 0 || info.BitsPerSample <= 0 {
				return Info{}, errInvalidShape
			}
			return info, nil
		default:
			if _, err := r.Seek(chunkSize, io.SeekCurrent); err != nil {
				return Info{}, fmt.Errorf("skip %q chunk: %w", id, err)
			}
		}
		offset += chunkSize
		if chunkSize%2 == 1 {
			if _, err := r.Seek(1, io.SeekCurrent); err != nil {
				return Info{}, err
			}
			offset++
		}
	}
	if !haveFmt {
		return Info{}, errMissingFmt
	}
	return Info{}, errMissingData
}

func parseFmt(info *Info, body []byte) {
	info.Format = Format(binary.LittleEndian.Uint16(body[0:2]))
	info.Channels = int(binary.LittleEndian.Uint16(body[2:4]))
	info.SampleRate = int(binary.LittleEndian.Uint32(body[4:8]))
	info.BlockAlign = int(binary.LittleEndian.Uint16(body[12:14]))
	info.BitsPerSample = int(binary.LittleEndian.Uint16(body[14:16]))
	if info.Format == FormatExtensible && len(body) >= 26 {
		info.Extensible = true
		info.Format = Format(binary.LittleEndian.Uint16(body[24:26]))
	}
}

// Header describes a canonical 44-byte WAV header.
type Header struct {
	Format        Format
	Channels      int
	SampleRate    int
	BitsPerSample int
}

// Bytes renders the header for a data chunk of dataSize bytes. The RIFF size
// accounts for the pad byte an odd-sized data chunk requires.
func (h Header) Bytes(dataSize uint32) []byte {
	width := (h.BitsPerSample + 7) / 8
	blockAlign := width * h.Channels
	pad := dataSize % 2

	header := make([]byte, HeaderSize)
	copy(header[0:4], "RIFF")
	binary.LittleEndian.PutUint32(header[4:8], 36+dataSize+pad)
	copy(header[8:12], "WAVE")

	copy(header[12:16], "fmt ")
	binary.LittleEndian.PutUint32(header[16:20], 16)
	binary.LittleEndian.PutUint16(header[20:22], uint16(h.Format))
	binary.LittleEndian.PutUint16(header[22:24], uint16(h.Channels))
	binary.LittleEndian.PutUint32(header[24:28], uint32(h.SampleRate))
	binary.LittleEndian.PutUint32(header[28:32], uint32(h.SampleRate*blockAlign))
	binary.LittleEndian.PutUint16(header[32:34], uint16(blockAlign))
	binary.LittleEndian.PutUint16(header[34:36], uint16(h.BitsPerSample))

	copy(header[36:40], "data")
	binary.LittleEndian.PutUint32(header[40:44], dataSize)
	return header
}

// Encode returns a complete WAV file holding samples.
func (h Header) Encode(samples []byte) []byte {
	out := make([]byte, 0, HeaderSize+len(samples)+1)
	out = append(out, h.Bytes(uint32(len(samples)))...)
	out = append(out, samples...)
	if len(samples)%2 == 1 {
		out = append(out, 0)
	}
	return out
}
