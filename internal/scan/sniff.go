package scan

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Kind is the detected container or codec family of an audio file.
type Kind string

const (
	KindWAV     Kind = "wav"
	KindMP3     Kind = "mp3"
	KindOgg     Kind = "ogg"
	KindOpus    Kind = "opus"
	KindFLAC    Kind = "flac"
	KindAIFF    Kind = "aiff"
	KindAAC     Kind = "aac"
	KindWMA     Kind = "wma"
	KindUnknown Kind = "unknown"
)

var asfGUID = []byte{0x30, 0x26, 0xb2, 0x75, 0x8e, 0x66, 0xcf, 0x11, 0xa6, 0xd9, 0x00, 0xaa, 0x00, 0x62, 0xce, 0x6c}

var kindsByExtension = map[string]Kind{
	".wav":  KindWAV,
	".mp3":  KindMP3,
	".ogg":  KindOgg,
	".opus": KindOpus,
	".flac": KindFLAC,
	".aiff": KindAIFF,
	".aif":  KindAIFF,
	".aac":  KindAAC,
	".wma":  KindWMA,
}

// Sniff detects the file kind from its first bytes, falling back to the
// extension when the header is unrecognized or unreadable.
func Sniff(path string) Kind {
	fallback := KindFromExtension(path)
	file, err := os.Open(path)
	if err != nil {
		return fallback
	}
	defer file.Close()

	head := make([]byte, 64)
	n, err := io.ReadFull(file, head)
	if err != nil && err != io.ErrUnexpectedEOF {
		return fallback
	}
	if kind := SniffBytes(head[:n]); kind != KindUnknown {
		return kind
	}
	return fallback
}

// SniffBytes classifies a header prefix.
func SniffBytes(head []byte) Kind {
	switch {
	case len(head) >= 12 && string(head[0:4]) == "RIFF" && string(head[8:12]) == "WAVE":
		return KindWAV
	case len(head) >= 4 && string(head[0:4]) == "fLaC":
		return KindFLAC
	case len(head) >= 4 && string(head[0:4]) == "OggS":
		if bytes.Contains(head, []byte("OpusHead")) {
			return KindOpus
		}
		return KindOgg
	case len(head) >= 12 && string(head[0:4]) == "FORM" && (string(head[8:12]) == "AIFF" || string(head[8:12]) == "AIFC"):
		return KindAIFF
	case len(head) >= 16 && bytes.Equal(head[:16], asfGUID):
		return KindWMA
	case len(head) >= 3 && string(head[0:3]) == "ID3":
		return KindMP3
	case len(head) >= 2 && head[0] == 0xFF && head[1]&0xF6 == 0xF0:
		return KindAAC
	case len(head) >= 2 && head[0] == 0xFF && head[1]&0xE0 == 0xE0:
		return KindMP3
	default:
		return KindUnknown
	}
}

// KindFromExtension maps a file extension to a kind.
func KindFromExtension(path string) Kind {
	if kind, ok := kindsByExtension[strings.ToLower(filepath.Ext(path))]; ok {
		return kind
	}
	return KindUnknown
}

// Lossy reports whether the kind uses lossy compression.
func (k Kind) Lossy() bool {
	switch k {
	case KindMP3, KindOgg, KindOpus, KindAAC, KindWMA:
		return true
	default:
		return false
	}
}
