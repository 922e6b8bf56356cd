package archive

import (
	"strings"
	"time"
)

// Version is stamped into every marker entry.
var Version = "0.9.0"

const (
	// MarkerName is the entry added to every archive.
	MarkerName = "_stem-zipper.txt"
	// ProjectURL is printed in the marker.
	ProjectURL = "https://github.com/rewired/stem-zipper"

	logo = `░█▀▀░▀█▀░█▀▀░█▄█░░░▀▀█░▀█▀░█▀█░█▀█░█▀▀░█▀▄░
░▀▀█░░█░░█▀▀░█░█░░░▄▀░░░█░░█▀▀░█▀▀░█▀▀░█▀▄░
░▀▀▀░░▀░░▀▀▀░▀░▀░░░▀▀▀░▀▀▀░▀░░░▀░░░▀▀▀░▀░▀░`
)

// Stamp returns the base marker text identifying the tool and version.
func Stamp() string {
	return logo + "\n\nPacked with Stem ZIPper v" + Version +
		"\n\nGet it here: " + ProjectURL + "\nIt's free and open source!"
}

// MarkerText returns the marker content, with a [Metadata] section appended
// when meta is non-nil.
func MarkerText(meta *Metadata, locale string, packedAt time.Time) string {
	stamp := Stamp()
	if meta == nil {
		return stamp
	}
	lines := []string{"[Metadata]", "Title: " + meta.Title, "Artist: " + meta.Artist}
	if meta.Album != "" {
		lines = append(lines, "Album: "+meta.Album)
	}
	if meta.BPM != "" {
		lines = append(lines, "BPM: "+meta.BPM)
	}
	if meta.Key != "" {
		lines = append(lines, "Key: "+meta.Key)
	}
	lines = append(lines, "License: "+meta.License)
	lines = append(lines, "Packed: "+packedAt.UTC().Format(time.RFC3339)+"  App: "+Version+"  Locale: "+locale)
	return stamp + "\n\n" + strings.Join(lines, "\n") + "\n"
}
