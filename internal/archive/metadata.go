package archive

import (
	"encoding/json"
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"stemzipper/internal/config"
)

// LicenseURLs maps supported license identifiers to their deeds.
var LicenseURLs = map[string]string{
	"CC0-1.0":      "https://creativecommons.org/publicdomain/zero/1.0/",
	"CC-BY-4.0":    "https://creativecommons.org/licenses/by/4.0/",
	"CC-BY-SA-4.0": "https://creativecommons.org/licenses/by-sa/4.0/",
	"CC-BY-NC-4.0": "https://creativecommons.org/licenses/by-nc/4.0/",
}

// Metadata is the optional pack description embedded into every archive.
type Metadata struct {
	Title        string `json:"title"`
	Artist       string `json:"artist"`
	Album        string `json:"album,omitempty"`
	BPM          string `json:"bpm,omitempty"`
	Key          string `json:"key,omitempty"`
	License      string `json:"-"`
	Attribution  string `json:"attribution,omitempty"`
	ArtistURL    string `json:"-"`
	ContactEmail string `json:"-"`
}

// MetadataFromConfig returns nil unless both title and artist are configured.
// Musical keys are title-cased ("a minor" becomes "A Minor").
func MetadataFromConfig(cfg config.Metadata) *Metadata {
	if cfg.Title == "" || cfg.Artist == "" {
		return nil
	}
	key := cfg.Key
	if key != "" {
		key = cases.Title(language.Und).String(key)
	}
	return &Metadata{
		Title:        cfg.Title,
		Artist:       cfg.Artist,
		Album:        cfg.Album,
		BPM:          cfg.BPM,
		Key:          key,
		License:      cfg.License,
		Attribution:  cfg.Attribution,
		ArtistURL:    cfg.ArtistURL,
		ContactEmail: cfg.ContactEmail,
	}
}

type licenseRef struct {
	ID string `json:"id"`
}

type linkSet struct {
	ArtistURL    string `json:"artist_url,omitempty"`
	ContactEmail string `json:"contact_email,omitempty"`
}

// JSON renders PACK-METADATA.json.
func (m *Metadata) JSON() ([]byte, error) {
	payload := struct {
		*Metadata
		License licenseRef `json:"license"`
		Links   *linkSet   `json:"links,omitempty"`
	}{Metadata: m, License: licenseRef{ID: m.License}}
	if m.ArtistURL != "" || m.ContactEmail != "" {
		payload.Links = &linkSet{ArtistURL: m.ArtistURL, ContactEmail: m.ContactEmail}
	}
	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode pack metadata: %w", err)
	}
	return append(data, '\n'), nil
}

// LicenseText renders LICENSE.txt.
func (m *Metadata) LicenseText() string {
	return "License: " + m.License + "\nURL: " + LicenseURLs[m.License] + "\n"
}

// AttributionText renders ATTRIBUTION.txt, falling back to "Artist - Title".
func (m *Metadata) AttributionText() string {
	if text := strings.TrimSpace(m.Attribution); text != "" {
		return text + "\n"
	}
	return m.Artist + " - " + m.Title + "\n"
}

type extraEntry struct {
	name string
	data []byte
}

func (m *Metadata) entries() ([]extraEntry, error) {
	payload, err := m.JSON()
	if err != nil {
		return nil, err
	}
	return []extraEntry{
		{name: "PACK-METADATA.json", data: payload},
		{name: "LICENSE.txt", data: []byte(m.LicenseText())},
		{name: "ATTRIBUTION.txt", data: []byte(m.AttributionText())},
	}, nil
}
