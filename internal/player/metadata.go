package player

import (
	"path/filepath"
	"strings"

	"github.com/bogem/id3v2/v2"
)

// Metadata is what the header shows for a track.
type Metadata struct {
	Title  string
	Artist string
	Album  string
}

// Line joins artist and album for a subtitle, or returns "".
func (m Metadata) Line() string {
	switch {
	case m.Artist != "" && m.Album != "":
		return m.Artist + " - " + m.Album
	case m.Artist != "":
		return m.Artist
	default:
		return m.Album
	}
}

// ReadMetadata reads ID3v2 tags when the file has them. Anything without a
// title tag is named after the file.
func ReadMetadata(path string) Metadata {
	fallback := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	if !strings.EqualFold(filepath.Ext(path), ".mp3") {
		return Metadata{Title: fallback}
	}
	tag, err := id3v2.Open(path, id3v2.Options{Parse: true})
	if err != nil {
		return Metadata{Title: fallback}
	}
	defer tag.Close()

	m := Metadata{
		Title:  strings.TrimSpace(tag.Title()),
		Artist: strings.TrimSpace(tag.Artist()),
		Album:  strings.TrimSpace(tag.Album()),
	}
	if m.Title == "" {
		m.Title = fallback
	}
	return m
}
