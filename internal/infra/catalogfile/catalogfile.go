// Package catalogfile loads the track catalog from a YAML file.
package catalogfile

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/dhowden/tag"
	"github.com/go-playground/validator/v10"
	zlog "github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"

	"github.com/osa030/musiclib/internal/domain/catalog"
	"github.com/osa030/musiclib/internal/domain/track"
)

// File is the on-disk catalog layout.
type File struct {
	Tracks []Entry `yaml:"tracks" validate:"required,min=1,dive"`
}

// Entry is one catalog entry.
type Entry struct {
	ID       int      `yaml:"id" validate:"gt=0"`
	Title    string   `yaml:"title"`
	Type     string   `yaml:"type" validate:"required,oneof=short long english inst"`
	Tags     []string `yaml:"tags"`
	Duration string   `yaml:"duration"`
	Src      string   `yaml:"src" validate:"required"`
}

// Options controls how entries are turned into tracks.
type Options struct {
	MediaDir string // Base directory for relative sources
	ReadTags bool   // Read titles from audio tags when the entry has none
}

// Load reads and parses the catalog file at path.
func Load(path string, opts Options) (*catalog.Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read catalog file")
	}

	c, err := Parse(data, opts)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to load catalog %s", path)
	}

	zlog.Info().Msgf("catalog loaded: path=%s tracks=%d", path, c.Len())
	return c, nil
}

// Parse builds a catalog from YAML data. Entry order is catalog order.
func Parse(data []byte, opts Options) (*catalog.Catalog, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, errors.Wrap(err, "failed to parse catalog")
	}

	validate := validator.New()
	if err := validate.Struct(f); err != nil {
		return nil, errors.Wrap(err, "catalog validation failed")
	}

	tracks := make([]track.Track, 0, len(f.Tracks))
	for _, e := range f.Tracks {
		tracks = append(tracks, e.toTrack(opts))
	}

	return catalog.New(tracks)
}

func (e Entry) toTrack(opts Options) track.Track {
	source := resolveSource(e.Src, opts.MediaDir)

	title := strings.TrimSpace(e.Title)
	if title == "" && opts.ReadTags {
		title = readTitle(source)
	}
	if title == "" {
		title = strings.TrimSuffix(filepath.Base(source), filepath.Ext(source))
	}

	typ, _ := track.ParseType(e.Type)
	return track.Track{
		ID:       e.ID,
		Title:    title,
		Type:     typ,
		Tags:     append([]string(nil), e.Tags...),
		Duration: strings.TrimSpace(e.Duration),
		Source:   source,
	}
}

// resolveSource joins relative sources onto mediaDir.
func resolveSource(src, mediaDir string) string {
	if mediaDir == "" || filepath.IsAbs(src) {
		return src
	}
	return filepath.Join(mediaDir, src)
}

// readTitle returns the title tag of the file at path, or "" when it
// cannot be read.
func readTitle(path string) string {
	f, err := os.Open(path)
	if err != nil {
		zlog.Debug().Msgf("catalog: cannot open source for tags: path=%s error=%v", path, err)
		return ""
	}
	defer f.Close()

	m, err := tag.ReadFrom(f)
	if err != nil {
		zlog.Debug().Msgf("catalog: no tags: path=%s error=%v", path, err)
		return ""
	}
	return strings.TrimSpace(m.Title())
}
