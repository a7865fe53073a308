// Package texture holds the decoded floor texture tiles for a run and maps
// world coordinates onto them.
package texture

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"  // register GIF decoding
	_ "image/jpeg" // register JPEG decoding
	"image/png"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	_ "golang.org/x/image/bmp"  // register BMP decoding
	_ "golang.org/x/image/tiff" // register TIFF decoding
	_ "golang.org/x/image/webp" // register WebP decoding
)

// Extensions lists the file extensions LoadDir tries, in order.
var Extensions = []string{".png", ".bmp", ".tiff", ".tif", ".webp", ".gif", ".jpg", ".jpeg"}

// Tile is one decoded texture tile.
type Tile struct {
	ID string
	// Width and Height are the tile's size in pixels.
	Width  int
	Height int
	// PNG is the tile re-encoded as PNG, ready to embed in the output.
	PNG []byte
}

// Decode reads one image in any registered format and returns it as a Tile.
//
// Postcondition: Returns a Tile with positive Width and Height, or a non-nil error.
func Decode(id string, r io.Reader) (*Tile, error) {
	img, _, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("decoding texture %q: %w", id, err)
	}
	bounds := img.Bounds()
	if bounds.Empty() {
		return nil, fmt.Errorf("texture %q: image is empty", id)
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encoding texture %q: %w", id, err)
	}
	return &Tile{ID: id, Width: bounds.Dx(), Height: bounds.Dy(), PNG: buf.Bytes()}, nil
}

// Registry is the read-only set of tiles for one run. It is built once and
// never mutated afterwards, so it may be shared between goroutines.
type Registry struct {
	tiles map[string]*Tile
}

// NewRegistry builds a Registry from tiles.
//
// Postcondition: Lookup(t.ID) returns t for every tile; returns an error on
// a duplicate ID.
func NewRegistry(tiles ...*Tile) (*Registry, error) {
	r := &Registry{tiles: make(map[string]*Tile, len(tiles))}
	for _, t := range tiles {
		if _, exists := r.tiles[t.ID]; exists {
			return nil, fmt.Errorf("texture: Registry: tile ID %q already registered", t.ID)
		}
		r.tiles[t.ID] = t
	}
	return r, nil
}

// LoadDir decodes the tile for each id from dir. A tile is looked up as
// <id><ext> and then <lowercase id><ext> for every entry of Extensions. Ids
// with no file are left out of the registry; callers report them as
// unresolved. An empty dir yields an empty registry.
//
// Postcondition: Returns a Registry, or a non-nil error if dir cannot be read
// or a file that exists cannot be decoded.
func LoadDir(dir string, ids []string) (*Registry, error) {
	if dir == "" {
		return NewRegistry()
	}
	if info, err := os.Stat(dir); err != nil {
		return nil, fmt.Errorf("reading texture directory %s: %w", dir, err)
	} else if !info.IsDir() {
		return nil, fmt.Errorf("texture path %s is not a directory", dir)
	}

	var tiles []*Tile
	for _, id := range ids {
		path, ok := findFile(dir, id)
		if !ok {
			continue
		}
		tile, err := decodeFile(id, path)
		if err != nil {
			return nil, err
		}
		tiles = append(tiles, tile)
	}
	return NewRegistry(tiles...)
}

func findFile(dir, id string) (string, bool) {
	for _, name := range []string{id, strings.ToLower(id)} {
		for _, ext := range Extensions {
			path := filepath.Join(dir, name+ext)
			if _, err := os.Stat(path); err == nil {
				return path, true
			}
		}
	}
	return "", false
}

func decodeFile(id, path string) (*Tile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening texture %s: %w", path, err)
	}
	defer f.Close()
	return Decode(id, f)
}

// Lookup returns the tile for id.
//
// Postcondition: ok is true iff id is registered. Safe on a nil Registry.
func (r *Registry) Lookup(id string) (*Tile, bool) {
	if r == nil {
		return nil, false
	}
	t, ok := r.tiles[id]
	return t, ok
}

// Len returns the number of registered tiles.
func (r *Registry) Len() int {
	if r == nil {
		return 0
	}
	return len(r.tiles)
}

// IDs returns the registered ids, sorted.
func (r *Registry) IDs() []string {
	if r == nil {
		return nil
	}
	ids := make([]string, 0, len(r.tiles))
	for id := range r.tiles {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
