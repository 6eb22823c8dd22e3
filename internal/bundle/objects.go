package bundle

import (
	"encoding/binary"
	"fmt"
	"strconv"
	"strings"
)

// Class IDs of the object types the dump pipeline cares about.
const (
	ClassTexture2D   int32 = 28
	ClassAssetBundle int32 = 142
	ClassSprite      int32 = 213
)

// Object is one entry of a bundle's serialized files. Its payload is
// decoded on demand through Texture2D or Sprite.
type Object struct {
	PathID  int64
	ClassID int32

	// Container is the asset path from the AssetBundle manifest, when
	// the manifest names this object. Used for output file naming.
	Container string

	bundle  *Bundle
	version engineVersion
	data    []byte
}

// engineVersion is the major/minor pair parsed out of a revision
// string such as "2019.4.21f1". Object layouts shift between engine
// releases, so payload parsing is gated on it.
type engineVersion struct {
	major int
	minor int
}

func (v engineVersion) atLeast(major, minor int) bool {
	return v.major > major || (v.major == major && v.minor >= minor)
}

func parseEngineVersion(s string) engineVersion {
	parts := strings.SplitN(s, ".", 3)

	var v engineVersion
	if len(parts) > 0 {
		v.major, _ = strconv.Atoi(parts[0])
	}

	if len(parts) > 1 {
		v.minor, _ = strconv.Atoi(parts[1])
	}

	return v
}

// Sprite is the subset of a sprite object the dumper uses: its name
// and its rect on the atlas texture.
type Sprite struct {
	Name string
	Rect Rect
}

// Rect is a sprite rectangle in Unity texture coordinates, where y
// grows upward from the bottom of the texture.
type Rect struct {
	X, Y, W, H float32
}

// Sprite decodes a sprite payload. Only the leading fields are read;
// name and rect sit in front of every layout revision this tool
// supports.
func (o *Object) Sprite() (*Sprite, error) {
	if o.ClassID != ClassSprite {
		return nil, fmt.Errorf("object %d is not a sprite", o.PathID)
	}

	r := newReader(o.data, binary.LittleEndian)

	s := &Sprite{Name: r.alignedString()}
	s.Rect = Rect{X: r.f32(), Y: r.f32(), W: r.f32(), H: r.f32()}

	if r.err != nil {
		return nil, fmt.Errorf("sprite %d: %w", o.PathID, r.err)
	}

	return s, nil
}

// assetBundleManifest maps object path IDs to their container paths.
type assetBundleManifest struct {
	container map[int64]string
}

// assetBundle decodes the bundle manifest object.
func (o *Object) assetBundle() (*assetBundleManifest, error) {
	r := newReader(o.data, binary.LittleEndian)

	r.alignedString() // bundle name

	preloadCount := int(r.i32())
	if r.err != nil || preloadCount < 0 {
		return nil, fmt.Errorf("malformed preload table")
	}

	// PPtr is a file index and a path ID.
	r.skip(preloadCount * 12)

	containerCount := int(r.i32())
	if r.err != nil || containerCount < 0 {
		return nil, fmt.Errorf("malformed container map")
	}

	m := &assetBundleManifest{container: make(map[int64]string, containerCount)}

	for i := 0; i < containerCount; i++ {
		name := r.alignedString()
		r.i32() // preload index
		r.i32() // preload size
		r.i32() // asset file index
		pathID := r.i64()

		if _, ok := m.container[pathID]; !ok {
			m.container[pathID] = name
		}
	}

	if r.err != nil {
		return nil, fmt.Errorf("manifest %d: %w", o.PathID, r.err)
	}

	return m, nil
}
