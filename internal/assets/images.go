package assets

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"path"
	"path/filepath"
	"strings"

	"golang.org/x/image/draw"

	"github.com/uma-tools/umadump/internal/bundle"
	"github.com/uma-tools/umadump/internal/db"
	"github.com/uma-tools/umadump/internal/fileutil"
)

// namedImage pairs a decoded image with its output file name.
type namedImage struct {
	img  image.Image
	name string
}

// composeImages turns a parsed bundle into the list of images to
// write. Sprite-bearing bundles are treated as atlases: the base
// texture plus one crop per sprite. Plain texture bundles get the
// per-kind resize heuristics instead.
func (d *Dumper) composeImages(pack *bundle.Bundle, row db.AssetRow) []namedImage {
	var (
		textures []namedImage
		sprites  []*bundle.Sprite
	)

	for _, obj := range pack.Objects() {
		switch obj.ClassID {
		case bundle.ClassTexture2D:
			tex, err := obj.Texture2D()
			if err != nil {
				d.log.Errorf("failed to parse texture: %s: %v", row.Path, err)

				continue
			}

			img, err := tex.Image()
			if err != nil {
				d.log.Errorf("failed to parse texture image: %s: %v", row.Path, err)

				continue
			}

			// Output files are named after the bundle path; the
			// container entry overrides it when the manifest names
			// this texture.
			name := path.Base(row.Path)
			if obj.Container != "" {
				name = path.Base(obj.Container)
			}

			textures = append(textures, namedImage{img: img, name: name})

		case bundle.ClassSprite:
			s, err := obj.Sprite()
			if err != nil {
				d.log.Errorf("failed to parse sprite: %s: %v", row.Path, err)

				continue
			}

			sprites = append(sprites, s)
		}
	}

	if len(textures) == 0 {
		return nil
	}

	if len(sprites) > 0 {
		// Most likely an atlas.
		if len(textures) != 1 {
			d.log.Debugf("found asset with multiple textures: %s", row.Path)
		}

		atlas := textures[0]
		images := []namedImage{atlas}

		for i, s := range sprites {
			name := s.Name
			if name == "" {
				name = fmt.Sprintf("%d_%s", i, atlas.name)
			}

			images = append(images, namedImage{img: cropSprite(atlas.img, s.Rect), name: name})
		}

		return images
	}

	images := make([]namedImage, 0, len(textures))

	for _, tex := range textures {
		if w, h, ok := resizeFor(tex.name, row.Kind); ok {
			tex.img = scale(tex.img, w, h)
		}

		images = append(images, tex)
	}

	return images
}

// writeImages encodes and writes the images, resolving duplicate
// names with an index suffix tied to processing order.
func (d *Dumper) writeImages(dir, rowPath string, images []namedImage) (int64, error) {
	used := make(map[string]struct{}, len(images))

	var total int64

	for i, im := range images {
		name := ensureExt(im.name)

		if _, ok := used[name]; ok {
			d.log.Debugf("found duplicate image name: %s %s", rowPath, name)
			name = suffixName(name, i)
		}

		used[name] = struct{}{}

		var buf bytes.Buffer
		if err := png.Encode(&buf, im.img); err != nil {
			return total, fmt.Errorf("encoding %q: %w", name, err)
		}

		if err := fileutil.WriteAtomic(filepath.Join(dir, name), buf.Bytes()); err != nil {
			return total, err
		}

		total += int64(buf.Len())
	}

	return total, nil
}

// cropSprite cuts the sprite rect out of the atlas. Unity rects have
// their origin at the bottom-left corner while image rows run
// top-down, so the vertical axis is inverted.
func cropSprite(atlas image.Image, r bundle.Rect) image.Image {
	bounds := atlas.Bounds()

	x, y := int(r.X), int(r.Y)
	w, h := int(r.W), int(r.H)

	rect := image.Rect(x, bounds.Dy()-y-h, x+w, bounds.Dy()-y).Intersect(bounds)

	dst := image.NewNRGBA(image.Rect(0, 0, rect.Dx(), rect.Dy()))
	draw.Copy(dst, image.Point{}, atlas, rect, draw.Src, nil)

	return dst
}

// scale resamples the image to the given size.
func scale(src image.Image, w, h int) image.Image {
	dst := image.NewNRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)

	return dst
}

// ensureExt appends .png to names without a suffix. Payloads are
// always encoded as PNG.
func ensureExt(name string) string {
	if filepath.Ext(name) == "" {
		return name + ".png"
	}

	return name
}

// suffixName appends _i to the stem, keeping the extension.
func suffixName(name string, i int) string {
	ext := filepath.Ext(name)

	return fmt.Sprintf("%s_%d%s", strings.TrimSuffix(name, ext), i, ext)
}
