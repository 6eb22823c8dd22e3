package bundle

import (
	"encoding/binary"
	"fmt"
	"image"
)

// TextureFormat is Unity's pixel format enum. Only uncompressed
// formats are decodable here; block-compressed textures (ETC, ASTC,
// BC) come out of the PC client rarely enough to be skipped.
type TextureFormat int32

const (
	FormatAlpha8    TextureFormat = 1
	FormatARGB4444  TextureFormat = 2
	FormatRGB24     TextureFormat = 3
	FormatRGBA32    TextureFormat = 4
	FormatARGB32    TextureFormat = 5
	FormatRGB565    TextureFormat = 7
	FormatRGBA4444  TextureFormat = 13
	FormatBGRA32    TextureFormat = 14
)

// Texture2D is a parsed texture object. Pixel data stays raw until
// Image is called.
type Texture2D struct {
	Name   string
	Width  int
	Height int
	Format TextureFormat

	data []byte
}

// Texture2D decodes a texture payload, resolving streamed pixel data
// from the bundle's .resS node when the image bytes are not inline.
func (o *Object) Texture2D() (*Texture2D, error) {
	if o.ClassID != ClassTexture2D {
		return nil, fmt.Errorf("object %d is not a texture", o.PathID)
	}

	v := o.version
	if !v.atLeast(2017, 3) {
		return nil, fmt.Errorf("texture layout for engine %d.%d not supported", v.major, v.minor)
	}

	r := newReader(o.data, binary.LittleEndian)

	t := &Texture2D{Name: r.alignedString()}

	r.i32() // forced fallback format
	r.bool()

	if v.atLeast(2020, 2) {
		r.bool() // alpha channel optional
	}

	r.align(4)

	t.Width = int(r.i32())
	t.Height = int(r.i32())
	r.u32() // complete image size

	if v.atLeast(2020, 1) {
		r.i32() // mips stripped
	}

	t.Format = TextureFormat(r.i32())

	r.i32()  // mip count
	r.bool() // readable

	if v.atLeast(2020, 1) {
		r.bool() // preprocessed
	}

	if v.atLeast(2019, 3) {
		r.bool() // ignore master texture limit
	}

	if v.atLeast(2018, 2) {
		r.bool() // streaming mipmaps
	}

	r.align(4)

	if v.atLeast(2018, 2) {
		r.i32() // streaming mipmaps priority
	}

	r.i32() // image count
	r.i32() // texture dimension

	// GLTextureSettings
	r.i32() // filter mode
	r.i32() // aniso
	r.f32() // mip bias
	r.i32() // wrap u
	r.i32() // wrap v
	r.i32() // wrap w

	r.i32() // lightmap format
	r.i32() // color space

	if v.atLeast(2020, 2) {
		blobSize := int(r.i32())
		r.skip(blobSize)
		r.align(4)
	}

	dataSize := int(r.i32())
	if r.err != nil || dataSize < 0 {
		return nil, fmt.Errorf("texture %q: malformed payload", t.Name)
	}

	if dataSize > 0 {
		t.data = r.bytes(dataSize)
	} else {
		var offset uint64
		if v.atLeast(2020, 1) {
			offset = r.u64()
		} else {
			offset = uint64(r.u32())
		}

		size := int(r.u32())
		streamPath := r.alignedString()

		if r.err != nil {
			return nil, fmt.Errorf("texture %q: %w", t.Name, r.err)
		}

		res, err := o.bundle.resource(streamPath)
		if err != nil {
			return nil, fmt.Errorf("texture %q: %w", t.Name, err)
		}

		if offset+uint64(size) > uint64(len(res)) {
			return nil, fmt.Errorf("texture %q: streamed data outside resource", t.Name)
		}

		t.data = res[offset : offset+uint64(size)]
	}

	if r.err != nil {
		return nil, fmt.Errorf("texture %q: %w", t.Name, r.err)
	}

	return t, nil
}

// Image decodes the raw pixel data into an image. Unity stores rows
// bottom-up; the result is flipped to the usual top-left origin.
func (t *Texture2D) Image() (image.Image, error) {
	bpp, ok := bytesPerPixel(t.Format)
	if !ok {
		return nil, fmt.Errorf("texture %q: unsupported format %d", t.Name, t.Format)
	}

	if t.Width <= 0 || t.Height <= 0 {
		return nil, fmt.Errorf("texture %q: bad dimensions %dx%d", t.Name, t.Width, t.Height)
	}

	need := t.Width * t.Height * bpp
	if len(t.data) < need {
		return nil, fmt.Errorf("texture %q: %d bytes of pixel data, need %d", t.Name, len(t.data), need)
	}

	img := image.NewNRGBA(image.Rect(0, 0, t.Width, t.Height))

	for y := 0; y < t.Height; y++ {
		// Source row y maps to destination row Height-1-y.
		src := t.data[y*t.Width*bpp:]
		dst := img.Pix[(t.Height-1-y)*img.Stride:]

		for x := 0; x < t.Width; x++ {
			r, g, b, a := decodePixel(t.Format, src[x*bpp:])
			dst[x*4+0] = r
			dst[x*4+1] = g
			dst[x*4+2] = b
			dst[x*4+3] = a
		}
	}

	return img, nil
}

func bytesPerPixel(f TextureFormat) (int, bool) {
	switch f {
	case FormatAlpha8:
		return 1, true
	case FormatARGB4444, FormatRGBA4444, FormatRGB565:
		return 2, true
	case FormatRGB24:
		return 3, true
	case FormatRGBA32, FormatARGB32, FormatBGRA32:
		return 4, true
	default:
		return 0, false
	}
}

//nolint:cyclop // one arm per pixel format
func decodePixel(f TextureFormat, p []byte) (r, g, b, a uint8) {
	switch f {
	case FormatAlpha8:
		return 0, 0, 0, p[0]

	case FormatRGB24:
		return p[0], p[1], p[2], 0xFF

	case FormatRGBA32:
		return p[0], p[1], p[2], p[3]

	case FormatARGB32:
		return p[1], p[2], p[3], p[0]

	case FormatBGRA32:
		return p[2], p[1], p[0], p[3]

	case FormatRGB565:
		v := binary.LittleEndian.Uint16(p)

		return expand5(uint8(v >> 11 & 0x1F)), expand6(uint8(v >> 5 & 0x3F)), expand5(uint8(v & 0x1F)), 0xFF

	case FormatARGB4444:
		v := binary.LittleEndian.Uint16(p)

		return nibble(v >> 8), nibble(v >> 4), nibble(v), nibble(v >> 12)

	case FormatRGBA4444:
		v := binary.LittleEndian.Uint16(p)

		return nibble(v >> 12), nibble(v >> 8), nibble(v >> 4), nibble(v)

	default:
		return 0, 0, 0, 0
	}
}

// nibble expands a 4-bit channel to 8 bits.
func nibble(v uint16) uint8 {
	return uint8(v&0xF) * 0x11
}

func expand5(v uint8) uint8 {
	return v<<3 | v>>2
}

func expand6(v uint8) uint8 {
	return v<<2 | v>>4
}
