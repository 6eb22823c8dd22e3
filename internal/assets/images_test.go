package assets

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/uma-tools/umadump/internal/bundle"
)

func TestResizeFor(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		kind string
		w, h int
		ok   bool
	}{
		{"support_card_s_30028", "supportcard", 200, 200, true},
		{"support_thumb_30028", "supportcard", 450, 600, true},
		{"tex_support_card_30028", "supportcard", 450, 600, true},
		{"support_npc_30028", "supportcard", 0, 0, false},
		{"img_bnr_gacha_30058", "gachaselect", 512, 182, true},
		{"img_bnr_gacha_cursor", "gachaselect", 0, 0, false},
		{"img_bnr_gacha_30058", "chara", 0, 0, false},
	}

	for _, tc := range tests {
		w, h, ok := resizeFor(tc.name, tc.kind)
		assert.Equal(t, tc.ok, ok, tc.name)
		assert.Equal(t, tc.w, w, tc.name)
		assert.Equal(t, tc.h, h, tc.name)
	}
}

func TestEnsureExt(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "thumb.png", ensureExt("thumb"))
	assert.Equal(t, "thumb.png", ensureExt("thumb.png"))
	assert.Equal(t, "thumb.tga", ensureExt("thumb.tga"))
}

func TestSuffixName(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "thumb_3.png", suffixName("thumb.png", 3))
	assert.Equal(t, "thumb_0", suffixName("thumb", 0))
}

func TestCropSpriteInvertsVerticalAxis(t *testing.T) {
	t.Parallel()

	// 4x4 atlas with a marker at image row 0 (Unity y=3).
	atlas := image.NewNRGBA(image.Rect(0, 0, 4, 4))
	atlas.SetNRGBA(1, 0, nrgba(255, 0, 0, 255))

	// A 1x1 sprite at Unity (1,3) is the marker pixel.
	img := cropSprite(atlas, bundle.Rect{X: 1, Y: 3, W: 1, H: 1})

	assert.Equal(t, 1, img.Bounds().Dx())
	assert.Equal(t, 1, img.Bounds().Dy())

	got := img.(*image.NRGBA).NRGBAAt(0, 0)
	assert.Equal(t, nrgba(255, 0, 0, 255), got)
}

func TestCropSpriteClampsToAtlas(t *testing.T) {
	t.Parallel()

	atlas := image.NewNRGBA(image.Rect(0, 0, 4, 4))

	img := cropSprite(atlas, bundle.Rect{X: 2, Y: 0, W: 8, H: 2})
	assert.Equal(t, 2, img.Bounds().Dx())
	assert.Equal(t, 2, img.Bounds().Dy())
}

func TestScale(t *testing.T) {
	t.Parallel()

	src := image.NewNRGBA(image.Rect(0, 0, 8, 8))

	img := scale(src, 4, 2)
	assert.Equal(t, 4, img.Bounds().Dx())
	assert.Equal(t, 2, img.Bounds().Dy())
}

func nrgba(r, g, b, a uint8) color.NRGBA {
	return color.NRGBA{R: r, G: g, B: b, A: a}
}
