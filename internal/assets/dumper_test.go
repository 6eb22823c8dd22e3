package assets

import (
	"bytes"
	"encoding/binary"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/uma-tools/umadump/internal/abcrypt"
	"github.com/uma-tools/umadump/internal/config"
	"github.com/uma-tools/umadump/internal/db"
)

// fixtureWriter builds binary bundle fixtures with an explicit byte
// order.
type fixtureWriter struct {
	buf   bytes.Buffer
	order binary.ByteOrder
}

func (w *fixtureWriter) u8(v uint8)   { w.buf.WriteByte(v) }
func (w *fixtureWriter) raw(b []byte) { w.buf.Write(b) }

func (w *fixtureWriter) cstring(s string) {
	w.buf.WriteString(s)
	w.buf.WriteByte(0)
}

func (w *fixtureWriter) u16(v uint16) {
	var b [2]byte
	w.order.PutUint16(b[:], v)
	w.buf.Write(b[:])
}

func (w *fixtureWriter) u32(v uint32) {
	var b [4]byte
	w.order.PutUint32(b[:], v)
	w.buf.Write(b[:])
}

func (w *fixtureWriter) i32(v int32) { w.u32(uint32(v)) }

func (w *fixtureWriter) u64(v uint64) {
	var b [8]byte
	w.order.PutUint64(b[:], v)
	w.buf.Write(b[:])
}

func (w *fixtureWriter) i64(v int64) { w.u64(uint64(v)) }

func (w *fixtureWriter) f32(v float32) { w.u32(math.Float32bits(v)) }

func (w *fixtureWriter) align(n int) {
	for w.buf.Len()%n != 0 {
		w.buf.WriteByte(0)
	}
}

func (w *fixtureWriter) alignedString(s string) {
	w.i32(int32(len(s)))
	w.buf.WriteString(s)
	w.align(4)
}

// bundleFixture builds a plaintext UnityFS bundle holding one 2x2
// RGBA32 texture named tex_main, in the 2019.4 layout.
func bundleFixture() []byte {
	tex := &fixtureWriter{order: binary.LittleEndian}
	tex.alignedString("tex_main")
	tex.i32(4) // forced fallback format
	tex.u8(0)  // downscale fallback
	tex.align(4)
	tex.i32(2)  // width
	tex.i32(2)  // height
	tex.u32(16) // complete image size
	tex.i32(4)  // RGBA32
	tex.i32(1)  // mip count
	tex.u8(0)   // readable
	tex.u8(0)   // ignore master texture limit
	tex.u8(0)   // streaming mipmaps
	tex.align(4)
	tex.i32(0) // streaming mipmaps priority
	tex.i32(1) // image count
	tex.i32(2) // dimension
	tex.i32(1) // filter mode
	tex.i32(1) // aniso
	tex.f32(0) // mip bias
	tex.i32(0) // wrap u
	tex.i32(0) // wrap v
	tex.i32(0) // wrap w
	tex.i32(0) // lightmap format
	tex.i32(1) // color space
	tex.i32(16)
	tex.raw(make([]byte, 16)) // pixel data

	payload := tex.buf.Bytes()

	meta := &fixtureWriter{order: binary.LittleEndian}
	meta.cstring("2019.4.21f1")
	meta.u32(5) // target platform
	meta.u8(0)  // no type trees
	meta.i32(1) // type count
	meta.i32(28)
	meta.u8(0)                 // not stripped
	meta.u16(0xFFFF)           // script type index
	meta.raw(make([]byte, 16)) // old type hash
	meta.i32(1)                // object count

	const headerSize = 20

	dataOffset := (headerSize + meta.buf.Len() + 32 + 15) &^ 15

	meta.align(4)
	meta.i64(101) // path ID
	meta.u32(0)   // offset
	meta.u32(uint32(len(payload)))
	meta.i32(0) // type index

	cab := &fixtureWriter{order: binary.BigEndian}
	cab.u32(uint32(meta.buf.Len()))
	cab.u32(uint32(dataOffset + len(payload)))
	cab.u32(21) // serialized version
	cab.u32(uint32(dataOffset))
	cab.u8(0) // little-endian
	cab.raw(make([]byte, 3))
	cab.raw(meta.buf.Bytes())

	for cab.buf.Len() < dataOffset {
		cab.u8(0)
	}

	cab.raw(payload)

	info := &fixtureWriter{order: binary.BigEndian}
	info.raw(make([]byte, 16)) // data hash
	info.i32(1)                // block count
	info.u32(uint32(cab.buf.Len()))
	info.u32(uint32(cab.buf.Len()))
	info.u16(0)
	info.i32(1) // node count
	info.i64(0)
	info.i64(int64(cab.buf.Len()))
	info.u32(4)
	info.cstring("CAB-test")

	w := &fixtureWriter{order: binary.BigEndian}
	w.cstring("UnityFS")
	w.u32(6)
	w.cstring("5.x.x")
	w.cstring("2019.4.21f1")
	w.i64(0)
	w.u32(uint32(info.buf.Len()))
	w.u32(uint32(info.buf.Len()))
	w.u32(0)
	w.raw(info.buf.Bytes())
	w.raw(cab.buf.Bytes())

	return w.buf.Bytes()
}

func newTestDumper(t *testing.T, cfg *config.Config) *Dumper {
	t.Helper()

	d, err := NewDumper(cfg, zap.NewNop().Sugar(), db.NewSession(cfg))
	require.NoError(t, err)

	return d
}

func writeBlob(t *testing.T, cfg *config.Config, hash string, data []byte) {
	t.Helper()

	dir := filepath.Join(cfg.DatDir(), hash[:2])
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, hash), data, 0o644))
}

func TestDumpRowOutcomes(t *testing.T) {
	t.Parallel()

	cfg := &config.Config{AppData: t.TempDir(), Storage: t.TempDir()}
	d := newTestDumper(t, cfg)

	const key = 42

	plain := bundleFixture()
	require.Greater(t, len(plain), 256, "fixture must have an encrypted tail")

	enc, err := abcrypt.Decrypt(plain, abcrypt.Keystream(abcrypt.ABKey, key))
	require.NoError(t, err)

	writeBlob(t, cfg, "aabbcc", enc)
	writeBlob(t, cfg, "ddeeff", bytes.Repeat([]byte{0xAB}, 512))

	// Rows with a leading slash are internal and carry no bundle.
	res, _ := d.dumpRow(db.AssetRow{Path: "/meta", Hash: "aabbcc", Key: key})
	assert.Equal(t, outcomeIgnored, res)

	// Missing blob: skipped silently, run continues.
	res, _ = d.dumpRow(db.AssetRow{Path: "chara/one", Hash: "00ff00", Key: key})
	assert.Equal(t, outcomeSkipped, res)

	// Malformed content hash.
	res, _ = d.dumpRow(db.AssetRow{Path: "chara/two", Hash: "a", Key: key})
	assert.Equal(t, outcomeSkipped, res)

	// Not a bundle after decryption: skipped, not fatal.
	res, _ = d.dumpRow(db.AssetRow{Path: "chara/three", Hash: "ddeeff", Key: key})
	assert.Equal(t, outcomeSkipped, res)

	res, size := d.dumpRow(db.AssetRow{Path: "chara/chr1001", Hash: "aabbcc", Kind: "chara", Key: key})
	assert.Equal(t, outcomeDumped, res)
	assert.Positive(t, size)

	// Without a manifest entry the image is named after the bundle
	// path, not the texture.
	_, err = os.Stat(filepath.Join(cfg.AssetsDir(), "chara", "chr1001", "chr1001.png"))
	assert.NoError(t, err)
}

func TestDumpRowSkipExisting(t *testing.T) {
	t.Parallel()

	cfg := &config.Config{AppData: t.TempDir(), Storage: t.TempDir(), SkipExisting: true}
	d := newTestDumper(t, cfg)

	require.NoError(t, os.MkdirAll(filepath.Join(cfg.AssetsDir(), "chara", "chr1001"), 0o755))

	res, _ := d.dumpRow(db.AssetRow{Path: "chara/chr1001", Hash: "aabbcc", Key: 1})
	assert.Equal(t, outcomeSkipped, res)
}

func TestDumpRowFilters(t *testing.T) {
	t.Parallel()

	appdata, storage := t.TempDir(), t.TempDir()

	included := newTestDumper(t, &config.Config{AppData: appdata, Storage: storage, Include: []string{"bg/*"}})
	res, _ := included.dumpRow(db.AssetRow{Path: "chara/chr1001", Hash: "aabbcc", Key: 1})
	assert.Equal(t, outcomeIgnored, res)

	excluded := newTestDumper(t, &config.Config{AppData: appdata, Storage: storage, Exclude: []string{"chara/*"}})
	res, _ = excluded.dumpRow(db.AssetRow{Path: "chara/chr1001", Hash: "aabbcc", Key: 1})
	assert.Equal(t, outcomeIgnored, res)
}
