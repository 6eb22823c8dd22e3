// Package bundle reads UnityFS asset bundles far enough to pull
// textures and sprite rects out of them. It is not a general Unity
// deserializer: it understands the container envelope, LZ4 block
// compression, and the handful of object layouts the dump pipeline
// needs (Texture2D, Sprite, AssetBundle manifests).
package bundle

import (
	"encoding/binary"
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/pierrec/lz4/v4"
)

const unityFSSignature = "UnityFS"

// ErrNotUnityFS is returned for buffers that do not start with a
// UnityFS signature, typically an indication of a bad decryption key.
var ErrNotUnityFS = errors.New("not a UnityFS bundle")

// Envelope flags.
const (
	compressionMask   = 0x3F
	blocksInfoAtEnd   = 0x80
	blockCompressMask = 0x3F
)

// Compression types used by both the envelope and storage blocks.
const (
	compressionNone  uint32 = 0
	compressionLZMA  uint32 = 1
	compressionLZ4   uint32 = 2
	compressionLZ4HC uint32 = 3
)

// Bundle is a parsed asset bundle.
type Bundle struct {
	// UnityVersion is the engine revision the bundle was built with,
	// e.g. "2019.4.21f1".
	UnityVersion string

	files   map[string][]byte
	names   []string
	objects []*Object
}

// Parse reads a decrypted UnityFS bundle held fully in memory.
func Parse(data []byte) (*Bundle, error) {
	r := newReader(data, binary.BigEndian)

	if sig := r.cstring(); sig != unityFSSignature {
		return nil, fmt.Errorf("%w: signature %q", ErrNotUnityFS, sig)
	}

	formatVersion := r.u32()
	r.cstring() // minimum player version
	engineVersion := r.cstring()

	r.i64() // total bundle size
	compressedInfoSize := int(r.u32())
	uncompressedInfoSize := int(r.u32())
	flags := r.u32()

	if r.err != nil {
		return nil, fmt.Errorf("reading bundle header: %w", r.err)
	}

	if formatVersion >= 7 {
		r.align(16)
	}

	var infoBytes []byte

	if flags&blocksInfoAtEnd != 0 {
		if compressedInfoSize > len(data) {
			return nil, fmt.Errorf("blocks info larger than bundle")
		}

		infoBytes = data[len(data)-compressedInfoSize:]
	} else {
		infoBytes = r.bytes(compressedInfoSize)
	}

	if r.err != nil {
		return nil, fmt.Errorf("reading blocks info: %w", r.err)
	}

	info, err := decompress(infoBytes, flags&compressionMask, uncompressedInfoSize)
	if err != nil {
		return nil, fmt.Errorf("decompressing blocks info: %w", err)
	}

	blocks, nodes, err := parseBlocksInfo(info)
	if err != nil {
		return nil, err
	}

	storage, err := assembleStorage(r, blocks)
	if err != nil {
		return nil, err
	}

	b := &Bundle{
		UnityVersion: engineVersion,
		files:        make(map[string][]byte, len(nodes)),
	}

	for _, n := range nodes {
		if n.offset < 0 || n.size < 0 || n.offset+n.size > int64(len(storage)) {
			return nil, fmt.Errorf("node %q outside storage", n.path)
		}

		b.files[n.path] = storage[n.offset : n.offset+n.size]
		b.names = append(b.names, n.path)
	}

	if err := b.loadObjects(); err != nil {
		return nil, err
	}

	return b, nil
}

// Objects returns every object of the bundle's serialized files, in
// file order.
func (b *Bundle) Objects() []*Object {
	return b.objects
}

// resource returns the streamed payload node referenced by a
// StreamingInfo path such as "archive:/CAB-xxxx/CAB-xxxx.resS".
func (b *Bundle) resource(streamPath string) ([]byte, error) {
	name := path.Base(streamPath)

	if data, ok := b.files[name]; ok {
		return data, nil
	}

	return nil, fmt.Errorf("streamed resource %q not in bundle", name)
}

// loadObjects parses every non-resource node as a serialized file.
// Nodes are visited in blocks-info order so the object list, and with
// it atlas selection and collision suffixes downstream, is stable
// across runs.
func (b *Bundle) loadObjects() error {
	for _, name := range b.names {
		if isResourceNode(name) {
			continue
		}

		data := b.files[name]

		sf, err := parseSerializedFile(data)
		if err != nil {
			return fmt.Errorf("serialized file %q: %w", name, err)
		}

		version := sf.unityVersion
		if version == "" {
			version = b.UnityVersion
		}

		for _, obj := range sf.objects {
			start := int(sf.dataOffset) + int(obj.offset)
			if start < 0 || start+int(obj.size) > len(data) {
				return fmt.Errorf("object %d outside serialized file", obj.pathID)
			}

			b.objects = append(b.objects, &Object{
				PathID:  obj.pathID,
				ClassID: obj.classID,
				bundle:  b,
				version: parseEngineVersion(version),
				data:    data[start : start+int(obj.size)],
			})
		}
	}

	b.annotateContainers()

	return nil
}

// annotateContainers resolves container paths from the AssetBundle
// manifest onto the objects they point at.
func (b *Bundle) annotateContainers() {
	byPathID := make(map[int64]*Object, len(b.objects))
	for _, obj := range b.objects {
		byPathID[obj.PathID] = obj
	}

	for _, obj := range b.objects {
		if obj.ClassID != ClassAssetBundle {
			continue
		}

		manifest, err := obj.assetBundle()
		if err != nil {
			continue // manifest is advisory, objects still dump by name
		}

		for pathID, container := range manifest.container {
			if target, ok := byPathID[pathID]; ok {
				target.Container = container
			}
		}
	}
}

type blockInfo struct {
	uncompressedSize uint32
	compressedSize   uint32
	flags            uint16
}

type nodeInfo struct {
	offset int64
	size   int64
	path   string
}

func parseBlocksInfo(info []byte) ([]blockInfo, []nodeInfo, error) {
	r := newReader(info, binary.BigEndian)

	r.skip(16) // uncompressed data hash

	blockCount := int(r.i32())
	if r.err != nil || blockCount < 0 {
		return nil, nil, fmt.Errorf("malformed blocks info")
	}

	blocks := make([]blockInfo, 0, blockCount)
	for i := 0; i < blockCount; i++ {
		blocks = append(blocks, blockInfo{
			uncompressedSize: r.u32(),
			compressedSize:   r.u32(),
			flags:            r.u16(),
		})
	}

	nodeCount := int(r.i32())
	if r.err != nil || nodeCount < 0 {
		return nil, nil, fmt.Errorf("malformed node list")
	}

	nodes := make([]nodeInfo, 0, nodeCount)
	for i := 0; i < nodeCount; i++ {
		n := nodeInfo{offset: r.i64()}
		n.size = r.i64()
		r.u32() // node flags
		n.path = r.cstring()
		nodes = append(nodes, n)
	}

	if r.err != nil {
		return nil, nil, fmt.Errorf("reading blocks info: %w", r.err)
	}

	return blocks, nodes, nil
}

// assembleStorage decompresses all storage blocks into one buffer.
func assembleStorage(r *reader, blocks []blockInfo) ([]byte, error) {
	var total int
	for _, blk := range blocks {
		total += int(blk.uncompressedSize)
	}

	storage := make([]byte, 0, total)

	for i, blk := range blocks {
		raw := r.bytes(int(blk.compressedSize))
		if r.err != nil {
			return nil, fmt.Errorf("reading storage block %d: %w", i, r.err)
		}

		out, err := decompress(raw, uint32(blk.flags)&blockCompressMask, int(blk.uncompressedSize))
		if err != nil {
			return nil, fmt.Errorf("storage block %d: %w", i, err)
		}

		storage = append(storage, out...)
	}

	return storage, nil
}

func decompress(data []byte, compression uint32, uncompressedSize int) ([]byte, error) {
	switch compression {
	case compressionNone:
		return data, nil

	case compressionLZ4, compressionLZ4HC:
		out := make([]byte, uncompressedSize)

		n, err := lz4.UncompressBlock(data, out)
		if err != nil {
			return nil, fmt.Errorf("lz4: %w", err)
		}

		if n != uncompressedSize {
			return nil, fmt.Errorf("lz4: got %d bytes, want %d", n, uncompressedSize)
		}

		return out, nil

	case compressionLZMA:
		return nil, fmt.Errorf("LZMA-compressed bundles are not supported")

	default:
		return nil, fmt.Errorf("unknown compression type %d", compression)
	}
}

func isResourceNode(name string) bool {
	return strings.HasSuffix(name, ".resS") || strings.HasSuffix(name, ".resource")
}
