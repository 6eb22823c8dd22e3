package bundle

import (
	"encoding/binary"
	"fmt"
)

// Serialized file format versions this reader accepts. 17 maps to
// Unity 2017.x, 21 to 2019.x, 22 to 2020.1 and later.
const (
	minSerializedVersion = 17
	maxSerializedVersion = 22
)

const scriptClassID = 114

type serializedFile struct {
	version      uint32
	dataOffset   uint64
	unityVersion string
	objects      []objectInfo
}

type objectInfo struct {
	pathID  int64
	offset  uint64
	size    uint32
	classID int32
}

// parseSerializedFile reads the metadata of one serialized file: the
// header, the type table, and the object table. Type trees are
// skipped, externals and script references are not needed and left
// unread behind the object table.
func parseSerializedFile(data []byte) (*serializedFile, error) {
	r := newReader(data, binary.BigEndian)

	r.u32() // metadata size
	r.u32() // file size
	version := r.u32()
	dataOffset := uint64(r.u32())

	if r.err != nil {
		return nil, fmt.Errorf("reading header: %w", r.err)
	}

	if version < minSerializedVersion || version > maxSerializedVersion {
		return nil, fmt.Errorf("unsupported serialized file version %d", version)
	}

	endianess := r.u8()
	r.skip(3) // reserved

	if version >= 22 {
		r.u32() // metadata size
		r.i64() // file size
		dataOffset = r.u64()
		r.i64() // unknown
	}

	if endianess != 0 {
		return nil, fmt.Errorf("big-endian serialized files are not supported")
	}

	// Metadata is little-endian from here on.
	m := newReader(data, binary.LittleEndian)
	m.pos = r.pos
	m.err = r.err

	sf := &serializedFile{
		version:      version,
		dataOffset:   dataOffset,
		unityVersion: m.cstring(),
	}

	m.u32() // target platform

	hasTypeTrees := m.bool()

	typeCount := int(m.i32())
	if m.err != nil || typeCount < 0 {
		return nil, fmt.Errorf("malformed type table")
	}

	classIDs := make([]int32, 0, typeCount)
	for i := 0; i < typeCount; i++ {
		classID, err := parseType(m, version, hasTypeTrees)
		if err != nil {
			return nil, err
		}

		classIDs = append(classIDs, classID)
	}

	objectCount := int(m.i32())
	if m.err != nil || objectCount < 0 {
		return nil, fmt.Errorf("malformed object table")
	}

	sf.objects = make([]objectInfo, 0, objectCount)

	for i := 0; i < objectCount; i++ {
		m.align(4)

		obj := objectInfo{pathID: m.i64()}

		if version >= 22 {
			obj.offset = m.u64()
		} else {
			obj.offset = uint64(m.u32())
		}

		obj.size = m.u32()

		typeID := int(m.i32())
		if typeID < 0 || typeID >= len(classIDs) {
			return nil, fmt.Errorf("object %d references unknown type %d", obj.pathID, typeID)
		}

		obj.classID = classIDs[typeID]
		sf.objects = append(sf.objects, obj)
	}

	if m.err != nil {
		return nil, fmt.Errorf("reading object table: %w", m.err)
	}

	return sf, nil
}

// parseType consumes one entry of the type table and returns its
// class ID.
func parseType(m *reader, version uint32, hasTypeTrees bool) (int32, error) {
	classID := m.i32()

	m.u8()  // is stripped
	m.i16() // script type index

	if classID == scriptClassID {
		m.skip(16) // script hash
	}

	m.skip(16) // old type hash

	if hasTypeTrees {
		if err := skipTypeTree(m, version); err != nil {
			return 0, err
		}

		if version >= 21 {
			depCount := int(m.i32())
			if depCount < 0 {
				return 0, fmt.Errorf("malformed type dependencies")
			}

			m.skip(depCount * 4)
		}
	}

	if m.err != nil {
		return 0, fmt.Errorf("reading type table: %w", m.err)
	}

	return classID, nil
}

// skipTypeTree consumes a blob-format type tree without decoding it.
func skipTypeTree(m *reader, version uint32) error {
	nodeCount := int(m.i32())
	stringBufferSize := int(m.i32())

	if m.err != nil || nodeCount < 0 || stringBufferSize < 0 {
		return fmt.Errorf("malformed type tree")
	}

	nodeSize := 24
	if version >= 19 {
		nodeSize = 32 // adds the reference type hash
	}

	m.skip(nodeCount * nodeSize)
	m.skip(stringBufferSize)

	return m.err
}
