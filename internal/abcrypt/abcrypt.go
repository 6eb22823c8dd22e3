package abcrypt

import (
	"encoding/binary"
	"encoding/hex"
)

const (
	// headerSize is the length of the cleartext region at the start of
	// every encrypted bundle.
	headerSize = 256

	// dbKeySchedule is the cycle length of the database key XOR schedule.
	dbKeySchedule = 13

	// recordKeySize is the width of an encoded record key.
	recordKeySize = 8
)

// Keystream derives the XOR keystream for a single metadata record.
// The record key is encoded as 8 little-endian bytes regardless of
// host byte order; each base key byte is expanded into 8 output bytes
// by XORing it with every encoded key byte in turn. The result is
// len(base)*8 bytes, and empty for an empty base.
func Keystream(base []byte, recordKey uint64) []byte {
	var kb [recordKeySize]byte
	binary.LittleEndian.PutUint64(kb[:], recordKey)

	keys := make([]byte, len(base)*recordKeySize)
	for i, b := range base {
		for j, k := range kb {
			keys[i*recordKeySize+j] = b ^ k
		}
	}

	return keys
}

// Decrypt applies the keystream to an encrypted bundle. The first 256
// bytes are copied unchanged; every byte after that is XORed with
// keystream[i mod len(keystream)], where i is the absolute offset in
// the file. Buffers no longer than 256 bytes are returned as an
// unmodified copy. The input is never mutated.
func Decrypt(data, keystream []byte) ([]byte, error) {
	if len(keystream) == 0 {
		return nil, ErrEmptyKeystream
	}

	out := make([]byte, len(data))
	copy(out, data)

	for i := headerSize; i < len(out); i++ {
		out[i] ^= keystream[i%len(keystream)]
	}

	return out, nil
}

// DBKey derives the hex key that unlocks an encrypted database. Each
// key byte is XORed with base[i mod 13]; base must therefore carry at
// least 13 bytes. The result is rendered as a lowercase hex string,
// suitable for the driver's hexkey pragma.
func DBKey(key, base []byte) (string, error) {
	if len(base) < dbKeySchedule {
		return "", ErrInvalidKeyLength
	}

	out := make([]byte, len(key))
	for i := range key {
		out[i] = key[i] ^ base[i%dbKeySchedule]
	}

	return hex.EncodeToString(out), nil
}

// MetaDBKey derives the key for the client's metadata database from
// the built-in constants.
func MetaDBKey() (string, error) {
	return DBKey(GlobalDBKey, DBBaseKey)
}
