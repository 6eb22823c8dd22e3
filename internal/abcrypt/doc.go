// Package abcrypt implements the cipher scheme protecting the game
// client's local data: a per-record XOR keystream for asset bundles
// and a fixed XOR schedule for the metadata database key.
// Bundles keep their first 256 bytes in the clear; everything after
// that is XORed with a keystream derived from a static base key and
// the record's 64-bit key.
package abcrypt
