package abcrypt

// ABKey is the static base key the bundle keystream is derived from.
var ABKey = []byte{
	0x53, 0x2B, 0x46, 0x31, 0xE4, 0xA7, 0xB9, 0x47,
	0x3E, 0x7C, 0xFB,
}

// GlobalDBKey is the raw key material for the metadata database.
var GlobalDBKey = []byte{
	0x56, 0x63, 0x6B, 0x63, 0x42, 0x72, 0x37, 0x76,
	0x65, 0x70, 0x41, 0x62,
}

// DBBaseKey is the XOR schedule applied to GlobalDBKey. Only the
// first 13 bytes participate; the tail is padding carried over from
// the client binary.
var DBBaseKey = []byte{
	0xF1, 0x70, 0xCE, 0xA4, 0xDF, 0xCE, 0xA3, 0xE1,
	0xA5, 0xD8, 0xC7, 0x0B, 0xD1, 0x00, 0x00, 0x00,
}
