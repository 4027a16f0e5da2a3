package identities

import (
	"crypto/ed25519"
	"crypto/sha256"
	"crypto/x509"
	"encoding/base32"
	"encoding/binary"
	"hash/crc32"
	"strings"
)

const (
	// selfAuthenticatingSuffix marks a principal derived from a public key.
	selfAuthenticatingSuffix = 0x02
	segmentLength            = 5
	segmentDelimiter         = "-"
	elision                  = "..."
)

var principalEncoding = base32.StdEncoding.WithPadding(base32.NoPadding)

// PrincipalFromPublicKey derives the self-authenticating textual principal for an
// Ed25519 public key: sha224 of the DER encoded key with a 0x02 suffix, prefixed
// with its CRC-32, base32 encoded in lowercase and grouped in 5 character segments.
func PrincipalFromPublicKey(pub ed25519.PublicKey) (string, error) {
	if len(pub) != ed25519.PublicKeySize {
		return "", ErrInvalidKey
	}
	der, err := x509.MarshalPKIXPublicKey(pub)
	if err != nil {
		return "", err
	}
	digest := sha256.Sum224(der)
	raw := append(digest[:], selfAuthenticatingSuffix)

	checksum := make([]byte, 4)
	binary.BigEndian.PutUint32(checksum, crc32.ChecksumIEEE(raw))

	encoded := strings.ToLower(principalEncoding.EncodeToString(append(checksum, raw...)))
	return group(encoded), nil
}

func group(s string) string {
	segments := make([]string, 0, len(s)/segmentLength+1)
	for len(s) > segmentLength {
		segments = append(segments, s[:segmentLength])
		s = s[segmentLength:]
	}
	segments = append(segments, s)
	return strings.Join(segments, segmentDelimiter)
}

// FormatPrincipal shortens a principal for display to
// "<first two segments>-...-<last two segments>". Inputs with fewer than four
// segments reuse whatever segments exist.
func FormatPrincipal(principal string) string {
	parts := strings.Split(principal, segmentDelimiter)
	head := parts[:min(2, len(parts))]
	tail := parts[max(0, len(parts)-2):]
	return strings.Join(head, segmentDelimiter) + segmentDelimiter + elision + segmentDelimiter + strings.Join(tail, segmentDelimiter)
}
