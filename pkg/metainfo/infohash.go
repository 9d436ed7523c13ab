package metainfo

import (
	"crypto/sha1"
	"crypto/sha256"
	"encoding/hex"

	"github.com/p2p-ld/torrent-models/pkg/bencode"
)

// infoBytes returns the canonical bencoded form of the info dict, using
// the exact source byte span when available (a model parsed from bytes
// and not yet mutated) and falling back to a single re-encode otherwise
// (§9 "Infohash caching").
func (m *MetaInfo) infoBytes() []byte {
	if m.infoSpanValid {
		return m.source[m.infoStart:m.infoEnd]
	}
	return bencode.EncodeValue(bencode.NewDictValue(m.Info.raw))
}

// V1Hash returns the SHA-1 infohash used by BEP-3 and hybrid torrents.
// The result is cached until the next call to MutateInfo.
func (m *MetaInfo) V1Hash() [20]byte {
	if m.cachedV1Hash == nil {
		sum := sha1.Sum(m.infoBytes())
		m.cachedV1Hash = &sum
	}
	return *m.cachedV1Hash
}

// V2Hash returns the SHA-256 infohash used by BEP-52 and hybrid torrents.
// The result is cached until the next call to MutateInfo.
func (m *MetaInfo) V2Hash() [32]byte {
	if m.cachedV2Hash == nil {
		sum := sha256.Sum256(m.infoBytes())
		m.cachedV2Hash = &sum
	}
	return *m.cachedV2Hash
}

// V1HashHex returns V1Hash as the lowercase hex string used wherever a
// v1 infohash is exchanged outside the wire protocol (§6 magnet links,
// tracker URLs, logging).
func (m *MetaInfo) V1HashHex() string {
	sum := m.V1Hash()
	return hex.EncodeToString(sum[:])
}

// V2HashHex returns V2Hash as the lowercase hex string used wherever a
// v2 infohash is exchanged outside the wire protocol (§9).
func (m *MetaInfo) V2HashHex() string {
	sum := m.V2Hash()
	return hex.EncodeToString(sum[:])
}

// TruncatedV2Hash returns the first 20 bytes of the v2 infohash, the form
// used in hybrid magnet links and v1/v2 cross-swarm compatibility (§4.B).
func (m *MetaInfo) TruncatedV2Hash() [20]byte {
	full := m.V2Hash()
	var out [20]byte
	copy(out[:], full[:20])
	return out
}

// MutateInfo runs fn against the info dict's raw form and invalidates any
// cached infohash and the source byte span, since the mutation means the
// span no longer corresponds to what the model now represents (§9
// "mutating an info field invalidates cached infohashes").
//
// fn receives the raw dictionary directly; typed Info fields are not
// re-synced automatically. Bytes (via sync and syncInfoDict) writes the
// typed fields back into raw, overwriting the keys they cover.
func (m *MetaInfo) MutateInfo(fn func(raw *bencode.Dict)) {
	fn(m.Info.raw)
	m.infoSpanValid = false
	m.cachedV1Hash = nil
	m.cachedV2Hash = nil
}
