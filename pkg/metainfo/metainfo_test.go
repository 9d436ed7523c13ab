package metainfo_test

import (
	"crypto/sha1"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/p2p-ld/torrent-models/pkg/bencode"
	"github.com/p2p-ld/torrent-models/pkg/metainfo"
)

func singleFileV1Bytes(t *testing.T, data []byte) []byte {
	t.Helper()
	pieceLength := int64(16 * 1024)
	hash := sha1.Sum(data)

	info := "d6:lengthi" + itoa(len(data)) + "e4:name8:file.bin12:piece lengthi" + itoa(int(pieceLength)) + "e6:pieces20:" + string(hash[:]) + "e"
	return []byte("d4:info" + info + "e")
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var buf []byte
	for n > 0 {
		buf = append([]byte{byte('0' + n%10)}, buf...)
		n /= 10
	}
	if neg {
		buf = append([]byte{'-'}, buf...)
	}
	return string(buf)
}

func TestReadSingleFileV1(t *testing.T) {
	data := make([]byte, 100)
	raw := singleFileV1Bytes(t, data)

	m, err := metainfo.Read(raw)
	require.NoError(t, err)

	assert.Equal(t, metainfo.FlavorV1, m.Info.Flavor())
	assert.Equal(t, "file.bin", m.Info.Name)
	assert.Equal(t, int64(100), m.Info.TotalLength())
	assert.Equal(t, 1, m.Info.NumPieces())

	hash, ok := m.Info.PieceHash(0)
	require.True(t, ok)
	want := sha1.Sum(data)
	assert.Equal(t, want, hash)
}

func TestReadRejectsMissingInfo(t *testing.T) {
	_, err := metainfo.Read([]byte("d7:comment4:heyee"))
	require.Error(t, err)

	var se *metainfo.SchemaViolationError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "info", se.Field)
}

func TestReadRejectsPieceCountMismatch(t *testing.T) {
	// a 100-byte file needs exactly one 20-byte piece hash, not two.
	badInfo := "d6:lengthi100e4:name8:file.bin12:piece lengthi16384e6:pieces40:" + string(make([]byte, 40)) + "e"
	_, err := metainfo.Read([]byte("d4:info" + badInfo + "e"))
	require.Error(t, err)

	var ce *metainfo.CrossFieldInvariantError
	require.ErrorAs(t, err, &ce)
}

func TestBytesRoundTrip(t *testing.T) {
	data := make([]byte, 50)
	raw := singleFileV1Bytes(t, data)

	m, err := metainfo.Read(raw)
	require.NoError(t, err)

	out := m.Bytes()

	reparsed, err := metainfo.Read(out)
	require.NoError(t, err)
	assert.Equal(t, m.Info.Name, reparsed.Info.Name)
	assert.Equal(t, m.V1Hash(), reparsed.V1Hash())
}

func TestV1HashUsesSourceSpan(t *testing.T) {
	data := make([]byte, 50)
	raw := singleFileV1Bytes(t, data)

	m, err := metainfo.Read(raw)
	require.NoError(t, err)

	h1 := m.V1Hash()
	h2 := m.V1Hash() // cached path
	assert.Equal(t, h1, h2)

	m.MutateInfo(func(d *bencode.Dict) {
		d.Set("comment-in-info", bencode.NewString("mutated"))
	})
	h3 := m.V1Hash()
	assert.NotEqual(t, h1, h3)
}

func TestHashHexAccessors(t *testing.T) {
	data := make([]byte, 50)
	raw := singleFileV1Bytes(t, data)

	m, err := metainfo.Read(raw)
	require.NoError(t, err)

	v1 := m.V1Hash()
	assert.Equal(t, hex.EncodeToString(v1[:]), m.V1HashHex())
	assert.Len(t, m.V1HashHex(), 40)

	v2 := m.V2Hash()
	assert.Equal(t, hex.EncodeToString(v2[:]), m.V2HashHex())
	assert.Len(t, m.V2HashHex(), 64)
}

func TestValidatePathComponent(t *testing.T) {
	tests := []struct {
		name string
		in   string
		ok   bool
	}{
		{"plain", "movie.mkv", true},
		{"dot", ".", false},
		{"dotdot", "..", false},
		{"empty", "", false},
		{"slash", "a/b", false},
		{"backslash", `a\b`, false},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			err := metainfo.ValidatePathComponent(test.in)
			if test.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestTreeWalkOrdersSorted(t *testing.T) {
	root := metainfo.NewDirNode()
	b := metainfo.NewDirNode()
	b.Set("z.txt", &metainfo.TreeNode{IsFile: true, Length: 1})
	b.Set("a.txt", &metainfo.TreeNode{IsFile: true, Length: 2})
	root.Set("b", b)
	root.Set("a.txt", &metainfo.TreeNode{IsFile: true, Length: 3})

	var paths [][]string
	root.Walk(func(path []string, leaf *metainfo.TreeNode) {
		paths = append(paths, append([]string(nil), path...))
	})

	require.Len(t, paths, 3)
	assert.Equal(t, []string{"a.txt"}, paths[0])
	assert.Equal(t, []string{"b", "a.txt"}, paths[1])
	assert.Equal(t, []string{"b", "z.txt"}, paths[2])
}
