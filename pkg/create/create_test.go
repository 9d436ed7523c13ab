package create

import (
	"context"
	"crypto/sha1"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/p2p-ld/torrent-models/pkg/metainfo"
)

func writeFile(t *testing.T, path string, data []byte) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, data, 0o644))
}

func TestGenerateV1SingleFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "movie.mkv")
	writeFile(t, path, make([]byte, 100))

	c := Create(Options{
		Root:        path,
		Flavor:      metainfo.FlavorV1,
		PieceLength: 32,
		Comment:     "test torrent",
		nowFunc:     func() time.Time { return time.Unix(1000, 0) },
	})

	m, err := c.Generate(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "movie.mkv", m.Info.Name)
	assert.Equal(t, metainfo.FlavorV1, m.Info.Flavor())
	assert.Equal(t, int64(100), m.Info.TotalLength())
	assert.Equal(t, int64(1000), m.CreationDate)
	assert.Equal(t, "test torrent", m.Comment)
	assert.NotZero(t, m.V1Hash())
}

func TestGenerateV1MultiFilePadsToBoundary(t *testing.T) {
	dir := t.TempDir()
	a := make([]byte, 10)
	b := make([]byte, 10)
	for i := range a {
		a[i] = byte(0xA0 + i)
	}
	for i := range b {
		b[i] = byte(0xB0 + i)
	}
	writeFile(t, filepath.Join(dir, "a.txt"), a)
	writeFile(t, filepath.Join(dir, "b.txt"), b)

	c := Create(Options{
		Root:        dir,
		Flavor:      metainfo.FlavorV1,
		PieceLength: 16,
		nowFunc:     func() time.Time { return time.Unix(0, 0) },
	})

	m, err := c.Generate(context.Background())
	require.NoError(t, err)

	// a.txt (10 bytes) should be padded to 16 bytes before b.txt begins.
	require.Len(t, m.Info.Files, 3)
	assert.Equal(t, []string{"a.txt"}, m.Info.Files[0].Path)
	assert.True(t, m.Info.Files[1].IsPad())
	assert.Equal(t, int64(6), m.Info.Files[1].Length)
	assert.Equal(t, []string{"b.txt"}, m.Info.Files[2].Path)

	assert.Equal(t, 2, m.Info.NumPieces()) // 16 padded + 10 = 26 bytes -> ceil(26/16) = 2

	// Piece 0 must hash a.txt's 10 real bytes followed by 6 zero pad
	// bytes, NOT a.txt concatenated directly with b.txt.
	stream0 := append(append([]byte(nil), a...), make([]byte, 6)...)
	want0 := sha1.Sum(stream0)
	hash0, ok := m.Info.PieceHash(0)
	require.True(t, ok)
	assert.Equal(t, want0, hash0)

	hash1, ok := m.Info.PieceHash(1)
	require.True(t, ok)
	assert.Equal(t, sha1.Sum(b), hash1)
}

func TestGenerateV2BuildsFileTree(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "sub", "c.bin"), make([]byte, 16*1024))

	c := Create(Options{
		Root:        dir,
		Flavor:      metainfo.FlavorV2,
		PieceLength: 16 * 1024,
		nowFunc:     func() time.Time { return time.Unix(0, 0) },
	})

	m, err := c.Generate(context.Background())
	require.NoError(t, err)

	require.NotNil(t, m.Info.FileTree)
	files := m.Info.V2Files()
	require.Len(t, files, 1)
	assert.Equal(t, []string{"sub", "c.bin"}, files[0].Path)
	assert.Len(t, files[0].PiecesRoot, 32)
	assert.NotZero(t, m.V2Hash())
}

func TestGenerateHybridCrossValidates(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "x.bin"), make([]byte, 32*1024))

	c := Create(Options{
		Root:        dir,
		Flavor:      metainfo.FlavorHybrid,
		PieceLength: 16 * 1024,
		nowFunc:     func() time.Time { return time.Unix(0, 0) },
	})

	m, err := c.Generate(context.Background())
	require.NoError(t, err)

	out := m.Bytes()
	reread, err := metainfo.Read(out)
	require.NoError(t, err)
	assert.Equal(t, metainfo.FlavorHybrid, reread.Info.Flavor())
}
