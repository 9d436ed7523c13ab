package bencode_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/p2p-ld/torrent-models/pkg/bencode"
)

func TestDecodeValueRoundTrip(t *testing.T) {
	tests := []struct {
		in string
	}{
		{"i123e"},
		{"i-123e"},
		{"i0e"},
		{"0:"},
		{"3:cat"},
		{"le"},
		{"li123e3:cate"},
		{"d3:cati123e3:dogi-123ee"},
		{"d1:ad1:ai123e1:b3:catee"},
	}

	for _, test := range tests {
		t.Run(test.in, func(t *testing.T) {
			v, err := bencode.DecodeValue([]byte(test.in))
			require.NoError(t, err)
			assert.Equal(t, test.in, string(bencode.EncodeValue(v)))
		})
	}
}

func TestDecodeValueSyntaxErrors(t *testing.T) {
	tests := []struct {
		name   string
		in     string
		reason bencode.Reason
	}{
		{"non ascending keys", "d1:bi1e1:ai2ee", bencode.ReasonNonAscending},
		{"duplicate keys", "d1:ai1e1:ai2ee", bencode.ReasonDuplicateKey},
		{"non string key", "di1ei2ee", bencode.ReasonNonStringKey},
		{"leading zero", "i01e", bencode.ReasonLeadingZero},
		{"unterminated", "i123", bencode.ReasonUnterminated},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := bencode.DecodeValue([]byte(test.in))
			require.Error(t, err)

			var se *bencode.SyntaxError
			require.ErrorAs(t, err, &se)
			assert.Equal(t, test.reason, se.Reason)
		})
	}
}

func TestDecodeValueByteSpans(t *testing.T) {
	data := []byte("d4:infod4:name3:fooee")
	top, err := bencode.DecodeValue(data)
	require.NoError(t, err)

	d, ok := top.AsDict()
	require.True(t, ok)

	info, ok := d.Get("info")
	require.True(t, ok)
	require.GreaterOrEqual(t, info.Start, 0)

	assert.Equal(t, "d4:name3:fooe", string(data[info.Start:info.End]))
}

func TestDictOrdering(t *testing.T) {
	d := bencode.NewDict()
	d.Set("z", bencode.NewInt(1))
	d.Set("a", bencode.NewInt(2))

	assert.Equal(t, []string{"z", "a"}, d.Keys())
	assert.Equal(t, []string{"a", "z"}, d.SortedKeys())

	encoded := bencode.EncodeValue(bencode.NewDictValue(d))
	assert.Equal(t, "d1:ai2e1:zi1ee", string(encoded))
}
