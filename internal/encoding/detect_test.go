package encoding_test

import (
	"bytes"
	"io"
	"testing"
	"unicode/utf16"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	enc "github.com/chinedu-obi/medibill/internal/encoding"
)

func decode(t *testing.T, input []byte) string {
	t.Helper()

	r, err := enc.NewUTF8Reader(bytes.NewReader(input))
	require.NoError(t, err)

	out, err := io.ReadAll(r)
	require.NoError(t, err)

	return string(out)
}

func utf16LE(s string) []byte {
	buf := []byte{0xFF, 0xFE}
	for _, u := range utf16.Encode([]rune(s)) {
		buf = append(buf, byte(u), byte(u>>8))
	}

	return buf
}

func utf16BE(s string) []byte {
	buf := []byte{0xFE, 0xFF}
	for _, u := range utf16.Encode([]rune(s)) {
		buf = append(buf, byte(u>>8), byte(u))
	}

	return buf
}

func TestNewUTF8Reader(t *testing.T) {
	t.Run("PlainUTF8PassesThrough", func(t *testing.T) {
		assert.Equal(t, "Date,Narration,Amount\n", decode(t, []byte("Date,Narration,Amount\n")))
	})

	t.Run("StripsUTF8BOM", func(t *testing.T) {
		input := append([]byte{0xEF, 0xBB, 0xBF}, []byte("Transaction Date,Reference")...)
		assert.Equal(t, "Transaction Date,Reference", decode(t, input))
	})

	t.Run("DecodesUTF16LE", func(t *testing.T) {
		assert.Equal(t, "TRF/ADEBAYO/₦5,000", decode(t, utf16LE("TRF/ADEBAYO/₦5,000")))
	})

	t.Run("DecodesUTF16BE", func(t *testing.T) {
		assert.Equal(t, "Trans. Date,Remarks", decode(t, utf16BE("Trans. Date,Remarks")))
	})

	t.Run("DecodesWindows1252", func(t *testing.T) {
		// 0xD1 is Ñ in Windows-1252 and invalid as a standalone UTF-8 byte.
		input := []byte("NU\xd1EZ PHARMACY LTD payment received for invoice settlement today")
		assert.Equal(t, "NUÑEZ PHARMACY LTD payment received for invoice settlement today", decode(t, input))
	})

	t.Run("EmptyInput", func(t *testing.T) {
		assert.Equal(t, "", decode(t, nil))
	})
}
