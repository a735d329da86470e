package qrcode

import (
	"bytes"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateQRCode(t *testing.T) {
	s := NewQRService("https://guestlens.app/e")
	assert.Equal(t, "https://guestlens.app/e/ABCD1234", s.EventURL("ABCD1234"))

	data, err := s.GenerateQRCode("ABCD1234", 256)
	require.NoError(t, err)

	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, 256, img.Bounds().Dx())
}
