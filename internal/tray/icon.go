package tray

import (
	"bytes"
	"encoding/binary"
)

const iconSize = 16

// GetIcon returns a 16x16 ICO of a stick crosshair.
func GetIcon() []byte {
	var buf bytes.Buffer
	le := func(v any) { _ = binary.Write(&buf, binary.LittleEndian, v) }

	const (
		pixelBytes = iconSize * iconSize * 4
		maskBytes  = iconSize * 4 // 1bpp rows padded to 32 bits
		bmpHeader  = 40
		imageBytes = bmpHeader + pixelBytes + maskBytes
	)

	// ICONDIR
	le(uint16(0))
	le(uint16(1)) // icon
	le(uint16(1)) // one image

	// ICONDIRENTRY
	le(uint8(iconSize))
	le(uint8(iconSize))
	le(uint8(0)) // no palette
	le(uint8(0))
	le(uint16(1))  // planes
	le(uint16(32)) // bpp
	le(uint32(imageBytes))
	le(uint32(6 + 16))

	// BITMAPINFOHEADER, height covers XOR and AND masks
	le(uint32(bmpHeader))
	le(int32(iconSize))
	le(int32(iconSize * 2))
	le(uint16(1))
	le(uint16(32))
	le(uint32(0))
	le(uint32(pixelBytes + maskBytes))
	le(int32(0))
	le(int32(0))
	le(uint32(0))
	le(uint32(0))

	// BGRA pixels, bottom-up
	for y := iconSize - 1; y >= 0; y-- {
		for x := 0; x < iconSize; x++ {
			switch {
			case x == iconSize/2 || y == iconSize/2:
				buf.Write([]byte{0xE0, 0xA3, 0x4F, 0xFF})
			case x == 0 || y == 0 || x == iconSize-1 || y == iconSize-1:
				buf.Write([]byte{0x36, 0x2F, 0x2A, 0xFF})
			default:
				buf.Write([]byte{0x1C, 0x18, 0x15, 0xFF})
			}
		}
	}

	// AND mask, all opaque
	buf.Write(make([]byte, maskBytes))
	return buf.Bytes()
}
