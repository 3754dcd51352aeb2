package render

// alignedBytesPerRow rounds a row of w RGBA pixels up to the copy alignment.
func alignedBytesPerRow(w uint32) uint32 {
	const align = 256
	row := w * 4
	return (row + align - 1) / align * align
}

// unpadRows strips per-row padding from a readback buffer.
func unpadRows(padded []byte, width, height, bytesPerRow int) []byte {
	rowBytes := width * 4
	if bytesPerRow == rowBytes {
		out := make([]byte, rowBytes*height)
		copy(out, padded)
		return out
	}
	out := make([]byte, rowBytes*height)
	for y := 0; y < height; y++ {
		copy(out[y*rowBytes:(y+1)*rowBytes], padded[y*bytesPerRow:y*bytesPerRow+rowBytes])
	}
	return out
}
