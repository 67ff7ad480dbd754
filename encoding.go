package shadows

import "math"

// EncodeDepth packs a normalized distance in [0, 1] into three 8-bit
// channels. The value is quantized to DepthScale steps and stored base-256,
// least significant byte in R. Values outside [0, 1] are clamped; 1 is the
// "no hit" encoding.
func EncodeDepth(norm float64) (r, g, b uint8) {
	v := int(math.Round(clamp01(norm) * DepthScale))
	return uint8(v & 0xff), uint8((v >> 8) & 0xff), uint8((v >> 16) & 0xff)
}

// DecodeDepth is the inverse of EncodeDepth. The round-trip error is at
// most 0.5/DepthScale.
func DecodeDepth(r, g, b uint8) float64 {
	return (float64(r) + float64(g)*256 + float64(b)*65536) / DepthScale
}
