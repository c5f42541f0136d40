package scanner

// DefaultMaxUploadBytes bounds uploaded images and camera frames.
const DefaultMaxUploadBytes int64 = 10 << 20

// Multipart field names.
const (
	frameField  = "frame"
	uploadField = "image"
)
