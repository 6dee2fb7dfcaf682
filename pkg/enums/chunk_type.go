package enums

// ChunkType tags a frame of the assistant reply stream.
type ChunkType string

const (
	ChunkTypeText     ChunkType = "text"
	ChunkTypeProducts ChunkType = "products"
	ChunkTypeDone     ChunkType = "done"
	ChunkTypeError    ChunkType = "error"
)

func (c ChunkType) String() string {
	return string(c)
}

// IsValid reports whether the value is a known ChunkType.
func (c ChunkType) IsValid() bool {
	switch c {
	case ChunkTypeText, ChunkTypeProducts, ChunkTypeDone, ChunkTypeError:
		return true
	}
	return false
}
