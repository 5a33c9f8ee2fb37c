package protocol

// Decode would turn received timings back into a frame. The receive path is
// not implemented; Decode always reports that no frame was recognized.
func Decode(raw []int32) (Frame, error) {
	return Frame{}, ErrDecodeUnsupported
}
