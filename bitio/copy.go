package bitio

// CopyBits copies n raw physical bits from r to w, preserving the
// exact bit pattern (MSB order round-trips the physical sequence
// without reinterpreting it — see Reader/Writer doc comments). Used to
// concatenate two accumulators' bit buffers without disturbing any
// interior byte padding.
func CopyBits(w *Writer, r *Reader, n uint64) error {
	for n > 0 {
		chunk := uint64(maxBits)
		if n < chunk {
			chunk = n
		}
		v, err := r.Read(int(chunk), MSB)
		if err != nil {
			return err
		}
		w.Write(v, int(chunk), MSB)
		n -= chunk
	}
	return nil
}
