package bitio_test

import (
	"math/rand"
	"testing"

	"github.com/Sewer56/struct-compression-analyzer/bitio"
)

func TestReadMSBLSB(t *testing.T) {
	data := []byte{0b10000000}

	r := bitio.NewReader(data)
	v1, err := r.Read(2, bitio.MSB)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if v1 != 2 {
		t.Fatalf("expected 2, got %d", v1)
	}
	v2, err := r.Read(2, bitio.MSB)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if v2 != 0 {
		t.Fatalf("expected 0, got %d", v2)
	}

	r = bitio.NewReader(data)
	v1, err = r.Read(2, bitio.LSB)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if v1 != 1 {
		t.Fatalf("expected 1, got %d", v1)
	}
	v2, err = r.Read(2, bitio.LSB)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if v2 != 0 {
		t.Fatalf("expected 0, got %d", v2)
	}
}

func TestEndOfStream(t *testing.T) {
	r := bitio.NewReader([]byte{0xff})
	if _, err := r.Read(9, bitio.MSB); err != bitio.ErrEndOfStream {
		t.Fatalf("expected ErrEndOfStream, got %v", err)
	}
}

func TestWriteReadRoundtrip(t *testing.T) {
	widths := []int{1, 3, 7, 8, 13, 31, 64}
	for _, order := range []bitio.Order{bitio.MSB, bitio.LSB} {
		for _, bits := range widths {
			w := bitio.NewWriter()
			var want []uint64
			for i := 0; i < 50; i++ {
				v := rand.Uint64()
				if bits < 64 {
					v &= (uint64(1) << bits) - 1
				}
				want = append(want, v)
				w.Write(v, bits, order)
			}
			r := bitio.NewReader(w.Bytes())
			for i, v := range want {
				got, err := r.Read(bits, order)
				if err != nil {
					t.Fatalf("order=%v bits=%d i=%d: unexpected error %v", order, bits, i, err)
				}
				if got != v {
					t.Fatalf("order=%v bits=%d i=%d: got %d want %d", order, bits, i, got, v)
				}
			}
		}
	}
}

func TestBitOrderSymmetry(t *testing.T) {
	// reading N bits in MSB order yields the
	// bit-reverse of reading the same bits in LSB order.
	rng := rand.New(rand.NewSource(1))
	buf := make([]byte, 64)
	rng.Read(buf)
	for bits := 1; bits <= 64; bits++ {
		rm := bitio.NewReader(buf)
		msb, err := rm.Read(bits, bitio.MSB)
		if err != nil {
			t.Fatalf("bits=%d: %v", bits, err)
		}
		rl := bitio.NewReader(buf)
		lsb, err := rl.Read(bits, bitio.LSB)
		if err != nil {
			t.Fatalf("bits=%d: %v", bits, err)
		}
		var reversed uint64
		v := msb
		for i := 0; i < bits; i++ {
			reversed = (reversed << 1) | (v & 1)
			v >>= 1
		}
		if reversed != lsb {
			t.Fatalf("bits=%d: reverse(msb)=%d != lsb=%d", bits, reversed, lsb)
		}
	}
}

func TestCopyBits(t *testing.T) {
	src := bitio.NewWriter()
	src.Write(0b101, 3, bitio.MSB)
	src.Write(0x1234, 16, bitio.MSB)
	src.Write(0b1, 1, bitio.MSB)

	dst := bitio.NewWriter()
	r := bitio.NewReader(src.Bytes())
	if err := bitio.CopyBits(dst, r, 3+16+1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	rd := bitio.NewReader(dst.Bytes())
	if v, _ := rd.Read(3, bitio.MSB); v != 0b101 {
		t.Fatalf("expected 0b101, got %d", v)
	}
	if v, _ := rd.Read(16, bitio.MSB); v != 0x1234 {
		t.Fatalf("expected 0x1234, got %#x", v)
	}
	if v, _ := rd.Read(1, bitio.MSB); v != 1 {
		t.Fatalf("expected 1, got %d", v)
	}
}

func TestSeekTell(t *testing.T) {
	r := bitio.NewReader([]byte{0xAA, 0xBB})
	if r.TellBits() != 0 {
		t.Fatalf("expected 0")
	}
	if _, err := r.Read(4, bitio.MSB); err != nil {
		t.Fatal(err)
	}
	if r.TellBits() != 4 {
		t.Fatalf("expected 4, got %d", r.TellBits())
	}
	if err := r.SeekBits(12); err != nil {
		t.Fatal(err)
	}
	if r.RemainingBits() != 4 {
		t.Fatalf("expected 4 remaining, got %d", r.RemainingBits())
	}
}
