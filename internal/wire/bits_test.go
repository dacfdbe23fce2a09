package wire

import "testing"

func TestWriteReadBitsRoundTrip(t *testing.T) {
	w := NewWriter()
	w.WriteBits(1, 1)
	w.WriteBits(3, 5)
	w.WriteBits(17, 100000&((1<<17)-1))
	w.WriteBits(31, 123456789)

	r := NewReader(w.Bytes())
	if got := r.ReadBits(1); got != 1 {
		t.Fatalf("bit: got %d want 1", got)
	}
	if got := r.ReadBits(3); got != 5 {
		t.Fatalf("3-bit: got %d want 5", got)
	}
	if got := r.ReadBits(17); got != 100000&((1<<17)-1) {
		t.Fatalf("17-bit: got %d", got)
	}
	if got := r.ReadBits(31); got != 123456789 {
		t.Fatalf("31-bit: got %d", got)
	}
}

func TestWritePosAbsentOld(t *testing.T) {
	for v := uint32(0); v < (1 << 17); v += 4099 {
		w := NewWriter()
		w.WritePos(17, v, nil)
		r := NewReader(w.Bytes())
		got := r.ReadPos(17, nil)
		if got != v {
			t.Fatalf("WritePos/ReadPos absent-old round trip: got %d want %d", got, v)
		}
	}
}

func TestWritePosDeltaEncoding(t *testing.T) {
	old := uint32(10000)
	for _, delta := range []int32{-4, -3, -1, 0, 1, 2, 3} {
		newVal := uint32(int64(old) + int64(delta))
		w := NewWriter()
		w.WritePos(17, newVal, &old)
		r := NewReader(w.Bytes())
		got := r.ReadPos(17, &old)
		if got != newVal {
			t.Fatalf("delta %d: got %d want %d", delta, got, newVal)
		}
	}
}

func TestWritePosLargeDeltaIsAbsolute(t *testing.T) {
	old := uint32(10000)
	newVal := uint32(10002)
	w := NewWriter()
	w.WritePos(17, newVal, &old)

	r := NewReader(w.Bytes())
	flag := r.ReadBits(1)
	if flag != 0 {
		t.Fatalf("expected delta flag 0 for small move, got %d", flag)
	}

	// A move of 4 or more must force absolute encoding (I7: |new-prior|<4 uses delta).
	far := uint32(10010)
	w2 := NewWriter()
	w2.WritePos(17, far, &old)
	r2 := NewReader(w2.Bytes())
	flag2 := r2.ReadBits(1)
	if flag2 != 1 {
		t.Fatalf("expected absolute flag 1 for large move, got %d", flag2)
	}
}

func TestAlignedHelpersRoundTrip(t *testing.T) {
	w := NewWriter()
	w.WriteBits(3, 5) // force misalignment
	w.WriteByteAligned(0xAB)
	w.WriteU32Aligned(0xDEADBEEF)
	w.WriteU16Aligned(0xBEEF)
	w.WriteBytesAligned([]byte("hock"))
	w.WriteF32Aligned(3.5)

	r := NewReader(w.Bytes())
	r.ReadBits(3)
	if b := r.ReadByteAligned(); b != 0xAB {
		t.Fatalf("byte aligned: got %x", b)
	}
	if v := r.ReadU32Aligned(); v != 0xDEADBEEF {
		t.Fatalf("u32 aligned: got %x", v)
	}
	if v := r.ReadU16Aligned(); v != 0xBEEF {
		t.Fatalf("u16 aligned: got %x", v)
	}
	if b := r.ReadBytesAligned(4); string(b) != "hock" {
		t.Fatalf("bytes aligned: got %q", b)
	}
	if f := r.ReadF32Aligned(); f != 3.5 {
		t.Fatalf("f32 aligned: got %v", f)
	}
}

func TestWriteBytesAlignedPadded(t *testing.T) {
	w := NewWriter()
	w.WriteBytesAlignedPadded(8, []byte("hi"))
	r := NewReader(w.Bytes())
	b := r.ReadBytesAligned(8)
	want := []byte{'h', 'i', 0, 0, 0, 0, 0, 0}
	for i := range want {
		if b[i] != want[i] {
			t.Fatalf("padded bytes mismatch at %d: got %v want %v", i, b, want)
		}
	}
}
