package bytecursor

import "testing"

func TestWriteReadRoundTrip(t *testing.T) {
	w := NewWriter(0)
	w.WriteInt64(42)
	w.WriteInt32(-7)
	w.WriteUint32(0xDEADBEEF)
	w.WriteBytes([]byte("hello"))

	r := New(w.Bytes())

	gotI64, err := r.ReadInt64()
	if err != nil || gotI64 != 42 {
		t.Fatalf("ReadInt64() = %v, %v; want 42, nil", gotI64, err)
	}
	gotI32, err := r.ReadInt32()
	if err != nil || gotI32 != -7 {
		t.Fatalf("ReadInt32() = %v, %v; want -7, nil", gotI32, err)
	}
	gotU32, err := r.ReadUint32()
	if err != nil || gotU32 != 0xDEADBEEF {
		t.Fatalf("ReadUint32() = %v, %v; want 0xDEADBEEF, nil", gotU32, err)
	}
	gotSlice, err := r.ReadSlice(5)
	if err != nil || string(gotSlice) != "hello" {
		t.Fatalf("ReadSlice(5) = %q, %v; want hello, nil", gotSlice, err)
	}
}

func TestReadPastEndFails(t *testing.T) {
	r := New([]byte{0x01, 0x02})
	if _, err := r.ReadInt32(); err == nil {
		t.Fatal("ReadInt32() on 2-byte buffer succeeded, want ErrShortBuffer")
	}
}

func TestReadSliceNegativeLength(t *testing.T) {
	r := New([]byte{0x01, 0x02, 0x03})
	if _, err := r.ReadSlice(-1); err == nil {
		t.Fatal("ReadSlice(-1) succeeded, want error")
	}
}

func TestPatchUint32(t *testing.T) {
	w := NewWriter(0)
	w.WriteUint32(0)
	w.WriteBytes([]byte("rest"))

	if err := w.PatchUint32(0, 0x11223344); err != nil {
		t.Fatalf("PatchUint32() error = %v", err)
	}
	r := New(w.Bytes())
	got, err := r.ReadUint32()
	if err != nil || got != 0x11223344 {
		t.Fatalf("after patch, ReadUint32() = %v, %v; want 0x11223344, nil", got, err)
	}
}

func TestPatchOutOfRange(t *testing.T) {
	w := NewWriter(0)
	w.WriteBytes([]byte{1, 2})
	if err := w.PatchUint32(0, 1); err == nil {
		t.Fatal("PatchUint32() on a 2-byte buffer succeeded, want error")
	}
}

func TestTruncateRewindsPartialWrite(t *testing.T) {
	w := NewWriter(0)
	w.WriteBytes([]byte("keep"))
	mark := w.Pos()
	w.WriteBytes([]byte("discard-me"))
	w.Truncate(mark)
	if string(w.Bytes()) != "keep" {
		t.Fatalf("after Truncate, Bytes() = %q, want %q", w.Bytes(), "keep")
	}
}

func TestView(t *testing.T) {
	r := New([]byte("0123456789"))
	got, err := r.View(2, 5)
	if err != nil || string(got) != "234" {
		t.Fatalf("View(2,5) = %q, %v; want 234, nil", got, err)
	}
	if _, err := r.View(5, 2); err == nil {
		t.Fatal("View(5,2) succeeded, want error for start > end")
	}
	if _, err := r.View(0, 11); err == nil {
		t.Fatal("View(0,11) succeeded, want error for out-of-range end")
	}
}
