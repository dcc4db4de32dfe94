package tap

import (
	"errors"
	"math"
	"math/rand"
	"testing"
)

func TestRingBufferKeepsNewest(t *testing.T) {
	rb := NewRingBuffer(5)
	rb.Write([]int16{1, 2, 3})
	rb.Write([]int16{4, 5, 6, 7})

	got := rb.Latest(5)
	want := []int16{3, 4, 5, 6, 7}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}
	if tail := rb.Latest(2); tail[0] != 6 || tail[1] != 7 {
		t.Fatalf("expected [6 7], got %v", tail)
	}
}

func TestRingBufferOversizedWriteAndClear(t *testing.T) {
	rb := NewRingBuffer(3)
	rb.Write([]int16{1, 2, 3, 4, 5})
	if got := rb.Latest(10); len(got) != 3 || got[0] != 3 || got[2] != 5 {
		t.Fatalf("expected [3 4 5], got %v", got)
	}
	rb.Clear()
	if rb.Len() != 0 || rb.Latest(1) != nil {
		t.Fatal("expected empty buffer after Clear")
	}
}

func TestTapNeedsFullWindow(t *testing.T) {
	rb := NewRingBuffer(1024)
	tp, err := New(rb, 2, Bins64)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	rb.Write(make([]int16, 100))
	if f := tp.Frame(); f != nil {
		t.Fatalf("expected nil frame before a full window, got %d bins", len(f))
	}
}

func TestTapFindsSinePeak(t *testing.T) {
	const bin = 8
	rb := NewRingBuffer(4096)
	tp, err := New(rb, 2, Bins64)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	size := int(Bins64) * 2
	pcm := make([]int16, size*2)
	for i := range size {
		s := int16(16000 * math.Sin(2*math.Pi*bin*float64(i)/float64(size)))
		pcm[i*2] = s
		pcm[i*2+1] = s
	}
	rb.Write(pcm)

	frame := tp.Frame()
	if len(frame) != int(Bins64) {
		t.Fatalf("expected %d bins, got %d", Bins64, len(frame))
	}
	peak := 0
	for i, m := range frame {
		if m < 0 || math.IsNaN(m) {
			t.Fatalf("bin %d has invalid magnitude %v", i, m)
		}
		if m > frame[peak] {
			peak = i
		}
	}
	if peak != bin {
		t.Fatalf("expected peak at bin %d, got %d", bin, peak)
	}

	raw := frame[bin]
	tp.IsNormalized = true
	if got := tp.Frame()[bin]; math.Abs(got-raw/float64(size)) > 1e-9 {
		t.Fatalf("expected normalized magnitude %v, got %v", raw/float64(size), got)
	}
}

func TestNewRejectsBadBinCount(t *testing.T) {
	if _, err := New(NewRingBuffer(8), 2, ValidBinCount(100)); !errors.Is(err, ErrBinCount) {
		t.Fatalf("expected ErrBinCount, got %v", err)
	}
	if _, err := ParseBinCount(256); err != nil {
		t.Fatalf("expected 256 to be valid, got %v", err)
	}
}

func TestMockFrameRange(t *testing.T) {
	m := NewMock(rand.New(rand.NewSource(1)))
	for range 20 {
		f := m.Frame()
		if len(f) != MockBins {
			t.Fatalf("expected %d bins, got %d", MockBins, len(f))
		}
		for _, v := range f {
			if v < 0 || v > mockCeiling {
				t.Fatalf("mock magnitude %v out of range", v)
			}
		}
	}
}
