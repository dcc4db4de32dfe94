package player

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/olivier-w/knobscope/internal/param"
	"github.com/olivier-w/knobscope/internal/tap"
)

func pcm(samples ...int16) []byte {
	b := make([]byte, len(samples)*2)
	for i, s := range samples {
		binary.LittleEndian.PutUint16(b[i*2:], uint16(s))
	}
	return b
}

func decode(b []byte) []int16 {
	out := make([]int16, len(b)/2)
	for i := range out {
		out[i] = int16(binary.LittleEndian.Uint16(b[i*2:]))
	}
	return out
}

func TestStageUnityPassesThrough(t *testing.T) {
	tee := tap.NewRingBuffer(16)
	s := newStage(bytes.NewReader(pcm(100, -200, 300, -400)), 2, tee, 1, 0)

	buf := make([]byte, 8)
	n, err := s.Read(buf)
	if err != nil && err != io.EOF {
		t.Fatalf("Read: %v", err)
	}
	got := decode(buf[:n])
	want := []int16{100, -200, 300, -400}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}
	if tee.Len() != 4 {
		t.Fatalf("expected 4 samples teed, got %d", tee.Len())
	}
}

func TestStageWidensMono(t *testing.T) {
	s := newStage(bytes.NewReader(pcm(1000, 2000)), 1, nil, 0.5, 0)
	buf := make([]byte, 8)
	n, _ := s.Read(buf)
	got := decode(buf[:n])
	want := []int16{500, 500, 1000, 1000}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}
}

// oneByteReader hands out a single byte per call.
type oneByteReader struct{ r io.Reader }

func (o oneByteReader) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	return o.r.Read(p[:1])
}

func TestStageCarriesPartialFrames(t *testing.T) {
	s := newStage(oneByteReader{bytes.NewReader(pcm(7, 9))}, 2, nil, 1, 0)
	buf := make([]byte, 4)
	var out []int16
	for range 8 {
		n, err := s.Read(buf)
		out = append(out, decode(buf[:n])...)
		if err == io.EOF {
			break
		}
	}
	if len(out) != 2 || out[0] != 7 || out[1] != 9 {
		t.Fatalf("expected [7 9], got %v", out)
	}
}

func TestStageRampsGain(t *testing.T) {
	frames := rampFrames * 2
	samples := make([]int16, frames*2)
	for i := range samples {
		samples[i] = 10000
	}
	s := newStage(bytes.NewReader(pcm(samples...)), 2, nil, 1, 0)
	s.setGain(0)

	buf := make([]byte, frames*4)
	n, _ := s.Read(buf)
	got := decode(buf[:n])
	if got[0] >= 10000 || got[0] <= 0 {
		t.Fatalf("expected first frame mid-ramp, got %d", got[0])
	}
	if last := got[len(got)-1]; last != 0 {
		t.Fatalf("expected ramp to reach silence, got %d", last)
	}
}

func TestBalance(t *testing.T) {
	cases := []struct{ pan, l, r float64 }{
		{0, 1, 1},
		{-1, 1, 0},
		{1, 0, 1},
		{0.5, 0.5, 1},
		{-3, 1, 0},
	}
	for _, tc := range cases {
		l, r := balance(tc.pan)
		if l != tc.l || r != tc.r {
			t.Fatalf("balance(%v) = %v, %v; want %v, %v", tc.pan, l, r, tc.l, tc.r)
		}
	}
}

func TestCursorTargetClampsAndAligns(t *testing.T) {
	c := pcmCursor{length: 41, channels: 2, pos: 20}
	if got := c.target(39, io.SeekStart); got != 36 {
		t.Fatalf("expected aligned 36, got %d", got)
	}
	if got := c.target(-100, io.SeekCurrent); got != 0 {
		t.Fatalf("expected clamp to 0, got %d", got)
	}
	if got := c.target(10, io.SeekEnd); got != 40 {
		t.Fatalf("expected clamp to end 40, got %d", got)
	}
}

func writeWAV(t *testing.T, path string, channels, depth int, data []byte) {
	t.Helper()
	var b bytes.Buffer
	le := func(v any) { binary.Write(&b, binary.LittleEndian, v) }
	b.WriteString("RIFF")
	le(uint32(36 + len(data)))
	b.WriteString("WAVEfmt ")
	le(uint32(16))
	le(uint16(1))
	le(uint16(channels))
	le(uint32(8000))
	le(uint32(8000 * channels * depth / 8))
	le(uint16(channels * depth / 8))
	le(uint16(depth))
	b.WriteString("data")
	le(uint32(len(data)))
	b.Write(data)
	if err := os.WriteFile(path, b.Bytes(), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestWAVSourceConvertsDepths(t *testing.T) {
	dir := t.TempDir()

	path8 := filepath.Join(dir, "u8.wav")
	writeWAV(t, path8, 1, 8, []byte{128, 255, 0})

	path24 := filepath.Join(dir, "s24.wav")
	writeWAV(t, path24, 1, 24, []byte{0x00, 0x00, 0x40, 0x00, 0x00, 0xC0})

	cases := []struct {
		path string
		want []int16
	}{
		{path8, []int16{0, 127 << 8, -128 << 8}},
		{path24, []int16{0x4000, -0x4000}},
	}
	for _, tc := range cases {
		f, err := os.Open(tc.path)
		if err != nil {
			t.Fatal(err)
		}
		src, err := openSource(f)
		if err != nil {
			f.Close()
			t.Fatalf("%s: openSource: %v", tc.path, err)
		}
		if src.SampleRate() != 8000 || src.ChannelCount() != 1 {
			t.Fatalf("%s: unexpected format %d Hz x%d", tc.path, src.SampleRate(), src.ChannelCount())
		}
		if src.Length() != int64(len(tc.want)*2) {
			t.Fatalf("%s: expected length %d, got %d", tc.path, len(tc.want)*2, src.Length())
		}
		data, err := io.ReadAll(src)
		f.Close()
		if err != nil {
			t.Fatalf("%s: read: %v", tc.path, err)
		}
		got := decode(data)
		if len(got) != len(tc.want) {
			t.Fatalf("%s: expected %v, got %v", tc.path, tc.want, got)
		}
		for i := range got {
			if got[i] != tc.want[i] {
				t.Fatalf("%s: expected %v, got %v", tc.path, tc.want, got)
			}
		}
	}
}

func TestOpenSourceRejectsUnknownExtension(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.txt")
	if err := os.WriteFile(path, []byte("hi"), 0o644); err != nil {
		t.Fatal(err)
	}
	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if _, err := openSource(f); !errors.Is(err, ErrUnsupportedFormat) {
		t.Fatalf("expected ErrUnsupportedFormat, got %v", err)
	}
	if IsSupported(path) || !IsSupported("a/B.FLAC") {
		t.Fatal("unexpected IsSupported result")
	}
}

func TestReadMetadataFallsBackToFilename(t *testing.T) {
	m := ReadMetadata("/music/Piano Loop.wav")
	if m.Title != "Piano Loop" || m.Line() != "" {
		t.Fatalf("unexpected metadata %+v", m)
	}
	if got := (Metadata{Artist: "A", Album: "B"}).Line(); got != "A - B" {
		t.Fatalf("expected %q, got %q", "A - B", got)
	}
}

func TestParametersBuildATree(t *testing.T) {
	tree, err := param.NewTree(Parameters())
	if err != nil {
		t.Fatalf("NewTree: %v", err)
	}
	if v := tree.Get(Volume).Value(); v != 0.8 {
		t.Fatalf("expected default volume 0.8, got %v", v)
	}
	if _, err := New("missing.xyz", tree, nil, nil); err == nil {
		t.Fatal("expected error opening a missing file")
	}
}
