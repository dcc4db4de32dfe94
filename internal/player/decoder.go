package player

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-audio/wav"
	"github.com/hajimehoshi/go-mp3"
	"github.com/jfreymuth/oggvorbis"
	"github.com/mewkiz/flac"
)

// source is a seekable stream of interleaved 16-bit little-endian PCM.
// Offsets and Length are in output bytes.
type source interface {
	io.ReadSeeker
	Length() int64
	SampleRate() int
	ChannelCount() int
}

// SupportedExts lists the extensions openSource understands.
var SupportedExts = []string{".mp3", ".wav", ".flac", ".ogg"}

// IsSupported reports whether path has a playable extension.
func IsSupported(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range SupportedExts {
		if e == ext {
			return true
		}
	}
	return false
}

func openSource(f *os.File) (source, error) {
	switch ext := strings.ToLower(filepath.Ext(f.Name())); ext {
	case ".mp3":
		return newMP3Source(f)
	case ".wav":
		return newWAVSource(f)
	case ".flac":
		return newFLACSource(f)
	case ".ogg":
		return newOGGSource(f)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, ext)
	}
}

// pcmCursor carries the bookkeeping shared by decoders that produce PCM in
// blocks: leftover bytes from the last block and the output byte position.
type pcmCursor struct {
	pending  []byte
	pos      int64
	length   int64
	rate     int
	channels int
}

func (c *pcmCursor) Length() int64     { return c.length }
func (c *pcmCursor) SampleRate() int   { return c.rate }
func (c *pcmCursor) ChannelCount() int { return c.channels }

func (c *pcmCursor) frameBytes() int64 { return int64(c.channels) * 2 }

// drain copies leftover bytes into p.
func (c *pcmCursor) drain(p []byte) int {
	n := copy(p, c.pending)
	c.pending = c.pending[n:]
	c.pos += int64(n)
	return n
}

// emit copies a freshly decoded block into p and keeps the remainder.
func (c *pcmCursor) emit(p, block []byte) int {
	n := copy(p, block)
	if n < len(block) {
		c.pending = block[n:]
	}
	c.pos += int64(n)
	return n
}

// target resolves a Seek request to a frame-aligned byte offset.
func (c *pcmCursor) target(offset int64, whence int) int64 {
	var pos int64
	switch whence {
	case io.SeekStart:
		pos = offset
	case io.SeekCurrent:
		pos = c.pos + offset
	case io.SeekEnd:
		pos = c.length + offset
	}
	pos = max(0, min(pos, c.length))
	return pos - pos%c.frameBytes()
}

func (c *pcmCursor) moved(pos int64) {
	c.pending = nil
	c.pos = pos
}

func putSample(dst []byte, s int) {
	if s > 32767 {
		s = 32767
	} else if s < -32768 {
		s = -32768
	}
	binary.LittleEndian.PutUint16(dst, uint16(int16(s)))
}

// mp3Source needs no conversion: go-mp3 already yields 16-bit stereo.
type mp3Source struct {
	dec *mp3.Decoder
}

func newMP3Source(f *os.File) (*mp3Source, error) {
	dec, err := mp3.NewDecoder(f)
	if err != nil {
		return nil, fmt.Errorf("decoding MP3: %w", err)
	}
	return &mp3Source{dec: dec}, nil
}

func (s *mp3Source) Read(p []byte) (int, error) { return s.dec.Read(p) }
func (s *mp3Source) Seek(offset int64, whence int) (int64, error) {
	return s.dec.Seek(offset, whence)
}
func (s *mp3Source) Length() int64     { return s.dec.Length() }
func (s *mp3Source) SampleRate() int   { return s.dec.SampleRate() }
func (s *mp3Source) ChannelCount() int { return 2 }

type wavSource struct {
	pcmCursor
	file     *os.File
	pcmStart int64
	depth    int   // source bits per sample
	srcFrame int64 // source bytes per frame
}

func newWAVSource(f *os.File) (*wavSource, error) {
	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		return nil, fmt.Errorf("%w: invalid WAV file", ErrUnsupportedFormat)
	}
	if err := dec.FwdToPCM(); err != nil {
		return nil, fmt.Errorf("reading WAV PCM data: %w", err)
	}
	channels := int(dec.NumChans)
	depth := int(dec.BitDepth)
	if channels < 1 || (depth != 8 && depth != 16 && depth != 24 && depth != 32) {
		return nil, fmt.Errorf("%w: WAV with %d channels at %d bits", ErrUnsupportedFormat, channels, depth)
	}
	srcFrame := int64(channels * depth / 8)
	start, err := f.Seek(0, io.SeekCurrent)
	if err != nil {
		return nil, fmt.Errorf("locating WAV PCM data: %w", err)
	}
	return &wavSource{
		pcmCursor: pcmCursor{
			length:   dec.PCMLen() / srcFrame * int64(channels) * 2,
			rate:     int(dec.SampleRate),
			channels: channels,
		},
		file:     f,
		pcmStart: start,
		depth:    depth,
		srcFrame: srcFrame,
	}, nil
}

func (s *wavSource) Read(p []byte) (int, error) {
	if len(s.pending) > 0 {
		return s.drain(p), nil
	}
	width := s.depth / 8
	samples := max(len(p)/2, 1)
	src := make([]byte, samples*width)
	n, err := io.ReadFull(s.file, src)
	samples = n / width
	if samples == 0 {
		if err == nil || err == io.ErrUnexpectedEOF {
			err = io.EOF
		}
		return 0, err
	}

	block := make([]byte, samples*2)
	for i := range samples {
		b := src[i*width:]
		var v int
		switch s.depth {
		case 8:
			v = (int(b[0]) - 128) << 8
		case 16:
			v = int(int16(binary.LittleEndian.Uint16(b)))
		case 24:
			v = int(int32(uint32(b[0])<<8|uint32(b[1])<<16|uint32(b[2])<<24) >> 16)
		case 32:
			v = int(int32(binary.LittleEndian.Uint32(b)) >> 16)
		}
		putSample(block[i*2:], v)
	}
	if err == io.ErrUnexpectedEOF {
		err = io.EOF
	}
	return s.emit(p, block), err
}

func (s *wavSource) Seek(offset int64, whence int) (int64, error) {
	pos := s.target(offset, whence)
	frame := pos / s.frameBytes()
	if _, err := s.file.Seek(s.pcmStart+frame*s.srcFrame, io.SeekStart); err != nil {
		return s.pos, err
	}
	s.moved(pos)
	return pos, nil
}

type flacSource struct {
	pcmCursor
	stream *flac.Stream
	depth  int
}

func newFLACSource(f *os.File) (*flacSource, error) {
	stream, err := flac.NewSeek(f)
	if err != nil {
		return nil, fmt.Errorf("decoding FLAC: %w", err)
	}
	info := stream.Info
	channels := int(info.NChannels)
	return &flacSource{
		pcmCursor: pcmCursor{
			length:   int64(info.NSamples) * int64(channels) * 2,
			rate:     int(info.SampleRate),
			channels: channels,
		},
		stream: stream,
		depth:  int(info.BitsPerSample),
	}, nil
}

func (s *flacSource) Read(p []byte) (int, error) {
	if len(s.pending) > 0 {
		return s.drain(p), nil
	}
	frame, err := s.stream.ParseNext()
	if err != nil {
		return 0, err
	}
	n := int(frame.Subframes[0].NSamples)
	block := make([]byte, n*s.channels*2)
	for i := range n {
		for ch := range s.channels {
			v := int(frame.Subframes[ch].Samples[i])
			if s.depth > 16 {
				v >>= s.depth - 16
			} else {
				v <<= 16 - s.depth
			}
			putSample(block[(i*s.channels+ch)*2:], v)
		}
	}
	return s.emit(p, block), nil
}

func (s *flacSource) Seek(offset int64, whence int) (int64, error) {
	pos := s.target(offset, whence)
	if _, err := s.stream.Seek(uint64(pos / s.frameBytes())); err != nil {
		return s.pos, err
	}
	s.moved(pos)
	return pos, nil
}

type oggSource struct {
	pcmCursor
	reader *oggvorbis.Reader
}

func newOGGSource(f *os.File) (*oggSource, error) {
	r, err := oggvorbis.NewReader(f)
	if err != nil {
		return nil, fmt.Errorf("decoding OGG: %w", err)
	}
	return &oggSource{
		pcmCursor: pcmCursor{
			length:   r.Length() * int64(r.Channels()) * 2,
			rate:     r.SampleRate(),
			channels: r.Channels(),
		},
		reader: r,
	}, nil
}

func (s *oggSource) Read(p []byte) (int, error) {
	if len(s.pending) > 0 {
		return s.drain(p), nil
	}
	samples := make([]float32, max(len(p)/2, 1))
	n, err := s.reader.Read(samples)
	if n == 0 {
		if err == nil {
			err = io.EOF
		}
		return 0, err
	}
	block := make([]byte, n*2)
	for i, v := range samples[:n] {
		putSample(block[i*2:], int(v*32767))
	}
	return s.emit(p, block), err
}

func (s *oggSource) Seek(offset int64, whence int) (int64, error) {
	pos := s.target(offset, whence)
	if err := s.reader.SetPosition(pos / s.frameBytes()); err != nil {
		return s.pos, err
	}
	s.moved(pos)
	return pos, nil
}
