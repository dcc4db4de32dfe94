package player

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"
	"github.com/olivier-w/knobscope/internal/param"
	"github.com/olivier-w/knobscope/internal/tap"
)

// OutputChannels is the channel count of everything the player emits,
// including the PCM written to the tap buffer.
const OutputChannels = 2

var (
	ErrUnsupportedFormat = errors.New("unsupported audio format")
	ErrSampleRate        = errors.New("sample rate differs from the open audio device")
)

// countingReader tracks how many source bytes have been consumed.
type countingReader struct {
	reader io.Reader
	pos    int64
	mu     sync.Mutex
}

func (cr *countingReader) Read(p []byte) (int, error) {
	n, err := cr.reader.Read(p)
	cr.mu.Lock()
	cr.pos += int64(n)
	cr.mu.Unlock()
	return n, err
}

func (cr *countingReader) Pos() int64 {
	cr.mu.Lock()
	defer cr.mu.Unlock()
	return cr.pos
}

func (cr *countingReader) SetPos(pos int64) {
	cr.mu.Lock()
	cr.pos = pos
	cr.mu.Unlock()
}

var (
	otoCtx     *oto.Context
	otoRate    int
	otoOnce    sync.Once
	otoInitErr error
)

// audioContext opens the shared oto context at the first requested rate.
// oto allows one context per process.
func audioContext(rate int) (*oto.Context, error) {
	otoOnce.Do(func() {
		var ready chan struct{}
		otoCtx, ready, otoInitErr = oto.NewContext(&oto.NewContextOptions{
			SampleRate:   rate,
			ChannelCount: OutputChannels,
			Format:       oto.FormatSignedInt16LE,
		})
		if otoInitErr == nil {
			<-ready
			otoRate = rate
		}
	})
	if otoInitErr != nil {
		return nil, fmt.Errorf("opening audio device: %w", otoInitErr)
	}
	if rate != otoRate {
		return nil, fmt.Errorf("%w: %d Hz, device runs at %d Hz", ErrSampleRate, rate, otoRate)
	}
	return otoCtx, nil
}

// Player plays one file through oto, applying the volume and pan
// parameters and feeding a tap buffer.
type Player struct {
	file     *os.File
	src      source
	counter  *countingReader
	stage    *stage
	ctx      *oto.Context
	out      *oto.Player
	tree     *param.Tree
	tokens   []param.Token
	log      *slog.Logger
	duration time.Duration
	rate     int64 // source bytes per second
	paused   bool
	done     chan struct{}
	mu       sync.Mutex
	closed   bool
}

// New opens path and starts playback. Gain and balance follow the Volume
// and Pan parameters of tree; processed audio is written to tee.
func New(path string, tree *param.Tree, tee *tap.RingBuffer, logger *slog.Logger) (*Player, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	vol, err := tree.Lookup(Volume)
	if err != nil {
		return nil, err
	}
	pan, err := tree.Lookup(Pan)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	src, err := openSource(f)
	if err != nil {
		f.Close()
		return nil, err
	}
	channels := src.ChannelCount()
	if channels < 1 || channels > 2 {
		f.Close()
		return nil, fmt.Errorf("%w: %d channels", ErrUnsupportedFormat, channels)
	}
	ctx, err := audioContext(src.SampleRate())
	if err != nil {
		f.Close()
		return nil, err
	}

	rate := int64(src.SampleRate() * channels * 2)
	cr := &countingReader{reader: src}
	p := &Player{
		file:     f,
		src:      src,
		counter:  cr,
		stage:    newStage(cr, channels, tee, vol.Value(), pan.Value()),
		ctx:      ctx,
		tree:     tree,
		log:      logger.With("component", "player"),
		duration: time.Duration(float64(src.Length()) / float64(rate) * float64(time.Second)),
		rate:     rate,
		done:     make(chan struct{}),
	}
	p.tokens = append(p.tokens,
		tree.Observe(Volume, func(_ param.Address, v float64) { p.stage.setGain(v) }),
		tree.Observe(Pan, func(_ param.Address, v float64) { p.stage.setPan(v) }),
	)

	p.out = ctx.NewPlayer(p.stage)
	p.out.Play()
	p.log.Info("playback started", "path", path, "rate", src.SampleRate(), "channels", channels, "duration", p.duration)

	go p.monitor(p.done)
	return p, nil
}

func (p *Player) monitor(done chan struct{}) {
	for {
		p.mu.Lock()
		if p.closed || p.done != done {
			p.mu.Unlock()
			return
		}
		finished := !p.paused && p.counter.Pos() >= p.src.Length() && !p.out.IsPlaying()
		p.mu.Unlock()

		if finished {
			close(done)
			return
		}
		time.Sleep(200 * time.Millisecond)
	}
}

// Done closes when playback reaches the end of the file.
func (p *Player) Done() <-chan struct{} {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.done
}

// Restart rewinds to the start and plays again. Done returns a fresh channel
// afterwards.
func (p *Player) Restart() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	p.seekLocked(0)
	p.done = make(chan struct{})
	p.paused = false
	p.out.Play()
	go p.monitor(p.done)
}

// TogglePause toggles between playing and paused.
func (p *Player) TogglePause() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	if p.paused {
		p.out.Play()
	} else {
		p.out.Pause()
	}
	p.paused = !p.paused
}

// Paused reports whether playback is paused.
func (p *Player) Paused() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.paused
}

// Position returns how far playback has read into the file.
func (p *Player) Position() time.Duration {
	return time.Duration(float64(p.counter.Pos()) / float64(p.rate) * float64(time.Second))
}

// Duration returns the length of the file.
func (p *Player) Duration() time.Duration {
	return p.duration
}

// Seek moves playback by delta, clamped to the file.
func (p *Player) Seek(delta time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	target := p.counter.Pos() + int64(delta.Seconds()*float64(p.rate))
	p.seekLocked(target)
}

func (p *Player) seekLocked(target int64) {
	wasPlaying := !p.paused
	p.out.Pause()
	pos, err := p.src.Seek(target, io.SeekStart)
	if err != nil {
		p.log.Warn("seek failed", "target", target, "err", err)
		if wasPlaying {
			p.out.Play()
		}
		return
	}
	p.counter.SetPos(pos)
	p.stage.reset()
	// A new oto player drops whatever the old one had buffered.
	p.out = p.ctx.NewPlayer(p.stage)
	if wasPlaying {
		p.out.Play()
	}
}

// Close stops playback and releases the file and parameter observers.
func (p *Player) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	p.closed = true
	p.out.Pause()
	for _, tok := range p.tokens {
		p.tree.Remove(tok)
	}
	if err := p.file.Close(); err != nil {
		p.log.Warn("closing file", "err", err)
	}
}
