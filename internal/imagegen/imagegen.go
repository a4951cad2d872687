// Package imagegen asks an image plugin for a manifestation when the field
// reaches the divine aura, and keeps the result.
package imagegen

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync"
	"sync/atomic"

	"github.com/ayusman/hanuman/internal/plugin"
	"github.com/ayusman/hanuman/internal/shape"
	"github.com/ayusman/hanuman/internal/store"
)

// Action is the plugin action that produces an image.
const Action = "generate"

// ErrBusy is returned when a request is already in flight.
var ErrBusy = errors.New("image generation already in progress")

// ErrEmptyImage is returned when the plugin succeeds without image bytes.
var ErrEmptyImage = errors.New("plugin returned no image")

// Saver persists generated images.
type Saver interface {
	Create(m *store.Manifestation) error
}

// Options selects the plugin and what it is asked for.
type Options struct {
	Plugin string
	Prompt string
	Model  string
}

type params struct {
	Prompt string `json:"prompt"`
	Model  string `json:"model,omitempty"`
}

type result struct {
	MimeType string `json:"mime_type"`
	Image    string `json:"image"`
}

// Manifester runs at most one generation at a time.
type Manifester struct {
	plugins  *plugin.Manager
	executor *plugin.Executor
	saver    Saver
	opts     Options

	busy    atomic.Bool
	wg      sync.WaitGroup
	ctx     context.Context
	cancel  context.CancelFunc
	mu      sync.RWMutex
	onReady func(*store.Manifestation)
}

// New returns a Manifester. saver may be nil, in which case images are only
// handed to the OnReady callback.
func New(plugins *plugin.Manager, executor *plugin.Executor, saver Saver, opts Options) *Manifester {
	ctx, cancel := context.WithCancel(context.Background())
	return &Manifester{
		plugins:  plugins,
		executor: executor,
		saver:    saver,
		opts:     opts,
		ctx:      ctx,
		cancel:   cancel,
	}
}

// OnReady sets the callback that receives each finished manifestation.
func (m *Manifester) OnReady(fn func(*store.Manifestation)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onReady = fn
}

// Busy reports whether a request is in flight.
func (m *Manifester) Busy() bool {
	return m.busy.Load()
}

// Notify starts a background generation when id is the divine aura and no
// request is in flight. It never blocks and reports whether one started.
func (m *Manifester) Notify(id shape.ID) bool {
	if id != shape.DivineAura {
		return false
	}
	if !m.busy.CompareAndSwap(false, true) {
		return false
	}

	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		defer m.busy.Store(false)

		log.Printf("Requesting manifestation from plugin %s", m.opts.Plugin)
		mf, err := m.generate(m.ctx, id)
		if err != nil {
			if !errors.Is(err, context.Canceled) {
				log.Printf("Manifestation failed: %v", err)
			}
			return
		}
		log.Printf("Manifestation %s ready (%d bytes)", mf.ID, mf.Size)
		m.ready(mf)
	}()
	return true
}

// Generate runs one request synchronously for the divine aura.
func (m *Manifester) Generate(ctx context.Context) (*store.Manifestation, error) {
	if !m.busy.CompareAndSwap(false, true) {
		return nil, ErrBusy
	}
	defer m.busy.Store(false)

	mf, err := m.generate(ctx, shape.DivineAura)
	if err != nil {
		return nil, err
	}
	m.ready(mf)
	return mf, nil
}

// Wait blocks until background requests finish.
func (m *Manifester) Wait() {
	m.wg.Wait()
}

// Close cancels any request in flight and waits for it.
func (m *Manifester) Close() {
	m.cancel()
	m.wg.Wait()
}

func (m *Manifester) ready(mf *store.Manifestation) {
	m.mu.RLock()
	fn := m.onReady
	m.mu.RUnlock()
	if fn != nil {
		fn(mf)
	}
}

func (m *Manifester) generate(ctx context.Context, id shape.ID) (*store.Manifestation, error) {
	p, err := m.plugins.Get(m.opts.Plugin)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", m.opts.Plugin, err)
	}

	raw, err := json.Marshal(params{Prompt: m.opts.Prompt, Model: m.opts.Model})
	if err != nil {
		return nil, err
	}

	resp, err := m.executor.Execute(ctx, p, &plugin.Request{
		Action: Action,
		Shape:  id.String(),
		Params: raw,
	})
	if err != nil {
		return nil, err
	}
	if err := resp.Err(); err != nil {
		return nil, err
	}

	var res result
	if err := json.Unmarshal(resp.Data, &res); err != nil {
		return nil, fmt.Errorf("failed to parse image result: %w", err)
	}
	image, err := base64.StdEncoding.DecodeString(res.Image)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	if len(image) == 0 {
		return nil, ErrEmptyImage
	}
	if res.MimeType == "" {
		res.MimeType = "image/png"
	}

	mf := &store.Manifestation{
		Shape:    id.String(),
		Prompt:   m.opts.Prompt,
		MimeType: res.MimeType,
		Image:    image,
		Size:     len(image),
	}
	if m.saver != nil {
		if err := m.saver.Create(mf); err != nil {
			return nil, fmt.Errorf("failed to save manifestation: %w", err)
		}
	}
	return mf, nil
}
