package sim

import (
	"github.com/jonboulle/clockwork"
)

// IsPlaying reports whether the tick loop is running.
func (e *Engine) IsPlaying() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.playing
}

// Start begins ticking the selected candle every Tick.Period. Calling it
// while already playing does nothing.
func (e *Engine) Start() {
	e.mu.Lock()
	if e.playing {
		e.mu.Unlock()
		return
	}
	e.playing = true
	e.generation++
	gen := e.generation
	stop := make(chan struct{})
	e.stopCh = stop
	ticker := e.clock.NewTicker(e.cfg.Tick.Period)
	e.mu.Unlock()

	go e.loop(gen, ticker, stop)

	e.log.Debug("play started", "period", e.cfg.Tick.Period)
	e.observers.notify()
}

// Stop halts the tick loop. Once Stop returns no tick from the previous run
// will change the state, even one that already fired. Calling it while
// stopped does nothing.
//
// Stop does not wait for the loop goroutine, so it is safe to call from an
// observer.
func (e *Engine) Stop() {
	e.mu.Lock()
	if !e.playing {
		e.mu.Unlock()
		return
	}
	e.playing = false
	e.generation++
	close(e.stopCh)
	e.stopCh = nil
	e.mu.Unlock()

	e.log.Debug("play stopped")
	e.observers.notify()
}

// TogglePlay calls Stop when playing and Start otherwise.
func (e *Engine) TogglePlay() {
	if e.IsPlaying() {
		e.Stop()
	} else {
		e.Start()
	}
}

func (e *Engine) loop(gen uint64, ticker clockwork.Ticker, stop <-chan struct{}) {
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.Chan():
			if e.tick(gen) {
				e.observers.notify()
			}
		}
	}
}

// tick applies one random return to the selected candle. It commits only
// if the run identified by gen is still the current one.
func (e *Engine) tick(gen uint64) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.playing || e.generation != gen {
		return false
	}
	idx := e.selected
	if idx < 0 || idx >= len(e.candles) {
		return false
	}

	ret := e.rules.sampleReturn(e.src)
	e.rules.tick(&e.candles[idx], ret)
	return true
}
