package tui

import (
	"fmt"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/generators"
	"github.com/gopxl/beep/speaker"
)

const (
	sampleRate = beep.SampleRate(44100)
	beepFreq   = 880
	beepLength = 80 * time.Millisecond
)

// sound plays short tones. A nil *sound is silent.
type sound struct{}

func newSound() (*sound, error) {
	if err := speaker.Init(sampleRate, sampleRate.N(time.Second/10)); err != nil {
		return nil, fmt.Errorf("failed to init speaker: %w", err)
	}
	return &sound{}, nil
}

func (s *sound) lineClear() {
	if s == nil {
		return
	}
	sine, err := generators.SineTone(sampleRate, beepFreq)
	if err != nil {
		return
	}
	speaker.Play(beep.Take(sampleRate.N(beepLength), sine))
}

func (s *sound) close() {
	if s == nil {
		return
	}
	speaker.Close()
}
