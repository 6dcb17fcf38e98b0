// Package beep plays short audio cues for recording and transcription
// state changes. Playback failures are silent; a missing sound device
// must never break dictation.
package beep

import (
	"math"
	"sync"
)

var disabled bool

func Disable() { disabled = true }

const sampleRate = 44100

var (
	startSamples []int16
	stopSamples  []int16
	doneSamples  []int16
	errorSamples []int16
	soundOnce    sync.Once
)

func initSound() {
	// Recording start: high short tick. Stop: a step down. Done: quick
	// rising pair. Error: low double-beep.
	startSamples = tone(1200, 0.06, 0.5, 60)
	stopSamples = tone(900, 0.08, 0.5, 40)
	doneSamples = append(tone(900, 0.06, 0.45, 50), tone(1200, 0.06, 0.45, 50)...)
	errorSamples = doubleTone(350, 0.08, 0.05, 0.6, 30)
}

// tone renders a mono sine burst with an exponential decay envelope.
func tone(freq, duration, volume, decay float64) []int16 {
	n := int(sampleRate * duration)
	samples := make([]int16, n)
	for i := 0; i < n; i++ {
		t := float64(i) / sampleRate
		envelope := math.Exp(-t * decay)
		samples[i] = int16(math.Sin(2*math.Pi*freq*t) * 32767 * volume * envelope)
	}
	return samples
}

func doubleTone(freq, beepDur, gapDur, volume, decay float64) []int16 {
	beep := tone(freq, beepDur, volume, decay)
	gap := make([]int16, int(sampleRate*gapDur))
	result := make([]int16, 0, len(beep)*2+len(gap))
	result = append(result, beep...)
	result = append(result, gap...)
	result = append(result, beep...)
	return result
}

func Init() {
	soundOnce.Do(initSound)
}

func playCue(samples []int16) {
	if disabled {
		return
	}
	soundOnce.Do(initSound)
	play(samples)
}

func PlayStart() { playCue(startSamples) }
func PlayStop()  { playCue(stopSamples) }
func PlayDone()  { playCue(doneSamples) }
func PlayError() { playCue(errorSamples) }
