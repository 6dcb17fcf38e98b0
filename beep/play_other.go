//go:build !linux

package beep

import (
	"sync"
	"sync/atomic"

	"github.com/gen2brain/malgo"
)

var (
	malgoCtx  *malgo.AllocatedContext
	device    *malgo.Device
	deviceMu  sync.Mutex
	deviceErr error
	initOnce  sync.Once

	// Written by play, consumed by the device callback.
	playBuf atomic.Pointer[[]byte]
	playPos atomic.Uint32
)

func initDevice() {
	var err error
	malgoCtx, err = malgo.InitContext(nil, malgo.ContextConfig{}, nil)
	if err != nil {
		deviceErr = err
		return
	}

	config := malgo.DefaultDeviceConfig(malgo.Playback)
	config.Playback.Format = malgo.FormatS16
	config.Playback.Channels = 1
	config.SampleRate = sampleRate

	device, err = malgo.InitDevice(malgoCtx.Context, config, malgo.DeviceCallbacks{
		Data: dataCallback,
	})
	if err != nil {
		malgoCtx.Uninit()
		malgoCtx = nil
		deviceErr = err
	}
}

func dataCallback(pOutput, _ []byte, frameCount uint32) {
	want := frameCount * 2
	for i := range pOutput {
		pOutput[i] = 0
	}

	buf := playBuf.Load()
	if buf == nil {
		return
	}

	pos := playPos.Load()
	total := uint32(len(*buf))
	if pos >= total {
		playBuf.Store(nil)
		return
	}

	n := total - pos
	if n > want {
		n = want
	}
	copy(pOutput[:n], (*buf)[pos:pos+n])
	playPos.Store(pos + n)
}

func play(samples []int16) {
	initOnce.Do(initDevice)
	if deviceErr != nil || len(samples) == 0 {
		return
	}

	buf := make([]byte, len(samples)*2)
	for i, s := range samples {
		buf[i*2] = byte(s)
		buf[i*2+1] = byte(s >> 8)
	}

	deviceMu.Lock()
	defer deviceMu.Unlock()
	playPos.Store(0)
	playBuf.Store(&buf)
	if !device.IsStarted() {
		device.Start()
	}
}
