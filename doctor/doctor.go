// Package doctor runs interactive system diagnostics: backend
// resolution and handshake, config, hotkey, audio devices, clipboard.
package doctor

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"wisp/audio"
	"wisp/clipboard"
	"wisp/config"
	"wisp/hotkey"
	"wisp/worker"
)

// Run executes the diagnostic checks and returns an exit code
// (0=all pass, 1=any fail).
func Run() int {
	resetTerminal()
	setupInterruptHandler()

	fmt.Println("wisp doctor - system diagnostics")
	fmt.Println("================================")

	cfg := checkConfig()
	allPass := cfg != nil
	if cfg == nil {
		def := config.Default()
		cfg = &def
	}

	if !checkBackend(cfg) {
		allPass = false
	}
	if !checkAudio() {
		allPass = false
	}
	if !checkHotkey(cfg.Hotkey) {
		allPass = false
	}
	if !checkClipboard() {
		allPass = false
	}

	fmt.Println()
	if allPass {
		fmt.Println("All checks passed!")
		return 0
	}
	fmt.Println("Some checks failed. See details above.")
	return 1
}

func checkConfig() *config.Config {
	fmt.Println()
	fmt.Println("[1/5] Configuration")

	path, err := config.Path()
	if err != nil {
		fmt.Printf("  FAIL: cannot resolve config dir: %v\n", err)
		return nil
	}
	fmt.Printf("  Config: %s\n", path)

	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("  FAIL: %v\n", err)
		return nil
	}
	fmt.Printf("  PASS: model=%s output=%s hotkey=%s\n", cfg.Model, cfg.OutputMode, cfg.Hotkey)
	return &cfg
}

func checkBackend(cfg *config.Config) bool {
	fmt.Println()
	fmt.Println("[2/5] Transcription backend")

	exe, err := os.Executable()
	if err == nil {
		for _, c := range worker.Candidates(filepath.Dir(exe)) {
			fmt.Printf("  Candidate: %s %s\n", c.Path, strings.Join(c.Args, " "))
		}
	}

	launch, err := worker.ResolveDefault()
	if err != nil {
		fmt.Printf("  FAIL: no backend executable found\n")
		return false
	}
	fmt.Printf("  Found: %s\n", launch.Path)

	fmt.Printf("  Spawning and loading %s (may take a while)...\n", cfg.Model)
	proc, err := worker.Spawn(launch)
	if err != nil {
		fmt.Printf("  FAIL: spawn: %v\n", err)
		return false
	}
	defer proc.Terminate()

	line, err := worker.Encode(worker.LoadModel{Model: cfg.Model})
	if err == nil {
		_, err = proc.Stdin.Write(line)
	}
	if err != nil {
		fmt.Printf("  FAIL: sending load_model: %v\n", err)
		return false
	}

	ready := make(chan bool, 1)
	go func() {
		scanner := bufio.NewScanner(proc.Stdout)
		for scanner.Scan() {
			for _, ev := range worker.DecodeLine(scanner.Bytes()) {
				if st, ok := ev.(worker.Status); ok && st.Name == "model_loaded" {
					ready <- true
					return
				}
				if e, ok := ev.(worker.TranscriptionError); ok {
					fmt.Printf("  backend error: %s\n", e.Message)
				}
			}
		}
		ready <- false
	}()

	select {
	case ok := <-ready:
		if !ok {
			fmt.Println("  FAIL: backend exited before model load")
			return false
		}
		fmt.Println("  PASS: backend loaded the model")
		return true
	case <-time.After(120 * time.Second):
		fmt.Println("  FAIL: timed out waiting for model load")
		return false
	}
}

func checkAudio() bool {
	fmt.Println()
	fmt.Println("[3/5] Audio devices")

	ctx, err := audio.NewContext()
	if err != nil {
		fmt.Printf("  FAIL: cannot connect to audio: %v\n", err)
		return false
	}
	defer ctx.Close()

	devices, err := ctx.Devices()
	if err != nil {
		fmt.Printf("  FAIL: cannot list devices: %v\n", err)
		return false
	}
	if len(devices) == 0 {
		fmt.Println("  FAIL: no capture devices found")
		return false
	}
	for _, d := range devices {
		mark := " "
		if d.Default {
			mark = "*"
		}
		fmt.Printf("  %s %d: %s\n", mark, d.Index, d.Name)
	}
	fmt.Printf("  PASS: %d capture device(s)\n", len(devices))
	return true
}

func checkHotkey(combo string) bool {
	fmt.Println()
	fmt.Println("[4/5] Hotkey detection")

	c, err := hotkey.ParseCombo(combo)
	if err != nil {
		fmt.Printf("  FAIL: bad hotkey %q: %v\n", combo, err)
		return false
	}
	if info, err := hotkey.Diagnose(); err != nil {
		fmt.Printf("  FAIL: %v\n", err)
		return false
	} else {
		fmt.Printf("  %s\n", info)
	}
	fmt.Printf("  Press %s...\n", c)

	hk := hotkey.New(c)
	if err := hk.Register(); err != nil {
		fmt.Printf("  FAIL: could not register hotkey: %v\n", err)
		return false
	}
	defer hk.Unregister()

	select {
	case <-hk.Keydown():
		fmt.Println("  PASS: hotkey detected")
		// Wait for keyup to avoid leaking the press into later checks.
		select {
		case <-hk.Keyup():
		case <-time.After(5 * time.Second):
		}
		resetTerminal()
		return true
	case <-time.After(10 * time.Second):
		fmt.Println("  FAIL: timeout waiting for hotkey")
		return false
	}
}

func checkClipboard() bool {
	fmt.Println()
	fmt.Println("[5/5] Clipboard and paste")

	if err := clipboard.Init(); err != nil {
		fmt.Printf("  Warning: paste init: %v\n", err)
	}

	testStr := "wisp-doctor-test"
	if err := clipboard.Copy(testStr); err != nil {
		fmt.Printf("  FAIL: clipboard copy failed: %v\n", err)
		return false
	}
	got, err := clipboard.Read()
	if err != nil {
		fmt.Printf("  FAIL: clipboard read failed: %v\n", err)
		return false
	}
	if got != testStr {
		fmt.Printf("  FAIL: clipboard round trip (got %q)\n", got)
		return false
	}

	msg, err := clipboard.Verify()
	if err != nil {
		fmt.Printf("  FAIL: %v\n", err)
		return false
	}
	fmt.Printf("  PASS: %s\n", msg)
	return true
}
