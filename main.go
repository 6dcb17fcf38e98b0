package main

import (
	"flag"
	"fmt"
	"net/http"
	_ "net/http/pprof"
	"os"
	"path/filepath"
	"runtime/debug"
	"slices"
	"sync"
	"time"

	"wisp/audio"
	"wisp/beep"
	"wisp/clipboard"
	"wisp/config"
	"wisp/doctor"
	"wisp/hotkey"
	"wisp/log"
	"wisp/shutdown"
	"wisp/tray"
	"wisp/worker"
)

var version = "dev"

var (
	mgr *worker.Manager

	trayRecordChan = make(chan struct{}, 1)
	trayStopChan   = make(chan struct{}, 1)

	shutdownOnce sync.Once
)

func gracefulShutdown() {
	shutdownOnce.Do(func() {
		if mgr != nil {
			mgr.Shutdown()
		}
		log.SessionEnd(transcriptCount())
		log.Close()
		tray.Quit()
		if tuiProgram != nil {
			tuiProgram.Quit()
		}
		os.Exit(0)
	})
}

func run() {
	autoPasteFlag := flag.Bool("autopaste", false, "Paste transcribed text into the focused window after copy")
	setupFlag := flag.Bool("setup", false, "Select microphone device and save it to config")
	listFlag := flag.Bool("list", false, "List capture devices and exit")
	deviceFlag := flag.String("device", "", "Use named microphone device")
	modelFlag := flag.String("model", "", "Override transcription model")
	hotkeyFlag := flag.String("hotkey", "", "Override hotkey combo (e.g. alt+space)")
	outputFlag := flag.String("output", "", "Override output mode: clipboard or type")
	versionFlag := flag.Bool("version", false, "Print version and exit")
	doctorFlag := flag.Bool("doctor", false, "Run system diagnostics and exit")
	crashFlag := flag.Bool("crash", false, "Trigger synthetic panic for testing crash logging")
	logPathFlag := flag.String("logpath", "", "log directory path (default: OS-specific location, use ./ for current dir)")
	profileFlag := flag.String("profile", "", "Enable pprof profiling server (e.g., :6060 or localhost:6060)")
	testFlag := flag.Bool("test", false, "Test mode (headless, stdin-driven, fake backend)")
	hybridFlag := flag.Bool("hybrid", false, "Enable hybrid tap+hold recording mode")
	longPressFlag := flag.Duration("longpress", 350*time.Millisecond, "Long-press threshold for PTT vs tap (e.g., 350ms)")
	stallFlag := flag.Duration("stall", worker.DefaultStall, "Give up on a transcription after this long")
	tuiFlag := flag.Bool("tui", true, "Run with terminal UI")
	flag.Parse()

	logPath, err := log.ResolveDir(*logPathFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to resolve log directory: %v\n", err)
		os.Exit(1)
	}
	log.SetDir(logPath)

	if err := log.EnsureDir(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not create log directory: %v\n", err)
	}

	crashPath := filepath.Join(log.Dir(), "crash_log.txt")
	crashFile, err := os.OpenFile(crashPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err == nil {
		fmt.Fprintf(crashFile, "\n=== Session %s [pid=%d] ===\n", time.Now().Format("2006-01-02 15:04:05"), os.Getpid())
		debug.SetCrashOutput(crashFile, debug.CrashOptions{})
	}

	if *profileFlag != "" {
		go func() {
			fmt.Fprintf(os.Stderr, "pprof server listening on http://%s/debug/pprof/\n", *profileFlag)
			if err := http.ListenAndServe(*profileFlag, nil); err != nil {
				fmt.Fprintf(os.Stderr, "pprof server error: %v\n", err)
			}
		}()
	}

	if *crashFlag {
		panic("TEST CRASH: synthetic panic to verify crash logging")
	}

	if *versionFlag {
		fmt.Printf("wisp %s\n", version)
		os.Exit(0)
	}

	if *doctorFlag {
		os.Exit(doctor.Run())
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v (using defaults)\n", err)
		cfg = config.Default()
	}
	if *modelFlag != "" {
		cfg.Model = *modelFlag
	}
	if *hotkeyFlag != "" {
		cfg.Hotkey = *hotkeyFlag
	}
	if *outputFlag != "" {
		if *outputFlag != "clipboard" && *outputFlag != "type" {
			fmt.Printf("Error: unknown output mode %q (use clipboard or type)\n", *outputFlag)
			os.Exit(1)
		}
		cfg.OutputMode = *outputFlag
	}

	if *listFlag {
		os.Exit(listDevices())
	}

	if *setupFlag {
		if err := setupDevice(&cfg); err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
	} else if *deviceFlag != "" {
		if err := selectDeviceByName(&cfg, *deviceFlag); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: %v (using default device)\n", err)
		}
	}

	combo, err := hotkey.ParseCombo(cfg.Hotkey)
	if err != nil {
		fmt.Printf("Error: bad hotkey %q: %v\n", cfg.Hotkey, err)
		os.Exit(1)
	}

	if err := log.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not init logging: %v\n", err)
	}
	log.SessionStart(cfg.Model, cfg.OutputMode)

	notify := newUINotifier(*autoPasteFlag)

	if *testFlag {
		runTestMode(cfg, notify, *stallFlag)
		return
	}

	launch, err := worker.ResolveDefault()
	if err != nil {
		log.Errorf("backend resolution failed: %v", err)
		fmt.Println("Error: no transcription backend found.")
		fmt.Println("Run 'wisp -doctor' to see the searched locations.")
		os.Exit(1)
	}
	log.Infof("backend: %s", launch.Path)

	mgr = worker.New(cfg, notify, worker.Options{
		Spawn: func() (*worker.Proc, error) { return worker.Spawn(launch) },
		Stall: *stallFlag,
	})
	mgr.Start()

	if !*tuiFlag {
		tuiReadyOnce.Do(func() { close(tuiReady) })
	} else {
		tuiMu.Lock()
		tuiProgram = NewTUIProgram()
		tuiMu.Unlock()

		go func() {
			if _, err := tuiProgram.Run(); err != nil {
				log.Errorf("TUI error: %v", err)
				os.Exit(1)
			}
			gracefulShutdown()
		}()

		<-tuiReady
	}

	if *autoPasteFlag {
		if err := clipboard.Init(); err != nil {
			log.Warnf("paste init failed: %v", err)
		}
	}

	tray.OnCopyLast(func() {
		if text := lastTranscript(); text != "" {
			clipboard.Copy(text)
		}
	})
	tray.OnRecord(
		func() {
			select {
			case trayRecordChan <- struct{}{}:
			default:
			}
		},
		func() {
			select {
			case trayStopChan <- struct{}{}:
			default:
			}
		},
	)
	tray.OnRestartBackend(func() {
		log.Info("backend_restart_requested")
		mgr.Restart()
	})
	tray.SetAutoPaste(*autoPasteFlag)

	audioCtx, err := audio.NewContext()
	if err != nil {
		log.Warnf("audio context init failed: %v", err)
	} else {
		defer audioCtx.Close()
		wireTrayDevices(audioCtx, &cfg)
	}

	trayQuit := tray.Init()
	tray.OnAutoPaste(func(on bool) { notify.SetAutoPaste(on) })

	sigChan := make(chan os.Signal, 1)
	shutdown.Notify(sigChan)
	go func() {
		select {
		case <-sigChan:
		case <-trayQuit:
		}
		gracefulShutdown()
	}()

	go beep.Init()

	hk := hotkey.New(combo)
	if err := hk.Register(); err != nil {
		log.Errorf("hotkey register error: %v", err)
		fmt.Printf("Error registering hotkey %s: %v\n", combo, err)
		os.Exit(1)
	}
	defer hk.Unregister()

	tuiSend(DeviceLineMsg{Text: deviceLineText(&cfg)})
	tuiSend(ModeLineMsg{Text: modeLineText(&cfg)})

	if *hybridFlag {
		hy := hotkey.NewHybrid(hk, *longPressFlag)
		for {
			select {
			case <-hy.Start():
				log.Info("hotkey_start")
				mgr.Press()
			case <-hy.Stop():
				log.Info("hotkey_stop")
				mgr.Release()
			case <-trayRecordChan:
				log.Info("tray_record_start")
				mgr.Press()
			case <-trayStopChan:
				mgr.Release()
			}
		}
	}

	for {
		select {
		case <-hk.Keydown():
			log.Info("hotkey_down")
			mgr.Press()
		case <-hk.Keyup():
			log.Info("hotkey_up")
			mgr.Release()
		case <-trayRecordChan:
			log.Info("tray_record_start")
			mgr.Press()
		case <-trayStopChan:
			mgr.Release()
		}
	}
}

func listDevices() int {
	ctx, err := audio.NewContext()
	if err != nil {
		fmt.Printf("Error initializing audio: %v\n", err)
		return 1
	}
	defer ctx.Close()

	devices, err := ctx.Devices()
	if err != nil {
		fmt.Printf("Error listing devices: %v\n", err)
		return 1
	}
	for _, d := range devices {
		mark := " "
		if d.Default {
			mark = "*"
		}
		suffix := ""
		if audio.IsBluetooth(d.Name) {
			suffix = " (BT)"
		}
		fmt.Printf("%s %d: %s%s\n", mark, d.Index, d.Name, suffix)
	}
	return 0
}

// setupDevice runs the interactive picker and persists the choice.
func setupDevice(cfg *config.Config) error {
	ctx, err := audio.NewContext()
	if err != nil {
		return fmt.Errorf("initializing audio: %w", err)
	}
	defer ctx.Close()

	dev, err := audio.SelectDevice(ctx)
	if err != nil {
		return err
	}
	idx := dev.Index
	cfg.DeviceID = &idx
	if err := cfg.Save(); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}
	fmt.Printf("Saved device: %s\n", dev.Name)
	return nil
}

func selectDeviceByName(cfg *config.Config, name string) error {
	ctx, err := audio.NewContext()
	if err != nil {
		return fmt.Errorf("initializing audio: %w", err)
	}
	defer ctx.Close()

	devices, err := ctx.Devices()
	if err != nil {
		return fmt.Errorf("listing devices: %w", err)
	}
	for _, d := range devices {
		if d.Name == name {
			idx := d.Index
			cfg.DeviceID = &idx
			return nil
		}
	}
	return fmt.Errorf("device not found: %s", name)
}

// wireTrayDevices publishes the device list to the tray and keeps it
// fresh while the app runs.
func wireTrayDevices(ctx audio.Context, cfg *config.Config) {
	selected := func(devices []audio.DeviceInfo) string {
		if cfg.DeviceID == nil {
			return ""
		}
		for _, d := range devices {
			if d.Index == *cfg.DeviceID {
				return d.Name
			}
		}
		return ""
	}

	devices, err := ctx.Devices()
	if err != nil || len(devices) == 0 {
		return
	}
	names := make([]string, len(devices))
	for i := range devices {
		names[i] = devices[i].Name
	}

	onSwitch := func(name string) {
		devices, err := ctx.Devices()
		if err != nil {
			log.Warnf("device enumeration failed: %v", err)
			return
		}
		for _, d := range devices {
			if d.Name == name {
				idx := d.Index
				newCfg := mgr.Config()
				newCfg.DeviceID = &idx
				mgr.SetConfig(newCfg)
				cfg.DeviceID = &idx
				if err := newCfg.Save(); err != nil {
					log.Warnf("saving config: %v", err)
				}
				log.Info("device_switch: " + name)
				tuiSend(DeviceLineMsg{Text: deviceLineText(&newCfg)})
				return
			}
		}
		log.Warnf("device not found: %s", name)
	}

	tray.SetDevices(names, selected(devices), onSwitch)

	// Hotplug: refresh the tray list when the device set changes.
	go func() {
		last := names
		ticker := time.NewTicker(3 * time.Second)
		defer ticker.Stop()
		for range ticker.C {
			devices, err := ctx.Devices()
			if err != nil {
				continue
			}
			cur := make([]string, len(devices))
			for i := range devices {
				cur[i] = devices[i].Name
			}
			if slices.Equal(last, cur) {
				continue
			}
			last = cur
			tray.RefreshDevices(cur, selected(devices))
		}
	}()
}

func deviceLineText(cfg *config.Config) string {
	if cfg.DeviceID == nil {
		return "mic: system default"
	}
	return fmt.Sprintf("mic: device %d", *cfg.DeviceID)
}

func modeLineText(cfg *config.Config) string {
	return fmt.Sprintf("[%s | %s | %s]", cfg.Model, cfg.OutputMode, cfg.Hotkey)
}
