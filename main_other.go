//go:build !linux

package main

import (
	"runtime"

	"golang.design/x/hotkey/mainthread"
)

func init() {
	runtime.LockOSThread()
}

func main() {
	// System hotkey and tray APIs need the main OS thread.
	mainthread.Init(run)
}
