//go:build !darwin

package tray

func Init() <-chan struct{}                          { return quitCh }
func RefreshDevices(names []string, selected string) {}
func updateRecordingIcon(bool)                       {}
func updateWarningIcon(bool)                         {}
func updateTooltip(string)                           {}
func updateCopyLastTitle(string)                     {}
func disableDevices()                                {}
func enableDevices()                                 {}
