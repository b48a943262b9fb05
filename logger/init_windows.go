//go:build windows

package logger

import (
	"os"

	"golang.org/x/sys/windows"
)

// Consoles on Windows 10 and later render ANSI colours once virtual
// terminal processing is switched on.
func init() {
	h := windows.Handle(os.Stdout.Fd())
	var mode uint32
	if windows.GetConsoleMode(h, &mode) != nil {
		return
	}
	windowsColors = windows.SetConsoleMode(h, mode|windows.ENABLE_VIRTUAL_TERMINAL_PROCESSING) == nil
}
