package theme

import (
	"os/exec"
	"runtime"
	"strings"
)

// DetectSystemMode probes the operating system's appearance preference.
// On macOS it reads the global AppleInterfaceStyle default, which is only
// set when dark mode is on. Everywhere else it reports light.
func DetectSystemMode() Mode {
	if runtime.GOOS != "darwin" {
		return ModeLight
	}
	out, err := exec.Command("defaults", "read", "-g", "AppleInterfaceStyle").Output()
	if err != nil {
		return ModeLight
	}
	if strings.EqualFold(strings.TrimSpace(string(out)), "dark") {
		return ModeDark
	}
	return ModeLight
}
