//go:build linux

package clipboard

import "os"

// PlatformCapturer reads the PRIMARY selection with wl-paste on Wayland and
// xclip or xsel on X11. A synthetic Ctrl+C is never sent: terminals turn it
// into SIGINT.
func PlatformCapturer() (CapturerFunc, error) {
	var candidates []toolCommand
	if os.Getenv("WAYLAND_DISPLAY") != "" {
		candidates = append(candidates, toolCommand{name: "wl-paste", args: []string{"--primary", "--no-newline"}})
	}
	if os.Getenv("DISPLAY") != "" {
		candidates = append(candidates,
			toolCommand{name: "xclip", args: []string{"-o", "-selection", "primary"}},
			toolCommand{name: "xsel", args: []string{"--output", "--primary"}},
		)
	}
	if len(candidates) == 0 {
		return nil, ErrUnsupported
	}

	tool, err := lookupTool(candidates...)
	if err != nil {
		return nil, err
	}
	return readPrimary(tool), nil
}
