//go:build darwin

package clipboard

import "context"

// commandKeystroker sends the copy shortcut by running an external tool.
type commandKeystroker struct {
	tool toolCommand
}

func (k commandKeystroker) SendCopy(ctx context.Context) error {
	_, err := k.tool.run(ctx)
	return err
}

// PlatformCapturer sends Cmd+C through System Events and reads the
// clipboard back.
func PlatformCapturer() (CapturerFunc, error) {
	tool, err := lookupTool(toolCommand{
		name: "osascript",
		args: []string{"-e", `tell application "System Events" to keystroke "c" using command down`},
	})
	if err != nil {
		return nil, err
	}
	return WithKeystrokes(commandKeystroker{tool: tool}), nil
}
