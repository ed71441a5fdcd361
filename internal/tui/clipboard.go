package tui

import (
	"fmt"
	"os/exec"
	"runtime"
	"strings"
)

// copyToClipboard pipes text into the platform clipboard tool.
func copyToClipboard(text string) error {
	cmd, err := clipboardCmd()
	if err != nil {
		return err
	}

	cmd.Stdin = strings.NewReader(text)
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("clipboard: %w", err)
	}
	return nil
}

func clipboardCmd() (*exec.Cmd, error) {
	if runtime.GOOS == "darwin" {
		return exec.Command("pbcopy"), nil
	}
	if runtime.GOOS != "linux" {
		return nil, fmt.Errorf("clipboard not supported on %s", runtime.GOOS)
	}

	for _, tool := range [][]string{
		{"xclip", "-selection", "clipboard"},
		{"xsel", "--clipboard", "--input"},
		{"wl-copy"},
	} {
		if _, err := exec.LookPath(tool[0]); err == nil {
			return exec.Command(tool[0], tool[1:]...), nil
		}
	}
	return nil, fmt.Errorf("no clipboard tool: install xclip, xsel or wl-clipboard")
}
