package launcher

import (
	"fmt"
	"os/exec"
	"runtime"
)

// SystemOpener opens URLs with the platform's default handler. It satisfies
// both the quick-launch Navigator and the overlay's URL opener.
type SystemOpener struct{}

// NewSystemOpener returns an opener backed by xdg-open (or the platform
// equivalent).
func NewSystemOpener() *SystemOpener {
	return &SystemOpener{}
}

// Navigate opens the URL in the default browser.
func (o *SystemOpener) Navigate(url string) error {
	return o.open(url)
}

// OpenInNewTab opens the URL in the default browser.
func (o *SystemOpener) OpenInNewTab(url string) error {
	return o.open(url)
}

func (o *SystemOpener) open(url string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		cmd = exec.Command("xdg-open", url)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("open %s: %w", url, err)
	}
	// Detach; the handler owns the process from here.
	go func() { _ = cmd.Wait() }()
	return nil
}
