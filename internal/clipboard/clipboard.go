// Package clipboard copies text to the system clipboard.
package clipboard

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os/exec"
	"strings"
	"time"

	"github.com/atotto/clipboard"
)

// ErrUnavailable is returned when neither clipboard path accepted the text.
var ErrUnavailable = errors.New("clipboard unavailable")

const DefaultTimeout = 3 * time.Second

// Writer is the clipboard capability the session consumes.
type Writer interface {
	Write(ctx context.Context, text string) error
}

// Clipboard writes through atotto/clipboard and falls back to wl-copy when
// the primary path is unsupported or rejects the write.
type Clipboard struct {
	timeout  time.Duration
	primary  func(text string) error
	fallback func(ctx context.Context, text string) error
}

func New(timeout time.Duration) *Clipboard {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Clipboard{
		timeout:  timeout,
		primary:  writeSystem,
		fallback: wlCopy,
	}
}

func (c *Clipboard) Write(ctx context.Context, text string) error {
	perr := c.primary(text)
	if perr == nil {
		return nil
	}
	log.Printf("Clipboard: primary write failed, trying wl-copy: %v", perr)

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	ferr := c.fallback(ctx, text)
	if ferr == nil {
		return nil
	}
	return fmt.Errorf("%w: %v; %v", ErrUnavailable, perr, ferr)
}

func writeSystem(text string) error {
	if clipboard.Unsupported {
		return errors.New("no system clipboard utility found")
	}
	return clipboard.WriteAll(text)
}

func wlCopy(ctx context.Context, text string) error {
	cmd := exec.CommandContext(ctx, "wl-copy")
	cmd.Stdin = strings.NewReader(text)

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("wl-copy failed: %w", err)
	}
	return nil
}

// CheckAvailable reports whether any clipboard path can work on this host.
func CheckAvailable() error {
	if !clipboard.Unsupported {
		return nil
	}
	if _, err := exec.LookPath("wl-copy"); err != nil {
		return fmt.Errorf("wl-copy not found: %w (install wl-clipboard)", err)
	}
	return nil
}
