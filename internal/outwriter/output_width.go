package outwriter

import (
	"os"

	"github.com/huangsam/covpost/internal/contract"
	"golang.org/x/term"
)

// Table layout constants for the text output.
const (
	defaultTermWidth = 80 // CI logs and pipes have no terminal
	fixedColumnWidth = 70 // three coverage columns plus the label, borders and padding
	minPathWidth     = 15
	maxPathWidth     = 70
)

// GetMaxTablePathWidth returns how many columns the file path may use in text output,
// based on the --width override or the detected terminal width.
func GetMaxTablePathWidth(cfg *contract.Config) int {
	termWidth := cfg.Width
	if termWidth == 0 {
		detected, _, err := term.GetSize(int(os.Stdout.Fd()))
		if err != nil || detected <= 0 {
			termWidth = defaultTermWidth
		} else {
			termWidth = detected
		}
	}

	available := termWidth - fixedColumnWidth
	if available < minPathWidth {
		return minPathWidth
	}
	if available > maxPathWidth {
		return maxPathWidth
	}
	return available
}
