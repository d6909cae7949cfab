package graphic

import (
	"os"
	"strings"
)

// normalizeTerminal works around TERMINFO values that break termbox inside
// tmux. The returned function restores the environment.
func normalizeTerminal() (func(), error) {
	prevTERMINFO := os.Getenv("TERMINFO")

	if strings.HasPrefix(os.Getenv("TERM"), "tmux") {
		// Some combinations of TERMINFO with TERM in some Tmux value
		// will cause Termbox to fail.
		if err := os.Unsetenv("TERMINFO"); err != nil {
			return nil, err
		}
	}

	restore := func() {
		if err := os.Setenv("TERMINFO", prevTERMINFO); err != nil {
			panic(err)
		}
	}

	return restore, nil
}
