// Package all imports all backends implemented by the input package.
package all

import (
	_ "github.com/noriah/constellation/input/ffmpeg"
	_ "github.com/noriah/constellation/input/file"
	_ "github.com/noriah/constellation/input/parec"
	_ "github.com/noriah/constellation/input/stdinput"
)
