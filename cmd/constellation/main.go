package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"time"

	"github.com/noriah/constellation"
	"github.com/noriah/constellation/graphic"
	"github.com/noriah/constellation/input"
	"github.com/noriah/constellation/output/speaker"
	"github.com/noriah/constellation/processor"
	"github.com/noriah/constellation/shape"

	_ "github.com/noriah/constellation/input/all"

	"github.com/integrii/flaggy"
	"github.com/sirupsen/logrus"
)

// AppName is the app name
const AppName = "constellation"

// AppDesc is the app description
const AppDesc = "Audio reactive point cloud for the terminal"

// AppSite is the app website
const AppSite = "https://github.com/noriah/constellation"

// ListenLatency bounds the speaker queue when --listen is set.
const ListenLatency = 150 * time.Millisecond

var version = "unknown"

var log = logrus.New()

func main() {
	cfg := newZeroConfig()
	cfg.backend = input.DefaultBackend()

	if doFlags(&cfg) {
		return
	}

	chk(cfg.validate(), "invalid config")
	chk(setupLogger(&cfg), "failed to open log file")

	tune, err := loadTuning(cfg.tuning)
	chk(err, "invalid tuning")

	appCfg := cfg.appConfig(tune)
	appCfg.Logger = log

	if cfg.raw {
		appCfg.Output = NewRawOutput(os.Stdout, cfg.rawBins, cfg.frameRate)
	} else {
		display := graphic.New(graphic.Config{
			FrameRate: cfg.frameRate,
			Zoom:      cfg.zoom,
			Playing:   appCfg.Playing,
		})

		appCfg.Output = display
		appCfg.SetupFunc = display.Init
		appCfg.StartFunc = func(ctx context.Context, p *processor.Processor) (context.Context, error) {
			display.SetController(p)
			return display.Start(ctx), nil
		}
		appCfg.CleanupFunc = display.Close
	}

	if cfg.listen {
		spk, err := speaker.New(cfg.sampleRate, ListenLatency)
		chk(err, "failed to open speaker")
		defer spk.Close()

		appCfg.Capture.Monitor = spk
	}

	log.WithFields(logrus.Fields{
		"backend": cfg.backend,
		"device":  cfg.device,
		"shape":   appCfg.Cloud.Shape,
		"points":  appCfg.Cloud.PointCount,
		"fps":     appCfg.FrameRate,
	}).Debug("starting")

	// Root Context
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	chk(constellation.Run(ctx, &appCfg), "failed to run constellation")
}

// setupLogger points the logger at --log. Without it the terminal view
// discards log output and raw mode logs to stderr.
func setupLogger(cfg *config) error {
	log.SetFormatter(&logrus.TextFormatter{
		DisableColors:    cfg.logFile != "",
		FullTimestamp:    true,
		QuoteEmptyFields: true,
	})

	log.SetLevel(logrus.InfoLevel)
	if cfg.verbose {
		log.SetLevel(logrus.DebugLevel)
	}

	switch {
	case cfg.logFile != "":
		f, err := os.OpenFile(cfg.logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return err
		}
		log.SetOutput(f)

	case cfg.raw:
		log.SetOutput(os.Stderr)

	default:
		log.SetOutput(io.Discard)
	}

	return nil
}

func doFlags(cfg *config) bool {

	parser := flaggy.NewParser(AppName)
	parser.Description = AppDesc
	parser.AdditionalHelpPrepend = AppSite
	parser.Version = version

	listBackendsCmd := flaggy.Subcommand{
		Name:                 "list-backends",
		ShortName:            "lb",
		Description:          "list all supported backends",
		AdditionalHelpAppend: "\nuse the full name after the '-'",
	}

	parser.AttachSubcommand(&listBackendsCmd, 1)

	listDevicesCmd := flaggy.Subcommand{
		Name:                 "list-devices",
		ShortName:            "ld",
		Description:          "list all devices for a backend",
		AdditionalHelpAppend: "\nuse the full name after the '-'",
	}

	parser.AttachSubcommand(&listDevicesCmd, 1)

	parser.String(&cfg.backend, "b", "backend", "backend name")
	parser.String(&cfg.device, "d", "device", "device name")
	parser.String(&cfg.file, "F", "file", "play a wav or mp3 file instead of a device")
	parser.Float64(&cfg.sampleRate, "r", "rate", "sample rate")
	parser.Int(&cfg.channelCount, "ch", "channels", "channel count (1 or 2)")
	parser.Int(&cfg.frameRate, "f", "fps", "frame rate")
	parser.String(&cfg.shapeName, "s", "shape", fmt.Sprintf("initial shape %v", shape.Kinds()))
	parser.Int(&cfg.points, "n", "points", "point count (0 keeps the tuning value)")
	parser.Int(&cfg.neighbours, "k", "neighbours", "neighbours per point (0 keeps the tuning value)")
	parser.String(&cfg.tuning, "c", "config", "toml tuning file")
	parser.Bool(&cfg.raw, "", "raw", "print numbers instead of drawing")
	parser.Int(&cfg.rawBins, "", "raw-bins", "number of spectrum columns in raw mode")
	parser.Bool(&cfg.listen, "", "listen", "play the captured audio")
	parser.Bool(&cfg.paused, "p", "paused", "start paused")
	parser.Bool(&cfg.noSwarm, "", "no-swarm", "disable the background particles")
	parser.Int64(&cfg.seed, "", "seed", "random seed (0 for the clock)")
	parser.Float64(&cfg.zoom, "z", "zoom", "initial zoom")
	parser.String(&cfg.logFile, "l", "log", "log file")
	parser.Bool(&cfg.verbose, "v", "verbose", "debug logging")

	chk(parser.Parse(), "failed to parse arguments")

	switch {
	case listBackendsCmd.Used:
		for _, backend := range input.Backends {
			fmt.Printf("- %s\n", backend.Name)
		}

		return true

	case listDevicesCmd.Used:
		backend, err := input.InitBackend(cfg.backend)
		chk(err, "failed to init backend")

		devices, err := backend.Devices()
		chk(err, "failed to get devices")

		// We don't really need the default device to be indicated.
		defaultDevice, _ := backend.DefaultDevice()

		fmt.Printf("all devices for %q backend. '*' marks default\n", cfg.backend)

		for idx := range devices {
			star := ' '
			if defaultDevice != nil && devices[idx].String() == defaultDevice.String() {
				star = '*'
			}

			fmt.Printf("- %v %c\n", devices[idx], star)
		}

		return true
	}

	return false
}

func chk(err error, wrap string) {
	if err != nil {
		logrus.WithError(err).Fatal(wrap)
	}
}
