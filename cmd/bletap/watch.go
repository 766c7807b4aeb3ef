package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/srg/bletap/internal/goble"
	"github.com/srg/bletap/pkg/blelog"
	"github.com/srg/bletap/pkg/config"
	"github.com/srg/bletap/pkg/device"
)

// watchCmd represents the watch command
var watchCmd = &cobra.Command{
	Use:   "watch [address...]",
	Short: "Print the BLE event log",
	Long: `Open the Bluetooth adapter, optionally scan and connect to the given
devices, and print every logged event until interrupted.

Without addresses the adapter is scanned for the configured scan timeout.`,
	Example: `  bletap watch --flags all AA:BB:CC:DD:EE:FF
  bletap watch --flags device-status,characteristic-notify --notify AA:BB:CC:DD:EE:FF
  bletap watch --scan 5s --format json`,
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().String("flags", "", `Categories to log, e.g. "device-status,characteristic-read" (see "bletap flags")`)
	watchCmd.Flags().Duration("scan", 0, "Scan for this long before connecting")
	watchCmd.Flags().Bool("allow-duplicates", false, "Report every advertisement while scanning")
	watchCmd.Flags().Bool("read", false, "Read every readable characteristic once after connecting")
	watchCmd.Flags().Bool("notify", false, "Enable notifications on every notifiable characteristic")
	watchCmd.Flags().StringP("format", "f", "", "Output format (text, json)")
	watchCmd.Flags().String("color", "", "Colorize output (auto, always, never)")
	watchCmd.Flags().String("trace", "", "Echo events to a trace side channel (off, log, stderr)")
	watchCmd.Flags().DurationP("duration", "d", 0, "Stop after this long (0 waits for Ctrl+C)")
}

// attribute is a connected characteristic the watch command can drive
type attribute interface {
	UUID() string
	CanRead() bool
	CanNotify() bool
	Read(ctx context.Context) ([]byte, error)
	EnableNotifications() error
}

// backend is the adapter the watch command observes and drives
type backend interface {
	device.Adapter
	Open() error
	Scan(ctx context.Context, allowDup bool) error
	Connect(ctx context.Context, address string, timeout time.Duration) ([]attribute, error)
	Close() error
}

type gobleBackend struct {
	*goble.Adapter
}

func (b gobleBackend) Connect(ctx context.Context, address string, timeout time.Duration) ([]attribute, error) {
	dev, err := b.Adapter.Connect(ctx, address, timeout)
	if err != nil {
		return nil, err
	}
	chars := dev.Characteristics()
	attrs := make([]attribute, len(chars))
	for i, ch := range chars {
		attrs[i] = ch
	}
	return attrs, nil
}

// newBackend creates the adapter (can be overridden in tests)
var newBackend = func(logger *logrus.Logger) backend {
	return gobleBackend{Adapter: goble.NewAdapter(logger)}
}

type watchOptions struct {
	addresses      []string
	flags          blelog.Flags
	scan           time.Duration
	allowDup       bool
	read           bool
	notify         bool
	duration       time.Duration
	connectTimeout time.Duration
	bufferSize     int
	tracer         blelog.Tracer
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := applyWatchFlags(cmd, cfg); err != nil {
		return err
	}

	logger, err := configureLogger(cmd, cfg)
	if err != nil {
		return err
	}

	flags, err := cfg.LogFlags()
	if err != nil {
		return err
	}

	printer, err := newPrinter(cmd.OutOrStdout(), cfg.Format, colorEnabled(cfg.Color, cmd.OutOrStdout()))
	if err != nil {
		return err
	}

	// All arguments validated - don't show usage on runtime errors
	cmd.SilenceUsage = true

	opts := watchOptions{
		addresses:      args,
		flags:          flags,
		connectTimeout: cfg.ConnectTimeout,
		bufferSize:     cfg.BufferSize,
	}
	opts.scan, _ = cmd.Flags().GetDuration("scan")
	if !cmd.Flags().Changed("scan") && len(args) == 0 {
		opts.scan = cfg.ScanTimeout
	}
	opts.allowDup, _ = cmd.Flags().GetBool("allow-duplicates")
	opts.read, _ = cmd.Flags().GetBool("read")
	opts.notify, _ = cmd.Flags().GetBool("notify")
	opts.duration, _ = cmd.Flags().GetDuration("duration")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	tracer, closeTracer := newTracer(ctx, cfg, cmd.ErrOrStderr(), logger)
	defer closeTracer()
	opts.tracer = tracer

	return watch(ctx, newBackend(logger), opts, printer, logger)
}

// applyWatchFlags layers explicitly set command flags over the config file
func applyWatchFlags(cmd *cobra.Command, cfg *config.Config) error {
	overrides := map[string]*string{
		"flags":  &cfg.Flags,
		"format": &cfg.Format,
		"color":  &cfg.Color,
		"trace":  &cfg.Trace,
	}
	for name, field := range overrides {
		if cmd.Flags().Changed(name) {
			*field, _ = cmd.Flags().GetString(name)
		}
	}
	return cfg.Validate()
}

// newTracer builds the side channel selected by cfg.Trace
func newTracer(ctx context.Context, cfg *config.Config, stderr io.Writer, logger *logrus.Logger) (blelog.Tracer, func()) {
	switch cfg.Trace {
	case "log":
		return blelog.NewLogTracer(logger), func() {}
	case "stderr":
		rt := blelog.NewRingTracer(stderr, cfg.TraceBuffer, logger)
		rt.Start(ctx)
		return rt, func() {
			rt.Close()
			if dropped := rt.Dropped(); dropped > 0 {
				logger.WithField("dropped", dropped).Warn("Trace lines dropped")
			}
		}
	default:
		return nil, func() {}
	}
}

// watch prints the event log of b while driving it through opts. The log
// outlives ctx until the adapter is closed, so teardown events are printed too.
func watch(ctx context.Context, b backend, opts watchOptions, printer Printer, logger *logrus.Logger) error {
	if opts.duration > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.duration)
		defer cancel()
	}

	logCtx, stopLog := context.WithCancel(context.Background())
	defer stopLog()

	sub := blelog.WhenActionOccurs(b,
		blelog.WithFlags(opts.flags),
		blelog.WithTracer(opts.tracer),
		blelog.WithLogger(logger),
	).Watch(logCtx, opts.bufferSize)

	printed := make(chan error, 1)
	go func() {
		var perr error
		for ev := range sub.C() {
			if perr == nil {
				perr = printer.Print(ev)
			}
		}
		printed <- perr
	}()

	err := b.Open()
	if err == nil {
		err = drive(ctx, b, opts, logger)
		if err == nil {
			select {
			case <-ctx.Done():
			case <-sub.Done():
			}
		}
		if cerr := b.Close(); cerr != nil {
			logger.WithField("error", cerr).Warn("Failed to close adapter")
		}
	}

	stopLog()
	<-sub.Done()
	perr := <-printed

	if dropped := sub.Dropped(); dropped > 0 {
		logger.WithFields(logrus.Fields{
			"written": sub.Written(),
			"dropped": dropped,
		}).Warn("Events dropped by slow output")
	}
	logger.WithFields(logrus.Fields{
		"session": sub.Session().ID(),
		"written": sub.Written(),
	}).Debug("BLE log session finished")

	switch {
	case err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded):
		return err
	case sub.Err() != nil:
		return fmt.Errorf("%w: %w", ErrStreamFailed, sub.Err())
	case perr != nil:
		return fmt.Errorf("failed to print events: %w", perr)
	}
	return nil
}

// drive scans and connects as requested
func drive(ctx context.Context, b backend, opts watchOptions, logger *logrus.Logger) error {
	if opts.scan > 0 {
		scanCtx, cancel := context.WithTimeout(ctx, opts.scan)
		err := b.Scan(scanCtx, opts.allowDup)
		cancel()
		if err != nil {
			return fmt.Errorf("scan failed: %w", err)
		}
	}

	for _, address := range opts.addresses {
		attrs, err := b.Connect(ctx, address, opts.connectTimeout)
		if err != nil {
			return err
		}

		for _, attr := range attrs {
			if opts.read && attr.CanRead() {
				if _, err := attr.Read(ctx); err != nil {
					logger.WithFields(logrus.Fields{
						"address":   address,
						"char_uuid": attr.UUID(),
						"error":     err,
					}).Warn("Characteristic read failed")
				}
			}
			if opts.notify && attr.CanNotify() {
				if err := attr.EnableNotifications(); err != nil {
					logger.WithFields(logrus.Fields{
						"address":   address,
						"char_uuid": attr.UUID(),
						"error":     err,
					}).Warn("Failed to enable notifications")
				}
			}
		}
	}
	return nil
}
