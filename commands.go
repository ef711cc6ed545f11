package main

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// enumValue is a string flag restricted to a fixed set of values
type enumValue struct {
	value   string
	allowed []string
}

var _ pflag.Value = (*enumValue)(nil)

func newEnumValue(def string, allowed ...string) *enumValue {
	return &enumValue{value: def, allowed: allowed}
}

func (e *enumValue) String() string { return e.value }

func (e *enumValue) Set(s string) error {
	s = strings.ToLower(s)
	for _, a := range e.allowed {
		if s == a {
			e.value = s
			return nil
		}
	}
	return fmt.Errorf("must be one of %s", strings.Join(e.allowed, ", "))
}

func (e *enumValue) Type() string { return "string" }

const defaultWatchSeed = 42

func seconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}

type captureFlags struct {
	format   *enumValue
	prefix   string
	region   string
	compress int
	backend  *enumValue
	display  int
}

func (f *captureFlags) register(fs *pflag.FlagSet) {
	f.format = newEnumValue("png", "png", "jpg", "jpeg", "bmp")
	f.backend = newEnumValue(backendRobotgo, backendRobotgo, backendDisplay)

	fs.VarP(f.format, "format", "f", "image format: png, jpg, jpeg, bmp")
	fs.StringVarP(&f.prefix, "prefix", "p", "screenshot", "prefix for screenshot filenames")
	fs.IntVarP(&f.compress, "compress", "c", 0, "compression level 0-9, PNG only")
	fs.Var(f.backend, "backend", "capture backend: robotgo, display")
	fs.IntVar(&f.display, "display", 0, "display index for the display backend")
}

func (f *captureFlags) registerRegion(fs *pflag.FlagSet) {
	fs.StringVarP(&f.region, "region", "r", "", "region to capture: left,top,width,height")
}

// an invalid region is reported and the full screen is used instead
func (f *captureFlags) parsedRegion() Region {
	if f.region == "" {
		return Region{}
	}
	region, err := ParseRegion(f.region)
	if err != nil {
		slog.Warn("error parsing region, using full screen instead", "region", f.region, "err", err)
		return Region{}
	}
	return region
}

func (f *captureFlags) newTaker(capturer Capturer, region Region, interval time.Duration) (*Taker, error) {
	return NewTaker(capturer, TakerOptions{
		Directory: directory,
		Interval:  interval,
		Format:    f.format.String(),
		Prefix:    f.prefix,
		Region:    region,
		Compress:  f.compress,
	})
}

type detectorFlags struct {
	provider *enumValue
	apiKey   string
	seed     int64
	seeded   bool // seed applies even when --seed is not given
}

func (f *detectorFlags) register(fs *pflag.FlagSet, def string) {
	f.provider = newEnumValue(def, providerSimulated, providerGemini, providerOpenAI)
	fs.Var(f.provider, "provider", "food detector: simulated, gemini, openai")
	fs.StringVarP(&f.apiKey, "api-key", "k", "", "API key for the remote model (default from GEMINI_API_KEY / OPENAI_API_KEY)")
	fs.Int64VarP(&f.seed, "seed", "s", 0, "random seed for reproducible simulated results")
}

// like register, but the simulated detector is seeded with seed unless
// --seed overrides it
func (f *detectorFlags) registerSeeded(fs *pflag.FlagSet, def string, seed int64) {
	f.register(fs, def)
	f.seed = seed
	f.seeded = true
	fs.Lookup("seed").DefValue = strconv.FormatInt(seed, 10)
}

func (f *detectorFlags) build(cmd *cobra.Command) (Detector, error) {
	provider := f.provider.String()
	if !cmd.Flags().Changed("provider") && config.Provider != "" {
		provider = config.Provider
	}

	var seed *int64
	if f.seeded || cmd.Flags().Changed("seed") {
		seed = &f.seed
	}

	apiKey, err := resolveAPIKey(provider, f.apiKey)
	if err != nil {
		return nil, err
	}
	return newDetector(provider, apiKey, seed)
}

func openStoreIf(enabled bool) (*ResultStore, error) {
	if !enabled {
		return nil, nil
	}
	if err := os.MkdirAll(directory, 0o755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}
	return OpenResultStore(storePath(directory))
}

func closeStore(store *ResultStore) {
	if store == nil {
		return
	}
	if err := store.Close(); err != nil {
		slog.Error("closing result store", "err", err)
	}
}

func newCaptureCmd() *cobra.Command {
	var (
		cf       captureFlags
		interval float64
	)

	cmd := &cobra.Command{
		Use:   "capture",
		Short: "Capture screenshots at a regular interval",
		RunE: func(cmd *cobra.Command, args []string) error {
			if interval <= 0 {
				return fmt.Errorf("interval must be positive, got %g", interval)
			}

			capturer, err := newCapturer(cf.backend.String(), cf.display)
			if err != nil {
				return err
			}

			logFile, err := teeLogToFile(logLevel, strings.TrimRight(directory, `/\`)+".log")
			if err != nil {
				return err
			}
			defer logFile.Close()

			taker, err := cf.newTaker(capturer, cf.parsedRegion(), seconds(interval))
			if err != nil {
				return err
			}

			fmt.Println("Press Ctrl+C to stop.")
			return taker.Run(cmd.Context(), nil)
		},
	}

	cf.register(cmd.Flags())
	cf.registerRegion(cmd.Flags())
	cmd.Flags().Float64VarP(&interval, "interval", "i", 10, "time between screenshots in seconds")
	return cmd
}

func newAnalyzeCmd() *cobra.Command {
	var (
		df      detectorFlags
		workers int
		delay   time.Duration
		save    bool
	)

	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Analyze saved screenshots for food and calories",
		RunE: func(cmd *cobra.Command, args []string) error {
			detector, err := df.build(cmd)
			if err != nil {
				return err
			}

			analyzer, err := NewAnalyzer(directory, detector)
			if err != nil {
				return err
			}
			analyzer.Workers = workers
			analyzer.Delay = delay

			results, err := analyzer.AnalyzeAll(cmd.Context())
			if err != nil {
				return err
			}

			store, err := openStoreIf(save && len(results) > 0)
			if err != nil {
				return err
			}
			defer closeStore(store)
			if store != nil {
				if err := store.Save(results...); err != nil {
					return fmt.Errorf("saving results: %w", err)
				}
			}

			PrintReport(os.Stdout, detector.Name(), results)
			return nil
		},
	}

	df.register(cmd.Flags(), providerSimulated)
	cmd.Flags().IntVar(&workers, "workers", 4, "parallel workers for the simulated detector")
	cmd.Flags().DurationVar(&delay, "delay", time.Second, "pause between remote model calls")
	cmd.Flags().BoolVar(&save, "save", false, "persist results to the result store")
	return cmd
}

func newMonitorCmd() *cobra.Command {
	var (
		cf         captureFlags
		df         detectorFlags
		interval   float64
		screenHalf string
		notify     bool
		save       bool
	)

	cmd := &cobra.Command{
		Use:   "monitor",
		Short: "Capture half of the screen and analyze each shot right away",
		RunE: func(cmd *cobra.Command, args []string) error {
			detector, err := df.build(cmd)
			if err != nil {
				return err
			}

			half := strings.ToLower(screenHalf)
			if half != "left" && half != "right" {
				slog.Warn("invalid screen half, using left", "screen_half", screenHalf)
				half = "left"
			}

			capturer, err := newCapturer(cf.backend.String(), cf.display)
			if err != nil {
				return err
			}
			bounds, err := capturer.Bounds()
			if err != nil {
				return err
			}
			region, err := HalfRegion(bounds, half)
			if err != nil {
				return err
			}

			taker, err := cf.newTaker(capturer, region, seconds(interval))
			if err != nil {
				return err
			}

			if !cmd.Flags().Changed("notify") {
				notify = config.Notify
			}

			store, err := openStoreIf(save)
			if err != nil {
				return err
			}
			defer closeStore(store)

			fmt.Printf("Starting Calorie Monitor with %s\n", detector.Name())
			fmt.Printf("Capturing the %s half of the screen\n", half)

			m := &Monitor{
				Taker:    taker,
				Detector: detector,
				Notifier: newNotifier(notify),
				History:  &History{},
				Store:    store,
				Out:      os.Stdout,
			}
			return m.Run(cmd.Context(), seconds(interval))
		},
	}

	cf.register(cmd.Flags())
	df.register(cmd.Flags(), providerGemini)
	cmd.Flags().Float64VarP(&interval, "interval", "i", 10, "time between screenshots in seconds")
	cmd.Flags().StringVar(&screenHalf, "screen-half", "left", "which half of the screen to capture: left, right")
	cmd.Flags().BoolVar(&notify, "notify", true, "show desktop notifications")
	cmd.Flags().BoolVar(&save, "save", false, "persist results to the result store")
	return cmd
}

func newWatchCmd() *cobra.Command {
	var (
		cf               captureFlags
		df               detectorFlags
		interval         float64
		analysisInterval float64
		save             bool
	)

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Capture screenshots and analyze the directory periodically",
		RunE: func(cmd *cobra.Command, args []string) error {
			if interval <= 0 {
				return fmt.Errorf("interval must be positive, got %g", interval)
			}
			if analysisInterval <= 0 {
				return fmt.Errorf("analysis interval must be positive, got %g", analysisInterval)
			}

			detector, err := df.build(cmd)
			if err != nil {
				return err
			}

			capturer, err := newCapturer(cf.backend.String(), cf.display)
			if err != nil {
				return err
			}
			taker, err := cf.newTaker(capturer, cf.parsedRegion(), seconds(interval))
			if err != nil {
				return err
			}

			analyzer, err := NewAnalyzer(directory, detector)
			if err != nil {
				return err
			}

			store, err := openStoreIf(save)
			if err != nil {
				return err
			}
			defer closeStore(store)

			w := &Watcher{
				Taker:            taker,
				Analyzer:         analyzer,
				History:          &History{},
				Store:            store,
				AnalysisInterval: seconds(analysisInterval),
				Out:              os.Stdout,
			}
			return w.Run(cmd.Context())
		},
	}

	cf.register(cmd.Flags())
	cf.registerRegion(cmd.Flags())
	df.registerSeeded(cmd.Flags(), providerSimulated, defaultWatchSeed)
	cmd.Flags().Float64VarP(&interval, "interval", "i", 10, "time between screenshots in seconds")
	cmd.Flags().Float64VarP(&analysisInterval, "analysis-interval", "a", 60, "time between calorie analyses in seconds")
	cmd.Flags().BoolVar(&save, "save", false, "persist results to the result store")
	return cmd
}

func newReportCmd() *cobra.Command {
	var provider string

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Print a calorie report from stored results",
		RunE: func(cmd *cobra.Command, args []string) error {
			path := storePath(directory)
			if _, err := os.Stat(path); err != nil {
				return fmt.Errorf("no result store at %s, run analyze with --save first", path)
			}

			store, err := OpenResultStore(path)
			if err != nil {
				return err
			}
			defer closeStore(store)

			results, err := store.List()
			if err != nil {
				return err
			}

			if provider != "" {
				filtered := results[:0]
				for _, r := range results {
					if r.Provider == provider {
						filtered = append(filtered, r)
					}
				}
				results = filtered
			}

			title := provider
			if title == "" {
				title = commonProvider(results)
			}
			PrintReport(os.Stdout, title, results)
			return nil
		},
	}

	cmd.Flags().StringVar(&provider, "provider", "", "only include results from this detector")
	return cmd
}

// builds the monitor shared by serve and tray
func newInteractiveMonitor(cmd *cobra.Command, cf *captureFlags, df *detectorFlags, save bool) (*Monitor, func(), error) {
	detector, err := df.build(cmd)
	if err != nil {
		return nil, nil, err
	}

	capturer, err := newCapturer(cf.backend.String(), cf.display)
	if err != nil {
		return nil, nil, err
	}
	taker, err := cf.newTaker(capturer, cf.parsedRegion(), 0)
	if err != nil {
		return nil, nil, err
	}

	store, err := openStoreIf(save)
	if err != nil {
		return nil, nil, err
	}

	m := &Monitor{
		Taker:    taker,
		Detector: detector,
		Notifier: newNotifier(config.Notify),
		History:  &History{},
		Store:    store,
		Out:      os.Stdout,
	}
	return m, func() { closeStore(store) }, nil
}

func newServeCmd() *cobra.Command {
	var (
		cf       captureFlags
		df       detectorFlags
		listen   string
		interval float64
		save     bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the local HTTP control API",
		RunE: func(cmd *cobra.Command, args []string) error {
			m, cleanup, err := newInteractiveMonitor(cmd, &cf, &df, save)
			if err != nil {
				return err
			}
			defer cleanup()

			if !cmd.Flags().Changed("listen") && config.ListenAddress != "" {
				listen = config.ListenAddress
			}

			return serve(cmd.Context(), listen, m, seconds(interval))
		},
	}

	cf.register(cmd.Flags())
	cf.registerRegion(cmd.Flags())
	df.register(cmd.Flags(), providerSimulated)
	cmd.Flags().StringVar(&listen, "listen", defaultListenAddress, "address for the HTTP API")
	cmd.Flags().Float64VarP(&interval, "interval", "i", 0, "also capture and analyze every N seconds, 0 for on demand only")
	cmd.Flags().BoolVar(&save, "save", false, "persist results to the result store")
	return cmd
}

func newTrayCmd() *cobra.Command {
	var (
		cf       captureFlags
		df       detectorFlags
		interval float64
		save     bool
	)

	cmd := &cobra.Command{
		Use:   "tray",
		Short: "Run from the system tray with a global capture hotkey",
		RunE: func(cmd *cobra.Command, args []string) error {
			if interval <= 0 {
				return fmt.Errorf("interval must be positive, got %g", interval)
			}

			m, cleanup, err := newInteractiveMonitor(cmd, &cf, &df, save)
			if err != nil {
				return err
			}
			defer cleanup()

			runTray(cmd.Context(), m, seconds(interval))
			return nil
		},
	}

	cf.register(cmd.Flags())
	cf.registerRegion(cmd.Flags())
	df.register(cmd.Flags(), providerSimulated)
	cmd.Flags().Float64VarP(&interval, "interval", "i", 60, "time between automatic screenshots in seconds")
	cmd.Flags().BoolVar(&save, "save", false, "persist results to the result store")
	return cmd
}
