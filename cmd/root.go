package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"
	"snapsync/internal"
)

var (
	jobsFlag        int
	exiftoolFlag    string
	dryRunFlag      bool
	quietFlag       bool
	journalFlag     string
	metricsFileFlag string
	logFlag         string
	verboseFlag     bool
)

var rootCmd = &cobra.Command{
	Use:   "snapsync <folder>",
	Short: "Rename photos and videos by capture time and stamp it into their metadata",
	Long: `snapsync infers when each photo or video in a folder was taken, from its
file name or, failing that, from EXIF and filesystem times. Files are renamed to
IMG-YYYYMMDD-HHMMSS / VID-YYYYMMDD-HHMMSS and the timestamp is written into their
metadata with exiftool.`,
	Args: cobra.ExactArgs(1),
	RunE: runFolder,
}

func Execute() error {
	return rootCmd.Execute()
}

func runFolder(cmd *cobra.Command, args []string) error {
	folder := args[0]
	if err := checkFolder(folder); err != nil {
		return err
	}
	cmd.SilenceUsage = true

	conf, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if !dryRunFlag {
		if err := internal.CheckExiftool(conf.ExifTool); err != nil {
			return err
		}
	}

	logger, err := openLogger(conf)
	if err != nil {
		return err
	}
	defer logger.Close()

	reader, closeReader := internal.NewMetadataReader(conf)
	defer closeReader()

	errStats := internal.NewErrorStats()
	observers := []internal.Observer{errStats}

	var metrics *internal.Metrics
	if metricsFileFlag != "" {
		metrics = internal.NewMetrics()
		observers = append(observers, metrics)
	}

	var journal *internal.Journal
	if journalFlag != "" && !dryRunFlag {
		journal, err = internal.OpenJournal(journalFlag, folder)
		if err != nil {
			return err
		}
		defer journal.Close()
		if err := journal.LogStart(); err != nil {
			logger.Warn("journal: %v", err)
		}
		observers = append(observers, journal)
	}

	if dryRunFlag {
		fmt.Println(warnStyle.Render("Dry run mode: no files will be renamed or tagged"))
		observers = append(observers, internal.ObserverFunc(printPlanned))
	}

	var sink internal.ProgressSink = &internal.NopSink{}
	if !quietFlag && !dryRunFlag {
		sink = newBarSink(os.Stderr, "Processing")
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()
	go func() {
		<-ctx.Done()
		sink.Close()
	}()

	orch := internal.NewOrchestrator(conf, internal.Options{
		Extractor: internal.NewDateExtractor(reader, logger),
		Renamer:   internal.NewRenamer(),
		Writer:    internal.NewExiftoolWriter(conf.ExifTool),
		Limit:     conf.Jobs,
		Sink:      sink,
		Logger:    logger,
		Observers: observers,
		DryRun:    dryRunFlag,
	})

	summary, err := orch.Process(ctx, folder)
	if err != nil {
		return fmt.Errorf("failed to list %s: %w", folder, err)
	}

	if journal != nil {
		if err := journal.LogEnd(summary.Total); err != nil {
			logger.Warn("journal: %v", err)
		}
	}
	if metrics != nil {
		if err := metrics.WriteTextfile(metricsFileFlag); err != nil {
			logger.Error("metrics: %v", err)
			fmt.Fprintln(os.Stderr, errorStyle.Render(fmt.Sprintf("Failed to write metrics: %v", err)))
		}
	}

	printSummary(summary)
	if errStats.Total > 0 {
		fmt.Fprint(os.Stderr, errStats.GenerateReport())
	}
	logger.Info("done: %s", summary)
	return nil
}

func checkFolder(folder string) error {
	info, err := os.Stat(folder)
	if err != nil || !info.IsDir() {
		return fmt.Errorf("folder does not exist or is not a directory: %s", folder)
	}
	return nil
}

// loadConfig reads the config file and applies the command-line overrides
// that were explicitly set.
func loadConfig(cmd *cobra.Command) (*internal.Config, error) {
	conf, err := internal.LoadConfig()
	if err != nil {
		return nil, err
	}
	flags := cmd.Flags()
	if flags.Changed("jobs") {
		conf.Jobs = jobsFlag
	}
	if flags.Changed("exiftool") {
		conf.ExifTool = exiftoolFlag
	}
	if flags.Changed("log") {
		conf.LogFile = logFlag
	}
	return conf, nil
}

// openLogger logs to the configured file, or to stderr with --verbose, or
// nowhere.
func openLogger(conf *internal.Config) (*internal.Logger, error) {
	switch {
	case conf.LogFile != "":
		return internal.NewLogger(conf.LogFile, verboseFlag)
	case verboseFlag:
		return internal.NewWriterLogger(os.Stderr, true), nil
	default:
		return nil, nil
	}
}

func printPlanned(r internal.Result) {
	if r.Outcome == internal.OutcomeUntouched {
		fmt.Printf("  %s %s\n", r.Candidate.Name, dimStyle.Render("(no timestamp)"))
		return
	}
	if r.Candidate.Path == r.Original {
		return
	}
	fmt.Printf("  %s -> %s\n", fileName(r.Original), infoStyle.Render(r.Candidate.Name))
}

func printSummary(s internal.Summary) {
	style := successStyle
	if s.Outcomes[internal.OutcomeFailed] > 0 || s.Outcomes[internal.OutcomeRenamedOnly] > 0 {
		style = warnStyle
	}
	fmt.Println(style.Render(s.String()))
	fmt.Println(dimStyle.Render(fmt.Sprintf("Finished in %s", s.Elapsed.Round(time.Millisecond))))
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&exiftoolFlag, "exiftool", "exiftool", "Path to the exiftool executable")
	flags.StringVar(&logFlag, "log", "", "Append a log to this file")
	flags.BoolVarP(&verboseFlag, "verbose", "v", false, "Log every file decision")

	rootCmd.Flags().IntVarP(&jobsFlag, "jobs", "j", 0, "Concurrent exiftool processes (0 = CPUs - 2)")
	rootCmd.Flags().BoolVar(&dryRunFlag, "dry-run", false, "Show planned renames without touching files")
	rootCmd.Flags().BoolVarP(&quietFlag, "quiet", "q", false, "Hide the progress bar")
	rootCmd.Flags().StringVar(&journalFlag, "journal", "", "Append a JSON line per file to this journal")
	rootCmd.Flags().StringVar(&metricsFileFlag, "metrics-file", "", "Write Prometheus textfile metrics here after the run")
}
