package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"
	"snapsync/internal"
)

var settleFlag time.Duration

var watchCmd = &cobra.Command{
	Use:   "watch <folder>",
	Short: "Rename and tag media files as they appear in a folder",
	Long: `Watch a folder and process every photo or video created or moved into it
after the watch starts. Files already in the folder are left alone; run
snapsync <folder> for those.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		folder := args[0]
		if err := checkFolder(folder); err != nil {
			return err
		}
		cmd.SilenceUsage = true

		conf, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		if err := internal.CheckExiftool(conf.ExifTool); err != nil {
			return err
		}

		logger, err := openLogger(conf)
		if err != nil {
			return err
		}
		defer logger.Close()

		reader, closeReader := internal.NewMetadataReader(conf)
		defer closeReader()

		w, err := internal.NewWatcher(folder, conf)
		if err != nil {
			return fmt.Errorf("failed to watch %s: %w", folder, err)
		}
		defer w.Close()

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		fmt.Println(headerStyle.Render(fmt.Sprintf("Watching %s (Ctrl-C to stop)", folder)))
		logger.Info("watching %s", folder)

		fw := &folderWatch{
			settle: settleFlag,
			logger: logger,
			run: func(ctx context.Context, files []internal.Candidate, obs internal.Observer) internal.Summary {
				orch := internal.NewOrchestrator(conf, internal.Options{
					Extractor: internal.NewDateExtractor(reader, logger),
					Renamer:   internal.NewRenamer(),
					Writer:    internal.NewExiftoolWriter(conf.ExifTool),
					Limit:     conf.Jobs,
					Logger:    logger,
					Observers: []internal.Observer{obs},
				})
				return orch.ProcessCandidates(ctx, files)
			},
		}
		fw.loop(ctx, w.Events(), w.Errors())
		return nil
	},
}

// folderWatch batches watcher events until each file has been quiet for
// settle, then hands the batch to run. Files that run itself produced are
// ignored once.
type folderWatch struct {
	settle time.Duration
	logger *internal.Logger
	run    func(context.Context, []internal.Candidate, internal.Observer) internal.Summary

	pending  map[string]pendingFile
	produced map[string]bool
}

type pendingFile struct {
	candidate internal.Candidate
	seen      time.Time
}

func (fw *folderWatch) loop(ctx context.Context, events <-chan internal.Candidate, errs <-chan error) {
	fw.pending = make(map[string]pendingFile)
	fw.produced = make(map[string]bool)

	tick := fw.settle / 2
	if tick <= 0 {
		tick = 10 * time.Millisecond
	}
	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case c, ok := <-events:
			if !ok {
				return
			}
			if fw.produced[c.Path] {
				delete(fw.produced, c.Path)
				continue
			}
			fw.pending[c.Path] = pendingFile{candidate: c, seen: time.Now()}
		case err, ok := <-errs:
			if ok {
				fw.logger.Warn("watcher: %v", err)
			}
		case now := <-ticker.C:
			fw.flush(ctx, now)
		}
	}
}

func (fw *folderWatch) flush(ctx context.Context, now time.Time) {
	var batch []internal.Candidate
	for path, p := range fw.pending {
		if now.Sub(p.seen) < fw.settle {
			continue
		}
		batch = append(batch, p.candidate)
		delete(fw.pending, path)
	}
	if len(batch) == 0 {
		return
	}

	summary := fw.run(ctx, batch, internal.ObserverFunc(func(r internal.Result) {
		if r.Candidate.Path != r.Original {
			fw.produced[r.Candidate.Path] = true
			fmt.Printf("  %s -> %s\n", fileName(r.Original), infoStyle.Render(r.Candidate.Name))
		}
		if r.Outcome == internal.OutcomeRenamedOnly || r.Outcome == internal.OutcomeFailed {
			fmt.Println(errorStyle.Render(fmt.Sprintf("  %s: %s", r.Candidate.Name, r.Outcome)))
		}
	}))
	fw.logger.Info("batch: %s", summary)
}

func init() {
	watchCmd.Flags().DurationVar(&settleFlag, "settle", 2*time.Second, "Wait this long after a file appears before processing it")
	watchCmd.Flags().IntVarP(&jobsFlag, "jobs", "j", 0, "Concurrent exiftool processes (0 = CPUs - 2)")

	rootCmd.AddCommand(watchCmd)
}
