package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
	"snapsync/internal"
)

var formatFlag string

// PlanEntry is one row of the plan report.
type PlanEntry struct {
	File   string `json:"file"`
	Source string `json:"source,omitempty"`
	Taken  string `json:"taken,omitempty"`
	Target string `json:"target,omitempty"`
}

var planCmd = &cobra.Command{
	Use:   "plan <folder>",
	Short: "Show the inferred timestamp and new name of every media file",
	Long: `Infer timestamps for every photo and video in a folder and report where each
came from and what the file would be renamed to. Nothing is changed on disk.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		folder := args[0]
		if err := checkFolder(folder); err != nil {
			return err
		}
		if formatFlag != "table" && formatFlag != "json" {
			return fmt.Errorf("unknown format %q (want table or json)", formatFlag)
		}
		cmd.SilenceUsage = true

		conf, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		logger, err := openLogger(conf)
		if err != nil {
			return err
		}
		defer logger.Close()

		reader, closeReader := internal.NewMetadataReader(conf)
		defer closeReader()

		entries, err := buildPlan(folder, conf, internal.NewDateExtractor(reader, logger))
		if err != nil {
			return err
		}

		if formatFlag == "json" {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(entries)
		}
		printPlanTable(folder, entries)
		return nil
	},
}

// buildPlan infers every media file in folder and computes its target name
// without renaming anything.
func buildPlan(folder string, conf *internal.Config, extractor *internal.DateExtractor) ([]PlanEntry, error) {
	files, err := internal.ScanMediaFiles(folder, conf)
	if err != nil {
		return nil, err
	}
	renamer := internal.NewRenamer()

	entries := make([]PlanEntry, 0, len(files))
	for _, f := range files {
		entry := PlanEntry{File: f.Name}
		if guess, ok := extractor.Infer(f); ok {
			entry.Source = string(guess.Source)
			entry.Taken = guess.Time.Format(time.DateTime)
			entry.Target = fileName(renamer.Plan(f, guess.Time))
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func printPlanTable(folder string, entries []PlanEntry) {
	fmt.Println(headerStyle.Render(fmt.Sprintf("%d media files in %s", len(entries), folder)))
	if len(entries) == 0 {
		return
	}

	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		target := e.Target
		switch {
		case e.Source == "":
			target = "-"
		case target == e.File:
			target = "(unchanged)"
		}
		rows = append(rows, []string{e.File, e.Taken, e.Source, target})
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(dimStyle).
		Headers("FILE", "TAKEN", "SOURCE", "TARGET").
		Rows(rows...)
	fmt.Println(t.Render())
}

func init() {
	planCmd.Flags().StringVar(&formatFlag, "format", "table", "Output format: table, json")

	rootCmd.AddCommand(planCmd)
}
