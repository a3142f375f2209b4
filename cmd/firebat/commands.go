package main

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/parkrevil/firebat-sub000/internal/output"
	"github.com/parkrevil/firebat-sub000/internal/service/analysis"
	"github.com/parkrevil/firebat-sub000/pkg/analyzer/duplicates"
	"github.com/parkrevil/firebat-sub000/pkg/analyzer/graph"
)

// exitFindings is returned by --fail-on-* flags when findings were reported.
const exitFindings = 2

func depsCmd() *cli.Command {
	return &cli.Command{
		Name:      "deps",
		Aliases:   []string{"graph"},
		Usage:     "Build the import graph and detect import cycles",
		ArgsUsage: "[path...]",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:  "max-circuits",
				Usage: "Maximum cycles enumerated per strongly connected component (default from config)",
			},
			&cli.IntFlag{
				Name:  "top",
				Usage: "Length of the fan-in and fan-out rankings (default from config)",
			},
			&cli.StringFlag{
				Name:  "direction",
				Value: string(graph.DirectionLR),
				Usage: "Mermaid graph direction: TD, LR, BT, RL",
			},
			&cli.BoolFlag{
				Name:  "fail-on-cycles",
				Usage: "Exit with status 2 when import cycles are found",
			},
		},
		Action: runDepsCmd,
	}
}

func runDepsCmd(c *cli.Context) error {
	paths := getPaths(c)
	svc, closeStore, err := newService(c, paths)
	if err != nil {
		return err
	}
	defer closeStore()

	spinner := newSpinner(c, "Analyzing imports...")
	result, err := svc.Dependencies(c.Context, paths, analysis.DependencyOptions{
		MaxCircuits: c.Int("max-circuits"),
		TopN:        c.Int("top"),
		OnProgress:  spinner.Func(),
	})
	if err != nil {
		spinner.FinishError(err)
		return err
	}
	spinner.FinishSuccess()

	view := output.NewDependencyView(result)
	view.Mermaid.Direction = graph.MermaidDirection(c.String("direction"))
	if err := render(c, view); err != nil {
		return err
	}

	if c.Bool("fail-on-cycles") && len(result.Cycles) > 0 {
		return cli.Exit(fmt.Sprintf("%d import cycles found", len(result.Cycles)), exitFindings)
	}
	return nil
}

func couplingCmd() *cli.Command {
	return &cli.Command{
		Name:      "coupling",
		Usage:     "Score module coupling with instability, abstractness and distance",
		ArgsUsage: "[path...]",
		Flags: []cli.Flag{
			&cli.Float64Flag{
				Name:  "max-distance",
				Usage: "Distance from the main sequence above which a module is reported (default from config)",
			},
			&cli.IntFlag{
				Name:  "min-score",
				Usage: "Exit with status 2 when a hotspot scores at least this much",
			},
		},
		Action: runCouplingCmd,
	}
}

func runCouplingCmd(c *cli.Context) error {
	paths := getPaths(c)
	svc, closeStore, err := newService(c, paths)
	if err != nil {
		return err
	}
	defer closeStore()

	opts := analysis.CouplingOptions{}
	if d := c.Float64("max-distance"); d > 0 {
		thresholds := svc.Config().Thresholds
		thresholds.OffMainSequenceDistance = d
		opts.Thresholds = &thresholds
	}

	spinner := newSpinner(c, "Analyzing coupling...")
	opts.Dependencies.OnProgress = spinner.Func()
	result, err := svc.Coupling(c.Context, paths, opts)
	if err != nil {
		spinner.FinishError(err)
		return err
	}
	spinner.FinishSuccess()

	if err := render(c, &output.CouplingView{Report: result}); err != nil {
		return err
	}

	if minScore := c.Int("min-score"); minScore > 0 && result.Summary.MaxScore >= minScore {
		return cli.Exit(fmt.Sprintf("coupling hotspot scored %d", result.Summary.MaxScore), exitFindings)
	}
	return nil
}

func duplicatesCmd() *cli.Command {
	return &cli.Command{
		Name:      "duplicates",
		Aliases:   []string{"dup", "clones"},
		Usage:     "Find duplicated code by structural fingerprint",
		ArgsUsage: "[path...]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "mode",
				Usage: "Fingerprint mode: exact or shape (default from config)",
			},
			&cli.IntFlag{
				Name:  "min-size",
				Usage: "Minimum candidate size in syntax nodes (default from config)",
			},
			&cli.BoolFlag{
				Name:  "normalize-literals",
				Usage: "In shape mode also ignore literal values",
			},
			&cli.BoolFlag{
				Name:  "fail-on-duplicates",
				Usage: "Exit with status 2 when duplicates are found",
			},
		},
		Action: runDuplicatesCmd,
	}
}

func runDuplicatesCmd(c *cli.Context) error {
	mode := duplicates.Mode(c.String("mode"))
	if mode != "" && !mode.Valid() {
		return fmt.Errorf("invalid --mode %q: use exact or shape", c.String("mode"))
	}

	paths := getPaths(c)
	svc, closeStore, err := newService(c, paths)
	if err != nil {
		return err
	}
	defer closeStore()

	spinner := newSpinner(c, "Detecting duplicates...")
	result, err := svc.Duplicates(c.Context, paths, analysis.DuplicatesOptions{
		Mode:              mode,
		MinSize:           c.Int("min-size"),
		NormalizeLiterals: c.Bool("normalize-literals"),
		OnProgress:        spinner.Func(),
	})
	if err != nil {
		spinner.FinishError(err)
		return err
	}
	spinner.FinishSuccess()

	if err := render(c, &output.DuplicatesView{Report: result}); err != nil {
		return err
	}

	if c.Bool("fail-on-duplicates") && len(result.Groups) > 0 {
		return cli.Exit(fmt.Sprintf("%d duplicate groups found", len(result.Groups)), exitFindings)
	}
	return nil
}

func analyzeCmd() *cli.Command {
	return &cli.Command{
		Name:      "analyze",
		Aliases:   []string{"all"},
		Usage:     "Run the selected detectors in one pass",
		ArgsUsage: "[path...]",
		Flags: []cli.Flag{
			&cli.StringSliceFlag{
				Name:    "detector",
				Aliases: []string{"d"},
				Usage:   "Detector to run: dependencies, coupling, duplicates (repeatable, default from config)",
			},
		},
		Action: runAnalyzeCmd,
	}
}

func runAnalyzeCmd(c *cli.Context) error {
	detectors, err := analysis.ParseDetectors(c.StringSlice("detector"))
	if err != nil {
		return err
	}

	paths := getPaths(c)
	svc, closeStore, err := newService(c, paths)
	if err != nil {
		return err
	}
	defer closeStore()

	spinner := newSpinner(c, "Analyzing...")
	report, err := svc.Analyze(c.Context, paths, detectors, analysis.AnalyzeOptions{
		OnProgress: spinner.Func(),
	})
	if err != nil {
		spinner.FinishError(err)
		return err
	}
	spinner.FinishSuccess()

	return render(c, output.NewReportView(report))
}
