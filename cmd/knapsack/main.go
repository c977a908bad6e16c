package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/alecthomas/kingpin/v2"
	"go.uber.org/zap"

	"github.com/eugenenazirov/knapsack-solver/internal/instance"
	"github.com/eugenenazirov/knapsack-solver/internal/knapsack"
	"github.com/eugenenazirov/knapsack-solver/internal/logging"
)

func main() {
	logLevel := "warn"
	if level := strings.TrimSpace(os.Getenv("LOG_LEVEL")); level != "" {
		logLevel = level
	}
	logger, err := logging.New(logLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = logger.Sync()
	}()

	if err := run(os.Args[1:], os.Stdout, logger); err != nil {
		logger.Error("knapsack failed", zap.Error(err))
		_ = logger.Sync()
		os.Exit(1)
	}
}

type solveOptions struct {
	file      string
	workers   int
	timeout   time.Duration
	noPrune   bool
	showItems bool
	jsonOut   bool
}

func run(args []string, stdout io.Writer, logger *zap.Logger) error {
	app := kingpin.New("knapsack", "Exact 0/1 knapsack solver for instance files")
	app.Terminate(nil)
	app.Writer(stdout)

	var opts solveOptions
	solveCmd := app.Command("solve", "Solve an instance file and print the best total value").Default()
	solveCmd.Arg("file", "Instance file: '<count> <capacity>' header, then '<value> <weight>' per line").Required().ExistingFileVar(&opts.file)
	solveCmd.Flag("workers", "Goroutines used for the search").Default("1").IntVar(&opts.workers)
	solveCmd.Flag("timeout", "Abort the search after this long (0 disables)").Default("0s").DurationVar(&opts.timeout)
	solveCmd.Flag("no-prune", "Disable bound pruning (exhaustive search)").BoolVar(&opts.noPrune)
	solveCmd.Flag("show-items", "Also print the input positions of the selected items").BoolVar(&opts.showItems)
	solveCmd.Flag("json", "Print the result as JSON").BoolVar(&opts.jsonOut)

	var checkFile string
	checkCmd := app.Command("check", "Validate an instance file without solving it")
	checkCmd.Arg("file", "Instance file").Required().ExistingFileVar(&checkFile)

	cmd, err := app.Parse(args)
	if err != nil {
		return err
	}

	switch cmd {
	case checkCmd.FullCommand():
		return check(checkFile, stdout)
	default:
		return solve(opts, stdout, logger)
	}
}

func check(path string, stdout io.Writer) error {
	problem, err := instance.ParseFile(path)
	if err != nil {
		return err
	}
	if _, err := knapsack.BuildCatalog(problem.Items); err != nil {
		return err
	}
	_, err = fmt.Fprintf(stdout, "ok: %d items, capacity %d\n", len(problem.Items), problem.Capacity)
	return err
}

func solve(opts solveOptions, stdout io.Writer, logger *zap.Logger) error {
	problem, err := instance.ParseFile(opts.file)
	if err != nil {
		return err
	}

	solverOpts := []knapsack.Option{knapsack.WithWorkers(opts.workers)}
	if opts.noPrune {
		solverOpts = append(solverOpts, knapsack.WithoutPruning())
	}

	ctx := context.Background()
	if opts.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.timeout)
		defer cancel()
	}

	start := time.Now()
	result, err := knapsack.New(solverOpts...).Solve(ctx, problem)
	logger.Debug("search finished",
		zap.String("file", opts.file),
		zap.Int("items", len(problem.Items)),
		zap.Int64("nodes_visited", result.Stats.NodesVisited),
		zap.Int64("nodes_pruned", result.Stats.NodesPruned),
		zap.Duration("duration", time.Since(start)),
	)
	if err != nil {
		if result.Feasible {
			logger.Warn("returning best value found before interruption", zap.Int("value", result.Value))
		}
		return err
	}

	if opts.jsonOut {
		return writeJSON(stdout, result)
	}
	return writeText(stdout, result, opts.showItems)
}

func writeText(w io.Writer, result knapsack.Result, showItems bool) error {
	if !result.Feasible {
		_, err := fmt.Fprintln(w, "none")
		return err
	}
	if _, err := fmt.Fprintln(w, result.Value); err != nil {
		return err
	}
	if !showItems {
		return nil
	}

	positions := make([]string, len(result.Selected))
	for i, pos := range result.Selected {
		positions[i] = strconv.Itoa(pos)
	}
	_, err := fmt.Fprintf(w, "items: %s\n", strings.Join(positions, " "))
	return err
}

type jsonResult struct {
	BestValue    *int  `json:"bestValue"`
	TotalWeight  int   `json:"totalWeight"`
	Selected     []int `json:"selected"`
	NodesVisited int64 `json:"nodesVisited"`
	NodesPruned  int64 `json:"nodesPruned"`
}

func writeJSON(w io.Writer, result knapsack.Result) error {
	out := jsonResult{
		Selected:     []int{},
		NodesVisited: result.Stats.NodesVisited,
		NodesPruned:  result.Stats.NodesPruned,
	}
	if result.Feasible {
		value := result.Value
		out.BestValue = &value
		out.TotalWeight = result.Weight
		out.Selected = append(out.Selected, result.Selected...)
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
