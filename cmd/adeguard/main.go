// Copyright 2025 ADEGuard Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/ghanashyam9348/adeguard"
	"github.com/ghanashyam9348/adeguard/ai"
	"github.com/ghanashyam9348/adeguard/core"
	"github.com/ghanashyam9348/adeguard/pipeline"
)

func main() {
	app := &cli.App{
		Name:  "adeguard",
		Usage: "Multi-stage inference over pharmaceutical safety reports",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:   "analyze",
				Usage:  "Run a single report through the inference pipeline",
				Action: analyzeCommand,
				Flags: append(engineFlags(),
					&cli.StringFlag{
						Name:     "text",
						Aliases:  []string{"t"},
						Usage:    "Report text to analyze",
						Required: true,
					},
					&cli.IntFlag{
						Name:  "age",
						Usage: "Patient age in years",
						Value: -1,
					},
					&cli.BoolFlag{
						Name:  "clustering",
						Usage: "Assign the report to a similarity cluster",
					},
					&cli.BoolFlag{
						Name:  "explainability",
						Usage: "Attribute the severity decision to input features",
					},
					&cli.StringFlag{
						Name:  "explain-method",
						Usage: "Explanation method (additive or perturbation)",
						Value: string(core.ExplanationPerturbation),
					},
					&cli.Int64Flag{
						Name:  "seed",
						Usage: "Seed for perturbation explanations",
						Value: 42,
					},
				),
			},
			{
				Name:   "batch",
				Usage:  "Run a batch of reports (one JSON object per line)",
				Action: batchCommand,
				Flags: append(engineFlags(),
					&cli.StringFlag{
						Name:     "input",
						Aliases:  []string{"i"},
						Usage:    "Path to a file of reports, one JSON object per line",
						Required: true,
					},
					&cli.IntFlag{
						Name:  "pool-size",
						Usage: "Worker pool size for the batch scheduler",
					},
				),
			},
			{
				Name:   "status",
				Usage:  "Show capability states and similarity index counts",
				Action: statusCommand,
				Flags:  engineFlags(),
			},
			{
				Name:   "recluster",
				Usage:  "Run a full density pass over the similarity index",
				Action: reclusterCommand,
				Flags:  engineFlags(),
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

// engineFlags are shared by every command that opens an engine.
func engineFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:     "db",
			Aliases:  []string{"d"},
			Usage:    "Path to BadgerDB database directory",
			Required: true,
		},
		&cli.StringFlag{
			Name:  "host",
			Usage: "Inference service host URL (embedding and inference)",
			Value: "http://localhost:11434/v1",
		},
		&cli.StringFlag{
			Name:  "embedding-host",
			Usage: "Embedding service host URL (defaults to --host)",
		},
		&cli.StringFlag{
			Name:  "embedding-model",
			Usage: "Embedding model name",
		},
		&cli.StringFlag{
			Name:  "extractor-model",
			Usage: "Entity extraction model name",
		},
		&cli.StringFlag{
			Name:  "classifier-model",
			Usage: "Severity classification model name",
		},
		&cli.DurationFlag{
			Name:  "stage-timeout",
			Usage: "Per-stage inference timeout",
			Value: 30 * time.Second,
		},
	}
}

func openEngine(ctx context.Context, c *cli.Context, extra ...adeguard.EngineOption) (*adeguard.Engine, error) {
	configOpts := []ai.ConfigOption{ai.WithHost(c.String("host"))}
	if host := c.String("embedding-host"); host != "" {
		configOpts = append(configOpts, ai.WithEmbeddingHost(host))
	}
	if model := c.String("embedding-model"); model != "" {
		configOpts = append(configOpts, ai.WithEmbeddingModel(model))
	}
	if model := c.String("extractor-model"); model != "" {
		configOpts = append(configOpts, ai.WithExtractorModel(model))
	}
	if model := c.String("classifier-model"); model != "" {
		configOpts = append(configOpts, ai.WithClassifierModel(model))
	}

	opts := append([]adeguard.EngineOption{
		adeguard.WithAIConfig(ai.NewConfig(configOpts...)),
		adeguard.WithPipelineOptions(pipeline.WithStageTimeout(c.Duration("stage-timeout"))),
	}, extra...)

	engine, err := adeguard.New(ctx, c.String("db"), opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to open engine: %w", err)
	}
	return engine, nil
}

func analyzeCommand(c *cli.Context) error {
	ctx := context.Background()

	method := core.ExplanationMethod(c.String("explain-method"))
	if method != core.ExplanationAdditive && method != core.ExplanationPerturbation {
		return fmt.Errorf("invalid explain-method %q: must be additive or perturbation", c.String("explain-method"))
	}

	engine, err := openEngine(ctx, c, adeguard.WithPipelineOptions(
		pipeline.WithExplanationMethod(method),
		pipeline.WithSeed(c.Int64("seed")),
	))
	if err != nil {
		return err
	}
	defer engine.Close()

	report := core.Report{
		Text: c.String("text"),
		Flags: core.Flags{
			IncludeClustering:     c.Bool("clustering"),
			IncludeExplainability: c.Bool("explainability"),
		},
	}
	if age := c.Int("age"); age >= 0 {
		report.PatientAge = &age
	}

	result, err := engine.Submit(ctx, report)
	if err != nil {
		return fmt.Errorf("analysis failed: %w", err)
	}

	printResult(os.Stdout, result)
	return nil
}

func batchCommand(c *cli.Context) error {
	ctx := context.Background()

	reports, err := readReports(c.String("input"))
	if err != nil {
		return err
	}
	if len(reports) == 0 {
		return fmt.Errorf("no reports found in %s", c.String("input"))
	}

	var extra []adeguard.EngineOption
	if size := c.Int("pool-size"); size > 0 {
		extra = append(extra, adeguard.WithBatchPoolSize(size))
	}

	engine, err := openEngine(ctx, c, extra...)
	if err != nil {
		return err
	}
	defer engine.Close()

	result, err := engine.SubmitBatch(ctx, reports)
	if err != nil {
		return fmt.Errorf("batch failed: %w", err)
	}

	for i, item := range result.Items {
		if item.Err != nil {
			fmt.Fprintf(os.Stdout, "[%d] rejected: %v\n", i, item.Err)
			continue
		}
		fmt.Fprintf(os.Stdout, "[%d] %s severity=%s entities=%d\n",
			i, item.Result.OverallStatus, item.Result.Summary.SeverityLevel, item.Result.Summary.TotalEntities)
	}
	fmt.Fprintf(os.Stdout, "\nsucceeded=%d partial=%d failed=%d\n",
		result.Summary.SucceededCount, result.Summary.PartialCount, result.Summary.FailedCount)
	return nil
}

func statusCommand(c *cli.Context) error {
	ctx := context.Background()

	engine, err := openEngine(ctx, c)
	if err != nil {
		return err
	}
	defer engine.Close()

	for capability, status := range engine.CapabilityStatus() {
		line := fmt.Sprintf("%-20s %s", capability, status.State)
		if status.Version != "" {
			line += " " + status.Version
		}
		if status.Err != "" {
			line += " (" + status.Err + ")"
		}
		fmt.Fprintln(os.Stdout, line)
	}

	embeddings, clusters, pending := engine.IndexStats()
	fmt.Fprintf(os.Stdout, "\nindex: %d embeddings, %d clusters, %d pending noise\n",
		embeddings, clusters, pending)
	return nil
}

func reclusterCommand(c *cli.Context) error {
	ctx := context.Background()

	engine, err := openEngine(ctx, c)
	if err != nil {
		return err
	}
	defer engine.Close()

	before, _, pending := engine.IndexStats()
	fmt.Fprintf(os.Stderr, "reclustering %d embeddings (%d pending noise)\n", before, pending)

	if err := engine.TriggerRecluster(ctx); err != nil {
		return fmt.Errorf("recluster failed: %w", err)
	}

	embeddings, clusters, pending := engine.IndexStats()
	fmt.Fprintf(os.Stdout, "done: %d embeddings, %d clusters, %d pending noise\n",
		embeddings, clusters, pending)
	return nil
}

// reportLine is the JSON shape accepted by the batch command.
type reportLine struct {
	Text           string `json:"text"`
	PatientAge     *int   `json:"patient_age,omitempty"`
	Clustering     bool   `json:"include_clustering,omitempty"`
	Explainability bool   `json:"include_explainability,omitempty"`
}

func readReports(path string) ([]core.Report, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open input file: %w", err)
	}
	defer file.Close()

	var reports []core.Report
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		var parsed reportLine
		if err := json.Unmarshal([]byte(line), &parsed); err != nil {
			return nil, fmt.Errorf("line %d: invalid JSON: %w", lineNo, err)
		}
		reports = append(reports, core.Report{
			Text:       parsed.Text,
			PatientAge: parsed.PatientAge,
			Flags: core.Flags{
				IncludeClustering:     parsed.Clustering,
				IncludeExplainability: parsed.Explainability,
			},
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read input file: %w", err)
	}
	return reports, nil
}

func printResult(w *os.File, result *core.PipelineResult) {
	fmt.Fprintf(w, "request %s: %s in %s\n", result.RequestID, result.OverallStatus, result.Elapsed.Round(time.Millisecond))
	fmt.Fprintf(w, "severity: %s", result.Summary.SeverityLevel)
	if result.Summary.RequiresAttention {
		fmt.Fprint(w, " (requires attention)")
	}
	fmt.Fprintln(w)

	for _, outcome := range result.Outcomes {
		line := fmt.Sprintf("  %-24s %s", outcome.StageName, outcome.Status)
		if outcome.Error != "" {
			line += " (" + outcome.Error + ")"
		}
		fmt.Fprintln(w, line)

		switch {
		case len(outcome.Entities) > 0:
			for _, entity := range outcome.Entities {
				fmt.Fprintf(w, "    %s %q [%d:%d] %.2f\n",
					entity.Type, entity.SurfaceText, entity.Start, entity.End, entity.Confidence)
			}
		case outcome.Severity != nil:
			fmt.Fprintf(w, "    %s confidence=%.2f method=%s\n",
				outcome.Severity.Level, outcome.Severity.Confidence, outcome.Severity.Method)
		case outcome.Cluster != nil:
			fmt.Fprintf(w, "    cluster=%s similarity=%.2f version=%d\n",
				outcome.Cluster.ClusterID, outcome.Cluster.Similarity, outcome.Cluster.EmbeddingVersion)
		case outcome.Explanation != nil:
			for _, feature := range outcome.Explanation.TopFeatures {
				sign := "+"
				if feature.Sign < 0 {
					sign = "-"
				}
				fmt.Fprintf(w, "    %s%q %.3f\n", sign, feature.Feature, feature.Contribution)
			}
		}
	}

	for _, alert := range result.Alerts {
		fmt.Fprintf(w, "alert: %s\n", alert)
	}
	for _, recommendation := range result.Recommendations {
		fmt.Fprintf(w, "recommend: %s\n", recommendation)
	}
}

func setupLogger(c *cli.Context) error {
	levelStr := strings.ToLower(c.String("log-level"))

	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}
