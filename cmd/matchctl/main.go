// Copyright 2025 Poiesic Systems
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
	"fmt"
	"log"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/poiesic/matchmaker"
	"github.com/poiesic/matchmaker/ai"
	"github.com/poiesic/matchmaker/ranker"
	"github.com/urfave/cli/v2"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "matchctl",
		Usage: "Score, rank and match profiles of a population file",
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
				Name:   "score",
				Usage:  "Score one pair and explain the result",
				Action: scoreCommand,
				Flags: withFlags(databaseFlags(), populationFlags(), rankerFlags(), []cli.Flag{
					&cli.StringFlag{
						Name:     "a",
						Usage:    "ID of the first profile",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "b",
						Usage:    "ID of the second profile",
						Required: true,
					},
				}),
			},
			{
				Name:   "rank",
				Usage:  "Rank the population's candidates for one profile",
				Action: rankCommand,
				Flags: withFlags(databaseFlags(), populationFlags(), rankerFlags(), []cli.Flag{
					&cli.StringFlag{
						Name:     "profile",
						Usage:    "ID of the profile to rank candidates for",
						Required: true,
					},
					&cli.IntFlag{
						Name:  "top-k",
						Usage: "Number of candidates to show (0 for all)",
						Value: 10,
					},
					&cli.Float64Flag{
						Name:  "min-score",
						Usage: "Drop candidates scoring below this value",
					},
				}),
			},
			{
				Name:   "match",
				Usage:  "Compute a stable matching of the population",
				Action: matchCommand,
				Flags: withFlags(databaseFlags(), populationFlags(), rankerFlags(), []cli.Flag{
					&cli.StringFlag{
						Name:  "proposers",
						Usage: "Gender of the proposing side (male, female)",
						Value: "male",
					},
					&cli.Float64Flag{
						Name:  "min-score",
						Usage: "Drop pairs scoring below this value from preference lists",
					},
					&cli.BoolFlag{
						Name:  "by-community",
						Usage: "Match each community separately",
					},
				}),
			},
			{
				Name:   "feedback",
				Usage:  "Record the outcome of a proposed pair",
				Action: feedbackCommand,
				Flags: withFlags(databaseFlags(), populationFlags(), []cli.Flag{
					&cli.StringFlag{
						Name:     "a",
						Usage:    "ID of the first profile",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "b",
						Usage:    "ID of the second profile",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "outcome",
						Usage:    "Outcome (rejected, proposal_sent, contact_made, meeting_scheduled, matched)",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "reason",
						Usage: "Free text reason for the outcome",
					},
				}),
			},
			{
				Name:   "train",
				Usage:  "Train a ranker model from recorded feedback",
				Action: trainCommand,
				Flags: withFlags(databaseFlags(), []cli.Flag{
					&cli.IntFlag{
						Name:  "min-examples",
						Usage: "Minimum number of usable feedback events",
						Value: ranker.DefaultMinExamples,
					},
					&cli.Float64Flag{
						Name:  "lambda",
						Usage: "Ridge regularization strength",
						Value: ranker.DefaultRidgeLambda,
					},
				}),
			},
			{
				Name:   "warm",
				Usage:  "Precompute embeddings for every text in the population",
				Action: warmCommand,
				Flags: withFlags(databaseFlags(), populationFlags(), []cli.Flag{
					&cli.IntFlag{
						Name:  "batch-size",
						Usage: "Number of texts to embed in each request",
						Value: 32,
					},
					&cli.IntFlag{
						Name:  "report-interval",
						Usage: "Report progress every N texts",
						Value: 100,
					},
					&cli.IntFlag{
						Name:  "max-retries",
						Usage: "Maximum retry attempts for failed batches",
						Value: 3,
					},
					&cli.DurationFlag{
						Name:  "retry-delay",
						Usage: "Base delay for exponential backoff",
						Value: 1 * time.Second,
					},
				}),
			},
			{
				Name:  "model",
				Usage: "Inspect stored ranker models",
				Subcommands: []*cli.Command{
					{
						Name:   "show",
						Usage:  "Show a stored model (the newest by default)",
						Action: modelShowCommand,
						Flags: withFlags(databaseFlags(), []cli.Flag{
							&cli.Uint64Flag{
								Name:  "version",
								Usage: "Model version to show",
							},
						}),
					},
					{
						Name:   "list",
						Usage:  "List stored model versions",
						Action: modelListCommand,
						Flags:  databaseFlags(),
					},
				},
			},
		},
	}
}

func databaseFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:     "db",
			Aliases:  []string{"d"},
			Usage:    "Path to BadgerDB database directory",
			Required: true,
		},
		&cli.StringFlag{
			Name:  "embedding-host",
			Usage: "Embedding service host URL",
			Value: "http://localhost:11434/v1",
		},
		&cli.StringFlag{
			Name:  "embedding-model",
			Usage: "Embedding model name",
			Value: "embeddinggemma",
		},
		&cli.StringFlag{
			Name:    "token",
			Usage:   "Embedding service API token",
			EnvVars: []string{"OPENAI_API_KEY"},
		},
		&cli.IntFlag{
			Name:  "pool-size",
			Usage: "Number of scoring workers (0 for half the CPUs)",
		},
	}
}

func populationFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:     "population",
			Aliases:  []string{"p"},
			Usage:    "Path to the population YAML file",
			Required: true,
		},
	}
}

func rankerFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  "ranker-mode",
			Usage: "How final scores are computed (static, learned, blend)",
			Value: "static",
		},
		&cli.Float64Flag{
			Name:  "blend",
			Usage: "Learned share of the final score in blend mode",
			Value: ranker.DefaultBlend,
		},
	}
}

func withFlags(groups ...[]cli.Flag) []cli.Flag {
	var flags []cli.Flag
	for _, g := range groups {
		flags = append(flags, g...)
	}
	return flags
}

// openDatabase opens the database named by the command's flags.
var openDatabase = func(c *cli.Context, opts ...matchmaker.Option) (*matchmaker.Database, error) {
	aiConfig := ai.NewConfig(
		ai.WithEmbeddingHost(c.String("embedding-host")),
		ai.WithEmbeddingModel(c.String("embedding-model")),
		ai.WithToken(c.String("token")),
	)
	if err := aiConfig.Validate(); err != nil {
		return nil, fmt.Errorf("invalid AI configuration: %w", err)
	}

	db, err := matchmaker.NewDatabase(c.String("db"),
		matchmaker.WithAIConfig(aiConfig),
		matchmaker.WithEngineOptions(opts...))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return db, nil
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
