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
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/poiesic/matchmaker"
	"github.com/poiesic/matchmaker/core"
	"github.com/poiesic/matchmaker/population"
	"github.com/poiesic/matchmaker/ranker"
	"github.com/poiesic/matchmaker/storage"
	"github.com/poiesic/matchmaker/warmup"
	"github.com/urfave/cli/v2"
)

// engineOptions translates the scoring flags shared by several commands.
func engineOptions(c *cli.Context) ([]matchmaker.Option, error) {
	var opts []matchmaker.Option
	if n := c.Int("pool-size"); n > 0 {
		opts = append(opts, matchmaker.WithPoolSize(n))
	}
	mode, err := ranker.ParseMode(c.String("ranker-mode"))
	if err != nil {
		return nil, err
	}
	opts = append(opts, matchmaker.WithRankerMode(mode))
	if mode == ranker.ModeBlend {
		opts = append(opts, matchmaker.WithBlend(c.Float64("blend")))
	}
	return opts, nil
}

func scoreCommand(c *cli.Context) error {
	pop, err := population.Load(c.String("population"))
	if err != nil {
		return err
	}
	a, err := pop.Profile(c.String("a"))
	if err != nil {
		return err
	}
	b, err := pop.Profile(c.String("b"))
	if err != nil {
		return err
	}

	opts, err := engineOptions(c)
	if err != nil {
		return err
	}
	db, err := openDatabase(c, opts...)
	if err != nil {
		return err
	}
	defer db.Close()

	res, err := db.Engine().ScorePair(c.Context, a, pop.Criteria[a.ID], b, pop.Criteria[b.ID])
	if err != nil {
		return fmt.Errorf("scoring failed: %w", err)
	}
	w := c.App.Writer
	if res.Excluded {
		fmt.Fprintf(w, "%s and %s are not eligible: %s\n", a.ID, b.ID, res.Decision.Reason)
		return nil
	}
	printScore(w, res.Pair)
	return nil
}

func rankCommand(c *cli.Context) error {
	pop, err := population.Load(c.String("population"))
	if err != nil {
		return err
	}
	query, err := pop.Profile(c.String("profile"))
	if err != nil {
		return err
	}

	opts, err := engineOptions(c)
	if err != nil {
		return err
	}
	db, err := openDatabase(c, opts...)
	if err != nil {
		return err
	}
	defer db.Close()

	pairs, err := db.Engine().RankCandidates(c.Context, query, pop.Profiles, pop.Criteria,
		c.Int("top-k"), c.Float64("min-score"))
	if err != nil {
		return fmt.Errorf("ranking failed: %w", err)
	}

	w := c.App.Writer
	if len(pairs) == 0 {
		fmt.Fprintf(w, "No eligible candidates for %s\n", query.ID)
		return nil
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "RANK\tCANDIDATE\tFINAL\tTOTAL\tSUMMARY")
	for i, sp := range pairs {
		fmt.Fprintf(tw, "%d\t%s\t%.4f\t%.4f\t%s\n", i+1, sp.ProfileB, sp.Final, sp.Total, sp.Summary)
	}
	return tw.Flush()
}

func matchCommand(c *cli.Context) error {
	pop, err := population.Load(c.String("population"))
	if err != nil {
		return err
	}
	proposers, err := core.ParseGender(c.String("proposers"))
	if err != nil {
		return err
	}

	opts, err := engineOptions(c)
	if err != nil {
		return err
	}
	opts = append(opts,
		matchmaker.WithProposingGender(proposers),
		matchmaker.WithMatchMinScore(c.Float64("min-score")))
	db, err := openDatabase(c, opts...)
	if err != nil {
		return err
	}
	defer db.Close()

	engine := db.Engine()
	w := c.App.Writer
	if !c.Bool("by-community") {
		a, err := engine.ComputeStableMatching(c.Context, pop.Profiles, pop.Criteria)
		if err != nil {
			return fmt.Errorf("matching failed: %w", err)
		}
		return printAssignment(w, a)
	}

	byCommunity, err := engine.ComputeStableMatchingByCommunity(c.Context, pop.Profiles, pop.Criteria)
	if err != nil {
		return fmt.Errorf("matching failed: %w", err)
	}
	communities := make([]core.Community, 0, len(byCommunity))
	for community := range byCommunity {
		communities = append(communities, community)
	}
	slices.Sort(communities)
	for i, community := range communities {
		if i > 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprintf(w, "== %s ==\n", community)
		if err := printAssignment(w, byCommunity[community]); err != nil {
			return err
		}
	}
	return nil
}

func feedbackCommand(c *cli.Context) error {
	outcome, err := core.ParseFeedbackOutcome(c.String("outcome"))
	if err != nil {
		return err
	}
	pop, err := population.Load(c.String("population"))
	if err != nil {
		return err
	}
	a, err := pop.Profile(c.String("a"))
	if err != nil {
		return err
	}
	b, err := pop.Profile(c.String("b"))
	if err != nil {
		return err
	}

	db, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	engine := db.Engine()
	res, err := engine.ScorePair(c.Context, a, pop.Criteria[a.ID], b, pop.Criteria[b.ID])
	if err != nil {
		return fmt.Errorf("scoring failed: %w", err)
	}
	if res.Excluded {
		return fmt.Errorf("%s and %s are not eligible: %s", a.ID, b.ID, res.Decision.Reason)
	}
	event, err := engine.RecordFeedback(c.Context, res.Pair, outcome, c.String("reason"))
	if err != nil {
		return fmt.Errorf("failed to record feedback: %w", err)
	}

	count, err := db.Stores().Feedback().CountFeedback(c.Context)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "Recorded %s for %s and %s (event %s, %d events stored)\n",
		event.Outcome, event.ProfileA, event.ProfileB, event.ID, count)
	return nil
}

func trainCommand(c *cli.Context) error {
	minExamples := c.Int("min-examples")
	if minExamples < 2 {
		return fmt.Errorf("min-examples must be at least 2")
	}
	fitter := &ranker.RidgeFitter{Lambda: c.Float64("lambda"), Logger: slog.Default()}

	db, err := openDatabase(c, matchmaker.WithTrainerOptions(
		ranker.WithMinExamples(minExamples),
		ranker.WithFitter(fitter)))
	if err != nil {
		return err
	}
	defer db.Close()

	model, err := db.Engine().Train(c.Context)
	if err != nil {
		if errors.Is(err, ranker.ErrInsufficientTrainingData) {
			return fmt.Errorf("not enough feedback to train (need %d usable events): %w", minExamples, err)
		}
		return fmt.Errorf("training failed: %w", err)
	}
	fmt.Fprintf(c.App.Writer, "Trained and serving model version %d\n\n", model.Version)
	return printModel(c.App.Writer, model)
}

func warmCommand(c *cli.Context) error {
	config := &warmup.Config{
		BatchSize:      c.Int("batch-size"),
		ReportInterval: c.Int("report-interval"),
		MaxRetries:     c.Int("max-retries"),
		RetryDelay:     c.Duration("retry-delay"),
	}
	if config.BatchSize <= 0 {
		return fmt.Errorf("batch-size must be greater than 0")
	}
	if config.ReportInterval <= 0 {
		return fmt.Errorf("report-interval must be greater than 0")
	}
	if config.MaxRetries <= 0 {
		return fmt.Errorf("max-retries must be greater than 0")
	}

	pop, err := population.Load(c.String("population"))
	if err != nil {
		return err
	}
	db, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	warmer, err := db.NewWarmer(config, c.App.ErrWriter)
	if err != nil {
		return err
	}

	fmt.Fprintf(c.App.ErrWriter, "Database: %s\n", c.String("db"))
	fmt.Fprintf(c.App.ErrWriter, "Embedding host: %s\n", c.String("embedding-host"))
	fmt.Fprintf(c.App.ErrWriter, "Embedding model: %s\n", c.String("embedding-model"))
	fmt.Fprintln(c.App.ErrWriter)

	report, err := warmer.Run(c.Context, pop.Profiles, pop.Criteria)
	if err != nil {
		return fmt.Errorf("warmup failed: %w", err)
	}
	fmt.Fprintf(c.App.Writer, "Texts: %d, already cached: %d, computed: %d, rejected: %d, batches: %d (%s)\n",
		report.Texts, report.Cached, report.Computed, report.Rejected, report.Batches,
		report.Elapsed.Round(time.Millisecond))
	return nil
}

func modelShowCommand(c *cli.Context) error {
	db, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	models := db.Stores().Models()
	var model *core.RankerModel
	if c.IsSet("version") {
		model, err = models.LoadModel(c.Context, c.Uint64("version"))
	} else {
		model, err = models.LoadLatestModel(c.Context)
	}
	if errors.Is(err, storage.ErrNotFound) {
		fmt.Fprintln(c.App.Writer, "No model stored")
		return nil
	}
	if err != nil {
		return err
	}
	return printModel(c.App.Writer, model)
}

func modelListCommand(c *cli.Context) error {
	db, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	models := db.Stores().Models()
	versions, err := models.ListVersions(c.Context)
	if err != nil {
		return err
	}
	if len(versions) == 0 {
		fmt.Fprintln(c.App.Writer, "No model stored")
		return nil
	}

	served := db.Engine().Ranker().Model()
	tw := tabwriter.NewWriter(c.App.Writer, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "VERSION\tTRAINED\tEXAMPLES\tRMSE\tNDCG\tSERVED")
	for _, v := range versions {
		m, err := models.LoadModel(c.Context, v)
		if err != nil {
			return err
		}
		mark := ""
		if served != nil && served.Version == v {
			mark = "*"
		}
		fmt.Fprintf(tw, "%d\t%s\t%d\t%.4f\t%.4f\t%s\n",
			m.Version, m.TrainedAt.Format(time.RFC3339), m.ExampleCount, m.TrainingRMSE, m.NDCG, mark)
	}
	return tw.Flush()
}

func printScore(w io.Writer, sp *core.ScoredPair) {
	fmt.Fprintf(w, "%s ~ %s\n", sp.ProfileA, sp.ProfileB)
	fmt.Fprintf(w, "Total: %.4f  Final: %.4f\n", sp.Total, sp.Final)
	distance := "unknown"
	if sp.DistanceKm >= 0 {
		distance = fmt.Sprintf("%.1f km", sp.DistanceKm)
	}
	fmt.Fprintf(w, "Age gap: %d  Distance: %s\n\n", sp.AgeGap, distance)

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "FACTOR\tVALUE\tWEIGHT\tCONTRIBUTION")
	for _, c := range sp.Explanation {
		fmt.Fprintf(tw, "%s\t%.4f\t%.2f\t%.4f\n", c.Factor, c.Value, c.Weight, c.Contribution)
	}
	tw.Flush()
	if sp.Summary != "" {
		fmt.Fprintf(w, "\n%s\n", sp.Summary)
	}
}

func printAssignment(w io.Writer, a *core.StableAssignment) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "PROPOSER\tRECEIVER\tSCORE\tPROPOSER RANK\tRECEIVER RANK")
	for _, p := range a.Pairs {
		fmt.Fprintf(tw, "%s\t%s\t%.4f\t%d\t%d\n", p.Proposer, p.Receiver, p.Score, p.ProposerRank, p.ReceiverRank)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	unmatched := "none"
	if len(a.Unmatched) > 0 {
		unmatched = strings.Join(a.Unmatched, ", ")
	}
	fmt.Fprintf(w, "Pairs: %d  Proposals: %d\nUnmatched: %s\n", len(a.Pairs), a.Proposals, unmatched)
	return nil
}

func printModel(w io.Writer, m *core.RankerModel) error {
	fmt.Fprintf(w, "Version: %d\n", m.Version)
	fmt.Fprintf(w, "Trained: %s\n", m.TrainedAt.Format(time.RFC3339))
	fmt.Fprintf(w, "Examples: %d  RMSE: %.4f  NDCG: %.4f\n\n", m.ExampleCount, m.TrainingRMSE, m.NDCG)

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "FEATURE\tWEIGHT")
	for i, name := range m.Schema {
		if i < len(m.Weights) {
			fmt.Fprintf(tw, "%s\t%+.4f\n", name, m.Weights[i])
		}
	}
	fmt.Fprintf(tw, "bias\t%+.4f\n", m.Bias)
	return tw.Flush()
}
