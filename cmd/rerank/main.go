//
// Listwise is pleased to support the open source community by making listwise-rerank available.
//
// Copyright (C) 2026 Listwise.  All rights reserved.
//
// listwise-rerank is licensed under the Apache License Version 2.0.
//
//

// Package main is the entry point for the rerank CLI.
package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/spf13/cobra"

	"github.com/listwise/rerank/log"
	openaimodel "github.com/listwise/rerank/model/openai"
	"github.com/listwise/rerank/rerank"
)

// envConfig holds provider settings resolved from the environment.
type envConfig struct {
	APIKey  string `env:"OPENAI_API_KEY"`
	BaseURL string `env:"OPENAI_BASE_URL"`
	Model   string `env:"RERANK_MODEL" envDefault:"gpt-4o-mini"`
}

// candidate is one input item: a JSON object per line, or a bare text
// line used as both key and summary.
type candidate struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

func candidateKey(c candidate) string {
	if c.ID != "" {
		return c.ID
	}
	if len(c.Text) > 60 {
		return c.Text[:60]
	}
	return c.Text
}

var (
	flagQuery     string
	flagInput     string
	flagModel     string
	flagThreshold float64
	flagBatchSize int
	flagTimeout   time.Duration
	flagUserID    string
	flagLogLevel  string
)

var rootCmd = &cobra.Command{
	Use:   "rerank",
	Short: "Rerank candidates by LLM-scored relevance to a query",
	Long: `rerank reads candidates as JSON lines ({"id": ..., "text": ...}) or bare
text lines from a file or stdin, asks a language model to score each one
against the query, and prints them in descending relevance order.`,
	SilenceUsage: true,
	RunE:         run,
}

func init() {
	rootCmd.Flags().StringVarP(&flagQuery, "query", "q", "", "query to rank candidates against (required)")
	rootCmd.Flags().StringVarP(&flagInput, "input", "i", "-", "input file, or - for stdin")
	rootCmd.Flags().StringVarP(&flagModel, "model", "m", "", "model name (overrides RERANK_MODEL)")
	rootCmd.Flags().Float64Var(&flagThreshold, "threshold", 0, "minimum score a candidate must strictly exceed (0-10)")
	rootCmd.Flags().IntVar(&flagBatchSize, "batch-size", 25, "candidates per model call")
	rootCmd.Flags().DurationVar(&flagTimeout, "timeout", 30*time.Second, "per-batch scoring timeout")
	rootCmd.Flags().StringVar(&flagUserID, "user", "", "end-user identifier forwarded to the provider")
	rootCmd.Flags().StringVar(&flagLogLevel, "log-level", log.LevelWarn, "log level: debug, info, warn, error, fatal")
	rootCmd.MarkFlagRequired("query")
}

func run(cmd *cobra.Command, args []string) error {
	log.SetLevel(flagLogLevel)

	var cfg envConfig
	if err := env.Parse(&cfg); err != nil {
		return fmt.Errorf("parse environment: %w", err)
	}
	if flagModel != "" {
		cfg.Model = flagModel
	}

	candidates, err := readCandidates(flagInput)
	if err != nil {
		return err
	}

	m := openaimodel.New(cfg.Model,
		openaimodel.WithAPIKey(cfg.APIKey),
		openaimodel.WithBaseURL(cfg.BaseURL),
	)
	r, err := rerank.New(candidateKey,
		rerank.WithModel[candidate](m),
		rerank.WithModelName[candidate](cfg.Model),
		rerank.WithSummary[candidate](func(c candidate) string { return c.Text }),
		rerank.WithRelevancyThreshold[candidate](flagThreshold),
		rerank.WithBatchSize[candidate](flagBatchSize),
		rerank.WithTimeout[candidate](flagTimeout),
		rerank.WithUserID[candidate](flagUserID),
	)
	if err != nil {
		return err
	}
	defer r.Close()

	ranked := r.Rerank(cmd.Context(), flagQuery, candidates)

	w := bufio.NewWriter(cmd.OutOrStdout())
	defer w.Flush()
	for _, c := range ranked {
		if c.ID != "" {
			fmt.Fprintf(w, "%s\t%s\n", c.ID, c.Text)
			continue
		}
		fmt.Fprintln(w, c.Text)
	}
	return nil
}

// readCandidates parses candidates from path, one per line. JSON object
// lines use their id/text fields; any other non-empty line becomes a
// bare text candidate.
func readCandidates(path string) ([]candidate, error) {
	var reader io.Reader = os.Stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		reader = f
	}

	var candidates []candidate
	scanner := bufio.NewScanner(reader)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}
		var c candidate
		if err := json.Unmarshal([]byte(line), &c); err != nil || c.Text == "" && c.ID == "" {
			c = candidate{Text: line}
		}
		candidates = append(candidates, c)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read candidates: %w", err)
	}
	return candidates, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Stderr.WriteString("Error: " + err.Error() + "\n")
		os.Exit(1)
	}
}
