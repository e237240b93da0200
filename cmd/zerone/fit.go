package main

import (
	"context"
	"fmt"
	"os"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gonum.org/v1/gonum/mat"

	"github.com/gui11aume/zerone/hmm"
	"github.com/gui11aume/zerone/ingest"
)

// initialParams is the on-disk shape of the starting point a fit needs:
// the original program zero-initialized Q and P, which this module's core
// deliberately refuses to accept (see hmm.Trainer.Fit's doc comment), so
// the CLI always requires an explicit one of these.
type initialParams struct {
	States int         `mapstructure:"states"`
	A      float64     `mapstructure:"a"`
	Pi     float64     `mapstructure:"pi"`
	Init   []float64   `mapstructure:"init"`
	Q      [][]float64 `mapstructure:"q"`
	P      [][]float64 `mapstructure:"p"`
}

func (p initialParams) toMatrices() (*mat.Dense, []float64, *hmm.ZeroInflated) {
	m := p.States
	q := mat.NewDense(m, m, nil)
	for i, row := range p.Q {
		copy(q.RawRowView(i), row)
	}
	cols := len(p.P[0])
	pm := mat.NewDense(m, cols, nil)
	for i, row := range p.P {
		copy(pm.RawRowView(i), row)
	}
	return q, p.Init, &hmm.ZeroInflated{A: p.A, Pi: p.Pi, P: pm}
}

func newFitCmd() *cobra.Command {
	var (
		inputPath  string
		paramsPath string
		redisAddr  string
		runID      string
	)

	cmd := &cobra.Command{
		Use:   "fit",
		Short: "Run Baum-Welch on a tab-separated count file",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger()

			f, err := os.Open(inputPath)
			if err != nil {
				return err
			}
			defer f.Close()

			counts, err := ingest.Load(f)
			if err != nil {
				return err
			}

			v := viper.New()
			v.SetConfigFile(paramsPath)
			if err := v.ReadInConfig(); err != nil {
				return fmt.Errorf("reading params file: %w", err)
			}
			var params initialParams
			if err := v.Unmarshal(&params); err != nil {
				return fmt.Errorf("parsing params file: %w", err)
			}
			q, init, z := params.toMatrices()

			trainer := hmm.NewTrainer(hmm.DefaultConfig())
			trainer.Logger = logger

			result, err := trainer.Fit(counts.Y, counts.Sizes, z, q, init)
			if err != nil {
				return err
			}

			logger.Info().
				Int("iterations", result.Iterations).
				Float64("loglik", result.LogLik).
				Int("rows", len(counts.Y)).
				Int("blocks", len(counts.Sizes)).
				Msg("fit complete")

			if redisAddr != "" {
				client := redis.NewClient(&redis.Options{Addr: redisAddr})
				defer client.Close()
				ckpt := hmm.NewCheckpoint(client, "zerone")
				if err := ckpt.Save(context.Background(), runID, z, result.Q); err != nil {
					return fmt.Errorf("checkpointing result: %w", err)
				}
				logger.Info().Str("run_id", runID).Str("redis_addr", redisAddr).Msg("checkpoint saved")
			}

			for k, state := range result.Path {
				fmt.Printf("%d\t%d\n", k, state)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&inputPath, "input", "", "tab-separated count file (required)")
	cmd.Flags().StringVar(&paramsPath, "params", "", "YAML/JSON file with initial states/a/pi/init/q/p (required)")
	cmd.Flags().StringVar(&redisAddr, "redis-addr", "", "if set, checkpoint the fitted model to this Redis address")
	cmd.Flags().StringVar(&runID, "run-id", "default", "checkpoint key namespace")
	cmd.MarkFlagRequired("input")
	cmd.MarkFlagRequired("params")

	return cmd
}
