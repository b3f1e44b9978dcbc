// benchrun 重播 genbrench 產生的操作序列，比較各種容器的耗時，
// stress 子指令則測試 atomlist 在多個 goroutine 下的吞吐量。
package main

import (
	"os"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/ouyang789987/frr/internal/cli"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var configFile string
	cmd := &cobra.Command{
		Use:   "benchrun",
		Short: "Replay bench files against the typesafe containers",
		Long: `Replay one bench file (--file) or every .bin file under a directory (--dir)
against the selected containers and print timing tables.

Flags may also be set with TYPESAFE_<FLAG> environment variables or a config file.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			v, err := cli.LoadConfig(cmd, configFile)
			if err != nil {
				return err
			}
			log, err := cli.NewLogger(v.GetString("log-level"))
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()

			impls, err := parseImpls(v.GetString("impl"))
			if err != nil {
				return err
			}
			runs := v.GetInt("runs")
			if runs <= 0 {
				return errors.Newf("runs must be positive: %d", runs)
			}
			seed := v.GetUint64("seed")
			log.Info("implementations to test", zap.String("impl", strings.Join(impls, ",")))

			// --dir 優先於 --file
			if dir := v.GetString("dir"); dir != "" {
				files, err := collectBenchFilesFromDir(dir)
				if err != nil {
					return err
				}
				if len(files) == 0 {
					return errors.Newf("no .bin files found in directory: %s", dir)
				}
				log.Info("found bench files", zap.Int("count", len(files)), zap.String("dir", dir))
				return runBatchBenchmark(cmd.OutOrStdout(), log, files, impls, runs, seed)
			}
			file := v.GetString("file")
			if file == "" {
				return errors.New("either --file or --dir must be provided")
			}
			return runBenchmark(cmd.OutOrStdout(), log, file, impls, runs, seed)
		},
	}
	cli.AddCommonFlags(cmd, &configFile)
	cmd.Flags().String("file", "", "bench file to replay (TSBENCH1 format)")
	cmd.Flags().String("dir", "", "directory containing bench files (all .bin files are replayed)")
	cmd.Flags().String("impl", strings.Join(defaultImpls, ","),
		"implementations: all or comma list of "+strings.Join(implNames, ","))
	cmd.Flags().Int("runs", 5, "how many times to repeat each benchmark")
	cmd.Flags().Uint64("seed", uint64(time.Now().UnixNano()), "seed for the skiplist level generator")

	cmd.AddCommand(newStressCommand(&configFile))
	return cmd
}

func newStressCommand(configFile *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stress",
		Short: "Concurrent add/pop throughput of the lock-free lists",
		RunE: func(cmd *cobra.Command, _ []string) error {
			v, err := cli.LoadConfig(cmd, *configFile)
			if err != nil {
				return err
			}
			log, err := cli.NewLogger(v.GetString("log-level"))
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()

			items, err := cli.ParseCount(v.GetString("items"))
			if err != nil {
				return err
			}
			kinds := strings.Split(v.GetString("kind"), ",")
			threads := v.GetIntSlice("threads")

			var results []stressResult
			for _, kind := range kinds {
				for _, t := range threads {
					cfg := stressConfig{
						kind:    strings.TrimSpace(kind),
						threads: t,
						items:   items,
						rounds:  v.GetInt("rounds"),
						seed:    v.GetUint64("seed"),
					}
					log.Info("stress", zap.String("kind", cfg.kind), zap.Int("threads", t), zap.Int("items", items))
					res, err := runStress(log, cfg)
					if err != nil {
						return errors.Wrapf(err, "stress %s with %d threads", cfg.kind, t)
					}
					results = append(results, res)
				}
			}
			renderStress(cmd.OutOrStdout(), results)
			return nil
		},
	}
	cmd.Flags().String("kind", "list,sort", "lock-free containers to stress: list, sort")
	cmd.Flags().IntSlice("threads", []int{1, 2, 4, 8}, "goroutine counts to test")
	cmd.Flags().String("items", "1e4", "items added per goroutine per round")
	cmd.Flags().Int("rounds", 5, "add/pop rounds; items are reused after a barrier")
	cmd.Flags().Uint64("seed", 1, "seed for key order")
	return cmd
}
