// compare 以同一組 Zipf key 建立所有排序容器，檢查走訪、查詢與 Pop 的結果一致，
// 並印出 skiplist 的結構與依權重計算的平均搜尋步數。
package main

import (
	"encoding/csv"
	"os"

	"github.com/cockroachdb/errors"
	"github.com/ouyang789987/frr/datastream"
	"github.com/ouyang789987/frr/internal/cli"
	"github.com/ouyang789987/frr/typesafe/analyTool"
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
		Use:          "compare",
		Short:        "Cross-check the sorted containers on one Zipf key set",
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

			n, err := cli.ParseCount(v.GetString("n"))
			if err != nil {
				return err
			}
			if n <= 0 {
				return errors.Newf("n must be positive: %d", n)
			}
			seed := v.GetUint64("seed")
			gen := datastream.NewZipfDataGenerator(n, v.GetFloat64("a"), v.GetFloat64("b"), seed)

			s, err := newSet(gen, seed)
			if err != nil {
				return err
			}
			if err := s.checkOrder(); err != nil {
				return err
			}
			hits, err := s.query(gen, n*v.GetInt("queries"))
			if err != nil {
				return err
			}
			log.Info("containers agree", zap.Int("keys", n), zap.Int("hits", hits), zap.Float64("entropy", gen.Entropy()))

			s.report(cmd.OutOrStdout(), v.GetInt("max-level"), v.GetInt("max-nodes"))
			if path := v.GetString("csv"); path != "" {
				if err := writeCSV(path, s, v.GetInt("max-nodes")); err != nil {
					return err
				}
				log.Info("wrote skiplist csv", zap.String("file", path))
			}
			return s.drain()
		},
	}
	cli.AddCommonFlags(cmd, &configFile)
	f := cmd.Flags()
	f.String("n", "900", "number of keys")
	f.Float64("a", 1.07, "Zipf parameter a")
	f.Float64("b", 1.0, "Zipf parameter b")
	f.Uint64("seed", 42, "seed for the key weights and skiplist levels")
	f.Int("queries", 10, "queries per key")
	f.Int("max-level", 8, "highest level to print")
	f.Int("max-nodes", 35, "nodes to print per level")
	f.String("csv", "", "also write the skiplist structure to this csv file")
	return cmd
}

func writeCSV(path string, s *set, maxNodes int) (err error) {
	fd, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "creating csv")
	}
	defer func() {
		err = errors.CombineErrors(err, fd.Close())
	}()
	return analyTool.PrintSkipListToCSV[node](csv.NewWriter(fd), s.sskip, s.sskip.MaxDepth(), maxNodes, formatNode)
}
