// genbrench 產生 benchrun 使用的操作序列檔（TSBENCH1 格式）。
package main

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/ouyang789987/frr/datastream"
	"github.com/ouyang789987/frr/internal/cli"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

type genParams struct {
	n, k        int
	a, b        float64
	seed        uint64
	phase1Ratio float64
	delRatio    float64
	popRatio    float64
	randomKeys  bool
	nums        int
	out         string
	path        string
	distCSV     bool
}

func paramsFromConfig(v *viper.Viper) (genParams, error) {
	p := genParams{
		a:           v.GetFloat64("a"),
		b:           v.GetFloat64("b"),
		seed:        v.GetUint64("seed"),
		phase1Ratio: v.GetFloat64("phase1-ratio"),
		delRatio:    v.GetFloat64("del-ratio"),
		popRatio:    v.GetFloat64("pop-ratio"),
		randomKeys:  v.GetBool("random-keys"),
		nums:        v.GetInt("nums"),
		out:         v.GetString("out"),
		path:        v.GetString("path"),
		distCSV:     v.GetBool("dist-csv"),
	}
	var err error
	if p.n, err = cli.ParseCount(v.GetString("n")); err != nil {
		return p, err
	}
	if p.k, err = cli.ParseCount(v.GetString("k")); err != nil {
		return p, err
	}
	if p.nums <= 0 {
		return p, errors.Newf("nums must be positive: %d", p.nums)
	}
	// 沒有指定輸出檔名時依參數自動產生
	if p.out == "" {
		p.out = fmt.Sprintf("bench_n%s_k%s_a%s_b%s_p1r%s_dr%s_pr%s",
			cli.FormatScientific(p.n),
			cli.FormatScientific(p.k),
			cli.FormatDecimal(p.a),
			cli.FormatDecimal(p.b),
			cli.FormatDecimal(p.phase1Ratio),
			cli.FormatDecimal(p.delRatio),
			cli.FormatDecimal(p.popRatio))
	}
	return p, nil
}

// newGenerator 在 a 為 0 時使用均勻分布
func (p genParams) newGenerator(seed uint64) datastream.DataStream {
	if p.a == 0 {
		return datastream.NewUniformDataGenerator(p.n, seed)
	}
	return datastream.NewZipfDataGenerator(p.n, p.a, p.b, seed)
}

func (p genParams) filename(i int) string {
	if p.nums == 1 {
		return filepath.Join(p.path, p.out+".bin")
	}
	return filepath.Join(p.path, fmt.Sprintf("%s_%d.bin", p.out, i))
}

// generate 寫出 nums 個檔案，回傳檔案路徑
func generate(log *zap.Logger, p genParams) ([]string, error) {
	if p.path != "" && p.path != "." {
		if err := os.MkdirAll(p.path, 0o755); err != nil {
			return nil, errors.Wrap(err, "creating output directory")
		}
	}
	files := make([]string, 0, p.nums)
	for i := 0; i < p.nums; i++ {
		seed := p.seed + uint64(i)
		gen := p.newGenerator(seed)
		bf, err := datastream.GenerateWorkload(gen, datastream.WorkloadConfig{
			Ops:         p.k,
			Phase1Ratio: p.phase1Ratio,
			DelRatio:    p.delRatio,
			PopRatio:    p.popRatio,
			RandomKeys:  p.randomKeys,
			Seed:        seed,
		})
		if err != nil {
			return files, errors.Wrapf(err, "generating %s", gen)
		}
		outfile := p.filename(i)
		if err := datastream.WriteBenchFile(outfile, bf); err != nil {
			return files, err
		}
		counts := bf.CountOps()
		log.Info("generated",
			zap.String("file", outfile),
			zap.String("dist", fmt.Sprint(gen)),
			zap.Int("add", counts[datastream.OpAdd]),
			zap.Int("find", counts[datastream.OpFind]),
			zap.Int("del", counts[datastream.OpDel]),
			zap.Int("pop", counts[datastream.OpPop]),
			zap.Float64("entropy", gen.Entropy()))
		files = append(files, outfile)

		if p.distCSV {
			if err := writeDistCSV(strings.TrimSuffix(outfile, ".bin")+"_dist.csv", bf); err != nil {
				return files, err
			}
		}
	}
	return files, nil
}

// writeDistCSV 輸出實際寫入檔案的 key 分布
func writeDistCSV(filename string, bf *datastream.BenchFile) (err error) {
	fd, err := os.Create(filename)
	if err != nil {
		return errors.Wrap(err, "creating csv")
	}
	defer func() {
		err = errors.CombineErrors(err, fd.Close())
	}()
	return bf.DistributeToCSV(csv.NewWriter(fd))
}

func newRootCommand() *cobra.Command {
	var configFile string
	cmd := &cobra.Command{
		Use:   "genbrench",
		Short: "Generate bench files for benchrun",
		Long: `Generate operation sequences over a Zipf (or uniform when --a=0) key distribution.

Every key is added at least once; existing keys are found, deleted (--del-ratio)
or popped from the front (--pop-ratio). Counts accept scientific notation, e.g. --k 1e6.`,
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

			p, err := paramsFromConfig(v)
			if err != nil {
				return err
			}
			log.Info("parameters",
				zap.Int("n", p.n),
				zap.Int("k", p.k),
				zap.Float64("a", p.a),
				zap.Float64("b", p.b),
				zap.Float64("phase1-ratio", p.phase1Ratio),
				zap.Float64("del-ratio", p.delRatio),
				zap.Float64("pop-ratio", p.popRatio),
				zap.Uint64("seed", p.seed),
				zap.Int("nums", p.nums),
				zap.String("path", p.path),
				zap.String("out", p.out))
			files, err := generate(log, p)
			if err != nil {
				return err
			}
			for _, f := range files {
				fmt.Fprintln(cmd.OutOrStdout(), f)
			}
			return nil
		},
	}
	cli.AddCommonFlags(cmd, &configFile)
	f := cmd.Flags()
	f.String("n", "0", "number of keys (scientific notation allowed, e.g. 1e5)")
	f.Float64("a", 1.07, "Zipf parameter a (0 selects the uniform distribution)")
	f.Float64("b", 0.0, "Zipf parameter b (only used when a > 0)")
	f.String("k", "0", "number of operations (scientific notation allowed, e.g. 1e6)")
	f.Uint64("seed", uint64(time.Now().UnixNano()), "seed for the generators")
	f.Float64("phase1-ratio", 0.5, "ratio of phase1 operations")
	f.Float64("del-ratio", 0.1, "probability of deleting an existing key")
	f.Float64("pop-ratio", 0.0, "probability of popping the smallest key")
	f.Bool("random-keys", false, "use random uint32 keys instead of 0..n-1")
	f.Int("nums", 1, "number of files to generate")
	f.String("out", "", "output filename prefix (derived from the parameters when empty)")
	f.String("path", ".", "output directory")
	f.Bool("dist-csv", false, "also write the key distribution as <file>_dist.csv")
	return cmd
}
