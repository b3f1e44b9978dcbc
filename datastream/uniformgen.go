package datastream

import (
	"encoding/csv"
	"fmt"
	"math"
	"math/rand/v2"
)

// UniformDataGenerator 產生平均分布的索引序列，每個索引出現機率皆相同
type UniformDataGenerator struct {
	n   int
	rng *rand.Rand
}

func NewUniformDataGenerator(n int, seed uint64) *UniformDataGenerator {
	return &UniformDataGenerator{
		n:   n,
		rng: rand.New(rand.NewPCG(seed, 0)),
	}
}

// Next 產生一筆索引 (0~n-1)
func (u *UniformDataGenerator) Next() int {
	return u.rng.IntN(u.n)
}

func (u *UniformDataGenerator) Len() int { return u.n }

func (u *UniformDataGenerator) DistributeToCSV(writer *csv.Writer) error {
	return distributeToCSV(writer, u.GetKeyMap())
}

func (u *UniformDataGenerator) Close() error {
	return nil
}

func (u *UniformDataGenerator) GetKeyMap() map[Key]float64 {
	result := make(map[Key]float64, u.n)
	for i := 0; i < u.n; i++ {
		result[Key(i)] = 1.0 / float64(u.n)
	}
	return result
}

func (u *UniformDataGenerator) GetCDF() []float64 {
	cdf := make([]float64, u.n)
	for i := range cdf {
		cdf[i] = float64(i+1) / float64(u.n)
	}
	return cdf
}

func (u *UniformDataGenerator) GetPDF() []float64 {
	pdf := make([]float64, u.n)
	for i := range pdf {
		pdf[i] = 1.0 / float64(u.n)
	}
	return pdf
}

func (u *UniformDataGenerator) Entropy() float64 {
	if u.n <= 0 {
		return 0
	}
	return math.Log2(float64(u.n))
}

func (u *UniformDataGenerator) String() string {
	return fmt.Sprintf("uniform(n=%d)", u.n)
}
