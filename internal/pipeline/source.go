package pipeline

import (
	"context"
	"log/slog"

	"github.com/couchcryptid/air-quality-eda/internal/generator"
)

// GeneratorSource implements Source with the seeded synthetic generator.
type GeneratorSource struct {
	seed   uint64
	logger *slog.Logger
}

// NewGeneratorSource creates a GeneratorSource for the given seed.
func NewGeneratorSource(seed uint64, logger *slog.Logger) *GeneratorSource {
	return &GeneratorSource{seed: seed, logger: logger}
}

// Generate draws a fresh dataset. Each call starts from the same seed, so
// repeated runs are identical.
func (s *GeneratorSource) Generate(ctx context.Context) (Dataset, error) {
	if err := ctx.Err(); err != nil {
		return Dataset{}, err
	}
	g := generator.New(s.seed)
	records := g.Generate()
	s.logger.Debug("dataset generated", "seed", s.seed, "records", len(records))
	return Dataset{
		Records: records,
		Seed:    g.Seed(),
		Daily:   g.DailyProfile(),
	}, nil
}
