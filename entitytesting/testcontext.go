package entitytesting

import (
	"math/rand"
	"testing"

	"github.com/datatrails/go-datatrails-common/logger"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/herabit/pillar/entity"
)

type TestContext struct {
	Log  logger.Logger
	Rand *rand.Rand
	T    *testing.T
}

type TestConfig struct {
	// We seed the RNG with Seed. It is normal to force it to some fixed
	// value so that the generated identifiers are the same from run to run.
	Seed            int64
	TestLabelPrefix string
}

func NewTestContext(t *testing.T, cfg TestConfig) TestContext {
	c := TestContext{
		T: t,
	}
	logger.New("INFO")
	c.Log = logger.Sugar.WithServiceName(cfg.TestLabelPrefix)
	c.Rand = rand.New(rand.NewSource(cfg.Seed))
	return c
}

func (c *TestContext) GetLog() logger.Logger { return c.Log }

// NewRealm returns a realm id drawn from the seeded source, so tests that
// want distinct realms stay reproducible run to run.
func (c *TestContext) NewRealm() uuid.UUID {
	u, err := uuid.NewRandomFromReader(c.Rand)
	require.NoError(c.T, err)
	return u
}

// EntityBatch returns n valid identifiers on distinct pseudo random slots.
// The reserved index never appears, everything else is fair game, so the
// batch is useful both as plausible population data and as foreign handles
// an allocator under test has never issued.
func (c *TestContext) EntityBatch(n int) []entity.Entity {
	seen := make(map[uint32]bool, n)
	batch := make([]entity.Entity, 0, n)
	for len(batch) < n {
		slot := c.Rand.Uint32()
		if slot == entity.IndexReserved || seen[slot] {
			continue
		}
		seen[slot] = true

		idx, err := entity.NewIndex(slot)
		require.NoError(c.T, err)
		batch = append(batch, entity.NewEntity(idx, entity.NewGeneration(c.Rand.Uint32())))
	}
	return batch
}
