package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/KirkDiggler/endguard/internal/config"
	"github.com/KirkDiggler/endguard/internal/errors"
)

type ConfigTestSuite struct {
	suite.Suite
	dir string
}

func TestConfigSuite(t *testing.T) {
	suite.Run(t, new(ConfigTestSuite))
}

func (s *ConfigTestSuite) SetupTest() {
	s.dir = s.T().TempDir()
}

func (s *ConfigTestSuite) write(content string) string {
	path := filepath.Join(s.dir, "endguard.yml")
	s.Require().NoError(os.WriteFile(path, []byte(content), 0o644))
	return path
}

func (s *ConfigTestSuite) TestDefaultsAreValid() {
	cfg, err := config.Load("")
	s.Require().NoError(err)
	s.Equal(20, cfg.TickRate)
	s.Equal(config.DriverFile, cfg.Persistence.Driver)
	s.True(cfg.Respawn.OnDeath)
	s.Len(cfg.Worlds, 1)
}

func (s *ConfigTestSuite) TestFileOverridesDefaults() {
	path := s.write(`
tick_rate: 10
respawn:
  on_join: true
  join_delay: 15
  countdown_message: "Respawn in %time%s"
death:
  lightning_strikes: 1
  default_shape: spiral
persistence:
  driver: redis
  redis:
    addrs: ["localhost:6379"]
    snapshot_ttl: 12h
history:
  ttl: 48h
worlds:
  - name: the_end
    portal: {x: 0, y: 70, z: 0}
`)

	cfg, err := config.Load(path)
	s.Require().NoError(err)

	s.Equal(10, cfg.TickRate)
	s.True(cfg.Respawn.OnJoin)
	s.True(cfg.Respawn.OnDeath, "unset keys keep their defaults")
	s.Equal(300, cfg.Respawn.DeathDelay)
	s.Equal(12*time.Hour, cfg.Persistence.Redis.SnapshotTTL)
	s.Equal(48*time.Hour, cfg.History.TTL)
	s.Require().Len(cfg.Worlds, 1)
	s.Equal(70.0, cfg.Worlds[0].Portal.Y)

	settings := cfg.EncounterSettings()
	s.Equal(10, settings.TicksPerSecond)
	s.Equal(15, settings.JoinDelaySeconds)
	s.Equal("spiral", settings.DefaultShape)
	s.Equal(1, settings.LightningStrikes)

	endpoint, opts := cfg.RedisEndpoint()
	s.Equal([]string{"localhost:6379"}, endpoint.Addrs)
	s.NotNil(opts)
}

func (s *ConfigTestSuite) TestValidation() {
	path := s.write(`
tick_rate: 0
persistence:
  driver: postgres
server:
  grpc_port: 70000
worlds:
  - name: the_end
  - name: the_end
`)

	_, err := config.Load(path)
	s.Require().Error(err)
	s.True(errors.IsInvalidArgument(err))
	for _, field := range []string{"tick_rate", "persistence.driver", "server.grpc_port", "worlds"} {
		s.Contains(err.Error(), field)
	}
}

func (s *ConfigTestSuite) TestRedisNeedsAddress() {
	path := s.write("persistence:\n  driver: redis\n")

	_, err := config.Load(path)
	s.True(errors.IsInvalidArgument(err))
}

func (s *ConfigTestSuite) TestMalformedFile() {
	path := s.write("tick_rate: [")

	_, err := config.Load(path)
	s.True(errors.IsInvalidArgument(err))
	s.Equal(path, errors.GetMeta(err)["file"])
}

func (s *ConfigTestSuite) TestMissingFile() {
	_, err := config.Load(filepath.Join(s.dir, "nope.yml"))
	s.True(errors.IsInvalidArgument(err))
}
