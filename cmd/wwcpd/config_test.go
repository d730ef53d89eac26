package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "wwcpd.yaml")
	assert.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// TestLoadConfig tests parsing of a full topology file
func TestLoadConfig(t *testing.T) {
	path := writeConfig(t, `
log:
  level: debug
metrics:
  addr: ":9090"
network:
  id: prod
  operators:
    - id: DE*GEF
      name: GraphDefined GmbH
      pools:
        - id: DE*GEF*POOL*1
          name: Parkhaus Mitte
          address:
            street: Marktplatz
            city: Jena
            country: DE
          stations:
            - id: DE*GEF*STATION*1
              name: Säule 1
              evses:
                - id: DE*GEF*E1
                  maxPowerKW: 22
                - id: DE*GEF*E2
                  maxPowerKW: 50
provider:
  id: hubject
  serviceCheckEvery: 5s
`)

	cfg, err := LoadConfig(path)
	assert.NoError(t, err)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, ":9090", cfg.Metrics.Addr)
	assert.Equal(t, "prod", cfg.Network.ID)
	assert.Len(t, cfg.Network.Operators, 1)

	op := cfg.Network.Operators[0]
	assert.Equal(t, "DE*GEF", op.ID)
	assert.Len(t, op.Pools, 1)
	assert.Equal(t, "Jena", op.Pools[0].Address.City)
	assert.Len(t, op.Pools[0].Stations[0].EVSEs, 2)
	assert.Equal(t, 50.0, op.Pools[0].Stations[0].EVSEs[1].MaxPowerKW)

	assert.Equal(t, "hubject", cfg.Provider.ID)
	checkEvery, err := cfg.Provider.CheckInterval()
	assert.NoError(t, err)
	assert.Equal(t, 5*time.Second, checkEvery)
}

// TestLoadConfigValidation tests the missing-id guards
func TestLoadConfigValidation(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{
			name:    "missing network id",
			content: "network: {}",
		},
		{
			name: "missing operator id",
			content: `
network:
  id: prod
  operators:
    - name: nameless
`,
		},
		{
			name: "missing evse id",
			content: `
network:
  id: prod
  operators:
    - id: OP1
      pools:
        - id: P1
          stations:
            - id: ST1
              evses:
                - maxPowerKW: 22
`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadConfig(writeConfig(t, tt.content))
			assert.Error(t, err)
		})
	}
}

// TestLoadConfigMissingFile tests the read error path
func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
