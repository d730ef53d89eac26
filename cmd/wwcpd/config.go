package main

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/evroam/wwcp/pkg/types"
)

// FileConfig is the on-disk daemon configuration
type FileConfig struct {
	Log      LogConfig      `yaml:"log"`
	Metrics  MetricsConfig  `yaml:"metrics"`
	Network  NetworkConfig  `yaml:"network"`
	Provider ProviderConfig `yaml:"provider"`
}

type LogConfig struct {
	Level string `yaml:"level"`
	JSON  bool   `yaml:"json"`
}

type MetricsConfig struct {
	Addr string `yaml:"addr"`
}

type NetworkConfig struct {
	ID        string           `yaml:"id"`
	Operators []OperatorConfig `yaml:"operators"`
}

type OperatorConfig struct {
	ID    string       `yaml:"id"`
	Name  string       `yaml:"name"`
	Pools []PoolConfig `yaml:"pools"`
}

type PoolConfig struct {
	Name     string          `yaml:"name"`
	ID       string          `yaml:"id"`
	Address  *AddressConfig  `yaml:"address"`
	Stations []StationConfig `yaml:"stations"`
}

type AddressConfig struct {
	Street     string `yaml:"street"`
	HouseNum   string `yaml:"houseNumber"`
	PostalCode string `yaml:"postalCode"`
	City       string `yaml:"city"`
	Country    string `yaml:"country"`
}

type StationConfig struct {
	ID           string       `yaml:"id"`
	Name         string       `yaml:"name"`
	HotlinePhone string       `yaml:"hotlinePhone"`
	EVSEs        []EVSEConfig `yaml:"evses"`
}

type EVSEConfig struct {
	ID          string  `yaml:"id"`
	Description string  `yaml:"description"`
	MaxPowerKW  float64 `yaml:"maxPowerKW"`
}

type ProviderConfig struct {
	ID                 string `yaml:"id"`
	ServiceCheckEvery  string `yaml:"serviceCheckEvery"`
	DisableAutoUploads bool   `yaml:"disableAutoUploads"`
}

// CheckInterval parses the serviceCheckEvery duration; zero means the
// provider default
func (p ProviderConfig) CheckInterval() (time.Duration, error) {
	if p.ServiceCheckEvery == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(p.ServiceCheckEvery)
	if err != nil {
		return 0, fmt.Errorf("invalid provider.serviceCheckEvery: %w", err)
	}
	return d, nil
}

// LoadConfig reads and validates a daemon configuration file
func LoadConfig(path string) (*FileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	cfg := &FileConfig{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the topology for missing ids and malformed values
func (c *FileConfig) Validate() error {
	if c.Network.ID == "" {
		return fmt.Errorf("network.id is required")
	}
	if _, err := c.Provider.CheckInterval(); err != nil {
		return err
	}
	for _, op := range c.Network.Operators {
		if op.ID == "" {
			return fmt.Errorf("operator id is required")
		}
		for _, pl := range op.Pools {
			if pl.ID == "" {
				return fmt.Errorf("pool id is required (operator %s)", op.ID)
			}
			for _, st := range pl.Stations {
				if st.ID == "" {
					return fmt.Errorf("station id is required (pool %s)", pl.ID)
				}
				for _, ev := range st.EVSEs {
					if ev.ID == "" {
						return fmt.Errorf("evse id is required (station %s)", st.ID)
					}
				}
			}
		}
	}
	return nil
}

func (a *AddressConfig) toAddress() *types.Address {
	if a == nil {
		return nil
	}
	return &types.Address{
		Street:      a.Street,
		HouseNumber: a.HouseNum,
		PostalCode:  a.PostalCode,
		City:        a.City,
		Country:     a.Country,
	}
}
