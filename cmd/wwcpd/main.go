package main

import (
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/evroam/wwcp/pkg/evse"
	"github.com/evroam/wwcp/pkg/log"
	"github.com/evroam/wwcp/pkg/metrics"
	"github.com/evroam/wwcp/pkg/network"
	"github.com/evroam/wwcp/pkg/pool"
	"github.com/evroam/wwcp/pkg/provider"
	"github.com/evroam/wwcp/pkg/station"
	"github.com/evroam/wwcp/pkg/types"
	"github.com/evroam/wwcp/pkg/upstream"
)

var (
	// Version information (set via ldflags during build)
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "wwcpd",
	Short: "wwcpd - EV roaming network daemon",
	Long: `wwcpd hosts an in-memory EV roaming network: charging station
operators, charging pools, stations and EVSEs, with status tracking,
station-level aggregation and delta uploads to roaming partners.`,
	Version: Version,
}

func init() {
	rootCmd.SetVersionTemplate(fmt.Sprintf(
		"wwcpd version %s\nCommit: %s\nBuilt: %s\n",
		Version, Commit, BuildTime,
	))

	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("config", "wwcpd.yaml", "Path to topology configuration")
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the roaming network daemon",
	Long: `Load the network topology from the configuration file, start the
message bus and the roaming provider, and serve Prometheus metrics until
interrupted.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		configPath, _ := cmd.Flags().GetString("config")

		cfg, err := LoadConfig(configPath)
		if err != nil {
			return err
		}

		log.Init(log.Config{
			Level:      log.Level(cfg.Log.Level),
			JSONOutput: cfg.Log.JSON,
		})
		logger := log.WithComponent("wwcpd")

		net := network.New(types.NetworkID(cfg.Network.ID))
		net.Start()
		defer net.Stop()

		if err := buildTopology(net, cfg); err != nil {
			return fmt.Errorf("failed to build topology: %w", err)
		}

		checkEvery, err := cfg.Provider.CheckInterval()
		if err != nil {
			return err
		}
		prov := provider.New(provider.Config{
			ID:                 types.ProviderID(cfg.Provider.ID),
			Network:            net,
			Service:            upstream.NewLoggingService(),
			ServiceCheckEvery:  checkEvery,
			DisableAutoUploads: cfg.Provider.DisableAutoUploads,
		})
		prov.Start()
		defer prov.Stop()

		logger.Info().
			Str("network_id", cfg.Network.ID).
			Str("provider_id", cfg.Provider.ID).
			Msg("roaming network running")

		errCh := make(chan error, 1)
		if cfg.Metrics.Addr != "" {
			mux := http.NewServeMux()
			mux.Handle("/metrics", metrics.Handler())
			go func() {
				logger.Info().Str("addr", cfg.Metrics.Addr).Msg("serving metrics")
				if err := http.ListenAndServe(cfg.Metrics.Addr, mux); err != nil {
					errCh <- fmt.Errorf("metrics server error: %w", err)
				}
			}()
		}

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

		select {
		case <-sigCh:
			logger.Info().Msg("shutting down")
		case err := <-errCh:
			return err
		}
		return nil
	},
}

// buildTopology materializes the configured operators, pools, stations
// and EVSEs inside the network
func buildTopology(net *network.RoamingNetwork, cfg *FileConfig) error {
	for _, opCfg := range cfg.Network.Operators {
		op, err := net.CreateOperator(types.OperatorID(opCfg.ID), opCfg.Name)
		if err != nil {
			return err
		}

		for _, plCfg := range opCfg.Pools {
			pl, err := op.CreatePool(types.PoolID(plCfg.ID), func(p *pool.ChargingPool) {
				if plCfg.Name != "" {
					p.SetName(plCfg.Name)
				}
				if addr := plCfg.Address.toAddress(); addr != nil {
					p.SetAddress(addr)
				}
			})
			if err != nil {
				return err
			}

			for _, stCfg := range plCfg.Stations {
				st, err := pl.CreateStation(types.StationID(stCfg.ID), func(s *station.ChargingStation) {
					if stCfg.Name != "" {
						s.SetName(stCfg.Name)
					}
					if stCfg.HotlinePhone != "" {
						s.SetHotlinePhone(stCfg.HotlinePhone)
					}
				})
				if err != nil {
					return err
				}

				for _, evCfg := range stCfg.EVSEs {
					_, err := st.CreateEVSE(types.EVSEID(evCfg.ID), func(e *evse.EVSE) {
						if evCfg.Description != "" {
							e.SetDescription(evCfg.Description)
						}
						if evCfg.MaxPowerKW > 0 {
							e.SetMaxPowerKW(evCfg.MaxPowerKW)
						}
					}, nil, nil)
					if err != nil {
						return err
					}
				}
			}
		}
	}
	return nil
}
