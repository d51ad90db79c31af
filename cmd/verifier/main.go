package main

import (
	"context"
	"encoding/json"
	"fmt"
	"math/big"
	"os"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	gnarklogger "github.com/consensys/gnark/logger"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/yourorg/zkattest/pkg/attest"
	"github.com/yourorg/zkattest/pkg/felt"
	"github.com/yourorg/zkattest/pkg/registry"
)

func main() {
	var (
		configPath string
		publicPath string
		proofPath  string
		vkPath     string
		rpcURL     string
		blockNum   uint64
		verbose    bool
	)

	cmd := &cobra.Command{
		Use:   "verifier",
		Short: "Run the full gate: data attestation, then Groth16 verification",
		RunE: func(cmd *cobra.Command, _ []string) error {
			log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
			if verbose {
				log = log.Level(zerolog.DebugLevel)
			} else {
				log = log.Level(zerolog.InfoLevel)
			}
			gnarklogger.Set(log)

			if rpcURL == "" {
				_ = godotenv.Load()
				rpcURL = os.Getenv("ETH_RPC_URL")
				if rpcURL == "" {
					return fmt.Errorf("--rpc flag or ETH_RPC_URL env var is required")
				}
			}

			cfg, err := registry.LoadConfig(configPath)
			if err != nil {
				return err
			}
			reg, err := cfg.Registry()
			if err != nil {
				return err
			}
			scales, err := cfg.ScaleTable()
			if err != nil {
				return err
			}
			engine, err := attest.NewEngine(reg, scales, cfg.InstanceOffset, attest.WithLogger(log))
			if err != nil {
				return err
			}

			publicInputs, err := loadPublicInputs(publicPath)
			if err != nil {
				return err
			}
			proof, err := os.ReadFile(proofPath)
			if err != nil {
				return fmt.Errorf("read proof: %w", err)
			}
			vk, err := attest.LoadVerifyingKey(vkPath)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			cli, err := ethclient.Dial(rpcURL)
			if err != nil {
				return fmt.Errorf("dial %s: %w", rpcURL, err)
			}
			defer cli.Close()

			// Pin the pass to one block so every read observes the same state.
			if blockNum == 0 {
				head, err := cli.BlockNumber(ctx)
				if err != nil {
					return fmt.Errorf("fetch head: %w", err)
				}
				blockNum = head
			}
			log.Info().Uint64("block", blockNum).Int("calls", reg.TotalCalls()).Msg("verifying")

			gate := attest.NewGate(
				engine,
				attest.NewEthReader(cli, new(big.Int).SetUint64(blockNum)),
				attest.NewGroth16Verifier(vk),
				attest.WithLogger(log),
			)

			ok, err := gate.Verify(ctx, publicInputs, proof)
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("proof does not verify")
			}
			fmt.Println("proof verified")
			return nil
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "Attestation registry JSON")
	cmd.Flags().StringVar(&publicPath, "public", "", "Public inputs JSON (array of decimal strings)")
	cmd.Flags().StringVar(&proofPath, "proof", "", "Serialized Groth16 proof")
	cmd.Flags().StringVar(&vkPath, "vk", "", "Serialized verifying key")
	cmd.Flags().StringVar(&rpcURL, "rpc", "", "Ethereum RPC URL")
	cmd.Flags().Uint64Var(&blockNum, "block", 0, "Block number (0 = pin current head)")
	cmd.Flags().BoolVar(&verbose, "verbose", false, "Log every attested slot")
	_ = cmd.MarkFlagRequired("config")
	_ = cmd.MarkFlagRequired("public")
	_ = cmd.MarkFlagRequired("proof")
	_ = cmd.MarkFlagRequired("vk")

	if err := cmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func loadPublicInputs(path string) ([]fr.Element, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read public inputs: %w", err)
	}
	var ss []string
	if err := json.Unmarshal(raw, &ss); err != nil {
		return nil, fmt.Errorf("decode public inputs %s: %w", path, err)
	}
	return felt.Vector(ss)
}
