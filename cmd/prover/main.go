package main

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"log"
	"math/big"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/consensys/gnark/backend/groth16"
	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/frontend/cs/r1cs"
	"github.com/ethereum/go-ethereum/common"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/yourorg/mptzk/circuits"
	"github.com/yourorg/mptzk/pkg/witness"
)

// contextKey is a custom type for context keys to avoid conflicts
type contextKey string

const startTimeKey contextKey = "start"

// setupMu serializes the cached trusted setup; instances proving the same
// circuit shape would otherwise race on the key files.
var setupMu sync.Mutex

func main() {
	var (
		witnessFiles []string
		outDir       string
		genKey       string
		genSlot      uint64
		genOld       string
		genNew       string
	)

	rootCmd := &cobra.Command{
		Use:   "prover",
		Short: "Generate Groth16 proofs for MPT update witnesses",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := os.MkdirAll(outDir, 0o755); err != nil {
				return err
			}
			if genKey != "" {
				p, err := generateWitness(outDir, genKey, genSlot, genOld, genNew)
				if err != nil {
					return err
				}
				witnessFiles = append(witnessFiles, p)
			}
			if len(witnessFiles) == 0 {
				_ = godotenv.Load()
				if w := os.Getenv("MPT_WITNESS"); w != "" {
					witnessFiles = strings.Split(w, ",")
				}
				if len(witnessFiles) == 0 {
					return fmt.Errorf("--witness, --gen-key or the MPT_WITNESS env var is required")
				}
			}

			// Proof instances share no mutable state; prove them in parallel.
			g, _ := errgroup.WithContext(cmd.Context())
			for _, wf := range witnessFiles {
				g.Go(func() error { return prove(wf, outDir) })
			}
			if err := g.Wait(); err != nil {
				return err
			}
			fmt.Printf("proofs done in %s\n", time.Since(cmd.Context().Value(startTimeKey).(time.Time)))
			return nil
		},
	}

	rootCmd.Flags().StringSliceVar(&witnessFiles, "witness", nil, "Witness JSON file(s)")
	rootCmd.Flags().StringVar(&outDir, "outdir", "./", "Output directory")
	rootCmd.Flags().StringVar(&genKey, "gen-key", "", "Generate a witness for this mapping key (hex)")
	rootCmd.Flags().Uint64Var(&genSlot, "gen-slot", 0, "Mapping slot index for --gen-key")
	rootCmd.Flags().StringVar(&genOld, "gen-old", "0x01", "Old slot value (hex) for --gen-key")
	rootCmd.Flags().StringVar(&genNew, "gen-new", "0x02", "New slot value (hex) for --gen-key")

	rootCmd.SetContext(context.WithValue(context.Background(), startTimeKey, time.Now()))
	if err := rootCmd.Execute(); err != nil {
		log.Fatal(err)
	}
}

// generateWitness synthesizes a single-update witness for a mapping entry
// and writes it next to the proof outputs, so it can be re-proved from file.
func generateWitness(outDir, keyHex string, slotIndex uint64, oldHex, newHex string) (string, error) {
	mapKey, ok := new(big.Int).SetString(strings.TrimPrefix(keyHex, "0x"), 16)
	if !ok {
		return "", fmt.Errorf("--gen-key: %q is not a hex integer", keyHex)
	}
	rows, err := witness.SlotUpdate(mapKey, slotIndex, common.FromHex(oldHex), common.FromHex(newHex)).Rows()
	if err != nil {
		return "", err
	}
	data, err := witness.Encode(rows)
	if err != nil {
		return "", err
	}
	p := filepath.Join(outDir, fmt.Sprintf("slot_%s_%d_witness.json", mapKey.Text(16), slotIndex))
	if err := os.WriteFile(p, data, 0o644); err != nil {
		return "", err
	}
	return p, nil
}

func prove(witnessPath, outDir string) error {
	rows, err := witness.Load(witnessPath)
	if err != nil {
		return fmt.Errorf("%s: %w", witnessPath, err)
	}
	bundle, err := witness.Build(rows)
	if err != nil {
		return fmt.Errorf("%s: %w", witnessPath, err)
	}

	// -----------------------------------------------------------------
	// Circuit compile
	// -----------------------------------------------------------------
	cs, err := frontend.Compile(
		circuits.Curve().ScalarField(),
		r1cs.NewBuilder,
		bundle.Blueprint,
	)
	if err != nil {
		return err
	}

	// -----------------------------------------------------------------
	// Trusted setup (cached per circuit shape)
	// -----------------------------------------------------------------
	shape := fmt.Sprintf("%dx%d", bundle.Meta.NbRows, bundle.Meta.NbEntries)
	pkPath := filepath.Join(outDir, "mpt_pk_"+shape+".bin")
	vkPath := filepath.Join(outDir, "mpt_vk_"+shape+".bin")

	setupMu.Lock()
	pk := groth16.NewProvingKey(circuits.Curve())
	vk := groth16.NewVerifyingKey(circuits.Curve())
	if pkBytes, err := os.ReadFile(pkPath); err == nil {
		if _, err := pk.ReadFrom(bytes.NewReader(pkBytes)); err != nil {
			setupMu.Unlock()
			return err
		}
		vkBytes, err := os.ReadFile(vkPath)
		if err != nil {
			setupMu.Unlock()
			return err
		}
		if _, err := vk.ReadFrom(bytes.NewReader(vkBytes)); err != nil {
			setupMu.Unlock()
			return err
		}
	} else {
		pk, vk, err = groth16.Setup(cs)
		if err != nil {
			setupMu.Unlock()
			return err
		}
		var b bytes.Buffer
		_, _ = pk.WriteTo(&b)
		_ = os.WriteFile(pkPath, b.Bytes(), 0o644)
		b.Reset()
		_, _ = vk.WriteTo(&b)
		_ = os.WriteFile(vkPath, b.Bytes(), 0o644)
	}
	setupMu.Unlock()

	// -----------------------------------------------------------------
	// Prove
	// -----------------------------------------------------------------
	proof, err := groth16.Prove(cs, pk, bundle.Full)
	if err != nil {
		return err
	}

	// -----------------------------------------------------------------
	// Outputs
	// -----------------------------------------------------------------
	base := strings.TrimSuffix(filepath.Base(witnessPath), filepath.Ext(witnessPath))
	proofPath := filepath.Join(outDir, base+"_proof.bin")
	metaPath := filepath.Join(outDir, base+"_meta.json")

	var buf bytes.Buffer
	_, _ = proof.WriteTo(&buf)
	if err := os.WriteFile(proofPath, buf.Bytes(), 0o644); err != nil {
		return err
	}

	jsonBytes, _ := json.MarshalIndent(bundle.Meta, "", "  ")
	if err := os.WriteFile(metaPath, jsonBytes, 0o644); err != nil {
		return err
	}

	csBuf := new(bytes.Buffer)
	_, _ = cs.WriteTo(csBuf)
	sum := sha256.Sum256(csBuf.Bytes())
	fmt.Printf("%s: circuit %s hash %x, proof written to %s\n", witnessPath, shape, sum[:4], proofPath)
	return nil
}
