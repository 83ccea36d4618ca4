package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"

	"github.com/consensys/gnark/backend/groth16"
	"github.com/consensys/gnark/frontend"
	"github.com/spf13/cobra"

	"github.com/yourorg/mptzk/circuits"
	"github.com/yourorg/mptzk/pkg/witness"
)

func main() {
	var proofPath, metaPath, vkPath string

	cmd := &cobra.Command{
		Use:   "verifier",
		Short: "Verify a Groth16 proof of an MPT update",
		RunE: func(cmd *cobra.Command, args []string) error {
			pBytes, err := os.ReadFile(proofPath)
			if err != nil {
				return err
			}
			vBytes, err := os.ReadFile(vkPath)
			if err != nil {
				return err
			}
			jBytes, err := os.ReadFile(metaPath)
			if err != nil {
				return err
			}

			proof := groth16.NewProof(circuits.Curve())
			if _, err := proof.ReadFrom(bytes.NewReader(pBytes)); err != nil {
				return err
			}

			vk := groth16.NewVerifyingKey(circuits.Curve())
			if _, err := vk.ReadFrom(bytes.NewReader(vBytes)); err != nil {
				return err
			}

			var meta witness.Meta
			if err := json.Unmarshal(jBytes, &meta); err != nil {
				return err
			}

			// The circuit carries no public inputs: the statement is fixed by
			// the verifying key, whose shape the meta file records.
			pubAssign := &circuits.UpdateCircuit{
				Rows:        make([]circuits.Row, meta.NbRows),
				KeccakTable: make([]circuits.TableEntry, meta.NbEntries),
			}
			pubWit, err := frontend.NewWitness(
				pubAssign,
				circuits.Curve().ScalarField(),
				frontend.PublicOnly(),
			)
			if err != nil {
				return err
			}

			if err := groth16.Verify(proof, vk, pubWit); err != nil {
				return fmt.Errorf("verification failed: %w", err)
			}
			fmt.Printf("proof verified for circuit %dx%d ✅\n", meta.NbRows, meta.NbEntries)
			return nil
		},
	}

	cmd.Flags().StringVar(&proofPath, "proof", "", "witness_proof.bin")
	cmd.Flags().StringVar(&metaPath, "meta", "", "witness_meta.json")
	cmd.Flags().StringVar(&vkPath, "vk", "", "mpt_vk_RxE.bin")
	_ = cmd.MarkFlagRequired("proof")
	_ = cmd.MarkFlagRequired("meta")
	_ = cmd.MarkFlagRequired("vk")

	if err := cmd.ExecuteContext(context.Background()); err != nil {
		log.Fatal(err)
	}
}
