package main

import (
	"crypto/ed25519"
	"encoding/hex"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"zkbattleship/internal/app"
	"zkbattleship/internal/auth"
	"zkbattleship/internal/codec"
	"zkbattleship/internal/game"
	"zkbattleship/internal/verifier"
	"zkbattleship/internal/zk"
)

var (
	flagBoard      string
	flagSecret     string
	flagOut        string
	flagRow        uint32
	flagCol        uint32
	flagVK         string
	flagCommitment string
	flagPayload    string
	flagKind       string
)

var boardCmd = &cobra.Command{
	Use:   "board",
	Short: "Place a random legal fleet",
	RunE: func(cmd *cobra.Command, args []string) error {
		b, err := app.InitBoard()
		if err != nil {
			return err
		}
		if err := app.SaveJSON(flagOut, &b); err != nil {
			return err
		}
		fmt.Print(b.String())
		fmt.Println("✓ wrote", flagOut)
		return nil
	},
}

var commitCmd = &cobra.Command{
	Use:   "commit",
	Short: "Commit to a board: write the secret to keep and the payload to submit",
	RunE: func(cmd *cobra.Command, args []string) error {
		var b game.Board
		if err := app.LoadJSON(flagBoard, &b); err != nil {
			return err
		}
		p, err := zk.EnsureKeys(flagKeysDir)
		if err != nil {
			return err
		}
		res, err := app.Commit(p, b)
		if err != nil {
			return err
		}
		if err := app.SaveJSON(flagSecret, &res.Secret); err != nil {
			return err
		}
		if err := app.SaveJSON(flagOut, &res.Payload); err != nil {
			return err
		}
		fmt.Println("COMMITMENT:", res.Payload.Commitment)
		fmt.Println("✓ wrote", flagSecret, "and", flagOut)
		return nil
	},
}

var proveCmd = &cobra.Command{
	Use:   "prove",
	Short: "Answer a shot at --row/--col with a hit/miss proof",
	RunE: func(cmd *cobra.Command, args []string) error {
		sec, err := app.LoadSecret(flagSecret)
		if err != nil {
			return err
		}
		p, err := zk.LoadProver(flagKeysDir)
		if err != nil {
			return err
		}
		payload, err := app.Shoot(p, sec, flagRow, flagCol)
		if err != nil {
			return err
		}
		if err := app.SaveJSON(flagOut, payload); err != nil {
			return err
		}
		fmt.Printf("✓ wrote %s (result: %s)\n", flagOut, resultName(payload.Result))
		return nil
	},
}

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Check a hit proof or a board commitment against a verifying key",
	RunE: func(cmd *cobra.Command, args []string) error {
		vk, err := verifier.LoadKeyFile(flagVK)
		if err != nil {
			return err
		}
		switch flagKind {
		case "board":
			var payload codec.CommitmentPayload
			if err := app.LoadJSON(flagPayload, &payload); err != nil {
				return err
			}
			ok, err := app.VerifyBoard(vk, &payload)
			if err != nil {
				return err
			}
			if !ok {
				return errors.New("invalid proof")
			}
			fmt.Println("VALID BOARD", payload.Commitment)
		case "hit":
			c, err := codec.ParseCommitment(flagCommitment)
			if err != nil {
				return err
			}
			var payload codec.HitProofPayload
			if err := app.LoadJSON(flagPayload, &payload); err != nil {
				return err
			}
			res, err := app.VerifyHit(vk, c, &payload)
			if err != nil {
				return err
			}
			if !res.Valid {
				return errors.New("invalid proof")
			}
			fmt.Printf("(%d, %d) %s\n", payload.Row, payload.Col, resultName(res.Result))
		default:
			return fmt.Errorf("unknown proof kind %q", flagKind)
		}
		return nil
	},
}

var identityCmd = &cobra.Command{
	Use:   "identity",
	Short: "Generate an ed25519 signing key for talking to a host",
	RunE: func(cmd *cobra.Command, args []string) error {
		pub, priv, err := ed25519.GenerateKey(nil)
		if err != nil {
			return err
		}
		if err := os.WriteFile(flagOut, []byte(hex.EncodeToString(priv)+"\n"), 0o600); err != nil {
			return err
		}
		fmt.Println("IDENTITY:", auth.IdentityOf(pub))
		fmt.Println("✓ wrote", flagOut)
		return nil
	},
}

func resultName(r uint32) string {
	if r == 1 {
		return "HIT"
	}
	return "MISS"
}

func init() {
	rootCmd.AddCommand(boardCmd, commitCmd, proveCmd, verifyCmd, identityCmd)

	boardCmd.Flags().StringVarP(&flagOut, "out", "o", "board.json", "output board file")

	commitCmd.Flags().StringVar(&flagBoard, "board", "board.json", "board file")
	commitCmd.Flags().StringVar(&flagSecret, "secret", "secret.json", "secret output, keep it private")
	commitCmd.Flags().StringVarP(&flagOut, "out", "o", "commitment.json", "commitment payload output")

	proveCmd.Flags().StringVar(&flagSecret, "secret", "secret.json", "secret written by commit")
	proveCmd.Flags().Uint32Var(&flagRow, "row", 0, "row [0..9]")
	proveCmd.Flags().Uint32Var(&flagCol, "col", 0, "col [0..9]")
	proveCmd.Flags().StringVarP(&flagOut, "out", "o", "proof.json", "proof output")

	verifyCmd.Flags().StringVar(&flagKind, "kind", "hit", "proof kind: hit or board")
	verifyCmd.Flags().StringVar(&flagVK, "vk", "./keys/hit.vk", "verifying key file")
	verifyCmd.Flags().StringVar(&flagCommitment, "commitment", "", "defender commitment, 0x-prefixed (hit proofs)")
	verifyCmd.Flags().StringVar(&flagPayload, "payload", "proof.json", "proof or commitment payload file")

	identityCmd.Flags().StringVarP(&flagOut, "out", "o", "identity.key", "private key output")
}
