package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"zkbattleship/internal/zk"
)

var keysCmd = &cobra.Command{
	Use:   "keys",
	Short: "Compile both circuits and write their keys, unless already present",
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := zk.EnsureKeys(flagKeysDir)
		if err != nil {
			return err
		}
		bk, err := p.BoardKey()
		if err != nil {
			return err
		}
		hk, err := p.HitKey()
		if err != nil {
			return err
		}
		log.Info().Str("dir", flagKeysDir).Msg("keys ready")
		fmt.Println("board key:", bk.Ref())
		fmt.Println("hit key:  ", hk.Ref())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(keysCmd)
}
