package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"radon-engine/internal/radon/ops"
	"radon-engine/internal/radon/value"
)

func disasmCmd() *cobra.Command {
	var scriptPath string

	cmd := &cobra.Command{
		Use:   "disasm",
		Short: "decode a RADON script and print its call list without running it",
		RunE: func(cmd *cobra.Command, args []string) error {
			scriptBytes, err := os.ReadFile(scriptPath)
			if err != nil {
				return fmt.Errorf("read script: %w", err)
			}

			decoded, err := value.DecodeAny(scriptBytes)
			if err != nil {
				return fmt.Errorf("decode script: %w", err)
			}
			calls, errv := ops.ParseScript(decoded)
			if errv != nil {
				return fmt.Errorf("parse script: %s", errv.Message)
			}
			for i, c := range calls {
				fmt.Fprintf(cmd.OutOrStdout(), "%d: %s %v\n", i, c.Op, c.Args)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&scriptPath, "script", "", "path to a CBOR-encoded RADON script")
	_ = cmd.MarkFlagRequired("script")
	return cmd
}
