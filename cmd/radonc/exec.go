package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"radon-engine/internal/radon/reducers"
	"radon-engine/internal/radon/script"
	"radon-engine/internal/radon/value"
)

func parseStageFlag(s string) (value.Stage, error) {
	switch s {
	case "retrieve":
		return value.StageRetrieve, nil
	case "aggregate":
		return value.StageAggregate, nil
	case "tally":
		return value.StageTally, nil
	default:
		return 0, fmt.Errorf("unknown stage %q: want retrieve, aggregate, or tally", s)
	}
}

func execCmd() *cobra.Command {
	var scriptPath, seedJSON, stageFlag string

	cmd := &cobra.Command{
		Use:   "exec",
		Short: "execute a RADON script (CBOR-encoded) over a JSON seed value",
		RunE: func(cmd *cobra.Command, args []string) error {
			stage, err := parseStageFlag(stageFlag)
			if err != nil {
				return err
			}

			scriptBytes, err := os.ReadFile(scriptPath)
			if err != nil {
				return fmt.Errorf("read script: %w", err)
			}

			seed, err := value.NewMixedFromJSON([]byte(seedJSON))
			if err != nil {
				return fmt.Errorf("parse seed: %w", err)
			}

			policy := reducers.RoundToInteger
			if appConfig != nil && appConfig.Engine.AverageMeanReturnPolicy == "preserve_float" {
				policy = reducers.PreserveFloat
			}
			wips := map[string]struct{}{}
			if appConfig != nil {
				for _, w := range appConfig.Engine.ActiveWips {
					wips[w] = struct{}{}
				}
			}
			maxCalls, maxDepth, maxStringBytes := 64, 8, 65535
			if appConfig != nil {
				if appConfig.Engine.MaxScriptCalls > 0 {
					maxCalls = appConfig.Engine.MaxScriptCalls
				}
				if appConfig.Engine.MaxRecursionDepth > 0 {
					maxDepth = appConfig.Engine.MaxRecursionDepth
				}
				if appConfig.Engine.MaxStringBytes > 0 {
					maxStringBytes = appConfig.Engine.MaxStringBytes
				}
			}

			interp, err := script.New(maxCalls, maxDepth, maxStringBytes, 128, reducers.Context{ActiveWips: wips, ReturnPolicy: policy})
			if err != nil {
				return fmt.Errorf("build interpreter: %w", err)
			}

			result, trace := interp.Execute(scriptBytes, seed, stage)
			for _, t := range trace {
				fmt.Fprintf(cmd.OutOrStdout(), "#%d %s -> %s\n", t.CallIndex, t.Opcode, t.Result.String())
			}
			fmt.Fprintf(cmd.OutOrStdout(), "result: %s\n", result.String())
			return nil
		},
	}

	cmd.Flags().StringVar(&scriptPath, "script", "", "path to a CBOR-encoded RADON script")
	cmd.Flags().StringVar(&seedJSON, "seed", "null", "JSON literal used as the seed value")
	cmd.Flags().StringVar(&stageFlag, "stage", "tally", "pipeline stage to tag produced errors with: retrieve, aggregate, or tally")
	_ = cmd.MarkFlagRequired("script")
	return cmd
}
