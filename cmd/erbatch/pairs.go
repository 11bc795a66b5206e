package main

import (
	"context"
	"fmt"

	"github.com/hupe1980/erbatch"
	"github.com/hupe1980/erbatch/config"
	"github.com/hupe1980/erbatch/pairs"
)

func runPairs(ctx context.Context, c commonArgs, cmd pairsCmd, logger *erbatch.Logger) error {
	s, err := c.settings(func(f *config.Flags) { f.Compression = cmd.Compression })
	if err != nil {
		return err
	}

	stage, err := erbatch.ParseStage(cmd.Stage)
	if err != nil {
		return err
	}

	var ext string
	switch cmd.Format {
	case "json":
		ext = ".json"
	case "bin":
		ext = ".erps"
	default:
		return fmt.Errorf("unknown format %q", cmd.Format)
	}

	dm, err := loadModule(ctx, s, logger)
	if err != nil {
		return err
	}
	if err := dm.Setup(ctx, stage); err != nil {
		return err
	}

	bs, out, err := outputStore(ctx, cmd.Out, s.Endpoint)
	if err != nil {
		return err
	}

	for _, split := range stage.Splits() {
		ps, err := dm.PositivePairs(split)
		if err != nil {
			return err
		}
		dst := out.join(string(split) + "_pairs" + ext)
		if err := pairs.Write(ctx, bs, dst.Key, ps, s.Compression); err != nil {
			return err
		}
		logger.InfoContext(ctx, "wrote pair set", "split", string(split), "pairs", ps.Len(), "key", dst.Key)
	}
	return nil
}
