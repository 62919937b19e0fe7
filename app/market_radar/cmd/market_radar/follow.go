package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/iWorld-y/market_radar/app/market_radar/pkg/engine"
	"github.com/iWorld-y/market_radar/app/market_radar/pkg/model"
)

const pollInterval = 200 * time.Millisecond

// follow 启动编排并轮询快照，阶段或小贴士变化时打印到 progress
func follow[T any](ctx context.Context, o *engine.Orchestrator[T], subject string, progress io.Writer) (engine.Snapshot[T], error) {
	if err := o.TryStart(ctx, subject); err != nil {
		return engine.Snapshot[T]{}, err
	}

	tk := time.NewTicker(pollInterval)
	defer tk.Stop()

	lastPhase, lastTip := -1, -1
	for {
		snap := o.Snapshot()
		switch snap.Status {
		case model.StatusReady:
			return snap, nil
		case model.StatusError:
			return snap, errors.New(snap.Error)
		case model.StatusPending:
			if p := snap.Pending; p != nil {
				if p.CurrentPhaseIndex != lastPhase && p.CurrentPhase != "" {
					fmt.Fprintf(progress, "[%s] %s\n", snap.Subject, p.CurrentPhase)
					lastPhase = p.CurrentPhaseIndex
				}
				if p.CurrentTipIndex != lastTip && p.CurrentTip != "" {
					fmt.Fprintf(progress, "    %s\n", p.CurrentTip)
					lastTip = p.CurrentTipIndex
				}
			}
		}

		select {
		case <-ctx.Done():
			return snap, ctx.Err()
		case <-tk.C:
		}
	}
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
