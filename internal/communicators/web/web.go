// Package web serves the JSON chat API together with the periodic status
// probe.
package web

import (
	"context"

	"clima/internal/communicators"
	"clima/internal/gateway"
	"clima/internal/session"
	"clima/internal/status"
	"clima/internal/webui"
)

func init() {
	communicators.Register(Adapter{})
}

type Adapter struct{}

func (Adapter) ID() string { return "web" }

func (Adapter) Start(ctx context.Context, gw *gateway.Gateway) error {
	cfg := gw.Config()
	log := gw.Logger().With("communicator", "web")

	sched := status.NewScheduler(gw.Prober(), cfg.StatusInterval.Std(), log)
	if err := sched.Start(); err != nil {
		return err
	}
	defer sched.Stop()

	store := session.NewStore(cfg.SessionMax, cfg.SessionTTL.Std(), gw.NewService)
	return webui.NewServer(store, gw.Prober(), cfg.WebAddr, log).Start(ctx)
}
