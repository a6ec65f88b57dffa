package main

import (
	"context"
	"flag"
	"fmt"
	"strconv"

	"clinic_sync_backend/internal/eligibility"
	eligrepo "clinic_sync_backend/internal/eligibility/repository"
	"clinic_sync_backend/internal/policy"
	"clinic_sync_backend/platform/config"
	"clinic_sync_backend/platform/db"
	"clinic_sync_backend/platform/logger"
	"clinic_sync_backend/platform/validator"
)

type clientIDList []int64

func (l *clientIDList) String() string {
	return fmt.Sprint(*l)
}

func (l *clientIDList) Set(value string) error {
	id, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid client id %q", value)
	}
	*l = append(*l, id)
	return nil
}

func main() {
	var forceClients clientIDList
	forceAll := flag.Bool("force-all", false, "drop and rewrite links for every client")
	flag.Var(&forceClients, "client-id", "force-recompute links for this client id (repeatable)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.New(cfg.Env)
	log.Info("starting eligibility sync",
		"env", cfg.Env,
		"force_all", *forceAll,
		"forced_clients", len(forceClients),
	)

	ctx := context.Background()

	pol, err := policy.Load(cfg.GetPolicyPath(), validator.New())
	if err != nil {
		log.Error("failed to load sync policy", "error", err)
		panic("failed to load sync policy: " + err.Error())
	}

	pool, err := db.NewPool(ctx, cfg)
	if err != nil {
		log.Error("failed to connect to database", "error", err)
		panic("failed to connect to database: " + err.Error())
	}
	defer pool.Close()

	svc := eligibility.NewService(eligrepo.New(pool), pol, log)

	if _, err := svc.Run(ctx, eligibility.Options{
		ForceAll:       *forceAll,
		ForceClientIDs: forceClients,
	}); err != nil {
		log.Error("eligibility sync failed", "error", err)
		panic("eligibility sync failed: " + err.Error())
	}
}
