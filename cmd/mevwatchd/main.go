// Command mevwatchd runs the full pipeline described in spec §5: a mempool
// tap, the bus it publishes onto, the opportunity writer that consumes it,
// the periodic cleanup loop, and the read-only HTTP surface, all sharing one
// RPC pool and one database connection.
package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/shadowline/mevwatch/bus"
	"github.com/shadowline/mevwatch/cache"
	"github.com/shadowline/mevwatch/chainclient"
	"github.com/shadowline/mevwatch/cleanup"
	mcommon "github.com/shadowline/mevwatch/common"
	"github.com/shadowline/mevwatch/config"
	"github.com/shadowline/mevwatch/evaluator"
	"github.com/shadowline/mevwatch/httpapi"
	"github.com/shadowline/mevwatch/mempool"
	"github.com/shadowline/mevwatch/store"
)

var log = mcommon.NewLogger("mevwatchd")

func main() {
	if err := run(); err != nil {
		log.Error("fatal", "err", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rpcPool := chainclient.New(cfg.HTTPRPCURLs, cfg.RPCCallTimeout, cfg.RPCMaxRetries, cfg.RPCBaseBackoff)

	db, err := store.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer db.Close()

	tokenCache := cache.NewTokenCache(cfg.ChainID, store.NewTokenRepo(db), rpcPool)
	factoryCache := cache.NewFactoryCache(cfg.ChainID, store.NewFactoryRepo(db), rpcPool)
	poolCache := cache.NewPoolCache(cfg.ChainID, store.NewPoolRepo(db), rpcPool, cfg.PoolLookupTimeout)
	opps := store.NewOpportunityRepo(db)

	eval := evaluator.New(cfg, tokenCache, factoryCache, poolCache, rpcPool)

	producer, err := bus.NewProducer(cfg.KafkaBrokers, cfg.KafkaClientID, cfg.TransactionsTopic)
	if err != nil {
		return err
	}
	defer producer.Close()

	consumer, err := bus.NewConsumer(cfg.KafkaBrokers, cfg.KafkaClientID, cfg.KafkaGroupID, cfg.TransactionsTopic)
	if err != nil {
		return err
	}
	defer consumer.Close()

	writer := bus.NewWriter(consumer, eval, opps, rpcPool, cfg.ChainID, cfg.MessageMaxAge)

	hub := httpapi.NewHub()
	writer.SetPublisher(hub)
	ws := httpapi.NewWSBroadcaster()
	hubStop := make(chan struct{})

	tap := mempool.New(cfg, rpcPool, producer)
	cleanupLoop := cleanup.New(opps, cfg.CleanupInterval)
	server := httpapi.NewServer(cfg.HTTPListenAddr, opps, cfg.ChainID, ws)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return tap.Run(gctx) })
	g.Go(func() error { return writer.Run(gctx) })
	g.Go(func() error { return cleanupLoop.Run(gctx) })
	g.Go(func() error {
		hub.Run(hubStop, ws)
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		close(hubStop)
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.RPCCallTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})
	g.Go(func() error {
		if err := server.ListenAndServe(); err != nil {
			return err
		}
		return nil
	})

	log.Info("mevwatchd started", "chainId", cfg.ChainID, "listenAddr", cfg.HTTPListenAddr)

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	log.Info("mevwatchd shutting down")
	return nil
}
