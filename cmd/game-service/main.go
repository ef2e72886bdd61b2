package main

import (
	"context"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/radieske/barobets-game-poc/internal/game/directory"
	"github.com/radieske/barobets-game-poc/internal/game/engine"
	ghttp "github.com/radieske/barobets-game-poc/internal/game/http"
	kpub "github.com/radieske/barobets-game-poc/internal/game/producer"
	grepo "github.com/radieske/barobets-game-poc/internal/game/repo"
	"github.com/radieske/barobets-game-poc/internal/game/wallet"
	"github.com/radieske/barobets-game-poc/internal/game/ws"
	sharedcache "github.com/radieske/barobets-game-poc/internal/shared/cache"
	"github.com/radieske/barobets-game-poc/internal/shared/config"
	"github.com/radieske/barobets-game-poc/internal/shared/db"
	skafka "github.com/radieske/barobets-game-poc/internal/shared/kafka"
	"github.com/radieske/barobets-game-poc/internal/shared/logger"
	"github.com/radieske/barobets-game-poc/internal/shared/metrics"
)

func main() {
	cfg := config.Load()
	log, err := logger.New("game-service", cfg.Env)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	// Postgres: roster persistido do BaroBets
	pg, err := db.ConnectPostgres(cfg.PostgresDSN)
	if err != nil {
		log.Fatal("postgres connect", zap.Error(err))
	}
	defer pg.Close()

	// Redis: nomes de exibição + feed de resultados pro WS
	rdb, err := sharedcache.ConnectRedis(cfg.RedisAddr)
	if err != nil {
		log.Fatal("redis connect", zap.Error(err))
	}
	defer rdb.Close()

	// Kafka writers (guess_placed, game_finished)
	guessWriter := skafka.NewWriter(cfg.KafkaBrokers, cfg.TopicGuessPlaced)
	defer guessWriter.Close()
	finishedWriter := skafka.NewWriter(cfg.KafkaBrokers, cfg.TopicGameFinished)
	defer finishedWriter.Close()

	// deps do engine
	rosterRepo := grepo.NewPostgres(pg)
	wcli := wallet.New(cfg.WalletURL)
	dir := directory.New(rdb)

	reg := engine.NewRegistry(log, wcli, rosterRepo, dir, nil)

	// restaura o roster salvo no boot
	snap, err := rosterRepo.LoadAll(context.Background())
	if err != nil {
		log.Fatal("roster load", zap.Error(err))
	}
	reg.Restore(snap)
	log.Info("roster restored", zap.Int("games", len(snap.Games)), zap.Int64("lastId", snap.LastID))

	publ := kpub.NewKafkaPublisher(guessWriter, finishedWriter)

	// Métricas Prometheus do ciclo de vida dos jogos
	guesses := prometheus.NewCounter(prometheus.CounterOpts{Name: "barobets_guesses_accepted_total", Help: "palpites aceitos"})
	finished := prometheus.NewCounter(prometheus.CounterOpts{Name: "barobets_games_finished_total", Help: "jogos finalizados"})
	rewards := prometheus.NewCounter(prometheus.CounterOpts{Name: "barobets_reward_coins_total", Help: "moedas pagas em prêmios"})
	prometheus.MustRegister(guesses, finished, rewards)

	api := ghttp.NewServer(log, reg, publ)
	api.OnGuessAccepted = func() { guesses.Inc() }
	api.OnGameFinished = func() { finished.Inc() }
	api.OnRewardPaid = func(coins int64) { rewards.Add(float64(coins)) }

	// Hub WebSocket: quadros de resultado chegam do results-worker via Redis Pub/Sub
	hub := ws.NewHub(func(*http.Request) bool { return true })
	ws.StartRedisSubscriber(context.Background(), log, rdb, cfg.RedisPubSubChannel, hub)

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", hub.HandleWS)
	mux.Handle("/", api.Router())

	// metrics/health em porta separada
	metrics.StartMetricsServer(cfg.MetricsPort,
		func(ctx context.Context) error { return pg.PingContext(ctx) },
		func(ctx context.Context) error { return rdb.Ping(ctx).Err() },
	)

	apiSrv := &http.Server{Addr: ":" + cfg.HTTPPort, Handler: mux}
	log.Info("game-service listening", zap.String("addr", apiSrv.Addr))
	if err := apiSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal("api", zap.Error(err))
	}
}
