package app

import (
	"github.com/janlopes/HiLo-Game/internal/config"
	http_game "github.com/janlopes/HiLo-Game/internal/delivery/http/game"
	http_init "github.com/janlopes/HiLo-Game/internal/delivery/http/init"
	http_match "github.com/janlopes/HiLo-Game/internal/delivery/http/match"
	http_room "github.com/janlopes/HiLo-Game/internal/delivery/http/room"
	ws_room "github.com/janlopes/HiLo-Game/internal/delivery/ws/room"
	infra_pg_init "github.com/janlopes/HiLo-Game/internal/infra/postgres/init"
	infra_postgres_match "github.com/janlopes/HiLo-Game/internal/infra/postgres/match"
	infra_redis_init "github.com/janlopes/HiLo-Game/internal/infra/redis/init"
	infra_redis_roomstate "github.com/janlopes/HiLo-Game/internal/infra/redis/roomstate"
	"github.com/janlopes/HiLo-Game/internal/service/roomlock"
	usecase_game "github.com/janlopes/HiLo-Game/internal/usecase/game"
	usecase_match "github.com/janlopes/HiLo-Game/internal/usecase/match"
)

func Go(cfg *config.Config) {
	redisConn := infra_redis_init.MustEstablishConn(cfg.Redis)
	pgConn := infra_pg_init.MustEstablishConn(cfg.Postgres)

	roomRepository := infra_redis_roomstate.New(redisConn)
	matchRepository := infra_postgres_match.New(pgConn)
	locker := roomlock.New()

	hub := ws_room.NewHub()
	go hub.Run()

	matchUC := usecase_match.New(matchRepository)
	gameUC := usecase_game.New(roomRepository, matchUC, hub, locker)

	controllerPool := http_init.NewControllerPool()
	controllerPool.Add(http_room.New(gameUC))
	controllerPool.Add(http_game.New(gameUC))
	controllerPool.Add(http_match.New(matchUC))
	controllerPool.Add(ws_room.NewController(hub))

	controllerPool.Register()
	controllerPool.RunAll(cfg.HTTP.Port)
}
