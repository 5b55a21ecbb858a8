package main

import (
	"net/http"
	"os"
	"time"

	"github.com/gorilla/websocket"
	"github.com/joho/godotenv"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/xiphoidxray/fruitbox-fsg/server/srv"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  2048,
	WriteBufferSize: 2048,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

func wsHandler(h *srv.Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Warn().Err(err).Str("remote", r.RemoteAddr).Msg("websocket upgrade failed")
			return
		}
		log.Debug().Str("remote", r.RemoteAddr).Str("user_agent", r.UserAgent()).Msg("client connected")
		h.HandleWS(conn)
	}
}

func main() {
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("no .env file loaded")
	}

	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	if lvl, err := zerolog.ParseLevel(os.Getenv("FRUITBOX_LOG_LEVEL")); err == nil && lvl != zerolog.NoLevel {
		zerolog.SetGlobalLevel(lvl)
	}

	cfgPath := os.Getenv("FRUITBOX_CONFIG")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}
	cfg, err := loadConfig(cfgPath)
	if err != nil {
		log.Fatal().Err(err).Msg("config load failed")
	}

	hub := srv.NewHub(srv.Config{
		RoundSecs:       cfg.RoundSecs,
		MaxPlayers:      cfg.MaxPlayers,
		Rows:            cfg.Board.Rows,
		Cols:            cfg.Board.Cols,
		LeaderboardSize: cfg.LeaderboardSize,
		DataDir:         cfg.DataDir,
	}, clockwork.NewRealClock())

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", wsHandler(hub))
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) { _, _ = w.Write([]byte("ok")) })
	mux.Handle("/", http.FileServer(http.Dir(cfg.StaticDir)))

	s := &http.Server{
		Addr:         cfg.Addr,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	log.Info().Str("addr", cfg.Addr).Int("round_secs", cfg.RoundSecs).Msg("server listening")
	log.Fatal().Err(s.ListenAndServe()).Msg("server stopped")
}
