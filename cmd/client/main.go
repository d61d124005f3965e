package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"watchparty/internal/core/domain"
	"watchparty/internal/core/services"
	"watchparty/internal/infrastructure/backend"
	"watchparty/internal/infrastructure/catalog"
	"watchparty/pkg/config"
	"watchparty/pkg/logger"
	"watchparty/pkg/utils"

	"github.com/prometheus/client_golang/prometheus"
)

// A terminal party member: joins (or creates) a room over the configured
// store backend and renders the live timeline, presence and playback clock
// the way a browser client would.
func main() {
	configPath := flag.String("config", "configs/config.yaml", "path to config file")
	roomID := flag.String("room", "", "room id to join; empty creates a new room")
	movie := flag.String("movie", "inception", "movie slug when creating a room")
	name := flag.String("name", "guest", "display name")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		cfg = config.DefaultConfig()
	}

	zapLogger := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLogger.Sync()

	log := zapLogger.Sugar()

	store, err := backend.New(cfg, log)
	if err != nil {
		log.Fatalw("failed to create store backend", "error", err)
	}
	defer store.Close()

	movieCatalog := catalog.NewMemoryCatalog(cfg.Catalog.Movies)
	metricsService := services.NewMetricsService(prometheus.NewRegistry())
	roomService := services.NewRoomService(store, movieCatalog, metricsService, cfg.Room.TTL, log)

	ctx := context.Background()

	var id domain.RoomID
	var userID domain.UserID
	if *roomID == "" {
		created, err := roomService.CreateRoom(ctx, *movie, *name)
		if err != nil {
			log.Fatalw("failed to create room", "error", err)
		}
		id, userID = created.RoomID, created.UserID
		fmt.Printf("created room %s\nshare: %s\n", id, roomService.ShareLink(cfg.Server.Origin, id))
	} else {
		id = domain.RoomID(*roomID)
		userID, err = roomService.JoinRoom(ctx, id, "", *name)
		if err != nil {
			log.Fatalw("failed to join room", "error", err)
		}
		fmt.Printf("joined room %s as %s\n", id, userID)
	}

	session := services.NewSession(store, services.SessionConfig{
		RoomID:            id,
		UserID:            userID,
		PresenceThreshold: cfg.Presence.TimelineThreshold,
		MaxNotifications:  cfg.Room.MaxNotifications,
		HeartbeatInterval: cfg.Room.HeartbeatInterval,
		TTL:               cfg.Room.TTL,
	}, metricsService, log)

	if err := session.Start(ctx); err != nil {
		log.Fatalw("failed to start session", "error", err)
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	ticker := time.NewTicker(2 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-sigChan:
			fmt.Println("\nleaving the party...")
			closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := session.Close(closeCtx); err != nil {
				log.Warnw("failed to leave cleanly", "error", err)
			}
			return
		case <-ticker.C:
			render(session, cfg)
		}
	}
}

func render(session *services.Session, cfg *config.Config) {
	room := session.Snapshot()
	if room == nil {
		return
	}
	if err := session.Err(); err != nil {
		fmt.Printf("[connection trouble: %v; showing last known state]\n", err)
	}

	playback := session.Playback()
	state := "paused"
	if playback.IsPlaying {
		state = "playing"
	}
	fmt.Printf("\n=== %s | %s at %.0fs ===\n", room.Movie.Title, state, playback.CurrentTime)

	// The member list tolerates a longer heartbeat gap than the timeline's
	// join/leave lines do.
	for _, u := range services.ActiveUsers(room, utils.Now(), cfg.Presence.MemberListThreshold) {
		marker := " "
		if u.IsHost {
			marker = "*"
		}
		fmt.Printf("%s %s\n", marker, u.Name)
	}

	for _, entry := range session.Timeline() {
		switch entry.Kind {
		case services.EntryMessage:
			fmt.Printf("  %s: %s\n", entry.Message.UserName, entry.Message.Text)
		case services.EntryNotification:
			fmt.Printf("  -- %s --\n", entry.Notification.Message)
		}
	}
}
