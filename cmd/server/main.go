package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"icehockey/internal/adminhttp"
	"icehockey/internal/config"
	"icehockey/internal/masterserver"
	"icehockey/internal/physics"
	"icehockey/internal/replay"
	"icehockey/internal/scoredb"
	"icehockey/internal/server"
)

func main() {
	log.Println("🏒 ================================")
	log.Println("🏒  ICE HOCKEY - GAME SERVER")
	log.Println("🏒 ================================")

	appConfig := config.Load()
	log.Printf("🌐 UDP listener on port %d (%d Hz tick)", appConfig.Network.Port, appConfig.Network.TickRate)
	log.Printf("🎮 Server mode: %v, max players: %d", appConfig.Server.Mode, appConfig.Server.PlayerMax)

	scores := scoredb.NewStore()

	replayWriter, err := replay.New(appConfig.Replay, appConfig.Server.ServerName, time.Now())
	if err != nil {
		log.Printf("⚠️ Replay writer disabled: %v", err)
	} else if replayWriter != nil {
		log.Printf("📼 Replay recording to %s", appConfig.Replay.Dir)
	}

	masterClient := masterserver.New(appConfig.Master, appConfig.Network.Port)
	if masterClient != nil {
		log.Printf("📡 Master server heartbeat enabled: %s", appConfig.Master.ResolveURL)
	}

	srv := server.New(appConfig, physics.New(), scores, replayWriter, masterClient)

	hub := adminhttp.NewHub(srv)
	router := adminhttp.NewRouter(adminhttp.RouterConfig{
		Admin:    appConfig.Admin,
		Provider: srv,
		Hub:      hub,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hubStop := make(chan struct{})
	go hub.Run(250*time.Millisecond, hubStop)

	httpServer := &http.Server{Addr: appConfig.Admin.Addr, Handler: router}
	go func() {
		log.Printf("🌐 Admin HTTP surface on %s", appConfig.Admin.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("⚠️ Admin HTTP server stopped: %v", err)
		}
	}()

	go func() {
		if err := srv.Run(ctx); err != nil {
			log.Fatalf("❌ Server exited: %v", err)
		}
	}()

	log.Println("✅ Server ready! Press Ctrl+C to stop.")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("🛑 Shutting down...")
	cancel()
	close(hubStop)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	httpServer.Shutdown(shutdownCtx)

	if replayWriter != nil {
		replayWriter.Close()
	}
	log.Println("👋 Goodbye!")
}
