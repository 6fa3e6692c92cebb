package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/natak-game/natak-server-go/internal/game"
	"github.com/natak-game/natak-server-go/internal/game/rules"
)

var (
	serverAddr = flag.String("server", "localhost:8080", "address of the Natak HTTP server")
	gameID     = flag.String("game", "", "id of the game to follow")
	raw        = flag.Bool("raw", false, "print events as JSON")
)

func main() {
	flag.Parse()

	logger, err := zap.NewDevelopment()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if *gameID == "" {
		fmt.Fprintln(os.Stderr, "usage: watch -game <id> [-server host:port] [-raw]")
		os.Exit(2)
	}

	u := url.URL{Scheme: "ws", Host: *serverAddr, Path: "/api/v1/natak/" + *gameID + "/events"}
	conn, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		logger.Fatal("failed to connect", zap.String("url", u.String()), zap.Error(err))
	}
	defer conn.Close()
	logger.Info("watching game", zap.String("game_id", *gameID))

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			_, message, err := conn.ReadMessage()
			if err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure) {
					logger.Warn("connection closed", zap.Error(err))
				}
				return
			}
			if *raw {
				fmt.Println(string(message))
				continue
			}
			var evt rules.Event
			if err := json.Unmarshal(message, &evt); err != nil {
				logger.Warn("unreadable event", zap.Error(err))
				continue
			}
			fmt.Println(describe(evt))
		}
	}()

	select {
	case <-done:
	case sig := <-sigChan:
		logger.Info("received signal", zap.String("signal", sig.String()))
		conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(time.Second))
		select {
		case <-done:
		case <-time.After(time.Second):
		}
	}
}

// describe renders an event as one human readable line.
func describe(evt rules.Event) string {
	var b strings.Builder
	ts := evt.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}
	fmt.Fprintf(&b, "%s %-22s", ts.Format("15:04:05"), evt.Type)
	if evt.Player != 0 {
		fmt.Fprintf(&b, " %s", game.Color(evt.Player))
	}
	if evt.Target != 0 {
		fmt.Fprintf(&b, " -> %s", game.Color(evt.Target))
	}
	if evt.Amount != 0 {
		fmt.Fprintf(&b, " %d", evt.Amount)
	}
	if len(evt.Resources) > 0 {
		fmt.Fprintf(&b, " %s", evt.Resources)
	}
	if evt.Data != "" {
		fmt.Fprintf(&b, " (%s)", evt.Data)
	}
	return b.String()
}
