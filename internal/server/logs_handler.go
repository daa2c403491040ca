// Copyright (c) 2025 Northbound System
// Author: Nicholas Skitch
package server

import (
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/thom-preemptive/s3-vector-ingestor-sub000/internal/logger"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		// The API is expected to sit behind a trusted proxy.
		return true
	},
}

// HandleLogStream streams log lines over a WebSocket connection.
func HandleLogStream(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	loggerInstance := logger.GetDefault()
	if loggerInstance == nil {
		writeError(w, http.StatusInternalServerError, "logger not initialized")
		return
	}

	ch := loggerInstance.Subscribe()
	if ch == nil {
		writeError(w, http.StatusInternalServerError, "log stream unavailable")
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		loggerInstance.Unsubscribe(ch)
		log.Printf("Failed to upgrade log stream connection: %v", err)
		return
	}
	defer conn.Close()
	defer loggerInstance.Unsubscribe(ch)

	// Drain client frames so close and pong messages are handled.
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ping := time.NewTicker(30 * time.Second)
	defer ping.Stop()

	for {
		select {
		case line, ok := <-ch:
			if !ok {
				return
			}
			conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := conn.WriteMessage(websocket.TextMessage, []byte(line)); err != nil {
				return
			}
		case <-ping.C:
			conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-r.Context().Done():
			return
		}
	}
}
