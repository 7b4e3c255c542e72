package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/lanfest/munchkin-lan/internal/host"
	"github.com/lanfest/munchkin-lan/internal/protocol"
)

// WatchHandler streams every session snapshot to a local UI process as
// sync_state envelopes over a websocket. Read-only: inbound frames are
// drained and discarded, mutations go through the host API instead.
func WatchHandler(h *host.Host, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := websocket.Accept(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close(websocket.StatusNormalClosure, "bye")

		watchID := "watch-" + uuid.NewString()
		updates := h.Watch(watchID)
		defer h.Unwatch(watchID)

		// Drain reads so pings are handled and closure is noticed.
		readCtx, cancelRead := context.WithCancel(r.Context())
		defer cancelRead()
		go func() {
			for {
				if _, _, err := conn.Read(readCtx); err != nil {
					cancelRead()
					return
				}
			}
		}()

		for {
			select {
			case <-readCtx.Done():
				return
			case session, ok := <-updates:
				if !ok {
					return
				}
				env, err := protocol.NewEnvelope(session.HostID, protocol.SyncState{Session: session})
				if err != nil {
					log.Error("failed to build watch snapshot", zap.Error(err))
					return
				}
				payload, err := json.Marshal(env)
				if err != nil {
					log.Error("failed to marshal watch snapshot", zap.Error(err))
					return
				}
				writeCtx, cancel := context.WithTimeout(readCtx, 3*time.Second)
				err = conn.Write(writeCtx, websocket.MessageText, payload)
				cancel()
				if err != nil {
					return
				}
			}
		}
	}
}
