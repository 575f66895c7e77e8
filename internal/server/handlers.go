package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/julienschmidt/httprouter"

	"github.com/slok/podexec/internal/api"
	"github.com/slok/podexec/internal/app/exec"
	"github.com/slok/podexec/internal/app/list"
	"github.com/slok/podexec/internal/app/status"
	"github.com/slok/podexec/internal/log"
	"github.com/slok/podexec/internal/model"
	"github.com/slok/podexec/internal/sse"
)

// WebSocket timeouts.
const (
	wsWriteWait  = 10 * time.Second
	wsReadWait   = 60 * time.Second
	wsReadLimit  = 1 << 20
	wsCloseGrace = time.Second
)

func (s *Server) execute(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req api.ExecuteRequest
	if err := s.decodeBody(w, r, &req); err != nil {
		writeError(w, err)
		return
	}

	target, err := req.Target()
	if err != nil {
		writeError(w, err)
		return
	}

	ctx := r.Context()
	events, err := s.executor.Run(ctx, exec.Request{
		Script:    target.Script,
		Namespace: target.Namespace,
		Selector:  target.Selector,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	logger := s.logger.WithValues(log.Kv{"remote-addr": r.RemoteAddr, "namespace": target.Namespace, "selector": target.Selector})
	logger.Debugf("Streaming execution")

	sw := sse.NewWriter(w)
	for ev := range events {
		msg, ok := api.MessageFromEvent(ev)
		if !ok {
			continue
		}

		// Stopping the range stops the execution.
		if err := sw.WriteJSON(msg); err != nil {
			logger.Warningf("Client gone, stopping execution: %s", err)
			return
		}
	}
}

func (s *Server) health(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	req := api.DefaultHealthRequest()
	if err := s.decodeBody(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	if err := req.Validate(); err != nil {
		writeError(w, err)
		return
	}

	ctx := r.Context()
	sw := sse.NewWriter(w)
	ticker := time.NewTicker(req.IntervalDuration())
	defer ticker.Stop()

	for i := 1; i <= req.MaxChecks; i++ {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		err := sw.WriteJSON(api.Message{
			Timestamp: api.Timestamp(s.timeNow()),
			Level:     api.LevelInfo,
			Data: api.HealthData{
				CheckNumber: i,
				TotalChecks: req.MaxChecks,
				Status:      api.StatusHealthy,
				Interval:    req.Interval,
			},
		})
		if err != nil {
			s.logger.Debugf("Health check client gone: %s", err)
			return
		}
	}
}

// executeWS runs the execution sent as the first WebSocket message and streams its
// messages back, one JSON message per event.
func (s *Server) executeWS(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Debugf("WebSocket upgrade failed: %s", err)
		return
	}
	defer conn.Close()

	conn.SetReadLimit(wsReadLimit)
	_ = conn.SetReadDeadline(time.Now().Add(wsReadWait))

	var req api.ExecuteRequest
	if err := conn.ReadJSON(&req); err != nil {
		s.logger.Debugf("Could not read WebSocket execution request: %s", err)
		s.closeWS(conn, websocket.CloseUnsupportedData, "invalid execution request")
		return
	}

	target, err := req.Target()
	if err != nil {
		s.closeWS(conn, websocket.ClosePolicyViolation, err.Error())
		return
	}

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	// The client only talks to close the connection, that cancels the execution.
	go func() {
		defer cancel()
		_ = conn.SetReadDeadline(time.Time{})
		for {
			if _, _, err := conn.NextReader(); err != nil {
				return
			}
		}
	}()

	events, err := s.executor.Run(ctx, exec.Request{
		Script:    target.Script,
		Namespace: target.Namespace,
		Selector:  target.Selector,
	})
	if err != nil {
		s.closeWS(conn, websocket.ClosePolicyViolation, err.Error())
		return
	}

	for ev := range events {
		msg, ok := api.MessageFromEvent(ev)
		if !ok {
			continue
		}

		_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
		if err := conn.WriteJSON(msg); err != nil {
			s.logger.Warningf("WebSocket client gone, stopping execution: %s", err)
			return
		}
	}

	s.closeWS(conn, websocket.CloseNormalClosure, "")
}

func (s *Server) closeWS(conn *websocket.Conn, code int, text string) {
	msg := websocket.FormatCloseMessage(code, text)
	if err := conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(wsCloseGrace)); err != nil {
		s.logger.Debugf("Could not send WebSocket close: %s", err)
	}
}

func (s *Server) listExecutions(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	q := r.URL.Query()
	req := list.Request{Namespace: q.Get("namespace")}
	if st := q.Get("state"); st != "" {
		state := model.ExecutionState(st)
		req.StateFilter = &state
	}

	executions, err := s.lister.Run(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}

	resp := api.ListExecutionsResponse{Executions: make([]api.ExecutionInfo, 0, len(executions))}
	for _, e := range executions {
		resp.Executions = append(resp.Executions, api.ExecutionInfoFromModel(e))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) getExecution(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
	e, err := s.getter.Run(r.Context(), status.Request{ID: p.ByName("id")})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, api.ExecutionInfoFromModel(*e))
}
