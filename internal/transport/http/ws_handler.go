package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"talentflow-assessments/internal/app"
	"talentflow-assessments/internal/builder"
	"talentflow-assessments/internal/domain"
)

type WSHandler struct {
	service  *app.AssessmentService
	logger   *zap.Logger
	upgrader websocket.Upgrader
}

func NewWSHandler(service *app.AssessmentService, logger *zap.Logger) *WSHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WSHandler{
		service: service,
		logger:  logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type selectJobPayload struct {
	JobID string `json:"jobId"`
}

type responsePayload struct {
	QuestionID string          `json:"questionId"`
	Value      domain.Response `json:"value"`
}

type togglePayload struct {
	QuestionID string `json:"questionId"`
	Option     string `json:"option"`
	Checked    bool   `json:"checked"`
}

type candidatesPayload struct {
	QuestionID string `json:"questionId"`
}

type savedPayload struct {
	Assessment domain.Assessment        `json:"assessment"`
	Issues     []builder.ReferenceIssue `json:"issues"`
}

type submittedPayload struct {
	SubmissionID string `json:"submissionId"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type errorPayload struct {
	Message string `json:"message"`
}

// ServeWS upgrades HTTP requests to websockets and wires them into the builder
// and preview use cases. Every state change reaches the client as a snapshot
// through the workspace subscription.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	workspaceID := r.URL.Query().Get("workspaceId")
	jobID := r.URL.Query().Get("jobId")
	if workspaceID == "" {
		http.Error(w, "missing workspaceId", http.StatusBadRequest)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("ws upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	ctx := r.Context()
	h.service.Open(workspaceID)
	if jobID != "" {
		if _, err := h.service.SelectJob(ctx, workspaceID, jobID); err != nil {
			_ = conn.WriteJSON(outboundMessage[errorPayload]{Type: "error", Payload: errorPayload{Message: err.Error()}})
			return
		}
	}

	updates, cancel, err := h.service.Subscribe(ctx, workspaceID)
	if err != nil {
		_ = conn.WriteJSON(outboundMessage[errorPayload]{Type: "error", Payload: errorPayload{Message: err.Error()}})
		return
	}
	defer h.service.Release(context.Background(), workspaceID)
	defer cancel()

	send := make(chan outboundMessage[any], 16)
	closeSignals := make(chan struct{})
	writerDone := make(chan struct{})
	updatesDone := make(chan struct{})

	go func() {
		defer close(writerDone)
		for msg := range send {
			if err := conn.WriteJSON(msg); err != nil {
				h.logger.Debug("ws write error", zap.String("workspace", workspaceID), zap.Error(err))
				return
			}
		}
	}()

	go func() {
		defer close(updatesDone)
		for {
			select {
			case update, ok := <-updates:
				if !ok {
					return
				}
				select {
				case send <- outboundMessage[any]{Type: "snapshot", Payload: update}:
				case <-closeSignals:
					return
				}
			case <-closeSignals:
				return
			}
		}
	}()

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}
		h.service.Touch(ctx, workspaceID)
		if reply, ok := h.dispatch(ctx, workspaceID, inbound); ok {
			send <- reply
		}
	}

	close(closeSignals)
	<-updatesDone
	close(send)
	<-writerDone
}

// dispatch runs one inbound command. Snapshots are delivered by the
// subscription, so only results and errors produce a direct reply.
func (h *WSHandler) dispatch(ctx context.Context, workspaceID string, inbound inboundMessage) (outboundMessage[any], bool) {
	var err error
	switch inbound.Type {
	case "selectJob":
		var payload selectJobPayload
		if err = json.Unmarshal(inbound.Payload, &payload); err != nil || payload.JobID == "" {
			return errorMessage("invalid selectJob payload"), true
		}
		_, err = h.service.SelectJob(ctx, workspaceID, payload.JobID)
	case "edit":
		var op builder.Op
		if err = json.Unmarshal(inbound.Payload, &op); err != nil {
			return errorMessage("invalid edit payload"), true
		}
		_, err = h.service.Edit(ctx, workspaceID, op)
	case "response":
		var payload responsePayload
		if err = json.Unmarshal(inbound.Payload, &payload); err != nil || payload.QuestionID == "" {
			return errorMessage("invalid response payload"), true
		}
		_, err = h.service.SetResponse(ctx, workspaceID, payload.QuestionID, payload.Value)
	case "toggle":
		var payload togglePayload
		if err = json.Unmarshal(inbound.Payload, &payload); err != nil || payload.QuestionID == "" {
			return errorMessage("invalid toggle payload"), true
		}
		_, err = h.service.ToggleChoice(ctx, workspaceID, payload.QuestionID, payload.Option, payload.Checked)
	case "candidates":
		var payload candidatesPayload
		if err = json.Unmarshal(inbound.Payload, &payload); err != nil {
			return errorMessage("invalid candidates payload"), true
		}
		candidates, err := h.service.Candidates(ctx, workspaceID, payload.QuestionID)
		if err != nil {
			return errorMessage(err.Error()), true
		}
		return outboundMessage[any]{Type: "candidates", Payload: candidates}, true
	case "save":
		saved, issues, err := h.service.Save(ctx, workspaceID)
		if err != nil {
			return errorMessage(err.Error()), true
		}
		if issues == nil {
			issues = []builder.ReferenceIssue{}
		}
		return outboundMessage[any]{Type: "saved", Payload: savedPayload{Assessment: saved, Issues: issues}}, true
	case "submit":
		sub, err := h.service.Submit(ctx, workspaceID)
		var verr *domain.ValidationError
		if errors.As(err, &verr) {
			return outboundMessage[any]{Type: "validationError", Payload: verr}, true
		}
		if err != nil {
			return errorMessage(err.Error()), true
		}
		return outboundMessage[any]{Type: "submitted", Payload: submittedPayload{SubmissionID: sub.SubmissionID}}, true
	default:
		return errorMessage("unsupported message type"), true
	}
	if err != nil {
		return errorMessage(err.Error()), true
	}
	return outboundMessage[any]{}, false
}

func errorMessage(msg string) outboundMessage[any] {
	return outboundMessage[any]{Type: "error", Payload: errorPayload{Message: msg}}
}
