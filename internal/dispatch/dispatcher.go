package dispatch

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"messaging-service/internal/delivery"
	"messaging-service/internal/observability"
	"messaging-service/internal/registry"
	"messaging-service/internal/repositories"
	"messaging-service/internal/telemetry"
)

// Dispatcher is the single demultiplexing entry point for frames arriving on
// authenticated connections. Errors are isolated per inbound frame: one
// malformed or failing frame never closes the connection or leaks into other
// users' state.
type Dispatcher struct {
	registry *registry.Registry
	router   *delivery.Router
	messages repositories.MessageRepository
	reporter telemetry.Reporter
}

// New constructs a Dispatcher.
func New(reg *registry.Registry, router *delivery.Router, messages repositories.MessageRepository, reporter telemetry.Reporter) *Dispatcher {
	return &Dispatcher{
		registry: reg,
		router:   router,
		messages: messages,
		reporter: reporter,
	}
}

// OnConnect registers a freshly authenticated connection.
func (d *Dispatcher) OnConnect(userID int, transport registry.Transport) {
	d.registry.Add(userID, transport)
}

// OnDisconnect deregisters a connection. Safe to call more than once.
func (d *Dispatcher) OnDisconnect(userID int, transport registry.Transport) {
	d.registry.Remove(userID, transport)
}

// OnFrame parses one inbound frame and dispatches by action.
func (d *Dispatcher) OnFrame(ctx context.Context, userID int, transport registry.Transport, raw []byte) {
	ctx, span := otel.Tracer("messaging-service/dispatch").Start(ctx, "dispatch.frame")
	defer span.End()

	var frame inboundFrame
	if err := json.Unmarshal(raw, &frame); err != nil {
		observability.IncWSFrame(ActionProtocolError, "malformed")
		d.sendTo(transport, outboundFrame{Action: ActionProtocolError, Error: "malformed frame"})
		return
	}
	span.SetAttributes(attribute.String("frame.action", frame.Action))

	switch frame.Action {
	case ActionSendMessage:
		d.handleSendMessage(ctx, userID, transport, frame)
	case ActionChatState:
		d.handleChatState(userID, frame)
	case ActionMarkRead:
		d.handleMarkRead(ctx, userID, transport, frame)
	default:
		observability.IncWSFrame(ActionProtocolError, "unknown")
		d.sendTo(transport, outboundFrame{Action: ActionProtocolError, Error: fmt.Sprintf("unknown action %q", frame.Action)})
	}
}

func (d *Dispatcher) handleSendMessage(ctx context.Context, userID int, transport registry.Transport, frame inboundFrame) {
	if frame.Receiver == 0 || frame.Content == "" {
		observability.IncWSFrame(ActionSendMessage, "rejected")
		d.sendTo(transport, outboundFrame{Action: ActionSendMessageFailed, Error: "receiver and content are required"})
		return
	}

	msg, err := d.router.Route(ctx, userID, frame.Receiver, frame.Content)
	if err != nil {
		observability.IncWSFrame(ActionSendMessage, "error")
		d.reporter.Report(ctx, fmt.Errorf("route message from %d to %d: %w", userID, frame.Receiver, err))
		d.sendTo(transport, outboundFrame{Action: ActionSendMessageFailed, Error: "message could not be sent"})
		return
	}

	payload := marshalFrame(outboundFrame{Action: ActionReceiveMessage, Payload: msg})
	d.registry.Broadcast(msg.SenderID, payload)
	d.registry.Broadcast(msg.ReceiverID, payload)

	update := marshalFrame(outboundFrame{Action: ActionStatusUpdated, Payload: statusUpdate{
		MessageID:  msg.ID,
		SenderID:   msg.SenderID,
		ReceiverID: msg.ReceiverID,
		Status:     string(msg.Status),
	}})
	d.registry.Broadcast(msg.SenderID, update)
	d.registry.Broadcast(msg.ReceiverID, update)

	observability.IncWSFrame(ActionSendMessage, "ok")
}

func (d *Dispatcher) handleChatState(userID int, frame inboundFrame) {
	d.registry.SetPresence(userID, frame.IsActive, frame.InChatWith)
	observability.IncWSFrame(ActionChatState, "ok")
}

func (d *Dispatcher) handleMarkRead(ctx context.Context, userID int, transport registry.Transport, frame inboundFrame) {
	if frame.ContactID == 0 {
		observability.IncWSFrame(ActionMarkRead, "rejected")
		d.sendTo(transport, outboundFrame{Action: ActionMarkRead, Error: "contactId is required"})
		return
	}

	updated, err := d.messages.BulkMarkRead(ctx, frame.ContactID, userID)
	if err != nil {
		// read receipts are best-effort; no response frame is expected
		observability.IncWSFrame(ActionMarkRead, "error")
		d.reporter.Report(ctx, fmt.Errorf("mark messages read %d->%d: %w", frame.ContactID, userID, err))
		return
	}

	receipt := marshalFrame(outboundFrame{Action: ActionMessagesRead, Payload: readReceipt{
		ReaderID:  userID,
		ContactID: frame.ContactID,
		Updated:   updated,
	}})
	d.registry.Broadcast(frame.ContactID, receipt)

	observability.IncWSFrame(ActionMarkRead, "ok")
}

// sendTo writes a frame to the originating connection only.
func (d *Dispatcher) sendTo(transport registry.Transport, frame outboundFrame) {
	if !transport.IsOpen() {
		return
	}
	if err := transport.Send(marshalFrame(frame)); err != nil {
		log.Printf("websocket write error: %v", err)
	}
}

func marshalFrame(frame outboundFrame) []byte {
	payload, _ := json.Marshal(frame)
	return payload
}
