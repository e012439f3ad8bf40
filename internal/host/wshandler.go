package host

// wshandler.go handles queries sent over a websocket using the graphql-transport-ws sub-protocol
// (see https://github.com/enisdenjo/graphql-ws/blob/master/PROTOCOL.md).  Each "subscribe" message
// carries a query which is executed and answered with a "next" message then "complete".

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const wsProtocol = "graphql-transport-ws"

// Close codes defined by the sub-protocol
const (
	closeBadRequest        = 4400
	closeUnauthorized      = 4401
	closeInitTimeout       = 4408
	closeDuplicateID       = 4409
	closeTooManyInitialise = 4429
)

// errInvalidMessage is returned by read after the connection was closed for a malformed message
var errInvalidMessage = errors.New("invalid websocket message")

type (
	wsConnection struct {
		*websocket.Conn // handle for WS communications

		h *Host // we need this for the schema, logger etc

		writeMu sync.Mutex // the connection supports one concurrent writer

		// cancel keeps track of the cancel function associated with each running operation
		//  map key = ID that identifies the operation
		//  map value = context.CancelFunc that will terminate the operation
		cancelMu sync.Mutex
		cancel   map[string]context.CancelFunc
	}

	wsMessage struct {
		Type    string          `json:"type"`
		ID      string          `json:"id,omitempty"`
		Payload json.RawMessage `json:"payload,omitempty"`
	}

	wsReply struct {
		Type    string      `json:"type"`
		ID      string      `json:"id,omitempty"`
		Payload interface{} `json:"payload,omitempty"`
	}
)

var upgrader = websocket.Upgrader{
	CheckOrigin:  func(r *http.Request) bool { return true },
	Subprotocols: []string{wsProtocol},
}

// serveWS is called in response to an HTTP request wanting to upgrade to a WS
func (h *Host) serveWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade", "error", err)
		// nothing else required here as w's HTTP status has already been set
		return
	}
	c := &wsConnection{
		Conn:   conn,
		h:      h,
		cancel: make(map[string]context.CancelFunc, 1),
	}
	defer func() {
		c.stopAll()
		if err := c.Close(); err != nil {
			h.logger.Debug("websocket close", "error", err)
		}
		h.logger.Debug("websocket finished")
	}()

	if err := h.Build(); err != nil {
		c.closeWith(websocket.CloseInternalServerErr, "schema error")
		return
	}
	if !c.init() {
		return
	}

	ctx := r.Context()
	for {
		message, err := c.read()
		if err != nil {
			return
		}

		switch message.Type {
		case "subscribe":
			if !c.start(ctx, message) {
				return
			}
		case "complete":
			c.stop(message.ID)
		case "ping":
			c.write(wsReply{Type: "pong"})
		case "pong":
			// nothing to do
		case "connection_init":
			c.closeWith(closeTooManyInitialise, "Too many initialisation requests")
			return
		default:
			h.logger.Debug("websocket unexpected message", "type", message.Type)
			c.closeWith(closeBadRequest, "Unexpected message type "+message.Type)
			return
		}
	}
}

// init handles the initial handshake by receiving a "connection_init" message and sending an "ack"
func (c *wsConnection) init() bool {
	if c.Subprotocol() != wsProtocol {
		c.closeWith(closeBadRequest, "Sub-protocol "+wsProtocol+" required")
		return false
	}
	_ = c.SetReadDeadline(time.Now().Add(c.h.initialTimeout))
	message, err := c.read()
	if errors.Is(err, errInvalidMessage) {
		return false // already closed
	}
	if err != nil {
		c.closeWith(closeInitTimeout, "Connection initialisation timeout")
		return false
	}
	if message.Type != "connection_init" {
		c.closeWith(closeUnauthorized, "Unauthorized")
		return false
	}
	_ = c.SetReadDeadline(time.Time{})
	return c.write(wsReply{Type: "connection_ack"})
}

// start executes the query of a "subscribe" message in the background.  Returns false if the
// connection has been closed because the message was invalid.
func (c *wsConnection) start(ctx context.Context, message wsMessage) bool {
	var req Request
	decoder := json.NewDecoder(bytes.NewReader(message.Payload))
	decoder.UseNumber()
	if message.ID == "" || decoder.Decode(&req) != nil {
		c.closeWith(closeBadRequest, "Invalid message received")
		return false
	}
	FixNumberVariables(req.Variables)

	// Add to our map of operations active in this ws (first checking that the ID is not in use)
	c.cancelMu.Lock()
	if _, ok := c.cancel[message.ID]; ok {
		c.cancelMu.Unlock()
		c.closeWith(closeDuplicateID, "Subscriber for "+message.ID+" already exists")
		return false
	}
	ctx, cancel := context.WithCancel(ctx)
	c.cancel[message.ID] = cancel
	c.cancelMu.Unlock()

	go func() {
		defer c.stop(message.ID)
		result := c.h.Execute(ctx, req)
		if ctx.Err() != nil {
			return // cancelled by the client
		}
		if result.Data == nil && len(result.Errors) > 0 {
			c.write(wsReply{Type: "error", ID: message.ID, Payload: result.Errors})
			return
		}
		if c.write(wsReply{Type: "next", ID: message.ID, Payload: result}) {
			c.write(wsReply{Type: "complete", ID: message.ID})
		}
	}()
	return true
}

// stop kills processing of one operation by calling the cancel function of the operation's context
func (c *wsConnection) stop(id string) {
	c.cancelMu.Lock()
	defer c.cancelMu.Unlock()
	if cancel := c.cancel[id]; cancel != nil {
		cancel()
		delete(c.cancel, id)
	}
}

// stopAll kills processing of all operations (eg before closing the websocket)
func (c *wsConnection) stopAll() {
	c.cancelMu.Lock()
	defer c.cancelMu.Unlock()
	for id, cancel := range c.cancel {
		cancel()
		delete(c.cancel, id)
	}
}

// read gets the next message.  A message that cannot be decoded closes the connection and
// returns errInvalidMessage; any other error is from the connection itself.
func (c *wsConnection) read() (wsMessage, error) {
	var message wsMessage
	_, reader, err := c.NextReader()
	if err != nil {
		c.h.logger.Debug("websocket read", "error", err)
		return message, err
	}
	if err = json.NewDecoder(reader).Decode(&message); err != nil {
		c.h.logger.Debug("websocket decode", "error", err)
		c.closeWith(closeBadRequest, "Invalid message received")
		return message, errInvalidMessage
	}
	return message, nil
}

func (c *wsConnection) write(reply wsReply) bool {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	if err := c.WriteJSON(reply); err != nil {
		c.h.logger.Debug("websocket write", "type", reply.Type, "error", err)
		return false
	}
	return true
}

// closeWith sends a close message with a sub-protocol close code
func (c *wsConnection) closeWith(code int, text string) {
	c.h.logger.Debug("websocket closing", "code", code, "reason", text)
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	_ = c.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(code, text), time.Now().Add(time.Second))
}
