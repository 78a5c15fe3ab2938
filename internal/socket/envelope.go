package socket

import (
	"encoding/json"
	"fmt"

	"github.com/pueued/pueue-go/internal/handlers"
)

// Envelope is the wire shape of every frame: a request/reply type tag
// plus its JSON body. The tag lets the receiving side pick the concrete
// Go type to unmarshal Payload into without a second round trip.
type Envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// requestTypes maps an envelope Type to a constructor for its concrete
// request struct, used when decoding an incoming request frame.
var requestTypes = map[string]func() interface{}{
	"add":        func() interface{} { return &handlers.AddRequest{} },
	"remove":     func() interface{} { return &handlers.RemoveRequest{} },
	"kill":       func() interface{} { return &handlers.KillRequest{} },
	"pause":      func() interface{} { return &handlers.PauseRequest{} },
	"start":      func() interface{} { return &handlers.StartRequest{} },
	"stash":      func() interface{} { return &handlers.StashRequest{} },
	"enqueue":    func() interface{} { return &handlers.EnqueueRequest{} },
	"switch":     func() interface{} { return &handlers.SwitchRequest{} },
	"edit":       func() interface{} { return &handlers.EditRequest{} },
	"group":      func() interface{} { return &handlers.GroupRequest{} },
	"clean":      func() interface{} { return &handlers.CleanRequest{} },
	"reset":      func() interface{} { return &handlers.ResetRequest{} },
	"status":     func() interface{} { return &handlers.StatusRequest{} },
	"log":        func() interface{} { return &handlers.LogRequest{} },
	"stream_log": func() interface{} { return &handlers.StreamLogRequest{} },
}

// decodeRequest turns an incoming Envelope into its concrete request
// struct, ready for Dispatcher.Dispatch.
func decodeRequest(env Envelope) (interface{}, error) {
	newReq, ok := requestTypes[env.Type]
	if !ok {
		return nil, fmt.Errorf("socket: unrecognized request type %q", env.Type)
	}
	req := newReq()
	if len(env.Payload) > 0 {
		if err := json.Unmarshal(env.Payload, req); err != nil {
			return nil, fmt.Errorf("socket: decode %s payload: %w", env.Type, err)
		}
	}
	return req, nil
}

// encodeReply wraps a Reply in an Envelope ready to write as a frame.
func encodeReply(reply handlers.Reply) ([]byte, error) {
	payload, err := json.Marshal(reply)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Envelope{Type: "reply", Payload: payload})
}
