//go:build vmdebug

// Package debugserver implements §5.1's debug channel: an optional,
// build-tag-gated inspection surface that steps a single execution and
// reports where it stopped (pc and call depth) to a websocket client. It replaces
// terminal stdin/stdout with a small JSON protocol over
// gorilla/websocket and file:line breakpoints with instruction
// addresses, since the register VM has no source positions.
package debugserver

import (
	"net/http"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"rvmcore/internal/engine"
)

// State is one step/pause/breakpoint state the debug server can be in.
type State int

const (
	Running State = iota
	Paused
	StepInto
	StepOver
	StepOut
	Terminated
)

// Breakpoint is a single instruction-address breakpoint.
type Breakpoint struct {
	ID       string `json:"id"`
	PC       uint32 `json:"pc"`
	Enabled  bool   `json:"enabled"`
	HitCount int    `json:"hitCount"`
}

// Event is one message the server pushes to the client. The server
// sends only "stopped" events, at a breakpoint or a step landing.
type Event struct {
	Type      string `json:"type"` // "stopped"
	PC        uint32 `json:"pc,omitempty"`
	CallDepth int    `json:"callDepth,omitempty"`
	Message   string `json:"message,omitempty"`
}

// command is one inbound client message.
type command struct {
	Op   string `json:"op"` // "continue" | "step" | "next" | "finish" | "break" | "delete" | "quit"
	PC   uint32 `json:"pc,omitempty"`
	ID   string `json:"id,omitempty"`
}

// Server drives one debugged Engine execution over one websocket
// connection. It is not safe for concurrent use by more than one
// client at a time, matching the engine's own single-execution
// constraint.
type Server struct {
	mu          sync.Mutex
	eng         *engine.Engine
	conn        *websocket.Conn
	breakpoints map[string]*Breakpoint
	state       State
	stepDepth   int // call depth captured when a StepOver/StepOut began

	resume       chan struct{} // buffered 1: a pending signal is never lost waiting for onInstruction to receive it
	resumeClosed bool
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// NewServer wires a debug hook into eng; the engine is otherwise
// driven normally by the caller (it still owns calling Execute).
func NewServer(eng *engine.Engine) *Server {
	s := &Server{
		eng:         eng,
		breakpoints: make(map[string]*Breakpoint),
		state:       Paused,
		resume:      make(chan struct{}, 1),
	}
	eng.DebugHook = s.onInstruction
	return s
}

// signalResume wakes a blocked onInstruction. The channel is buffered
// by one, so a command that arrives before onInstruction reaches its
// receive still lands instead of being dropped by a non-blocking send
// against an unbuffered channel. Caller must hold s.mu.
func (s *Server) signalResume() {
	if s.resumeClosed {
		return
	}
	select {
	case s.resume <- struct{}{}:
	default:
	}
}

// closeResume unblocks a blocked onInstruction permanently and is safe
// to call more than once. Caller must hold s.mu.
func (s *Server) closeResume() {
	if s.resumeClosed {
		return
	}
	s.resumeClosed = true
	close(s.resume)
}

// ServeHTTP upgrades one connection and blocks, relaying events and
// accepting commands until the client disconnects or the debugged
// execution terminates.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	s.mu.Lock()
	s.conn = conn
	s.mu.Unlock()

	for {
		var c command
		if err := conn.ReadJSON(&c); err != nil {
			s.mu.Lock()
			s.state = Terminated
			s.closeResume()
			s.mu.Unlock()
			return
		}
		s.handleCommand(c)
	}
}

func (s *Server) handleCommand(c command) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch c.Op {
	case "continue":
		s.state = Running
	case "step":
		s.state = StepInto
	case "next":
		s.state = StepOver
		s.stepDepth = s.eng.CallDepth()
	case "finish":
		s.state = StepOut
		s.stepDepth = s.eng.CallDepth()
	case "break":
		id := uuid.NewString()
		s.breakpoints[id] = &Breakpoint{ID: id, PC: c.PC, Enabled: true}
	case "delete":
		delete(s.breakpoints, c.ID)
	case "quit":
		s.state = Terminated
		s.closeResume()
		return
	default:
		return
	}

	s.signalResume()
}

// onInstruction is the engine.Engine.DebugHook callback: it decides
// whether the current instruction is a stopping point and, if so,
// reports it and blocks until a client command resumes execution.
func (s *Server) onInstruction(pc uint32, callDepth int) bool {
	s.mu.Lock()
	stop := false
	switch s.state {
	case StepInto:
		stop = true
	case StepOver:
		stop = callDepth <= s.stepDepth
	case StepOut:
		stop = callDepth < s.stepDepth
	case Terminated:
		s.mu.Unlock()
		return false
	default:
		for _, bp := range s.breakpoints {
			if bp.Enabled && bp.PC == pc {
				bp.HitCount++
				stop = true
				break
			}
		}
	}
	if !stop {
		s.mu.Unlock()
		return true
	}
	s.state = Paused
	conn := s.conn
	s.mu.Unlock()

	if conn != nil {
		_ = conn.WriteJSON(Event{Type: "stopped", PC: pc, CallDepth: callDepth})
	}
	<-s.resume
	return true
}
