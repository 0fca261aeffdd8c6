// Control socket: lets a second invocation hand its request, or a locale
// change, to the picker that is already running.
package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"app-selector/internal/request"
)

const (
	controlKindRequest = "request"
	controlKindLocale  = "locale"

	controlTimeout = 2 * time.Second
)

type controlEnvelope struct {
	Kind   string          `json:"kind"`
	Bundle *request.Bundle `json:"bundle,omitempty"`
	Locale string          `json:"locale,omitempty"`
}

type controlReply struct {
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

var errNoInstance = errors.New("no running instance")

type controlServer struct {
	ln   net.Listener
	path string
	log  *zap.Logger
	wg   sync.WaitGroup
}

// listenControl binds the control socket. A socket file left behind by a
// dead instance is replaced; binding over a live instance fails.
func listenControl(path string, log *zap.Logger) (*controlServer, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("control socket dir: %w", err)
	}

	ln, err := net.Listen("unix", path)
	if errors.Is(err, syscall.EADDRINUSE) {
		if conn, dialErr := net.DialTimeout("unix", path, controlTimeout); dialErr == nil {
			conn.Close()
			return nil, fmt.Errorf("listen %s: %w", path, err)
		}
		log.Info("removing stale control socket", zap.String("path", path))
		if rmErr := os.Remove(path); rmErr != nil {
			return nil, fmt.Errorf("remove stale socket: %w", rmErr)
		}
		ln, err = net.Listen("unix", path)
	}
	if err != nil {
		return nil, fmt.Errorf("listen %s: %w", path, err)
	}

	return &controlServer{ln: ln, path: path, log: log}, nil
}

// serve accepts connections until Close, handing each decoded message to
// send.
func (c *controlServer) serve(send func(tea.Msg)) {
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		for {
			conn, err := c.ln.Accept()
			if err != nil {
				if !errors.Is(err, net.ErrClosed) {
					c.log.Error("control accept failed", zap.Error(err))
				}
				return
			}
			c.handle(conn, send)
		}
	}()
}

func (c *controlServer) handle(conn net.Conn, send func(tea.Msg)) {
	defer conn.Close()
	_ = conn.SetDeadline(time.Now().Add(controlTimeout))

	var env controlEnvelope
	reply := controlReply{OK: true}
	if err := json.NewDecoder(conn).Decode(&env); err != nil {
		reply = controlReply{Error: err.Error()}
	} else if msg, err := env.msg(); err != nil {
		reply = controlReply{Error: err.Error()}
	} else {
		c.log.Info("control message", zap.String("kind", env.Kind))
		send(msg)
	}

	if reply.Error != "" {
		c.log.Warn("bad control message", zap.String("error", reply.Error))
	}
	_ = json.NewEncoder(conn).Encode(reply)
}

func (e controlEnvelope) msg() (tea.Msg, error) {
	switch e.Kind {
	case controlKindRequest:
		if e.Bundle == nil {
			return nil, errors.New("request without bundle")
		}
		return requestMsg{bundle: e.Bundle}, nil
	case controlKindLocale:
		return localeChangedMsg{locale: e.Locale}, nil
	default:
		return nil, fmt.Errorf("unknown control kind %q", e.Kind)
	}
}

// Close stops accepting and removes the socket file.
func (c *controlServer) Close() error {
	err := c.ln.Close()
	c.wg.Wait()
	_ = os.Remove(c.path)
	return err
}

// sendControl delivers env to the running instance at path.
func sendControl(path string, env controlEnvelope) error {
	conn, err := net.DialTimeout("unix", path, controlTimeout)
	if err != nil {
		return fmt.Errorf("%w: %v", errNoInstance, err)
	}
	defer conn.Close()
	_ = conn.SetDeadline(time.Now().Add(controlTimeout))

	if err := json.NewEncoder(conn).Encode(env); err != nil {
		return fmt.Errorf("send %s: %w", env.Kind, err)
	}

	var reply controlReply
	if err := json.NewDecoder(conn).Decode(&reply); err != nil {
		return fmt.Errorf("read reply: %w", err)
	}
	if !reply.OK {
		return fmt.Errorf("running instance rejected %s: %s", env.Kind, reply.Error)
	}
	return nil
}
