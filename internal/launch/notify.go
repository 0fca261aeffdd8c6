package launch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"strconv"
	"time"

	"go.uber.org/zap"

	"app-selector/internal/request"
)

// ErrNoDaemon is returned when no daemon socket is configured.
var ErrNoDaemon = errors.New("no daemon socket configured")

// CancelCommand is the fire-and-forget message telling the daemon that a
// legacy caller's request was cancelled.
type CancelCommand struct {
	Cmd        string `json:"cmd"`
	SendResult string `json:"send_result"`
	CallerPID  string `json:"caller_pid"`
	CalleePID  string `json:"callee_pid"`
}

// Messenger delivers a command without waiting for a reply.
type Messenger interface {
	Send(cmd CancelCommand) error
}

// SocketMessenger writes commands as JSON datagrams to a unix socket.
type SocketMessenger struct {
	Path    string
	Timeout time.Duration
}

// Send implements Messenger.
func (m SocketMessenger) Send(cmd CancelCommand) error {
	if m.Path == "" {
		return ErrNoDaemon
	}
	payload, err := json.Marshal(cmd)
	if err != nil {
		return err
	}

	timeout := m.Timeout
	if timeout <= 0 {
		timeout = time.Second
	}
	conn, err := net.DialTimeout("unixgram", m.Path, timeout)
	if err != nil {
		return fmt.Errorf("dial daemon: %w", err)
	}
	defer conn.Close()

	_ = conn.SetWriteDeadline(time.Now().Add(timeout))
	if _, err := conn.Write(payload); err != nil {
		return fmt.Errorf("send %s: %w", cmd.Cmd, err)
	}
	return nil
}

// Notification says which caller notification path ran.
type Notification int

const (
	NotifyNone Notification = iota
	NotifyRelaunch
	NotifyLegacyCancel
)

func (n Notification) String() string {
	switch n {
	case NotifyRelaunch:
		return "relaunch"
	case NotifyLegacyCancel:
		return "legacy-cancel"
	default:
		return "none"
	}
}

// Notifier tells the caller how the picker ended.
type Notifier struct {
	launcher  Launcher
	messenger Messenger
	selfPID   int
	log       *zap.Logger
}

// NewNotifier returns a notifier. selfPID is reported as the callee.
func NewNotifier(l Launcher, m Messenger, selfPID int, log *zap.Logger) *Notifier {
	if log == nil {
		log = zap.NewNop()
	}
	return &Notifier{launcher: l, messenger: m, selfPID: selfPID, log: log}
}

// Notify runs the caller notification for the session bundle.
//
// With a caller_noti id whose app is running, that app is relaunched with
// the bundle; start_info is set to "c" first when nothing was launched.
// Without a caller_noti id and without a launch, a cancel command naming the
// caller and callee pids is sent to the daemon.
func (n *Notifier) Notify(ctx context.Context, b *request.Bundle) Notification {
	if b == nil {
		return NotifyNone
	}
	noti := b.Value(request.KeyCallerNoti)
	_, launched := b.Get(request.KeyStartInfo)

	if noti != "" {
		if !n.launcher.IsRunning(ctx, noti) {
			n.log.Debug("caller not running", zap.String("caller_noti", noti))
			return NotifyNone
		}
		if !launched {
			b.Set(request.KeyStartInfo, request.StartInfoAbort)
		}
		if _, err := n.launcher.Forward(ctx, noti, b); err != nil {
			n.log.Error("caller notification failed", zap.String("caller_noti", noti), zap.Error(err))
		}
		return NotifyRelaunch
	}

	if launched {
		return NotifyNone
	}

	pid := b.Value(request.KeyCallerPID)
	if pid == "" {
		n.log.Error("get caller pid failed")
		return NotifyNone
	}

	cmd := CancelCommand{
		Cmd:        "cancel",
		SendResult: "1",
		CallerPID:  pid,
		CalleePID:  strconv.Itoa(n.selfPID),
	}
	if err := n.messenger.Send(cmd); err != nil {
		n.log.Error("send cancel command failed", zap.String("caller_pid", pid), zap.Error(err))
	}
	return NotifyLegacyCancel
}
