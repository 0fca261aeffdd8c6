package main

import (
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"app-selector/internal/request"
)

func socketPath(t *testing.T) string {
	t.Helper()
	dir, err := os.MkdirTemp("", "sel")
	require.NoError(t, err)
	t.Cleanup(func() { os.RemoveAll(dir) })
	return filepath.Join(dir, "control.sock")
}

func startControl(t *testing.T, path string) <-chan tea.Msg {
	t.Helper()
	srv, err := listenControl(path, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { srv.Close() })

	msgs := make(chan tea.Msg, 4)
	srv.serve(func(msg tea.Msg) { msgs <- msg })
	return msgs
}

func receive(t *testing.T, msgs <-chan tea.Msg) tea.Msg {
	t.Helper()
	select {
	case msg := <-msgs:
		return msg
	case <-time.After(2 * time.Second):
		t.Fatal("no control message delivered")
		return nil
	}
}

func TestControlDeliversRequest(t *testing.T) {
	path := socketPath(t)
	msgs := startControl(t, path)

	b := bundleOf(request.KeyOperation, "share", request.KeyURI, "file:///tmp/a.png")
	b.SetArray(request.KeyExtraList, []string{"app.gallery"})
	require.NoError(t, sendControl(path, controlEnvelope{Kind: controlKindRequest, Bundle: b}))

	msg, ok := receive(t, msgs).(requestMsg)
	require.True(t, ok)
	assert.Equal(t, "share", msg.bundle.Value(request.KeyOperation))
	assert.Equal(t, "file:///tmp/a.png", msg.bundle.Value(request.KeyURI))
	extra, _ := msg.bundle.GetArray(request.KeyExtraList)
	assert.Equal(t, []string{"app.gallery"}, extra)
}

func TestControlDeliversLocale(t *testing.T) {
	path := socketPath(t)
	msgs := startControl(t, path)

	require.NoError(t, sendControl(path, controlEnvelope{Kind: controlKindLocale, Locale: "ko_KR.UTF-8"}))

	assert.Equal(t, localeChangedMsg{locale: "ko_KR.UTF-8"}, receive(t, msgs))
}

func TestControlRejectsBadMessages(t *testing.T) {
	path := socketPath(t)
	msgs := startControl(t, path)

	err := sendControl(path, controlEnvelope{Kind: "reboot"})
	assert.ErrorContains(t, err, "unknown control kind")

	err = sendControl(path, controlEnvelope{Kind: controlKindRequest})
	assert.ErrorContains(t, err, "request without bundle")

	assert.Empty(t, msgs)
}

func TestSendControlWithoutInstance(t *testing.T) {
	err := sendControl(socketPath(t), controlEnvelope{Kind: controlKindLocale, Locale: "en"})
	assert.ErrorIs(t, err, errNoInstance)
}

func TestListenControlReplacesStaleSocket(t *testing.T) {
	path := socketPath(t)
	ln, err := net.Listen("unix", path)
	require.NoError(t, err)
	ln.(*net.UnixListener).SetUnlinkOnClose(false)
	require.NoError(t, ln.Close())
	_, err = os.Stat(path)
	require.NoError(t, err)

	msgs := startControl(t, path)
	require.NoError(t, sendControl(path, controlEnvelope{Kind: controlKindLocale, Locale: "de"}))
	assert.Equal(t, localeChangedMsg{locale: "de"}, receive(t, msgs))
}

func TestListenControlRefusesLiveInstance(t *testing.T) {
	path := socketPath(t)
	startControl(t, path)

	_, err := listenControl(path, zap.NewNop())
	assert.Error(t, err)
}
