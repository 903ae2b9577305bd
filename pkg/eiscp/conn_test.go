package eiscp

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"
	"sync/atomic"
	"testing"
	"time"
)

var testPort atomic.Uint32

func init() {
	testPort.Store(19000)
}

func getTestAddr() string {
	port := testPort.Add(1)
	return net.JoinHostPort("127.0.0.1", fmt.Sprintf("%d", port))
}

// startTestReceiver starts a fake receiver that answers each decoded
// message with the payloads returned by handle.
func startTestReceiver(t *testing.T, handle func(Message) []string) (string, int, func()) {
	t.Helper()

	addr := getTestAddr()
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		t.Fatalf("listen failed: %v", err)
	}

	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			go serveTestConn(conn, handle)
		}
	}()

	host, portStr, _ := net.SplitHostPort(addr)
	port, _ := strconv.Atoi(portStr)
	return host, port, func() { ln.Close() }
}

func serveTestConn(conn net.Conn, handle func(Message) []string) {
	defer conn.Close()
	br := bufio.NewReader(conn)
	for {
		payload, err := ReadPacket(br)
		if err != nil {
			return
		}
		msg, err := ParseMessage(payload)
		if err != nil || handle == nil {
			continue
		}
		for _, reply := range handle(msg) {
			if _, err := conn.Write(Encode(reply, EndingEOFCRLF)); err != nil {
				return
			}
		}
	}
}

func TestConnSendRecv(t *testing.T) {
	host, port, cleanup := startTestReceiver(t, func(msg Message) []string {
		if msg.Command == "PWR" && msg.Value == QueryValue {
			return []string{"!1PWR01"}
		}
		return nil
	})
	defer cleanup()

	ctx := context.Background()
	conn, err := Connect(ctx, Config{Host: host, Port: port})
	if err != nil {
		t.Fatalf("connect failed: %v", err)
	}
	defer conn.Close()

	if !conn.IsRunning() {
		t.Error("conn should be running")
	}

	if err := conn.Send(ctx, ZoneMain, "system-power", QueryValue); err != nil {
		t.Fatalf("send failed: %v", err)
	}

	msg, err := conn.RecvTimeout(ctx, 2*time.Second)
	if err != nil {
		t.Fatalf("recv failed: %v", err)
	}
	if msg.Command != "PWR" || msg.Value != "01" {
		t.Errorf("got %s = %q, want PWR = 01", msg.Command, msg.Value)
	}
}

func TestConnSendRaw(t *testing.T) {
	received := make(chan Message, 8)
	host, port, cleanup := startTestReceiver(t, func(msg Message) []string {
		received <- msg
		return nil
	})
	defer cleanup()

	ctx := context.Background()
	conn, err := Connect(ctx, Config{Host: host, Port: port})
	if err != nil {
		t.Fatalf("connect failed: %v", err)
	}
	defer conn.Close()

	if err := conn.SendRaw(ctx, "!1MVL2E"); err != nil {
		t.Fatalf("send raw failed: %v", err)
	}

	select {
	case msg := <-received:
		if msg.Command != "MVL" || msg.Value != "2E" {
			t.Errorf("receiver saw %s = %q, want MVL = 2E", msg.Command, msg.Value)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("receiver never saw the message")
	}

	// A message that does not parse is rejected before it is framed
	var me *MalformedMessageError
	if err := conn.SendRaw(ctx, "garbage"); !errors.As(err, &me) {
		t.Errorf("SendRaw(garbage) err = %v, want MalformedMessageError", err)
	}
}

func TestConnRecvTimeout(t *testing.T) {
	host, port, cleanup := startTestReceiver(t, nil)
	defer cleanup()

	ctx := context.Background()
	conn, err := Connect(ctx, Config{Host: host, Port: port})
	if err != nil {
		t.Fatalf("connect failed: %v", err)
	}
	defer conn.Close()

	_, err = conn.RecvTimeout(ctx, 150*time.Millisecond)
	if !errors.Is(err, ErrRecvTimeout) {
		t.Errorf("err = %v, want ErrRecvTimeout", err)
	}
}

func TestConnRecvContextCancel(t *testing.T) {
	host, port, cleanup := startTestReceiver(t, nil)
	defer cleanup()

	conn, err := Connect(context.Background(), Config{Host: host, Port: port})
	if err != nil {
		t.Fatalf("connect failed: %v", err)
	}
	defer conn.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 150*time.Millisecond)
	defer cancel()

	_, err = conn.Recv(ctx)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("err = %v, want context.DeadlineExceeded", err)
	}
}

func TestConnRecvCancelOnlyContext(t *testing.T) {
	host, port, cleanup := startTestReceiver(t, nil)
	defer cleanup()

	conn, err := Connect(context.Background(), Config{Host: host, Port: port})
	if err != nil {
		t.Fatalf("connect failed: %v", err)
	}
	defer conn.Close()

	// No deadline on the context; cancellation alone must unblock
	// a read against a silent receiver.
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := conn.Recv(ctx)
		done <- err
	}()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("err = %v, want context.Canceled", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Recv did not return after cancel")
	}
}

func TestConnMalformedReplyKeepsStreamUsable(t *testing.T) {
	host, port, cleanup := startTestReceiver(t, func(msg Message) []string {
		return []string{"junk reply", "!1AMT00"}
	})
	defer cleanup()

	ctx := context.Background()
	conn, err := Connect(ctx, Config{Host: host, Port: port})
	if err != nil {
		t.Fatalf("connect failed: %v", err)
	}
	defer conn.Close()

	if err := conn.Send(ctx, ZoneMain, "audio-muting", QueryValue); err != nil {
		t.Fatalf("send failed: %v", err)
	}

	_, err = conn.RecvTimeout(ctx, 2*time.Second)
	var me *MalformedMessageError
	if !errors.As(err, &me) {
		t.Fatalf("first recv err = %v, want MalformedMessageError", err)
	}

	msg, err := conn.RecvTimeout(ctx, 2*time.Second)
	if err != nil {
		t.Fatalf("second recv failed: %v", err)
	}
	if msg.Command != "AMT" || msg.Value != "00" {
		t.Errorf("got %s = %q, want AMT = 00", msg.Command, msg.Value)
	}
}

func TestConnRenameValueSpacing(t *testing.T) {
	host, port, cleanup := startTestReceiver(t, func(msg Message) []string {
		if msg.Command == "IRN" {
			return []string{"!1IRN01Living Room  "}
		}
		return nil
	})
	defer cleanup()

	ctx := context.Background()
	conn, err := Connect(ctx, Config{Host: host, Port: port})
	if err != nil {
		t.Fatalf("connect failed: %v", err)
	}
	defer conn.Close()

	if err := conn.Send(ctx, ZoneMain, "IRN", "01"); err != nil {
		t.Fatalf("send failed: %v", err)
	}

	msg, err := conn.RecvTimeout(ctx, 2*time.Second)
	if err != nil {
		t.Fatalf("recv failed: %v", err)
	}
	// The codec keeps padding; trimming is the caller's call
	if msg.Value != "01Living Room  " {
		t.Errorf("Value = %q, want padding preserved", msg.Value)
	}
}

func TestConnClose(t *testing.T) {
	host, port, cleanup := startTestReceiver(t, nil)
	defer cleanup()

	ctx := context.Background()
	conn, err := Connect(ctx, Config{Host: host, Port: port})
	if err != nil {
		t.Fatalf("connect failed: %v", err)
	}

	if err := conn.Close(); err != nil {
		t.Errorf("close failed: %v", err)
	}
	if err := conn.Close(); err != nil {
		t.Errorf("second close failed: %v", err)
	}
	if conn.IsRunning() {
		t.Error("conn should not be running after close")
	}

	if err := conn.Send(ctx, ZoneMain, "PWR", QueryValue); !errors.Is(err, ErrClosed) {
		t.Errorf("send after close err = %v, want ErrClosed", err)
	}
	if _, err := conn.Recv(ctx); !errors.Is(err, ErrClosed) {
		t.Errorf("recv after close err = %v, want ErrClosed", err)
	}
}

func TestConnectErrors(t *testing.T) {
	if _, err := Connect(context.Background(), Config{}); !errors.Is(err, ErrNoHost) {
		t.Errorf("empty host err = %v, want ErrNoHost", err)
	}

	if _, err := Connect(context.Background(), Config{Host: "127.0.0.1", Port: 70000}); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("out-of-range port err = %v, want ErrInvalidConfig", err)
	}
	if _, err := Connect(context.Background(), Config{Host: "127.0.0.1", Port: -1}); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("negative port err = %v, want ErrInvalidConfig", err)
	}

	// Nothing listens here
	addr := getTestAddr()
	host, portStr, _ := net.SplitHostPort(addr)
	port, _ := strconv.Atoi(portStr)
	if _, err := Connect(context.Background(), Config{Host: host, Port: port, DialTimeout: 500 * time.Millisecond}); err == nil {
		t.Error("connect to dead port should fail")
	}
}
