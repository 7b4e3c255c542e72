package transport

import (
	"bufio"
	"encoding/json"
	"net"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/lanfest/munchkin-lan/internal/protocol"
)

func recvEnvelope(t *testing.T, ch *Channel) protocol.Envelope {
	t.Helper()
	select {
	case env, ok := <-ch.Inbound():
		if !ok {
			t.Fatalf("inbound closed")
		}
		return env
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for envelope")
		return protocol.Envelope{}
	}
}

func recvClose(t *testing.T, ch *Channel) CloseInfo {
	t.Helper()
	select {
	case info := <-ch.Closed():
		return info
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for close")
		return CloseInfo{}
	}
}

func TestSendFramesWithNewline(t *testing.T) {
	local, remote := net.Pipe()
	ch := NewChannel(local, zap.NewNop())
	defer ch.Close()
	defer remote.Close()

	env, err := protocol.NewEnvelope("p1", protocol.TurnChange{})
	if err != nil {
		t.Fatalf("envelope: %v", err)
	}
	go func() { _ = ch.Send(env) }()

	reader := bufio.NewReader(remote)
	line, err := reader.ReadBytes('\n')
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var got protocol.Envelope
	if err := json.Unmarshal(line, &got); err != nil {
		t.Fatalf("frame not a JSON record: %v", err)
	}
	if got.Type != protocol.MsgTurnChange || got.SenderID != "p1" {
		t.Fatalf("frame: %+v", got)
	}
}

func TestReadAcrossPartialWrites(t *testing.T) {
	local, remote := net.Pipe()
	ch := NewChannel(local, zap.NewNop())
	defer ch.Close()
	defer remote.Close()

	record := `{"type":"turn_change","senderId":"p1","timestampMs":1}` + "\n"

	// One record split across two writes, then two records in one write.
	go func() {
		half := len(record) / 2
		_, _ = remote.Write([]byte(record[:half]))
		_, _ = remote.Write([]byte(record[half:]))
		_, _ = remote.Write([]byte(record + record))
	}()

	for i := 0; i < 3; i++ {
		env := recvEnvelope(t, ch)
		if env.Type != protocol.MsgTurnChange {
			t.Fatalf("record %d: type %s", i, env.Type)
		}
	}
}

func TestBadRecordIsDroppedStreamStaysUp(t *testing.T) {
	local, remote := net.Pipe()
	ch := NewChannel(local, zap.NewNop())
	defer ch.Close()
	defer remote.Close()

	go func() {
		_, _ = remote.Write([]byte("this is not json\n"))
		_, _ = remote.Write([]byte(`{"type":"turn_change","senderId":"p1","timestampMs":1}` + "\n"))
	}()

	env := recvEnvelope(t, ch)
	if env.Type != protocol.MsgTurnChange {
		t.Fatalf("expected the record after the bad one, got %s", env.Type)
	}
}

func TestCloseCauses(t *testing.T) {
	t.Run("remote close", func(t *testing.T) {
		local, remote := net.Pipe()
		ch := NewChannel(local, zap.NewNop())
		remote.Close()

		if info := recvClose(t, ch); info.Cause != CloseRemote {
			t.Fatalf("cause: got %s, want remote", info.Cause)
		}
	})

	t.Run("local close", func(t *testing.T) {
		local, remote := net.Pipe()
		defer remote.Close()
		ch := NewChannel(local, zap.NewNop())
		ch.Close()

		if info := recvClose(t, ch); info.Cause != CloseLocal {
			t.Fatalf("cause: got %s, want local", info.Cause)
		}
	})
}

func TestCloseUnblocksReaderWithNoConsumer(t *testing.T) {
	local, remote := net.Pipe()
	defer remote.Close()
	ch := NewChannel(local, zap.NewNop())

	// Nothing drains Inbound(); flood past its buffer so the reader is
	// parked on delivery, then close. The reader must still exit.
	record := []byte(`{"type":"turn_change","senderId":"p1","timestampMs":1}` + "\n")
	go func() {
		for i := 0; i < 24; i++ {
			if _, err := remote.Write(record); err != nil {
				return
			}
		}
	}()

	time.Sleep(50 * time.Millisecond)
	ch.Close()

	if info := recvClose(t, ch); info.Cause != CloseLocal {
		t.Fatalf("cause: got %s, want local", info.Cause)
	}
}

func TestSendAfterCloseFails(t *testing.T) {
	local, remote := net.Pipe()
	defer remote.Close()
	ch := NewChannel(local, zap.NewNop())
	ch.Close()

	env, _ := protocol.NewEnvelope("p1", protocol.TurnChange{})
	if err := ch.Send(env); err == nil {
		t.Fatalf("send succeeded on a closed channel")
	}
}
