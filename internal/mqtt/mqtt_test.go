package mqtt

import (
	"bufio"
	"context"
	"encoding/binary"
	"errors"
	"io"
	"log/slog"
	"net"
	"testing"
	"time"

	"github.com/tristmeister/ems-jade2/internal/config"
)

func testPublisher(t *testing.T) *Publisher {
	t.Helper()
	return testPublisherOnPort(t, 1)
}

func testPublisherOnPort(t *testing.T, port int) *Publisher {
	t.Helper()
	cfg := config.Config{
		MQTTBroker:   "127.0.0.1",
		MQTTPort:     port,
		MQTTClientID: "ems-jade-test",
		MQTTTopic:    "ems-jade/test",
	}
	return NewPublisher(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestBrokerURL(t *testing.T) {
	got := brokerURL(config.Config{MQTTBroker: "broker.local", MQTTPort: 1883})
	if got != "tcp://broker.local:1883" {
		t.Errorf("brokerURL = %q; want tcp://broker.local:1883", got)
	}
}

func TestPublisher_notConnected(t *testing.T) {
	p := testPublisher(t)
	defer p.Disconnect()

	if p.IsConnected() {
		t.Fatal("IsConnected() = true before Connect")
	}
	err := p.Publish(context.Background(), "ems-jade/test", []byte("{}"), true)
	if !errors.Is(err, ErrNotConnected) {
		t.Errorf("Publish error = %v; want ErrNotConnected", err)
	}
}

func TestPublisher_connectFailsWithoutBroker(t *testing.T) {
	p := testPublisher(t)
	defer p.Disconnect()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := p.Connect(ctx); err == nil {
		t.Fatal("Connect succeeded against a closed port")
	}
	if p.IsConnected() {
		t.Error("IsConnected() = true after failed Connect")
	}
}

func TestPublisher_disconnect(t *testing.T) {
	p := testPublisher(t)

	p.Disconnect()
	p.Disconnect()

	if err := p.Connect(context.Background()); !errors.Is(err, ErrStopped) {
		t.Errorf("Connect after Disconnect = %v; want ErrStopped", err)
	}
}

type publishedMessage struct {
	topic    string
	payload  []byte
	retained bool
	qos      byte
}

// fakeBroker speaks just enough MQTT 3.1.1 for one publisher: CONNACK,
// PUBACK for QoS 1 and PINGRESP.
type fakeBroker struct {
	ln        net.Listener
	published chan publishedMessage
}

func startFakeBroker(t *testing.T) *fakeBroker {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	b := &fakeBroker{ln: ln, published: make(chan publishedMessage, 8)}
	t.Cleanup(func() { _ = ln.Close() })
	go b.serve()
	return b
}

func (b *fakeBroker) port() int {
	return b.ln.Addr().(*net.TCPAddr).Port
}

func (b *fakeBroker) serve() {
	for {
		conn, err := b.ln.Accept()
		if err != nil {
			return
		}
		go b.handle(conn)
	}
}

func (b *fakeBroker) handle(conn net.Conn) {
	defer conn.Close()
	r := bufio.NewReader(conn)
	for {
		header, err := r.ReadByte()
		if err != nil {
			return
		}
		n, err := readRemainingLength(r)
		if err != nil {
			return
		}
		body := make([]byte, n)
		if _, err := io.ReadFull(r, body); err != nil {
			return
		}

		switch header >> 4 {
		case 1: // CONNECT
			_, _ = conn.Write([]byte{0x20, 0x02, 0x00, 0x00})
		case 3: // PUBLISH
			qos := (header >> 1) & 0x03
			topicLen := int(binary.BigEndian.Uint16(body))
			rest := body[2+topicLen:]
			msg := publishedMessage{
				topic:    string(body[2 : 2+topicLen]),
				retained: header&0x01 == 1,
				qos:      qos,
			}
			if qos > 0 {
				_, _ = conn.Write([]byte{0x40, 0x02, rest[0], rest[1]})
				rest = rest[2:]
			}
			msg.payload = rest
			select {
			case b.published <- msg:
			default:
			}
		case 12: // PINGREQ
			_, _ = conn.Write([]byte{0xd0, 0x00})
		case 14: // DISCONNECT
			return
		}
	}
}

func readRemainingLength(r io.ByteReader) (int, error) {
	n, shift := 0, 0
	for range 4 {
		c, err := r.ReadByte()
		if err != nil {
			return 0, err
		}
		n |= int(c&0x7f) << shift
		if c&0x80 == 0 {
			return n, nil
		}
		shift += 7
	}
	return 0, errors.New("malformed remaining length")
}

func TestPublisher_publishRightAfterConnect(t *testing.T) {
	broker := startFakeBroker(t)
	p := testPublisherOnPort(t, broker.port())
	defer p.Disconnect()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := p.Connect(ctx); err != nil {
		t.Fatalf("Connect: %v", err)
	}
	if !p.IsConnected() {
		t.Fatal("IsConnected() = false right after Connect returned nil")
	}
	if err := p.Connect(ctx); err != nil {
		t.Errorf("second Connect: %v", err)
	}

	payload := []byte(`{"date":"2025-01-28"}`)
	if err := p.Publish(ctx, "ems-jade/status", payload, true); err != nil {
		t.Fatalf("Publish: %v", err)
	}

	select {
	case msg := <-broker.published:
		if msg.topic != "ems-jade/status" {
			t.Errorf("topic = %q; want ems-jade/status", msg.topic)
		}
		if string(msg.payload) != string(payload) {
			t.Errorf("payload = %s; want %s", msg.payload, payload)
		}
		if !msg.retained || msg.qos != 1 {
			t.Errorf("retained/qos = %v/%d; want true/1", msg.retained, msg.qos)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("broker received no PUBLISH")
	}
}
