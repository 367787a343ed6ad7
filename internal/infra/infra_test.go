package infra

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"

	"petcare/internal/config"
)

func TestKafkaPublisher_Publish(t *testing.T) {
	cfg := mocks.NewTestConfig()
	cfg.Producer.Return.Successes = true
	producer := mocks.NewSyncProducer(t, cfg)
	producer.ExpectSendMessageWithMessageCheckerFunctionAndSucceed(func(msg *sarama.ProducerMessage) error {
		if msg.Topic != "reservation.confirmed" {
			return errors.New("unexpected topic " + msg.Topic)
		}
		key, _ := msg.Key.Encode()
		if string(key) != "r1" {
			return errors.New("unexpected key " + string(key))
		}
		if len(msg.Headers) != 1 || string(msg.Headers[0].Key) != "event_type" {
			return errors.New("missing event_type header")
		}
		return nil
	})

	pub := NewKafkaPublisherFromProducer(producer)
	defer pub.Close()
	err := pub.Publish(context.Background(), "reservation.confirmed", "r1", []byte(`{"ok":true}`),
		map[string]string{"event_type": "reservation.confirmed"})
	if err != nil {
		t.Fatalf("Publish() error = %v", err)
	}
}

func TestKafkaPublisher_CancelledContext(t *testing.T) {
	producer := mocks.NewSyncProducer(t, mocks.NewTestConfig())
	pub := NewKafkaPublisherFromProducer(producer)
	defer pub.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := pub.Publish(ctx, "t", "k", nil, nil); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestNewLogger_WritesJSONToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "petcare.log")
	log, err := NewLogger(config.LogConfig{Level: "debug", Format: "json", Output: path})
	if err != nil {
		t.Fatal(err)
	}
	log.Debug("quote computed")
	_ = log.Sync()

	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(b), `"msg":"quote computed"`) || !strings.Contains(string(b), `"timestamp"`) {
		t.Errorf("unexpected log line: %s", b)
	}
}

func TestNewLogger_UnknownLevelFallsBackToInfo(t *testing.T) {
	log, err := NewLogger(config.LogConfig{Level: "loud", Format: "console", Output: "stdout"})
	if err != nil {
		t.Fatal(err)
	}
	if log.Core().Enabled(-1) {
		t.Error("debug enabled for unknown level")
	}
}

func TestCallerFromClaims(t *testing.T) {
	tests := []struct {
		name      string
		uid       string
		claims    map[string]interface{}
		wantRole  string
		wantEmail string
		wantErr   error
	}{
		{"admin role", "u1", map[string]interface{}{"role": " Admin ", "email": "a@example.com"}, "admin", "a@example.com", nil},
		{"no role", "u2", map[string]interface{}{}, "", "", nil},
		{"nil claims", "u3", nil, "", "", nil},
		{"non-string role ignored", "u4", map[string]interface{}{"role": true}, "", "", nil},
		{"missing uid", " ", map[string]interface{}{"role": "admin"}, "", "", ErrNoSubject},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := CallerFromClaims(tt.uid, tt.claims)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("err = %v, want %v", err, tt.wantErr)
			}
			if tt.wantErr != nil {
				return
			}
			if c.UID != tt.uid || c.Role != tt.wantRole || c.Email != tt.wantEmail {
				t.Errorf("caller = %+v", c)
			}
		})
	}
}

func TestNewFirebaseVerifier_RequiresProjectID(t *testing.T) {
	for _, id := range []string{"", "   "} {
		if _, err := NewFirebaseVerifier(context.Background(), id, ""); !errors.Is(err, ErrMissingProjectID) {
			t.Errorf("project %q: err = %v, want ErrMissingProjectID", id, err)
		}
	}
}
