// Package queue moves domain events and notification events through Kafka.
package queue

import (
	"crypto/tls"
	"time"

	"github.com/anonto42/vidshelf/backend/pkg/config"
	"github.com/segmentio/kafka-go"
	"github.com/segmentio/kafka-go/sasl/plain"
)

// saslTLS returns the SASL mechanism and TLS config for managed clusters, or nils for plain brokers
func saslTLS(cfg config.KafkaConfig) (*plain.Mechanism, *tls.Config) {
	if cfg.Username == "" {
		return nil, nil
	}
	return &plain.Mechanism{Username: cfg.Username, Password: cfg.Password}, &tls.Config{MinVersion: tls.VersionTLS12}
}

func newDialer(cfg config.KafkaConfig) *kafka.Dialer {
	d := &kafka.Dialer{Timeout: 10 * time.Second, DualStack: true}
	if mech, tlsCfg := saslTLS(cfg); mech != nil {
		d.SASLMechanism = *mech
		d.TLS = tlsCfg
	}
	return d
}

func newTransport(cfg config.KafkaConfig) *kafka.Transport {
	t := &kafka.Transport{DialTimeout: 10 * time.Second}
	if mech, tlsCfg := saslTLS(cfg); mech != nil {
		t.SASL = *mech
		t.TLS = tlsCfg
	}
	return t
}
