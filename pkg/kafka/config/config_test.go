package kafka_config

import (
	"strings"
	"testing"
)

func TestLoad_DisabledByDefault(t *testing.T) {
	t.Setenv(EnvKafkaBrokers, "")

	cfg := Load()
	if cfg.Enabled() {
		t.Errorf("expected Kafka to be disabled without brokers, got %v", cfg.Brokers)
	}
}

func TestLoad_ParsesBrokerList(t *testing.T) {
	t.Setenv(EnvKafkaBrokers, " kafka-1:9092, ,kafka-2:9092 ")

	cfg := Load()
	if len(cfg.Brokers) != 2 || cfg.Brokers[0] != "kafka-1:9092" || cfg.Brokers[1] != "kafka-2:9092" {
		t.Errorf("unexpected brokers %v", cfg.Brokers)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("expected valid config, got %v", err)
	}
}

func TestValidate_RejectsBadProducerSettings(t *testing.T) {
	cfg := &Config{
		Brokers:              []string{"localhost:9092"},
		ProducerMaxAttempts:  0,
		ProducerBatchTimeout: DefaultProducerBatchTimeout,
		ProducerWriteTimeout: DefaultProducerWriteTimeout,
		ProducerRequireAcks:  2,
		ProducerCompression:  "brotli",
	}

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected validation error")
	}
	for _, fragment := range []string{"ProducerMaxAttempts", "ProducerRequireAcks", "ProducerCompression"} {
		if !strings.Contains(err.Error(), fragment) {
			t.Errorf("expected %s in %q", fragment, err)
		}
	}
}
