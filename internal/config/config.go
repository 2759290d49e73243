package config

import (
	"bytes"
	_ "embed"
	"time"

	"github.com/spf13/viper"
)

//go:embed defaults.yaml
var defaults []byte

// ---- Root ----

type Config struct {
	Log        LogConfig       `mapstructure:"log"`
	HTTP       HTTPConfig      `mapstructure:"http"`
	MySQL      DatabaseConfig  `mapstructure:"mysql"`
	ClickHouse DatabaseConfig  `mapstructure:"clickhouse"`
	Redis      RedisConfig     `mapstructure:"redis"`
	Kafka      KafkaConfig     `mapstructure:"kafka"`
	Outbox     OutboxConfig    `mapstructure:"outbox"`
	WebSocket  WebSocketConfig `mapstructure:"websocket"`
	RateLimit  RateLimitConfig `mapstructure:"rate_limit"`
}

// ---- Leaf structs ----

type LogConfig struct {
	Level string `mapstructure:"level"`
}

type HTTPConfig struct {
	Addr string `mapstructure:"addr"`
}

type DatabaseConfig struct {
	DSN             string        `mapstructure:"dsn"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idletime"`
	PingTimeout     time.Duration `mapstructure:"ping_timeout"`
}

type RedisConfig struct {
	Addr        string        `mapstructure:"addr"`
	Password    string        `mapstructure:"password"`
	DB          int           `mapstructure:"db"`
	DialTimeout time.Duration `mapstructure:"dial_timeout"`
}

type KafkaConfig struct {
	Brokers        []string    `mapstructure:"brokers"`
	GroupID        string      `mapstructure:"group_id"`
	MinBytes       int         `mapstructure:"min_bytes"`
	MaxBytes       int         `mapstructure:"max_bytes"`
	CommitInterval int         `mapstructure:"commit_interval_ms"`
	Topics         TopicConfig `mapstructure:"topics"`
}

// TopicConfig names every topic the gateway touches. The raw-event topics are
// the relay's destinations; the processed-* topics come back from the AI stage.
type TopicConfig struct {
	RawAudio      string `mapstructure:"raw_audio"`
	Meetings      string `mapstructure:"meetings"`
	VoiceSessions string `mapstructure:"voice_sessions"`
	TextMessages  string `mapstructure:"text_messages"`
	MediaUploaded string `mapstructure:"media_uploaded"`

	ProcessedSummaries   string `mapstructure:"processed_summaries"`
	ProcessedTranscripts string `mapstructure:"processed_transcripts"`
	ProcessedActionItems string `mapstructure:"processed_action_items"`
}

type OutboxConfig struct {
	PollInterval  time.Duration `mapstructure:"poll_interval"`
	BatchSize     int           `mapstructure:"batch_size"`
	Retention     time.Duration `mapstructure:"retention"`
	SweepInterval time.Duration `mapstructure:"sweep_interval"`
}

type WebSocketConfig struct {
	BroadcastAll    bool `mapstructure:"broadcast_all"` // also push every result to all connections (dashboards)
	ReadBufferSize  int  `mapstructure:"read_buffer_size"`
	WriteBufferSize int  `mapstructure:"write_buffer_size"`
}

type RateLimitConfig struct {
	RPS   int `mapstructure:"rps"`
	Burst int `mapstructure:"burst"`
}

// Load reads embedded defaults, merges user YAML (if provided), and applies env overrides (MEETGW_*).
func Load(path string) (Config, error) {
	v := viper.New()

	// embedded defaults
	v.SetConfigType("yaml")
	if err := v.ReadConfig(bytes.NewReader(defaults)); err != nil {
		return Config{}, err
	}

	if path != "" {
		v.SetConfigFile(path)
		_ = v.MergeInConfig()
	}

	// env override (MEETGW_*)
	v.SetEnvPrefix("MEETGW")
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
