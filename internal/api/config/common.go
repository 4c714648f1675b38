package config

// Config 配置主体
type Config struct {
	Server                  ServerConfig            `mapstructure:"server"`
	DB                      DBConfig                `mapstructure:"database"`
	Redis                   RedisConfig             `mapstructure:"redis"`
	Kafka                   KafkaConfig             `mapstructure:"kafka"`
	KafkaPostConsumer       KafkaPostConsumer       `mapstructure:"kafka_post_consumer"`
	KafkaPostActionConsumer KafkaPostActionConsumer `mapstructure:"kafka_post_action_consumer"`
	KafkaUserConsumer       KafkaUserConsumer       `mapstructure:"kafka_user_consumer"`
	Cache                   CacheConfig             `mapstructure:"cache"`
	Monitor                 MonitorConfig           `mapstructure:"monitor"`
}

// ServerConfig Server配置
type ServerConfig struct {
	Port int `mapstructure:"port"`
}

// DBConfig 数据库配置
type DBConfig struct {
	DSN         string `mapstructure:"dsn"`
	MaxIdle     int    `mapstructure:"max_idle"`
	MaxOpen     int    `mapstructure:"max_open"`
	MaxLifetime int    `mapstructure:"max_lifetime"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	PoolSize int    `mapstructure:"pool_size"`
}

type KafkaConfig struct {
	Brokers  []string       `mapstructure:"brokers"`
	Sasl     SaslConfig     `mapstructure:"sasl"`
	Consumer ConsumerConfig `mapstructure:"consumer"`
}

type SaslConfig struct {
	Enable   bool   `mapstructure:"enable"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
}

type ConsumerConfig struct {
	SessionTimeout    int `mapstructure:"session_timeout"`
	HeartbeatInterval int `mapstructure:"heartbeat_interval"`
	RebalanceTimeout  int `mapstructure:"rebalance_timeout"`
	MaxProcessingTime int `mapstructure:"max_processing_time"`
}

type KafkaPostConsumer struct {
	Topic   string `mapstructure:"topic"`
	GroupID string `mapstructure:"group_id"`
}

type KafkaPostActionConsumer struct {
	Topic   string `mapstructure:"topic"`
	GroupID string `mapstructure:"group_id"`
}

type KafkaUserConsumer struct {
	Topic   string `mapstructure:"topic"`
	GroupID string `mapstructure:"group_id"`
}

// CacheConfig 分层缓存配置
type CacheConfig struct {
	HotTTLMinutes  int `mapstructure:"hot_ttl_minutes"`
	WarmTTLMinutes int `mapstructure:"warm_ttl_minutes"`
	ColdTTLMinutes int `mapstructure:"cold_ttl_minutes"`
	// WarmBatchSize 单次预热选取的帖子上限
	WarmBatchSize int `mapstructure:"warm_batch_size"`
	// JobIntervalMinutes 预热/清理任务执行周期
	JobIntervalMinutes int `mapstructure:"job_interval_minutes"`
}

func (c *CacheConfig) ApplyDefaults() {
	if c.HotTTLMinutes <= 0 {
		c.HotTTLMinutes = 30
	}
	if c.WarmTTLMinutes <= 0 {
		c.WarmTTLMinutes = 15
	}
	if c.ColdTTLMinutes <= 0 {
		c.ColdTTLMinutes = 5
	}
	if c.WarmBatchSize <= 0 {
		c.WarmBatchSize = 50
	}
	if c.JobIntervalMinutes <= 0 {
		c.JobIntervalMinutes = 5
	}
}

// MonitorConfig 缓存健康监控阈值
type MonitorConfig struct {
	MinSampleSize      int     `mapstructure:"min_sample_size"`
	HitRateThreshold   float64 `mapstructure:"hit_rate_threshold"`
	SlowResponseMillis float64 `mapstructure:"slow_response_millis"`
}

func (c *MonitorConfig) ApplyDefaults() {
	if c.MinSampleSize <= 0 {
		c.MinSampleSize = 100
	}
	if c.HitRateThreshold <= 0 {
		c.HitRateThreshold = 0.7
	}
	if c.SlowResponseMillis <= 0 {
		c.SlowResponseMillis = 100
	}
}
