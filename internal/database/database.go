package database

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/gocql/gocql"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"kart_back_end/internal/config"
)

// Connections groups every backend client the server talks to. Elastic and
// MinIO are optional and stay nil when not configured.
type Connections struct {
	Scylla  *ScyllaManager
	Redis   *redis.Client
	Elastic *elasticsearch.Client
	MinIO   *minio.Client
}

// --- Initialisation ---
func Connect(ctx context.Context, cfg *config.Settings, log *zap.Logger) (*Connections, error) {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	conns := &Connections{}

	// 1. ScyllaDB
	conns.Scylla = NewScyllaManager(ScyllaConfig{
		Hosts:       cfg.ScyllaHosts,
		Keyspace:    cfg.ScyllaKeyspace,
		Username:    cfg.ScyllaUsername,
		Password:    cfg.ScyllaPassword,
		Timeout:     cfg.ScyllaTimeout,
		NumConns:    20,
		Consistency: gocql.Quorum,
	}, log)
	session, err := conns.Scylla.Session()
	if err != nil {
		return nil, fmt.Errorf("scylla: %w", err)
	}
	if err := EnsureSchema(session); err != nil {
		conns.Close()
		return nil, fmt.Errorf("scylla schema: %w", err)
	}

	// 2. Redis
	conns.Redis, err = connectRedis(ctx, cfg)
	if err != nil {
		conns.Close()
		return nil, fmt.Errorf("redis: %w", err)
	}
	log.Info("connected to redis", zap.String("addr", cfg.RedisHost))

	// 3. Elasticsearch
	if cfg.ElasticURL != "" {
		conns.Elastic, err = connectElastic(cfg)
		if err != nil {
			conns.Close()
			return nil, fmt.Errorf("elasticsearch: %w", err)
		}
		log.Info("connected to elasticsearch", zap.String("url", cfg.ElasticURL))
	} else {
		log.Warn("ELASTIC_URL not set, product search disabled")
	}

	// 4. MinIO
	if cfg.MinIOEndpoint != "" {
		conns.MinIO, err = connectMinIO(ctx, cfg, log)
		if err != nil {
			conns.Close()
			return nil, fmt.Errorf("minio: %w", err)
		}
	} else {
		log.Warn("MINIO_ENDPOINT not set, product images served as stored")
	}

	log.Info("all databases connected")
	return conns, nil
}

func (c *Connections) Close() {
	if c.Scylla != nil {
		c.Scylla.Close()
	}
	if c.Redis != nil {
		_ = c.Redis.Close()
	}
}

// =============================================
// SCYLLA DB
// =============================================

type ScyllaConfig struct {
	Hosts       []string
	Keyspace    string
	Username    string
	Password    string
	Timeout     time.Duration
	NumConns    int
	Consistency gocql.Consistency
}

// ScyllaManager owns one session and recreates it when it stops answering.
type ScyllaManager struct {
	cfg     ScyllaConfig
	log     *zap.Logger
	mu      sync.Mutex
	session *gocql.Session
}

func NewScyllaManager(cfg ScyllaConfig, log *zap.Logger) *ScyllaManager {
	return &ScyllaManager{cfg: cfg, log: log}
}

func createScyllaCluster(cfg ScyllaConfig) *gocql.ClusterConfig {
	cluster := gocql.NewCluster(cfg.Hosts...)
	cluster.Keyspace = cfg.Keyspace
	cluster.Consistency = cfg.Consistency
	cluster.Timeout = cfg.Timeout
	cluster.NumConns = cfg.NumConns
	cluster.MaxWaitSchemaAgreement = 30 * time.Second
	cluster.ReconnectInterval = 1 * time.Second
	if cfg.Username != "" {
		cluster.Authenticator = gocql.PasswordAuthenticator{
			Username: cfg.Username,
			Password: cfg.Password,
		}
	}
	cluster.PoolConfig.HostSelectionPolicy = gocql.TokenAwareHostPolicy(gocql.RoundRobinHostPolicy())
	return cluster
}

// Session returns the live session, reconnecting if the previous one died.
func (sm *ScyllaManager) Session() (*gocql.Session, error) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if len(sm.cfg.Hosts) == 0 {
		return nil, fmt.Errorf("SCYLLA_HOSTS not configured")
	}

	if sm.session != nil {
		if err := sm.session.Query("SELECT now() FROM system.local").Exec(); err == nil {
			return sm.session, nil
		}
		sm.session.Close()
		sm.session = nil
	}

	session, err := createScyllaCluster(sm.cfg).CreateSession()
	if err != nil {
		return nil, fmt.Errorf("create session for %s: %w", sm.cfg.Keyspace, err)
	}

	sm.session = session
	sm.log.Info("new scylla session", zap.String("keyspace", sm.cfg.Keyspace), zap.String("user", sm.cfg.Username))
	return session, nil
}

func (sm *ScyllaManager) Close() {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if sm.session != nil {
		sm.session.Close()
		sm.session = nil
		sm.log.Info("scylla session closed", zap.String("keyspace", sm.cfg.Keyspace))
	}
}

// =============================================
// REDIS
// =============================================
func connectRedis(ctx context.Context, cfg *config.Settings) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.RedisHost,
		Password:     cfg.RedisPassword,
		DB:           0,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
		MinIdleConns: 5,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}
	return client, nil
}

// =============================================
// ELASTICSEARCH
// =============================================
func connectElastic(cfg *config.Settings) (*elasticsearch.Client, error) {
	client, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: []string{cfg.ElasticURL},
		Username:  cfg.ElasticUser,
		Password:  cfg.ElasticPassword,
	})
	if err != nil {
		return nil, err
	}

	res, err := client.Info()
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()
	if res.IsError() {
		return nil, fmt.Errorf("info: %s", res.String())
	}
	return client, nil
}

// =============================================
// MINIO
// =============================================
func connectMinIO(ctx context.Context, cfg *config.Settings, log *zap.Logger) (*minio.Client, error) {
	client, err := minio.New(cfg.MinIOEndpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.MinIOAccessKey, cfg.MinIOSecretKey, ""),
		Secure: cfg.MinIOUseSSL,
	})
	if err != nil {
		return nil, err
	}

	exists, err := client.BucketExists(ctx, cfg.MinIOBucket)
	if err != nil {
		return nil, err
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.MinIOBucket, minio.MakeBucketOptions{}); err != nil {
			return nil, err
		}
		log.Info("bucket created", zap.String("bucket", cfg.MinIOBucket))
	}

	log.Info("connected to minio", zap.String("endpoint", cfg.MinIOEndpoint))
	return client, nil
}
