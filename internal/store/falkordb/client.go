// Package falkordb implements store.Store against a FalkorDB graph
// database: incidents and the services observed in their causal
// graph become nodes, causal edges become CAUSED relationships, and
// the full analysis result is kept as a JSON blob property for exact
// round-tripping.
package falkordb

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/FalkorDB/falkordb-go/v2"

	"github.com/corelens/rca-engine/internal/logging"
)

// Client is the low-level Cypher client this package's Store builds
// on. Kept as an interface so tests can substitute a fake.
type Client interface {
	Connect(ctx context.Context) error
	Close() error
	Ping(ctx context.Context) error
	Query(ctx context.Context, query string, params map[string]interface{}) (Result, error)
	InitializeSchema(ctx context.Context) error
}

// Result is the minimal shape this package needs out of a Cypher
// query: one scalar JSON-blob column per row, which is all the
// Store's queries ever project.
type Result interface {
	Next() bool
	Value() (string, bool)
}

// Config holds FalkorDB connection settings.
type Config struct {
	Host         string
	Port         int
	Password     string
	GraphName    string
	MaxRetries   int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	PoolSize     int
}

// DefaultConfig returns sane connection defaults.
func DefaultConfig() Config {
	return Config{
		Host:         "localhost",
		Port:         6379,
		GraphName:    "corelens",
		MaxRetries:   3,
		DialTimeout:  30 * time.Second,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		PoolSize:     10,
	}
}

type falkorClient struct {
	config Config
	logger *logging.Logger
	db     *falkordb.FalkorDB
	graph  *falkordb.Graph
}

// NewClient builds a Client against config. It does not connect until
// Connect is called.
func NewClient(config Config) Client {
	return &falkorClient{
		config: config,
		logger: logging.GetLogger("store.falkordb"),
	}
}

func (c *falkorClient) Connect(ctx context.Context) error {
	c.logger.Info("connecting to FalkorDB at %s:%d (graph: %s)", c.config.Host, c.config.Port, c.config.GraphName)

	addr := fmt.Sprintf("%s:%d", c.config.Host, c.config.Port)
	connOpts := &falkordb.ConnectionOption{
		Addr:         addr,
		Password:     c.config.Password,
		DialTimeout:  c.config.DialTimeout,
		ReadTimeout:  c.config.ReadTimeout,
		WriteTimeout: c.config.WriteTimeout,
		PoolSize:     c.config.PoolSize,
		MaxRetries:   c.config.MaxRetries,
	}

	db, err := falkordb.FalkorDBNew(connOpts)
	if err != nil {
		return fmt.Errorf("falkordb: connect: %w", err)
	}
	c.db = db
	c.graph = db.SelectGraph(c.config.GraphName)
	return nil
}

func (c *falkorClient) Close() error {
	if c.db != nil && c.db.Conn != nil {
		return c.db.Conn.Close()
	}
	return nil
}

func (c *falkorClient) Ping(ctx context.Context) error {
	if c.graph == nil {
		return fmt.Errorf("falkordb: not connected")
	}
	_, err := c.graph.Query("RETURN 1", nil, nil)
	return err
}

func (c *falkorClient) Query(ctx context.Context, query string, params map[string]interface{}) (Result, error) {
	if c.graph == nil {
		return nil, fmt.Errorf("falkordb: not connected")
	}
	result, err := c.graph.Query(query, params, nil)
	if err != nil {
		return nil, fmt.Errorf("falkordb: query failed: %w", err)
	}
	return &resultAdapter{result: result}, nil
}

// InitializeSchema creates the indexes this package's queries rely
// on: a unique lookup on Incident.id, AnalysisResult.incidentId, and
// a compound lookup on Service by (incidentId, id).
func (c *falkorClient) InitializeSchema(ctx context.Context) error {
	statements := []string{
		"CREATE INDEX FOR (n:Incident) ON (n.id)",
		"CREATE INDEX FOR (n:AnalysisResult) ON (n.incidentId)",
		"CREATE INDEX FOR (n:Service) ON (n.incidentId, n.id)",
	}
	for _, stmt := range statements {
		if _, err := c.Query(ctx, stmt, nil); err != nil {
			// FalkorDB returns an error for an index that already
			// exists; that is not a failure worth surfacing.
			if strings.Contains(strings.ToLower(err.Error()), "already indexed") {
				continue
			}
			return fmt.Errorf("falkordb: schema init: %w", err)
		}
	}
	return nil
}

// resultAdapter narrows a *falkordb.QueryResult down to the
// single-column-of-JSON shape this package's queries always project.
type resultAdapter struct {
	result *falkordb.QueryResult
}

func (r *resultAdapter) Next() bool {
	return r.result.Next()
}

func (r *resultAdapter) Value() (string, bool) {
	record := r.result.Record()
	values := record.Values()
	if len(values) == 0 {
		return "", false
	}
	s, ok := values[0].(string)
	return s, ok
}

// marshalBlob JSON-encodes v for storage as a single string node
// property, rather than mapping each field to its own property.
func marshalBlob(v interface{}) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("falkordb: marshal: %w", err)
	}
	return string(b), nil
}

func unmarshalBlob(blob string, v interface{}) error {
	return json.Unmarshal([]byte(blob), v)
}
