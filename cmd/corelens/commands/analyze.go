package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/corelens/rca-engine/internal/analyzer"
	"github.com/corelens/rca-engine/internal/audit"
	"github.com/corelens/rca-engine/internal/config"
	"github.com/corelens/rca-engine/internal/events"
	"github.com/corelens/rca-engine/internal/grouping"
	"github.com/corelens/rca-engine/internal/ingest"
	_ "github.com/corelens/rca-engine/internal/ingest/csv"
	_ "github.com/corelens/rca-engine/internal/ingest/jsonl"
	_ "github.com/corelens/rca-engine/internal/ingest/text"
	"github.com/corelens/rca-engine/internal/llm"
	"github.com/corelens/rca-engine/internal/logging"
	"github.com/corelens/rca-engine/internal/metrics"
	"github.com/corelens/rca-engine/internal/store"
	"github.com/corelens/rca-engine/internal/store/falkordb"
	"github.com/corelens/rca-engine/internal/store/memstore"
	"github.com/corelens/rca-engine/internal/tracing"
)

var (
	analyzeConfigPath string
	analyzeByService  bool
	analyzeLLM        bool
	analyzeStore      string
	analyzeAuditLog   string
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <file>",
	Short: "Ingest a log file, group it into incidents, and print the root cause analysis",
	Args:  cobra.ExactArgs(1),
	RunE:  runAnalyze,
}

func init() {
	analyzeCmd.Flags().StringVar(&analyzeConfigPath, "config", "", "path to a corelens config file (defaults to the engine's built-in defaults)")
	analyzeCmd.Flags().BoolVar(&analyzeByService, "by-service", true, "group events by service then time window (false groups the whole input by time window only)")
	analyzeCmd.Flags().BoolVar(&analyzeLLM, "llm", false, "enable the LLM-backed analysis pass (overrides the config file's llm_enabled)")
	analyzeCmd.Flags().StringVar(&analyzeStore, "store", "", "persist results to this backend: \"memory\" or \"falkordb\" (overrides the config file's store_backend; empty keeps the config file's store_backend)")
	analyzeCmd.Flags().StringVar(&analyzeAuditLog, "audit-log", "", "append a JSON-lines audit trail entry per analysis run to this file (empty disables the audit trail)")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	if err := setupLog(logLevelFlags); err != nil {
		return err
	}
	log := logging.GetLogger("cmd.analyze")

	cfg, err := loadAnalyzeConfig()
	if err != nil {
		return err
	}
	if analyzeLLM {
		cfg.LLMEnabled = true
	}
	if analyzeStore != "" {
		cfg.StoreBackend = analyzeStore
	}

	reg := prometheus.NewRegistry()
	mreg := metrics.New(reg)
	defer mreg.Unregister()
	if cfg.MetricsEnabled {
		stopMetrics := serveMetrics(cfg.MetricsPort, reg, log)
		defer stopMetrics()
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	tracer, err := tracing.NewTracingProvider(tracing.Config{
		Enabled:     cfg.TracingEnabled,
		Endpoint:    cfg.TracingEndpoint,
		TLSCAPath:   cfg.TracingTLSCAPath,
		TLSInsecure: cfg.TracingTLSInsecure,
	})
	if err != nil {
		return fmt.Errorf("tracing: %w", err)
	}
	if err := tracer.Start(ctx); err != nil {
		return err
	}
	defer tracer.Stop(ctx)

	adapter, formatTag, err := buildAdapter(args[0])
	if err != nil {
		return err
	}

	ingestCtx, ingestSpan := tracer.StartStage(ctx, tracing.StageIngest, "")
	evs, skipped, err := ingest.Drain(ingestCtx, adapter, cfg.StrictIngestion)
	ingestSpan.End()
	if err != nil {
		return fmt.Errorf("ingest: %w", err)
	}
	mreg.EventsIngested.WithLabelValues(formatTag).Add(float64(len(evs)))
	mreg.EventsSkipped.WithLabelValues(formatTag).Add(float64(skipped))
	mreg.ParseCacheHitRate.Set(events.TimestampParseCacheHitRate())
	log.InfoWithFields("ingested events", logging.Field("count", len(evs)), logging.Field("skipped", skipped))

	_, groupSpan := tracer.StartStage(ctx, tracing.StageGroup, "")
	var groups []grouping.Group
	if analyzeByService {
		groups = grouping.GroupByServiceThenTime(evs, cfg.CausalWindow, cfg.GroupMinEvents)
	} else {
		groups = grouping.GroupByTimeWindow(evs, cfg.CausalWindow, cfg.GroupMinEvents)
	}
	groupSpan.End()
	mreg.IncidentsGrouped.Add(float64(len(groups)))

	backend, err := buildStore(ctx, cfg)
	if err != nil {
		return err
	}
	if backend != nil {
		defer backend.Close()
	}

	provider, err := buildLLMProvider(cfg)
	if err != nil {
		return err
	}

	trail, closeAuditLog, err := openAuditTrail(analyzeAuditLog)
	if err != nil {
		return err
	}
	defer closeAuditLog()

	records := make([]store.AnalysisRecord, 0, len(groups))
	for i, group := range groups {
		incidentID := fmt.Sprintf("incident-%d", i)
		ilog := log.WithIncident(incidentID)

		// Analyze builds the causal graph as part of producing a
		// Result, so StageCausalGraph and StageAnalyze share one span:
		// there's no separate causal-graph-only call to hang a second
		// span on.
		analysisCtx, analysisSpan := tracer.StartStage(ctx, tracing.StageAnalyze, incidentID)
		var result analyzer.Result
		if cfg.LLMEnabled && provider != nil {
			result = analyzer.AnalyzeWithLLM(analysisCtx, group, provider)
			if used, ok := result.Metadata["llm_analysis"].(map[string]interface{}); ok {
				if usedFlag, _ := used["used"].(bool); !usedFlag {
					mreg.LLMFallbacks.Inc()
				}
			}
			if breaker, ok := provider.(interface{ State() llm.CircuitState }); ok {
				mreg.CircuitState.Set(circuitStateValue(breaker.State()))
			}
		} else {
			result = analyzer.Analyze(group)
		}
		analysisSpan.End()
		mreg.AnalysesRun.Inc()

		record := store.NewAnalysisRecord(result)
		records = append(records, record)
		if err := trail.Record(time.Now(), incidentID, record); err != nil {
			ilog.ErrorWithErr("audit log write failed", err)
		}

		if backend != nil {
			_, persistSpan := tracer.StartStage(ctx, tracing.StagePersist, incidentID)
			if err := backend.SaveIncident(ctx, incidentID, store.NewIncidentRecord(group)); err != nil {
				ilog.ErrorWithErr("save incident failed", err)
			}
			if result.Graph != nil {
				if err := backend.SaveCausalGraph(ctx, incidentID, *result.Graph); err != nil {
					ilog.ErrorWithErr("save causal graph failed", err)
				}
			}
			if err := backend.SaveAnalysisResult(ctx, incidentID, record); err != nil {
				ilog.ErrorWithErr("save analysis result failed", err)
			}
			persistSpan.End()
		}
	}

	if cacher, ok := backend.(interface{ QueryCacheHitRate() float64 }); ok {
		mreg.QueryCacheHitRate.Set(cacher.QueryCacheHitRate())
	}

	return printJSON(records)
}

func loadAnalyzeConfig() (*config.Config, error) {
	if analyzeConfigPath == "" {
		cfg := config.Default()
		return &cfg, nil
	}
	return config.Load(analyzeConfigPath)
}

// buildAdapter picks an ingest format by the file's extension and
// constructs the matching adapter through the default registry.
func buildAdapter(path string) (ingest.Adapter, string, error) {
	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	formatTag, ok := ingest.Default.FormatForExtension(ext)
	if !ok {
		formatTag = "generic"
	}
	adapter, err := ingest.Default.New(formatTag, map[string]interface{}{"path": path})
	if err != nil {
		return nil, "", fmt.Errorf("building %s adapter: %w", formatTag, err)
	}
	return adapter, formatTag, nil
}

func buildStore(ctx context.Context, cfg *config.Config) (store.Store, error) {
	switch cfg.StoreBackend {
	case "", "none":
		return nil, nil
	case "memory":
		return memstore.New(cfg.StoreCacheSize)
	case "falkordb":
		fcfg, err := falkordbConfigFromAddress(cfg.StoreAddress)
		if err != nil {
			return nil, err
		}
		client := falkordb.NewClient(fcfg)
		if err := client.Connect(ctx); err != nil {
			return nil, fmt.Errorf("connecting to falkordb: %w", err)
		}
		if err := client.InitializeSchema(ctx); err != nil {
			return nil, fmt.Errorf("initializing falkordb schema: %w", err)
		}
		return falkordb.New(ctx, client, falkordb.CacheConfig{Capacity: cfg.StoreCacheSize})
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
	}
}

// falkordbConfigFromAddress parses a "host:port" address into a
// falkordb.Config, starting from its connection defaults.
func falkordbConfigFromAddress(address string) (falkordb.Config, error) {
	cfg := falkordb.DefaultConfig()
	if address == "" {
		return cfg, nil
	}
	host, portStr, err := net.SplitHostPort(address)
	if err != nil {
		return falkordb.Config{}, fmt.Errorf("invalid store address %q: %w", address, err)
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return falkordb.Config{}, fmt.Errorf("invalid store address port %q: %w", portStr, err)
	}
	cfg.Host = host
	cfg.Port = port
	return cfg, nil
}

// openAuditTrail opens path in append mode and wraps it as an
// audit.Trail. An empty path disables the trail: the returned Trail's
// Record calls become no-ops and the close func is a no-op too.
func openAuditTrail(path string) (*audit.Trail, func(), error) {
	if path == "" {
		return audit.New(nil), func() {}, nil
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("opening audit log %q: %w", path, err)
	}
	return audit.New(f), func() { f.Close() }, nil
}

// buildLLMProvider constructs the Anthropic provider wrapped in the
// circuit breaker and retry layers AnalyzeWithLLM expects, or returns
// nil when LLM analysis is disabled.
func buildLLMProvider(cfg *config.Config) (llm.Provider, error) {
	if !cfg.LLMEnabled {
		return nil, nil
	}
	inner, err := llm.NewAnthropicProvider(llm.Config{
		Model:       cfg.LLMModel,
		MaxTokens:   cfg.LLMMaxTokens,
		Temperature: cfg.LLMTemperature,
	})
	if err != nil {
		return nil, fmt.Errorf("building anthropic provider: %w", err)
	}
	breaker := llm.NewCircuitBreaker(inner, llm.CircuitConfig{})
	return llm.NewRetryingProvider(breaker, 30*time.Second), nil
}

// serveMetrics starts a background /metrics HTTP server and returns a
// func that shuts it down. A failure to bind is logged, not fatal -
// analysis still runs without metrics exposed.
func serveMetrics(port int, reg *prometheus.Registry, log *logging.Logger) func() {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	srv := &http.Server{Addr: fmt.Sprintf(":%d", port), Handler: mux}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.ErrorWithErr("metrics server failed", err)
		}
	}()

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}
}

// circuitStateValue maps the LLM circuit breaker's state to the
// numeric gauge value metrics.Registry.CircuitState expects.
func circuitStateValue(s llm.CircuitState) float64 {
	switch s {
	case llm.CircuitStateHalfOpen:
		return float64(metrics.CircuitHalfOpen)
	case llm.CircuitStateOpen:
		return float64(metrics.CircuitOpen)
	default:
		return float64(metrics.CircuitClosed)
	}
}

func printJSON(records []store.AnalysisRecord) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(records)
}
