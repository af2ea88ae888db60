package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.temporal.io/sdk/client"

	"github.com/mabteam/poimap/internal/adapters/geojson"
	"github.com/mabteam/poimap/internal/core/domain"
	"github.com/mabteam/poimap/internal/pkg/config"
	"github.com/mabteam/poimap/internal/pkg/logging"
	"github.com/mabteam/poimap/internal/workflows"
)

// maxSourceBytes caps downloaded and local source files.
const maxSourceBytes = 64 << 20

func main() {
	if len(os.Args) < 2 {
		log.Fatal("usage: ingestor <file-or-url> [...]   (.geojson FeatureCollection or .json array of places)")
	}

	cfg, err := config.Load("poimap-ingestor")
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logging.Setup(cfg.Log.Level, cfg.Log.Format, cfg.Telemetry.ServiceName)

	c, err := client.Dial(client.Options{
		HostPort:  cfg.Temporal.HostPort,
		Namespace: cfg.Temporal.Namespace,
	})
	if err != nil {
		log.Fatalf("temporal client: %v", err)
	}
	defer c.Close()

	ctx := context.Background()
	httpClient := &http.Client{Timeout: 120 * time.Second}

	failed := 0
	for _, source := range os.Args[1:] {
		if err := ingest(ctx, c, httpClient, cfg.Temporal.TaskQueue, source); err != nil {
			slog.Error("ingest failed", "source", source, "error", err)
			failed++
		}
	}
	if failed > 0 {
		os.Exit(1)
	}
	slog.Info("ingestion complete", "sources", len(os.Args)-1)
}

func ingest(ctx context.Context, c client.Client, httpClient *http.Client, taskQueue, source string) error {
	data, err := readSource(httpClient, source)
	if err != nil {
		return err
	}

	places, err := parsePlaces(source, data)
	if err != nil {
		return fmt.Errorf("parse: %w", err)
	}
	if len(places) == 0 {
		slog.Warn("no places found", "source", source)
		return nil
	}

	opts := client.StartWorkflowOptions{
		ID:        "poi-import-" + uuid.NewString(),
		TaskQueue: taskQueue,
	}
	run, err := c.ExecuteWorkflow(ctx, opts, workflows.ImportWorkflowName, workflows.ImportInput{
		Source: source,
		Places: places,
	})
	if err != nil {
		return fmt.Errorf("start workflow: %w", err)
	}
	slog.Info("import started", "source", source, "places", len(places), "workflow_id", run.GetID())

	var result workflows.ImportResult
	if err := run.Get(ctx, &result); err != nil {
		return fmt.Errorf("workflow %s: %w", run.GetID(), err)
	}
	slog.Info("import finished", "source", source, "imported", result.Imported)
	return nil
}

func readSource(httpClient *http.Client, source string) ([]byte, error) {
	if !strings.HasPrefix(source, "http://") && !strings.HasPrefix(source, "https://") {
		f, err := os.Open(source)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		return io.ReadAll(io.LimitReader(f, maxSourceBytes))
	}

	resp, err := httpClient.Get(source)
	if err != nil {
		return nil, fmt.Errorf("download: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP %d for %s", resp.StatusCode, source)
	}
	return io.ReadAll(io.LimitReader(resp.Body, maxSourceBytes))
}

// parsePlaces accepts a GeoJSON FeatureCollection or a JSON array of places
// with string x (longitude) and y (latitude).
func parsePlaces(source string, data []byte) ([]domain.Place, error) {
	ext := strings.ToLower(filepath.Ext(source))
	trimmed := bytes.TrimSpace(data)
	if ext == ".json" && len(trimmed) > 0 && trimmed[0] == '[' {
		var places []domain.Place
		if err := json.Unmarshal(trimmed, &places); err != nil {
			return nil, err
		}
		return places, nil
	}
	return geojson.Decode(bytes.NewReader(data))
}
