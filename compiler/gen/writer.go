package gen

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"github.com/syssam/relgen/schema"
)

// Artifact file names.
const (
	SchemaFile    = "schema.graphql"
	TablesFile    = "tables.json"
	ResolversFile = "resolvers.json"
	MappingsFile  = "mappings.yaml"
)

// Writer writes compiled artifacts to a directory in parallel.
type Writer struct {
	out     *Output
	outDir  string
	workers int

	mu      sync.Mutex
	metrics *WriterMetrics
}

// WriterMetrics tracks generation performance.
type WriterMetrics struct {
	FilesGenerated int
	TotalBytes     int64
	RenderTime     time.Duration
	WriteTime      time.Duration
}

// NewWriter creates a writer of out into outDir.
func NewWriter(out *Output, outDir string) *Writer {
	return &Writer{
		out:     out,
		outDir:  outDir,
		workers: runtime.GOMAXPROCS(0),
		metrics: &WriterMetrics{},
	}
}

// WithWorkers sets the number of parallel workers.
func (w *Writer) WithWorkers(n int) *Writer {
	if n > 0 {
		w.workers = n
	}
	return w
}

// Metrics returns the generation metrics.
func (w *Writer) Metrics() *WriterMetrics {
	return w.metrics
}

// fileTask is a single artifact to write.
type fileTask struct {
	name   string
	render func() ([]byte, error)
}

func (w *Writer) tasks() []fileTask {
	files := []fileTask{
		{name: SchemaFile, render: func() ([]byte, error) {
			return []byte(schema.Print(w.out.Schema)), nil
		}},
		{name: TablesFile, render: func() ([]byte, error) {
			return json.MarshalIndent(w.out.Tables, "", "  ")
		}},
		{name: ResolversFile, render: func() ([]byte, error) {
			return json.MarshalIndent(struct {
				DataSources      []*DataSource       `json:"dataSources"`
				Resolvers        []*Resolver         `json:"resolvers"`
				JoinTypes        []string            `json:"joinTypes,omitempty"`
				ConnectionFields map[string][]string `json:"connectionFields,omitempty"`
			}{w.out.DataSources, w.out.Resolvers, w.out.JoinTypes, w.out.ConnectionFields}, "", "  ")
		}},
	}
	if w.out.Mappings != nil && w.out.Mappings.Len() > 0 {
		files = append(files, fileTask{name: MappingsFile, render: func() ([]byte, error) {
			return yaml.Marshal(w.out.Mappings)
		}})
	}
	if w.out.Config != nil && w.out.Config.Enabled(FeatureBindings) {
		files = append(files, fileTask{name: BindingsFile, render: func() ([]byte, error) {
			return Bindings(w.out)
		}})
	}
	return files
}

// WriteAll writes all artifacts in parallel.
func (w *Writer) WriteAll(ctx context.Context) error {
	if err := os.MkdirAll(w.outDir, 0o755); err != nil {
		return NewGenerationError("write", w.outDir, "create output directory", err)
	}
	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(w.workers)
	for _, f := range w.tasks() {
		eg.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
				return w.writeFile(f)
			}
		})
	}
	return eg.Wait()
}

func (w *Writer) writeFile(f fileTask) error {
	start := time.Now()
	b, err := f.render()
	if err != nil {
		return NewGenerationError("render", f.name, "render artifact", err)
	}
	rendered := time.Now()
	if err := os.WriteFile(filepath.Join(w.outDir, f.name), b, 0o644); err != nil {
		return NewGenerationError("write", f.name, "write artifact", err)
	}

	w.mu.Lock()
	w.metrics.FilesGenerated++
	w.metrics.TotalBytes += int64(len(b))
	w.metrics.RenderTime += rendered.Sub(start)
	w.metrics.WriteTime += time.Since(rendered)
	w.mu.Unlock()
	return nil
}

// Write writes the artifacts of out to its configured target and removes
// the artifacts of disabled features.
func Write(ctx context.Context, out *Output) error {
	if out.Config == nil || out.Config.Target == "" {
		return NewConfigError("Target", nil, "missing target directory in config")
	}
	w := NewWriter(out, out.Config.Target)
	if err := w.WriteAll(ctx); err != nil {
		return err
	}
	if err := out.Config.cleanup(); err != nil {
		return fmt.Errorf("relgen/gen: %w", err)
	}
	m := w.Metrics()
	out.Config.Log().Debug("artifacts written",
		"dir", out.Config.Target,
		"files", m.FilesGenerated,
		"bytes", m.TotalBytes,
	)
	return nil
}
