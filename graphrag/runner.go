//
// Tencent is pleased to support the open source community by making trpc-agent-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agent-go is licensed under the Apache License Version 2.0.
//
//

package graphrag

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/shlex"

	"trpc.group/trpc-go/trpc-docstudio-go/history"
	"trpc.group/trpc-go/trpc-docstudio-go/log"
	"trpc.group/trpc-go/trpc-docstudio-go/telemetry/metric"
)

// Defaults for a Runner.
const (
	DefaultCommand   = "conda run -n graphrag-0.50 graphrag query"
	DefaultRoot      = "./ragtest"
	DefaultResultDir = "./query_results"
	DefaultTimeout   = 10 * time.Minute

	resultTimeLayout = "20060102_150405"
	// waitDelay bounds how long output pipes are drained after the process is killed.
	waitDelay = 2 * time.Second
)

// ErrEmptyQuery is returned for a blank query.
var ErrEmptyQuery = errors.New("query is empty")

// QueryResult is the outcome of one GraphRAG query. A query whose process
// failed still yields a result, with Failed set and the output in Text.
type QueryResult struct {
	Query      string        `json:"query"`
	Method     Method        `json:"method"`
	Text       string        `json:"text"`
	Failed     bool          `json:"failed"`
	ExitCode   int           `json:"exit_code"`
	TimedOut   bool          `json:"timed_out,omitempty"`
	ResultPath string        `json:"result_path,omitempty"`
	Duration   time.Duration `json:"duration"`
}

// Option configures a Runner.
type Option func(*Runner)

// WithCommand sets the base command. It is split like a shell would, without
// running a shell.
func WithCommand(command string) Option {
	return func(r *Runner) {
		r.command = command
	}
}

// WithRoot sets the GraphRAG project root passed as --root.
func WithRoot(root string) Option {
	return func(r *Runner) {
		r.root = root
	}
}

// WithResultDir sets where query results are saved. An empty dir disables saving.
func WithResultDir(dir string) Option {
	return func(r *Runner) {
		r.resultDir = dir
	}
}

// WithTimeout bounds one query.
func WithTimeout(d time.Duration) Option {
	return func(r *Runner) {
		if d > 0 {
			r.timeout = d
		}
	}
}

// WithEnv adds KEY=VALUE pairs to the environment of the query process.
func WithEnv(env ...string) Option {
	return func(r *Runner) {
		r.env = append(r.env, env...)
	}
}

// WithHistory records every query in store.
func WithHistory(store history.Store) Option {
	return func(r *Runner) {
		r.history = store
	}
}

// Runner executes GraphRAG queries as a child process.
type Runner struct {
	command   string
	argv      []string
	root      string
	resultDir string
	timeout   time.Duration
	env       []string
	history   history.Store
	now       func() time.Time
}

// NewRunner creates a Runner. It fails when the command cannot be parsed.
func NewRunner(opts ...Option) (*Runner, error) {
	r := &Runner{
		command:   DefaultCommand,
		root:      DefaultRoot,
		resultDir: DefaultResultDir,
		timeout:   DefaultTimeout,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	argv, err := shlex.Split(r.command)
	if err != nil {
		return nil, fmt.Errorf("parse graphrag command %q: %w", r.command, err)
	}
	if len(argv) == 0 {
		return nil, fmt.Errorf("graphrag command is empty")
	}
	r.argv = argv
	return r, nil
}

// Args returns the argv of a query, without running it.
func (r *Runner) Args(query string, method Method) []string {
	args := make([]string, 0, len(r.argv)+6)
	args = append(args, r.argv...)
	return append(args, "--root", r.root, "--method", string(method), "--query", query)
}

// Query runs query with method. The returned error covers invalid input and
// cancellation only. A failing GraphRAG process is reported in the result.
func (r *Runner) Query(ctx context.Context, query string, method Method) (*QueryResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, ErrEmptyQuery
	}
	method, err := ParseMethod(string(method))
	if err != nil {
		return nil, err
	}

	res := r.run(ctx, query, method)
	if res.Failed && ctx.Err() != nil {
		return nil, ctx.Err()
	}
	metric.RecordGraphRAGQuery(ctx, string(method), res.Failed)
	if res.Failed {
		log.ErrorfContext(ctx, "graphrag: %s query failed with exit code %d", method, res.ExitCode)
	}

	if r.resultDir != "" {
		path, err := r.save(res)
		if err != nil {
			log.WarnfContext(ctx, "graphrag: save result: %v", err)
		} else {
			res.ResultPath = path
		}
	}
	r.record(ctx, res)
	return res, nil
}

// RunPreset runs the preset question at index.
func (r *Runner) RunPreset(ctx context.Context, index int) (*QueryResult, error) {
	p, err := PresetAt(index)
	if err != nil {
		return nil, err
	}
	return r.Query(ctx, p.Question, p.Method)
}

func (r *Runner) run(ctx context.Context, query string, method Method) *QueryResult {
	tctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	argv := r.Args(query, method)
	cmd := exec.CommandContext(tctx, argv[0], argv[1:]...) //nolint:gosec
	cmd.Env = append(os.Environ(), r.env...)
	cmd.WaitDelay = waitDelay

	var stdout, combined bytes.Buffer
	out := &outputWriter{combined: &combined}
	cmd.Stdout = out.tee(&stdout)
	cmd.Stderr = out

	start := time.Now()
	runErr := cmd.Run()
	res := &QueryResult{
		Query:    query,
		Method:   method,
		Duration: time.Since(start),
		TimedOut: errors.Is(tctx.Err(), context.DeadlineExceeded),
	}
	if runErr == nil {
		res.Text = stdout.String()
		return res
	}

	res.Failed = true
	var ee *exec.ExitError
	if errors.As(runErr, &ee) {
		res.ExitCode = ee.ExitCode()
	} else {
		// The process never started.
		res.ExitCode = -1
		combined.WriteString(runErr.Error())
	}
	if res.TimedOut {
		fmt.Fprintf(&combined, "\nquery timed out after %s", r.timeout)
	}
	res.Text = fmt.Sprintf("Query failed (exit code %d):\n%s", res.ExitCode, combined.String())
	return res
}

func (r *Runner) save(res *QueryResult) (string, error) {
	if err := os.MkdirAll(r.resultDir, 0o755); err != nil {
		return "", err
	}
	name := fmt.Sprintf("query_results_%s_%s.txt", r.now().Format(resultTimeLayout), res.Method)
	path := filepath.Join(r.resultDir, name)
	body := fmt.Sprintf("Query: %s\nMethod: %s\n\nResult:\n%s", res.Query, res.Method, res.Text)
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		return "", err
	}
	return path, nil
}

func (r *Runner) record(ctx context.Context, res *QueryResult) {
	if r.history == nil {
		return
	}
	if _, err := r.history.SaveQuery(ctx, history.QueryRecord{
		Query:      res.Query,
		Method:     string(res.Method),
		Result:     res.Text,
		Failed:     res.Failed,
		ResultPath: res.ResultPath,
		Duration:   res.Duration.Seconds(),
	}); err != nil {
		log.WarnfContext(ctx, "graphrag: save history: %v", err)
	}
}

// outputWriter interleaves the process streams into one buffer. os/exec
// copies each stream from its own goroutine, so every write holds mu.
type outputWriter struct {
	mu       sync.Mutex
	combined *bytes.Buffer
}

// tee returns a writer that also copies into w, under the same lock.
func (o *outputWriter) tee(w io.Writer) io.Writer {
	return &teeWriter{o: o, w: w}
}

func (o *outputWriter) Write(p []byte) (int, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.combined.Write(p)
}

type teeWriter struct {
	o *outputWriter
	w io.Writer
}

func (t *teeWriter) Write(p []byte) (int, error) {
	t.o.mu.Lock()
	defer t.o.mu.Unlock()
	if _, err := t.w.Write(p); err != nil {
		return 0, err
	}
	return t.o.combined.Write(p)
}
