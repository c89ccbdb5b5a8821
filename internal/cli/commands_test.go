package cli

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matzehuels/reftext/pkg/errors"
	"github.com/matzehuels/reftext/pkg/observability"
)

// isolate points config and cache lookups at fresh temp directories.
func isolate(t *testing.T) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("XDG_CACHE_HOME", t.TempDir())
	t.Cleanup(observability.Reset)
}

// execute runs the CLI with args and stdin and returns what it wrote to
// stdout.
func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	c := New(io.Discard, LogInfo)
	root := c.RootCommand()

	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(io.Discard)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

// executeWithStatus is execute that also returns what the command wrote to
// stderr.
func executeWithStatus(t *testing.T, stdin string, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	c := New(io.Discard, LogInfo)
	root := c.RootCommand()

	var out, status bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&status)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(args)
	err = root.ExecuteContext(context.Background())
	return out.String(), status.String(), err
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestFmtCommand(t *testing.T) {
	isolate(t)

	tests := []struct {
		name  string
		args  []string
		stdin string
		want  string
	}{
		{
			name:  "canonical",
			args:  []string{"fmt"},
			stdin: `{ "a" : [ 1 ] , "b" : /{"a"}/ }`,
			want:  "{\"a\":[1],\"b\":/{\"a\"}/}\n",
		},
		{
			name:  "stdin dash",
			args:  []string{"fmt", "-"},
			stdin: `[n12n, @"2020-01-02T03:04:05.006Z"@]`,
			want:  "[n12n,@\"2020-01-02T03:04:05.006Z\"@]\n",
		},
		{
			name:  "indent",
			args:  []string{"fmt", "--indent", "  "},
			stdin: `[1,{"k":true}]`,
			want:  "[\n  1,\n  {\n    \"k\": true\n  }\n]\n",
		},
		{
			name:  "cycle",
			args:  []string{"fmt"},
			stdin: `[//]`,
			want:  "[//]\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := execute(t, tt.stdin, tt.args...)
			if err != nil {
				t.Fatalf("execute: %v", err)
			}
			if got != tt.want {
				t.Errorf("output = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFmtCommandOutputFile(t *testing.T) {
	isolate(t)
	in := writeFile(t, "in.rt", `[ "x" ]`)
	out := filepath.Join(t.TempDir(), "out.rt")

	if _, err := execute(t, "", "fmt", in, "-o", out); err != nil {
		t.Fatalf("execute: %v", err)
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if string(data) != `["x"]` {
		t.Errorf("file = %q", data)
	}
}

func TestFmtCommandErrors(t *testing.T) {
	isolate(t)

	_, err := execute(t, "[1 2]", "fmt")
	if !errors.Is(err, errors.ErrCodeMalformed) {
		t.Errorf("malformed input = %v, want MALFORMED", err)
	}

	_, err = execute(t, "", "fmt", filepath.Join(t.TempDir(), "missing.rt"))
	if !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("missing file = %v, want FILE_NOT_FOUND", err)
	}
}

func TestCheckCommand(t *testing.T) {
	isolate(t)
	good := writeFile(t, "good.rt", `{"a":/{"b"}/,"b":[]}`)
	bad := writeFile(t, "bad.rt", "{\"a\":\n/{\"missing\"}/}")

	if _, err := execute(t, "", "check", "-q", good); err != nil {
		t.Errorf("check good = %v", err)
	}

	_, err := execute(t, "", "check", good, bad)
	if !errors.Is(err, errors.ErrCodeMalformed) {
		t.Fatalf("check bad = %v, want MALFORMED", err)
	}
	if !strings.Contains(err.Error(), "1 of 2") {
		t.Errorf("error = %q, want count of invalid documents", err)
	}
}

func TestStatusLinesGoToStderr(t *testing.T) {
	isolate(t)
	good := writeFile(t, "good.rt", `[//]`)
	bad := writeFile(t, "bad.rt", `[`)

	stdout, stderr, err := executeWithStatus(t, "", "check", good, bad)
	if !errors.Is(err, errors.ErrCodeMalformed) {
		t.Fatalf("check = %v, want MALFORMED", err)
	}
	if strings.Contains(stdout, "✓") || strings.Contains(stdout, "✗") {
		t.Errorf("status lines on stdout: %q", stdout)
	}
	if !strings.Contains(stderr, "✓ "+good) || !strings.Contains(stderr, "✗ "+bad+":1:") {
		t.Errorf("stderr = %q, want a line per document", stderr)
	}

	out := filepath.Join(t.TempDir(), "out.rt")
	stdout, stderr, err = executeWithStatus(t, "[1]", "fmt", "-o", out)
	if err != nil {
		t.Fatalf("fmt -o: %v", err)
	}
	if stdout != "" || !strings.Contains(stderr, out) {
		t.Errorf("fmt -o stdout = %q, stderr = %q", stdout, stderr)
	}
}

func TestDescribeError(t *testing.T) {
	isolate(t)
	_, err := execute(t, "[\n\n  tru]", "fmt")
	if err == nil {
		t.Fatal("expected error")
	}
	msg := describeError("doc.rt", err)
	if !strings.HasPrefix(msg, "doc.rt:3: ") {
		t.Errorf("describeError = %q, want line 3", msg)
	}

	msg = describeError("x", errors.New(errors.ErrCodeFileNotFound, "file not found: x"))
	if msg != "x: file not found: x" {
		t.Errorf("describeError = %q", msg)
	}
}

func TestJSONCommands(t *testing.T) {
	isolate(t)

	got, err := execute(t, `{"b":1,"a":[true,null,"s"]}`, "from-json")
	if err != nil {
		t.Fatalf("from-json: %v", err)
	}
	if got != "{\"b\":1,\"a\":[true,null,\"s\"]}\n" {
		t.Errorf("from-json = %q", got)
	}

	got, err = execute(t, `{"a":[1],"b":/{"a"}/,"u":undefined}`, "to-json")
	if err != nil {
		t.Fatalf("to-json: %v", err)
	}
	if got != "{\"a\":[1],\"b\":[1]}\n" {
		t.Errorf("to-json = %q", got)
	}

	_, err = execute(t, `[//]`, "to-json")
	if !errors.Is(err, errors.ErrCodeUnsupported) {
		t.Errorf("to-json cycle = %v, want UNSUPPORTED", err)
	}

	_, err = execute(t, `{"a":`, "from-json")
	if !errors.Is(err, errors.ErrCodeInvalidFormat) {
		t.Errorf("from-json truncated = %v, want INVALID_FORMAT", err)
	}
}

func TestStatsCommand(t *testing.T) {
	isolate(t)
	got, err := execute(t, `{"a":[1],"b":/{"a"}/,"self"://}`, "stats", "--shared")
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	for _, want := range []string{"arrays", "shared", "back edges", "yes", `/{"a"}/`} {
		if !strings.Contains(got, want) {
			t.Errorf("stats output missing %q:\n%s", want, got)
		}
	}
}

func TestGraphCommand(t *testing.T) {
	isolate(t)
	got, err := execute(t, `[[],/["0"]/]`, "graph")
	if err != nil {
		t.Fatalf("graph: %v", err)
	}
	if !strings.Contains(got, "digraph G {") || !strings.Contains(got, `"//" -> "/[\"0\"]/"`) {
		t.Errorf("graph output:\n%s", got)
	}

	_, err = execute(t, `[]`, "graph", "--format", "png")
	if !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("unknown format = %v, want INVALID_INPUT", err)
	}
}

func TestStoreCommands(t *testing.T) {
	isolate(t)

	id, err := execute(t, `{"list":[1,2],"again":/{"list"}/}`, "store", "put")
	if err != nil {
		t.Fatalf("store put: %v", err)
	}
	id = strings.TrimSpace(id)
	if id == "" {
		t.Fatal("store put printed no id")
	}

	got, err := execute(t, "", "store", "get", id)
	if err != nil {
		t.Fatalf("store get: %v", err)
	}
	if got != "{\"list\":[1,2],\"again\":/{\"list\"}/}\n" {
		t.Errorf("store get = %q", got)
	}

	if _, err := execute(t, "[true]", "store", "put", "--id", "named"); err != nil {
		t.Fatalf("store put --id: %v", err)
	}
	got, err = execute(t, "", "store", "get", "--raw", "named")
	if err != nil || got != "[true]\n" {
		t.Errorf("store get --raw = %q, %v", got, err)
	}

	if _, err := execute(t, "", "store", "rm", id, "named"); err != nil {
		t.Fatalf("store rm: %v", err)
	}
	_, err = execute(t, "", "store", "get", id)
	if !errors.Is(err, errors.ErrCodeNotFound) {
		t.Errorf("get after rm = %v, want NOT_FOUND", err)
	}

	_, err = execute(t, "[1,", "store", "put")
	if !errors.Is(err, errors.ErrCodeMalformed) {
		t.Errorf("put malformed = %v, want MALFORMED", err)
	}
}

func TestStoreNamespaceFromConfig(t *testing.T) {
	isolate(t)
	dir := t.TempDir()
	alpha := writeFile(t, "alpha.toml", "[store]\nnamespace = \"alpha\"\ndir = \""+filepath.ToSlash(dir)+"\"\n")
	beta := writeFile(t, "beta.toml", "[store]\nnamespace = \"beta\"\ndir = \""+filepath.ToSlash(dir)+"\"\n")

	if _, err := execute(t, "1", "--config", alpha, "store", "put", "--id", "doc"); err != nil {
		t.Fatalf("put: %v", err)
	}
	if _, err := execute(t, "", "--config", alpha, "store", "get", "doc"); err != nil {
		t.Errorf("alpha get: %v", err)
	}
	if _, err := execute(t, "", "--config", beta, "store", "get", "doc"); !errors.Is(err, errors.ErrCodeNotFound) {
		t.Errorf("beta get = %v, want NOT_FOUND", err)
	}
}

func TestNoneBackendKeepsNothing(t *testing.T) {
	isolate(t)
	cfg := writeFile(t, "config.toml", "[store]\nbackend = \"none\"\n")

	id, err := execute(t, "[]", "--config", cfg, "store", "put")
	if err != nil {
		t.Fatalf("put: %v", err)
	}
	_, err = execute(t, "", "--config", cfg, "store", "get", strings.TrimSpace(id))
	if !errors.Is(err, errors.ErrCodeNotFound) {
		t.Errorf("get = %v, want NOT_FOUND", err)
	}
}

func TestConfigErrors(t *testing.T) {
	isolate(t)

	_, err := execute(t, "[]", "--config", filepath.Join(t.TempDir(), "nope.toml"), "fmt")
	if !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("missing explicit config = %v, want FILE_NOT_FOUND", err)
	}

	bad := writeFile(t, "bad.toml", "[store]\nbackend = \"s3\"\n")
	_, err = execute(t, "[]", "--config", bad, "fmt")
	if !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("unknown backend = %v, want INVALID_INPUT", err)
	}
}

func TestConfigIndentDefault(t *testing.T) {
	isolate(t)
	cfg := writeFile(t, "config.toml", "indent = \"\\t\"\n")

	got, err := execute(t, "[1]", "--config", cfg, "fmt")
	if err != nil {
		t.Fatalf("fmt: %v", err)
	}
	if got != "[\n\t1\n]\n" {
		t.Errorf("fmt with config indent = %q", got)
	}

	got, err = execute(t, "[1]", "--config", cfg, "fmt", "--indent", "")
	if err != nil {
		t.Fatalf("fmt: %v", err)
	}
	if got != "[1]\n" {
		t.Errorf("explicit empty --indent = %q", got)
	}
}

func TestCachePathCommand(t *testing.T) {
	isolate(t)
	got, err := execute(t, "", "cache", "path")
	if err != nil {
		t.Fatalf("cache path: %v", err)
	}
	want := filepath.Join(os.Getenv("XDG_CACHE_HOME"), appName)
	if strings.TrimSpace(got) != want {
		t.Errorf("cache path = %q, want %q", got, want)
	}
}

func TestCacheClearCommand(t *testing.T) {
	isolate(t)
	if _, err := execute(t, "[1]", "store", "put", "--id", "doc"); err != nil {
		t.Fatalf("put: %v", err)
	}
	if _, err := execute(t, "", "cache", "clear"); err != nil {
		t.Fatalf("cache clear: %v", err)
	}
	if _, err := execute(t, "", "store", "get", "doc"); !errors.Is(err, errors.ErrCodeNotFound) {
		t.Errorf("get after clear = %v, want NOT_FOUND", err)
	}
}
