package cmd

import (
	"bytes"
	"context"
	"database/sql"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/abdul-hamid-achik/callsy/packages/output"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type cliResult struct {
	code   int
	stdout string
	stderr string
}

func runCLI(t *testing.T, stdin string, args ...string) cliResult {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := run(args, strings.NewReader(stdin), &stdout, &stderr)
	return cliResult{code: code, stdout: stdout.String(), stderr: stderr.String()}
}

func writeRequest(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "request.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func newEchoServer(t *testing.T) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Header().Set("X-Method", r.Method)
		w.WriteHeader(http.StatusAccepted)
		_, _ = w.Write(body)
	}))
	t.Cleanup(server.Close)
	return server
}

func TestRun_Success(t *testing.T) {
	server := newEchoServer(t)
	dir := t.TempDir()
	req := writeRequest(t, dir, `{
  "url": "`+server.URL+`/echo",
  "method": "post",
  "headers": {"Content-Type": "text/plain", "Content-Length": null},
  "body": "hello"
}`)
	out := filepath.Join(dir, "response.json")

	res := runCLI(t, "", "-request_file", req, "-output_file", out)
	require.Equal(t, ExitSuccess, res.code, res.stderr)
	assert.Empty(t, res.stdout)
	assert.Empty(t, res.stderr)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	doc, err := output.Parse(data)
	require.NoError(t, err)
	assert.Equal(t, "202", doc.StatusCode)
	assert.Equal(t, "POST", doc.Headers["x-method"])
	assert.Equal(t, "hello", doc.Body)
}

func TestRun_FlagSpellings(t *testing.T) {
	server := newEchoServer(t)

	spellings := map[string][]string{
		"single dash": {"-request_file", "REQ", "-output_file", "OUT"},
		"double dash": {"--request_file", "REQ", "--output_file=OUT"},
		"hyphenated":   {"--request-file", "REQ", "--output-file", "OUT"},
		"shorthands":   {"-r", "REQ", "-o", "OUT"},
	}

	for name, args := range spellings {
		t.Run(name, func(t *testing.T) {
			dir := t.TempDir()
			req := writeRequest(t, dir, `{"url":"`+server.URL+`","method":"GET","headers":{}}`)
			out := filepath.Join(dir, "out.json")

			resolved := make([]string, len(args))
			for i, a := range args {
				a = strings.ReplaceAll(a, "REQ", req)
				resolved[i] = strings.ReplaceAll(a, "OUT", out)
			}

			res := runCLI(t, "", resolved...)
			require.Equal(t, ExitSuccess, res.code, res.stderr)
			assert.FileExists(t, out)
		})
	}
}

func TestRun_BodyOutputFile(t *testing.T) {
	server := newEchoServer(t)
	dir := t.TempDir()
	payload := filepath.Join(dir, "payload.txt")
	require.NoError(t, os.WriteFile(payload, []byte("from disk"), 0644))
	req := writeRequest(t, dir, `{"url":"`+server.URL+`","method":"PUT","headers":{},"body_path":"`+filepath.ToSlash(payload)+`"}`)
	out := filepath.Join(dir, "response.json")
	bodyOut := filepath.Join(dir, "sent.txt")

	res := runCLI(t, "", "-r", req, "-o", out, "-body_output_file", bodyOut)
	require.Equal(t, ExitSuccess, res.code, res.stderr)

	sent, err := os.ReadFile(bodyOut)
	require.NoError(t, err)
	assert.Equal(t, "from disk", string(sent))
}

func TestRun_MalformedDocument(t *testing.T) {
	dir := t.TempDir()
	req := writeRequest(t, dir, "{\n  \"url\": \"https://example.test\",\n  \"method\": 5,\n  \"headers\": {}\n}")
	out := filepath.Join(dir, "response.json")

	res := runCLI(t, "", "-r", req, "-o", out)
	assert.Equal(t, ExitInputError, res.code)
	assert.True(t, strings.HasPrefix(res.stderr, "Error: "), res.stderr)
	assert.Contains(t, res.stderr, "line 3")
	assert.NoFileExists(t, out)
}

func TestRun_MissingRequestFile(t *testing.T) {
	dir := t.TempDir()
	res := runCLI(t, "", "-r", filepath.Join(dir, "nope.json"), "-o", filepath.Join(dir, "out.json"))
	assert.Equal(t, ExitInputError, res.code)
	assert.Contains(t, res.stderr, "nope.json")
}

func TestRun_TransportError(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	dir := t.TempDir()
	req := writeRequest(t, dir, `{"url":"`+url+`","method":"GET","headers":{}}`)
	out := filepath.Join(dir, "response.json")

	res := runCLI(t, "", "-r", req, "-o", out)
	assert.Equal(t, ExitNetworkError, res.code)
	assert.Contains(t, res.stderr, "error when sending the request")
	assert.NoFileExists(t, out)
}

func TestRun_OverwritePrompt(t *testing.T) {
	server := newEchoServer(t)

	tests := []struct {
		name     string
		stdin    string
		args     []string
		wantCode int
		wantBody string
	}{
		{name: "declined", stdin: "n\n", wantCode: ExitDeclined, wantBody: "previous"},
		{name: "retry then yes", stdin: "sure\ny\n", wantCode: ExitSuccess},
		{name: "eof declines", stdin: "", wantCode: ExitDeclined, wantBody: "previous"},
		{name: "assume yes", args: []string{"--yes"}, wantCode: ExitSuccess},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			req := writeRequest(t, dir, `{"url":"`+server.URL+`","method":"POST","headers":{},"body":"new"}`)
			out := filepath.Join(dir, "response.json")
			require.NoError(t, os.WriteFile(out, []byte("previous"), 0644))

			res := runCLI(t, tt.stdin, append([]string{"-r", req, "-o", out}, tt.args...)...)
			require.Equal(t, tt.wantCode, res.code, res.stderr)

			data, err := os.ReadFile(out)
			require.NoError(t, err)
			if tt.wantBody != "" {
				assert.Equal(t, tt.wantBody, string(data))
			} else {
				assert.Contains(t, string(data), `"body": "new"`)
			}
		})
	}
}

func TestRun_DryRun(t *testing.T) {
	dir := t.TempDir()
	req := writeRequest(t, dir, `{"url":"https://example.test/items","method":"delete","headers":{"X-Id":"7"}}`)
	out := filepath.Join(dir, "response.json")

	res := runCLI(t, "", "-r", req, "-o", out, "--dry-run", "--no-color")
	require.Equal(t, ExitSuccess, res.code, res.stderr)
	assert.Contains(t, res.stdout, "DELETE https://example.test/items")
	assert.Contains(t, res.stdout, "X-Id: 7")
	assert.NoFileExists(t, out)
}

func TestRun_History(t *testing.T) {
	server := newEchoServer(t)
	dir := t.TempDir()
	req := writeRequest(t, dir, `{"url":"`+server.URL+`","method":"GET","headers":{}}`)
	db := filepath.Join(dir, "history", "callsy.db")

	res := runCLI(t, "", "-r", req, "-o", filepath.Join(dir, "out.json"), "--history-db", db)
	require.Equal(t, ExitSuccess, res.code, res.stderr)

	conn, err := sql.Open("sqlite3", db)
	require.NoError(t, err)
	defer conn.Close()

	var count, status int
	var method string
	require.NoError(t, conn.QueryRowContext(context.Background(),
		`SELECT COUNT(*), MAX(status_code), MAX(method) FROM history`).Scan(&count, &status, &method))
	assert.Equal(t, 1, count)
	assert.Equal(t, http.StatusAccepted, status)
	assert.Equal(t, "GET", method)
}

func TestRun_ConfigErrors(t *testing.T) {
	dir := t.TempDir()
	req := writeRequest(t, dir, `{"url":"https://example.test","method":"GET","headers":{}}`)

	res := runCLI(t, "", "-r", req, "--timeout", "soon")
	assert.Equal(t, ExitConfigError, res.code)

	cfg := filepath.Join(dir, "callsy.yaml")
	require.NoError(t, os.WriteFile(cfg, []byte("unknown_key: true\n"), 0644))
	res = runCLI(t, "", "-r", req, "--config", cfg)
	assert.Equal(t, ExitConfigError, res.code)
}

func TestRun_UsageErrors(t *testing.T) {
	assert.Equal(t, ExitUsageError, runCLI(t, "", "--bogus").code)
	assert.Equal(t, ExitUsageError, runCLI(t, "", "extra").code)
	assert.Equal(t, ExitUsageError, runCLI(t, "", "-r").code)
}

func TestRun_Version(t *testing.T) {
	res := runCLI(t, "", "--version")
	require.Equal(t, ExitSuccess, res.code)
	assert.True(t, strings.HasPrefix(res.stdout, "callsy version "), res.stdout)
}

func TestRun_EnvFile(t *testing.T) {
	server := newEchoServer(t)
	dir := t.TempDir()
	req := writeRequest(t, dir, `{"url":"`+server.URL+`","method":"GET","headers":{}}`)
	out := filepath.Join(dir, "out.json")

	envFile := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("REQUEST_TIMEOUT=5s\n"), 0644))
	res := runCLI(t, "", "-r", req, "-o", out, "--timeout", "${REQUEST_TIMEOUT}", "--env-file", envFile)
	require.Equal(t, ExitSuccess, res.code, res.stderr)

	require.NoError(t, os.WriteFile(envFile, []byte("REQUEST_TIMEOUT=soon\n"), 0644))
	res = runCLI(t, "", "-r", req, "-o", out, "-y", "--timeout", "${REQUEST_TIMEOUT}", "--env-file", envFile)
	assert.Equal(t, ExitConfigError, res.code)

	res = runCLI(t, "", "-r", req, "-o", out, "-y", "--env-file", filepath.Join(dir, "missing.env"))
	assert.Equal(t, ExitConfigError, res.code)
}
