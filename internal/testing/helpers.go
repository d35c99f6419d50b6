package testing

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jeffrey-arndt/kong-mesh-ecs/internal/stack"
)

// TB is the part of testing.TB the helpers need. GinkgoT() satisfies it.
type TB interface {
	Helper()
	TempDir() string
	Fatalf(format string, args ...any)
}

// TestContext returns a context with a reasonable timeout for tests.
func TestContext(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	t.Cleanup(cancel)
	return ctx
}

// DiscardLogger returns a logger that drops everything.
func DiscardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// WriteTemplates writes a placeholder template for every stack of the
// default graph into a temporary directory and returns it.
func WriteTemplates(t TB) string {
	t.Helper()
	dir := t.TempDir()
	g := stack.DefaultGraph()
	for _, role := range g.Roles() {
		node, _ := g.Node(role)
		path := filepath.Join(dir, node.Template)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("create template dir: %v", err)
		}
		body := "AWSTemplateFormatVersion: '2010-09-09'\nDescription: " + string(role) + "\n"
		if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
			t.Fatalf("write template %s: %v", path, err)
		}
	}
	return dir
}
