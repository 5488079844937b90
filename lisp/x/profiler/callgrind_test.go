// Copyright © 2024 The ELPS authors

package profiler_test

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/luthersystems/minischeme/lisp/x/profiler"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCallgrind(t *testing.T) {
	env := newTestEnv(t)
	p := profiler.NewCallgrindProfiler(env.Runtime)
	assert.Error(t, p.Enable(), "enabled without output")
	out := filepath.Join(t.TempDir(), "callgrind.test_prof")
	require.NoError(t, p.SetFile(out))
	require.NoError(t, p.Enable())
	assert.Error(t, p.SetFile(out))
	runTestScheme(t, env)
	require.NoError(t, p.Complete())

	b, err := os.ReadFile(out)
	require.NoError(t, err)
	prof := string(b)
	assert.True(t, strings.HasPrefix(prof, "version: 1\ncreator: mscheme "))
	assert.Contains(t, prof, ") add-it\n")
	assert.Contains(t, prof, ") count-down\n")
	assert.Contains(t, prof, ") ENTRYPOINT\n")
	assert.Contains(t, prof, "\nsummary ")
}

type closeBuffer struct {
	bytes.Buffer
	closed bool
}

func (b *closeBuffer) Close() error {
	b.closed = true
	return nil
}

func TestCallgrindWriter(t *testing.T) {
	env := newTestEnv(t)
	p := profiler.NewCallgrindProfiler(env.Runtime, profiler.WithoutBuiltins())
	var buf closeBuffer
	require.NoError(t, p.SetWriter(&buf))
	require.NoError(t, p.Enable())
	runTestScheme(t, env)
	require.NoError(t, p.Complete())
	assert.True(t, buf.closed)
	assert.NotContains(t, buf.String(), ") +\n")
	assert.Contains(t, buf.String(), ") count-down\n")
	assert.Contains(t, buf.String(), ") lambda\n")
	assert.Error(t, p.Complete())
}

func TestCallgrindRecords(t *testing.T) {
	env := newTestEnv(t)
	p := profiler.NewCallgrindProfiler(env.Runtime, profiler.WithoutBuiltins())
	var buf closeBuffer
	require.NoError(t, p.SetWriter(&buf))
	require.NoError(t, p.Enable())
	runTestScheme(t, env)
	require.NoError(t, p.Complete())

	out := buf.String()
	// One record per traced call plus the root.
	assert.Equal(t, lambdaCalls+1, strings.Count(out, "\nfn="))

	body, summary, ok := strings.Cut(out, "\nsummary ")
	require.True(t, ok)
	assert.NotEmpty(t, summary)
	records := strings.Split(strings.TrimSpace(body), "\n\n")
	root := records[len(records)-1]
	assert.Contains(t, root, ") ENTRYPOINT\n")
	// The lambda argument, count-down and add-it are called from top level.
	assert.Equal(t, 3, strings.Count(root, "calls=1 "))

	lines := strings.Split(out, "\n")
	for i, line := range lines {
		if strings.HasPrefix(line, "calls=1 ") {
			require.Less(t, i+1, len(lines))
			assert.Regexp(t, `^\d+ \d+ \d+$`, lines[i+1])
		}
	}
}
