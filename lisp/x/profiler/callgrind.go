// Copyright © 2024 The ELPS authors

package profiler

import (
	"errors"
	"fmt"
	"io"
	"os"
	"runtime"
	"sync"
	"time"

	"github.com/luthersystems/minischeme/lisp"
	"github.com/luthersystems/minischeme/parser/token"
)

// rootFrame names the frame that encloses every top-level call.
const rootFrame = "ENTRYPOINT"

// callgrindProfiler writes a Callgrind profile of the evaluated program.
// The output can be opened in KCacheGrind or QCacheGrind.
//
// Each call becomes a frame when Start is called.  The closure returned by
// Start closes that frame and writes its record, so records appear in the
// order calls return and the root frame is written by Complete.
type callgrindProfiler struct {
	profiler

	mu    sync.Mutex
	out   io.WriteCloser
	err   error
	begin time.Time
	files map[string]int
	fns   map[string]int
	stack []*callFrame
}

var _ lisp.Profiler = &callgrindProfiler{}

// NewCallgrindProfiler returns a profiler writing Callgrind output.  The
// output must be set with SetFile or SetWriter before the profiler is
// enabled.
func NewCallgrindProfiler(runtime *lisp.Runtime, opts ...Option) *callgrindProfiler {
	p := new(callgrindProfiler)
	p.runtime = runtime
	runtime.Profiler = p
	p.applyConfigs(opts...)
	return p
}

// callFrame is one call observed by the profiler.  Costs are inclusive of
// the callees.
type callFrame struct {
	fn      string
	file    string
	line    int
	start   time.Time
	alloc   uint64
	elapsed time.Duration
	bytes   uint64
	callees []*callFrame
}

func openFrame(fn string, loc *token.Location) *callFrame {
	f := &callFrame{fn: fn, file: "-", start: time.Now(), alloc: totalAlloc()}
	if loc != nil {
		f.file = loc.File
		f.line = loc.Line
	}
	return f
}

func (f *callFrame) close() {
	f.elapsed = time.Since(f.start)
	if f.elapsed <= 0 {
		f.elapsed = 1
	}
	if end := totalAlloc(); end > f.alloc {
		f.bytes = end - f.alloc
	}
}

// self returns the cost of f not attributed to any callee.
func (f *callFrame) self() (time.Duration, uint64) {
	ns, bytes := f.elapsed, f.bytes
	for _, c := range f.callees {
		ns -= c.elapsed
		if c.bytes > bytes {
			bytes = 0
		} else {
			bytes -= c.bytes
		}
	}
	if ns < 0 {
		ns = 0
	}
	return ns, bytes
}

func totalAlloc() uint64 {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	return ms.TotalAlloc
}

func (p *callgrindProfiler) SetFile(filename string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.enabled {
		return errors.New("profiler already enabled")
	}
	f, err := os.Create(filename) //#nosec G304
	if err != nil {
		return err
	}
	p.out = f
	return nil
}

// SetWriter directs the profile to w, which is closed by Complete.
func (p *callgrindProfiler) SetWriter(w io.WriteCloser) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.enabled {
		return errors.New("profiler already enabled")
	}
	p.out = w
	return nil
}

func (p *callgrindProfiler) Enable() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.out == nil {
		return errors.New("no output set in profiler")
	}
	p.err = nil
	p.printf("version: 1\ncreator: mscheme %s (Go %s)\n", lisp.Version, runtime.Version())
	p.printf("cmd: Eval\npart: 1\npositions: line\n\n")
	p.printf("events: Time_(ns) Memory_(bytes)\n\n")
	if p.err != nil {
		return p.err
	}
	p.begin = time.Now()
	p.files = make(map[string]int)
	p.fns = make(map[string]int)
	p.stack = []*callFrame{openFrame(rootFrame, nil)}
	return p.profiler.Enable()
}

func (p *callgrindProfiler) Start(fun *lisp.LVal) func() {
	if p.skipTrace(fun) {
		return func() {}
	}
	label, _ := p.prettyFunName(fun)
	f := openFrame(label, getSourceLoc(fun))

	p.mu.Lock()
	caller := p.stack[len(p.stack)-1]
	caller.callees = append(caller.callees, f)
	p.stack = append(p.stack, f)
	p.mu.Unlock()

	return func() { p.finish(f) }
}

// finish closes f and writes its record.  The evaluator defers the
// closure returned by Start, so f is the innermost open frame.
func (p *callgrindProfiler) finish(f *callFrame) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.enabled {
		return
	}
	f.close()
	if n := len(p.stack); n > 1 && p.stack[n-1] == f {
		p.stack = p.stack[:n-1]
	}
	p.writeFrame(f)
}

func (p *callgrindProfiler) Complete() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.enabled {
		return errors.New("profiler not enabled")
	}
	p.enabled = false
	root := p.stack[0]
	p.stack = nil
	root.close()
	p.writeFrame(root)
	p.printf("summary %d %d\n\n", time.Since(p.begin).Nanoseconds(), totalAlloc())
	cerr := p.out.Close()
	if p.err != nil {
		return p.err
	}
	return cerr
}

// writeFrame writes the record of a closed frame: its self cost followed
// by one call entry with the inclusive cost of each callee.  The caller
// must hold the lock.
func (p *callgrindProfiler) writeFrame(f *callFrame) {
	ns, bytes := f.self()
	p.printf("fl=%s\n", compress(p.files, f.file))
	p.printf("fn=%s\n", compress(p.fns, f.fn))
	p.printf("%d %d %d\n", f.line, ns.Nanoseconds(), bytes)
	for _, c := range f.callees {
		p.printf("cfl=%s\n", compress(p.files, c.file))
		p.printf("cfn=%s\n", compress(p.fns, c.fn))
		p.printf("calls=1 %d\n", c.line)
		p.printf("%d %d %d\n", c.line, c.elapsed.Nanoseconds(), c.bytes)
	}
	p.printf("\n")
}

// printf writes to the profile output.  After the first failure nothing
// more is written and the error is returned by Complete.
func (p *callgrindProfiler) printf(format string, args ...interface{}) {
	if p.err != nil {
		return
	}
	_, p.err = fmt.Fprintf(p.out, format, args...)
}

// compress returns the Callgrind name compression for name.  The first
// use defines the id as "(id) name" and later uses are just "(id)".
func compress(ids map[string]int, name string) string {
	if id, ok := ids[name]; ok {
		return fmt.Sprintf("(%d)", id)
	}
	id := len(ids) + 1
	ids[name] = id
	return fmt.Sprintf("(%d) %s", id, name)
}
