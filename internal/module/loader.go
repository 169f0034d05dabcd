package module

import (
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sync/singleflight"

	"kslang/internal/callable"
	"kslang/internal/kerr"
	"kslang/internal/object"
)

// SearchPaths is the process-wide ordered list of directories consulted
// when resolving a bare module name to a source file (spec §4.J),
// configurable at embed time analogous to a C embedder populating
// ks_module.h's search list before the first Load.
var SearchPaths = []string{".", "./lib", "./modules"}

const sourceExt = ".ks"

// NativeInit is a native extension module's exported initializer:
// "(argc, argv) -> module object" (spec §6). internal/stdlib's packages
// each register one of these under Register; the in-process equivalent
// of reading a dynamic library's well-known exported symbol is a plain
// map lookup by name, since these are linked into the same binary rather
// than dlopen'd.
type NativeInit func(argc int, argv []string) (*Module, error)

var nativeRegistry = make(map[string]NativeInit)

// Register installs a native extension module's initializer under name.
// Register takes priority over the on-disk search in Load.
func Register(name string, init NativeInit) {
	nativeRegistry[name] = init
}

// Loader resolves, compiles, executes, and caches modules by name.
// Repeated loads of the same name return the same cached instance (spec
// §4.J). Run executes a compiled module's top-level code and returns the
// globals it defined; it must be supplied by the VM, since only the VM
// can drive bytecode — Loader itself only finds and parses source.
type Loader struct {
	Run func(code *callable.Code) (map[string]object.Value, error)

	cache map[string]*Module
	group singleflight.Group
}

// NewLoader builds a Loader backed by run for executing module bodies.
func NewLoader(run func(code *callable.Code) (map[string]object.Value, error)) *Loader {
	return &Loader{Run: run, cache: make(map[string]*Module)}
}

// Load returns the module named name, compiling and running it on first
// request. Overlapping first-loads of the same name are merged through
// singleflight, but the cache map is read and written without a lock,
// so a Loader is not safe for concurrent use from several goroutines.
func (l *Loader) Load(name string) (*Module, error) {
	if m, ok := l.cache[name]; ok {
		object.IncRef(m)
		return m, nil
	}
	v, err, _ := l.group.Do(name, func() (any, error) {
		if m, ok := l.cache[name]; ok {
			return m, nil
		}
		m, err := l.load(name)
		if err != nil {
			return nil, err
		}
		l.cache[name] = m
		return m, nil
	})
	if err != nil {
		return nil, err
	}
	m := v.(*Module)
	object.IncRef(m)
	return m, nil
}

func (l *Loader) load(name string) (*Module, error) {
	if init, ok := nativeRegistry[name]; ok {
		return init(len(os.Args), os.Args)
	}
	path, err := resolve(name)
	if err != nil {
		return nil, err
	}
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, kerr.New(kerr.InternalError, "reading module %q: %v", name, err)
	}
	code, err := compileSource(path, string(src))
	if err != nil {
		return nil, err
	}
	attrs, err := l.Run(code)
	if err != nil {
		return nil, err
	}
	m := New(name, path)
	for k, val := range attrs {
		m.Attrs[k] = val
	}
	return m, nil
}

func resolve(name string) (string, error) {
	if strings.HasSuffix(name, sourceExt) {
		if fileExists(name) {
			return name, nil
		}
		return "", kerr.New(kerr.KeyError, "module file not found: %s", name)
	}
	rel := filepath.Join(strings.Split(name, "/")...) + sourceExt
	for _, dir := range SearchPaths {
		p := filepath.Join(dir, rel)
		if fileExists(p) {
			return p, nil
		}
	}
	return "", kerr.New(kerr.KeyError, "module not found: %s", name)
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
