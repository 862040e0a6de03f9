package diskfs

import (
	"io"
	"sync"
)

type memory struct {
	mu    sync.Mutex
	files map[string]*memoryFile
}

// Memory returns an in-memory FileSystem. It exists so checker behaviour
// can be exercised without touching the OS, and mirrors the sparse
// semantics the native implementation gets for free.
func Memory() FileSystem {
	return &memory{files: make(map[string]*memoryFile)}
}

func (me *memory) OpenFile(name string) (File, error) {
	me.mu.Lock()
	defer me.mu.Unlock()
	f, ok := me.files[name]
	if !ok {
		f = new(memoryFile)
		me.files[name] = f
	}
	return f, nil
}

type memoryFile struct {
	mu   sync.RWMutex
	data []byte
}

func (me *memoryFile) ReadAt(b []byte, off int64) (n int, err error) {
	me.mu.RLock()
	defer me.mu.RUnlock()
	if off >= int64(len(me.data)) {
		return 0, io.EOF
	}
	n = copy(b, me.data[off:])
	if n < len(b) {
		err = io.EOF
	}
	return
}

func (me *memoryFile) WriteAt(b []byte, off int64) (n int, err error) {
	me.mu.Lock()
	defer me.mu.Unlock()
	if end := off + int64(len(b)); end > int64(len(me.data)) {
		// Zero-fill the gap, like a sparse write would.
		grown := make([]byte, end)
		copy(grown, me.data)
		me.data = grown
	}
	return copy(me.data[off:], b), nil
}

func (me *memoryFile) Size() (int64, error) {
	me.mu.RLock()
	defer me.mu.RUnlock()
	return int64(len(me.data)), nil
}

func (me *memoryFile) Close() error {
	return nil
}
