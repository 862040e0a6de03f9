package diskfs

import (
	"os"
	"path/filepath"
)

type native struct {
	root string
}

// Native returns a FileSystem backed by the OS, rooted at the given
// directory.
func Native(root string) FileSystem {
	return native{root: root}
}

func (me native) OpenFile(name string) (File, error) {
	p := filepath.Join(me.root, filepath.FromSlash(name))
	if err := os.MkdirAll(filepath.Dir(p), 0o777); err != nil {
		return nil, err
	}
	f, err := os.OpenFile(p, os.O_RDWR|os.O_CREATE, 0o666)
	if err != nil {
		return nil, err
	}
	return nativeFile{f}, nil
}

type nativeFile struct {
	*os.File
}

func (me nativeFile) Size() (int64, error) {
	fi, err := me.Stat()
	if err != nil {
		return 0, err
	}
	return fi.Size(), nil
}
