// Package scanner walks a directory tree and feeds file contents to a
// callback, for building the workspace index.
package scanner

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/tliron/commonlog"
)

var log = commonlog.GetLogger("markpath.scanner")

// Scan walks the subtree under root. Files and directories whose name
// begins with "." are skipped entirely. Every remaining file is offered to
// skip(); when that returns false the file is read and callback(path,
// contents) runs. Scan returns once all callbacks have completed or ctx is
// cancelled.
func Scan(
	ctx context.Context,
	root string,
	skip func(path string, info fs.FileInfo) bool,
	callback func(path string, content []byte),
) {
	fileCh := make(chan string, 100)
	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		for path := range fileCh {
			data, err := os.ReadFile(path)
			if err != nil {
				log.Infof("read %s: %s", path, err.Error())
				continue
			}
			callback(path, data)
		}
	}()

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if ctx.Err() != nil {
			return filepath.SkipAll
		}
		if err != nil {
			log.Infof("walk: %s", err.Error())
			return nil
		}

		if d.IsDir() {
			if strings.HasPrefix(d.Name(), ".") && path != root {
				return fs.SkipDir
			}
			return nil
		}
		if strings.HasPrefix(d.Name(), ".") {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return nil
		}
		if skip(path, info) {
			return nil
		}

		fileCh <- path
		return nil
	})
	if err != nil {
		log.Infof("walk %s: %s", root, err.Error())
	}

	close(fileCh)
	wg.Wait()
}
