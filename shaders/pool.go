package shaders

import (
	"fmt"
	"io/fs"
	"os"
	"path"
	"sort"

	"golang.org/x/sync/errgroup"
)

// Source is one compiled shader found in a shader directory.
type Source struct {
	Filename string
	Name     string
	Stage    Stage
	Code     []byte
}

// LoadDir loads every SPIR-V file in dir. See Load.
func LoadDir(dir string) ([]Source, error) {
	return Load(os.DirFS(dir))
}

// Load reads all *.spv files at the root of fsys. Other files, such as the
// GLSL sources, are skipped. The result is ordered by file name. A SPIR-V file
// whose stage cannot be told from its name is an error.
func Load(fsys fs.FS) ([]Source, error) {
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return nil, fmt.Errorf("listing shaders: %w", err)
	}

	var pool []Source
	for _, entry := range entries {
		if entry.IsDir() || path.Ext(entry.Name()) != ".spv" {
			continue
		}

		name, stage, err := ParseFilename(entry.Name())
		if err != nil {
			return nil, err
		}

		pool = append(pool, Source{
			Filename: entry.Name(),
			Name:     name,
			Stage:    stage,
		})
	}

	sort.Slice(pool, func(i, j int) bool {
		return pool[i].Filename < pool[j].Filename
	})

	var g errgroup.Group
	for i := range pool {
		src := &pool[i]
		g.Go(func() error {
			code, err := fs.ReadFile(fsys, src.Filename)
			if err != nil {
				return fmt.Errorf("reading shader: %w", err)
			}
			if len(code) == 0 || len(code)%4 != 0 {
				return fmt.Errorf("%s: SPIR-V size %d is not a multiple of 4",
					src.Filename, len(code))
			}
			src.Code = code
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return pool, nil
}
