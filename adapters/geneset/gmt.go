package geneset

import (
	"bufio"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"screenviz/domain/enrichment"
	"screenviz/internal"
	"screenviz/internal/errors"
)

// Store resolves gene-set library names to GMT files in a directory
type Store struct {
	dir    string
	logger *internal.Logger
}

// NewStore creates a store rooted at dir
func NewStore(dir string, logger *internal.Logger) *Store {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &Store{dir: dir, logger: logger}
}

// Resolve maps a library name to a file. An existing path is used as is;
// otherwise <dir>/<name>.gmt is tried.
func (s *Store) Resolve(name string) (string, error) {
	if info, err := os.Stat(name); err == nil && !info.IsDir() {
		return name, nil
	}
	candidate := filepath.Join(s.dir, name+".gmt")
	if _, err := os.Stat(candidate); err == nil {
		return candidate, nil
	}
	return "", errors.NotFound("gene set library " + name + " (looked for " + candidate + ")")
}

// Load reads a library by name
func (s *Store) Load(name string) (enrichment.Library, error) {
	path, err := s.Resolve(name)
	if err != nil {
		return enrichment.Library{}, err
	}
	f, err := os.Open(path)
	if err != nil {
		return enrichment.Library{}, errors.Wrapf(err, "failed to open %s", path)
	}
	defer f.Close()

	lib, err := ParseGMT(f, LibraryName(name))
	if err != nil {
		return enrichment.Library{}, errors.Wrapf(err, "failed to parse %s", path)
	}
	s.logger.Info("Loaded %d gene sets from %s", len(lib.Sets), path)
	return lib, nil
}

// LibraryName strips directories and the .gmt extension
func LibraryName(name string) string {
	return strings.TrimSuffix(filepath.Base(name), ".gmt")
}

// ParseGMT reads tab-separated lines of term, description, genes...
// Blank lines and lines starting with # are skipped.
func ParseGMT(r io.Reader, name string) (enrichment.Library, error) {
	lib := enrichment.Library{Name: name}
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 16*1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimRight(scanner.Text(), "\r\n")
		if strings.TrimSpace(text) == "" || strings.HasPrefix(text, "#") {
			continue
		}
		fields := strings.Split(text, "\t")
		if len(fields) < 3 {
			return lib, errors.InvalidInput("GMT line " + strconv.Itoa(line) + " needs a term, a description and at least one gene")
		}
		set := enrichment.GeneSet{Term: strings.TrimSpace(fields[0])}
		for _, g := range fields[2:] {
			// some libraries append ",1.0" membership weights
			g = strings.TrimSpace(strings.SplitN(g, ",", 2)[0])
			if g != "" {
				set.Genes = append(set.Genes, g)
			}
		}
		lib.Sets = append(lib.Sets, set)
	}
	if err := scanner.Err(); err != nil {
		return lib, errors.Wrap(err, "failed to read GMT")
	}
	if len(lib.Sets) == 0 {
		return lib, errors.InvalidInput("GMT library " + name + " has no gene sets")
	}
	return lib, nil
}
