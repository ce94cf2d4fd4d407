// Package writer persists a derived parameter set into the managed
// server's YAML configuration file. It patches only its own keys: anything
// else in the file, including comments and key order, survives a run.
package writer

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/llmtune/llmtune/pkg/tune/calc"
)

// ErrNotWritable is returned when the target path or its parent directory
// cannot be created or written.
var ErrNotWritable = errors.New("target config not writable")

// Keys managed in the target file. Everything else is left alone.
const (
	keyNumParallel       = "num_parallel"
	keyThreadsPerWorker  = "threads_per_worker"
	keyRequestTimeout    = "request_timeout"
	keyTotalThreadBudget = "total_thread_budget"
	keyBatchSize         = "batch_size"
	keyUseMMap           = "use_mmap"
)

// Apply writes the derived parameters into the YAML file at path, creating
// the file and its parent directory if absent. The write is atomic (temp
// file plus rename) and idempotent: identical inputs produce a
// byte-identical file.
func Apply(d calc.Derived, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("%w: creating %s: %v", ErrNotWritable, filepath.Dir(path), err)
	}

	doc, err := loadDocument(path)
	if err != nil {
		return err
	}

	mapping := doc.Content[0]
	setInt(mapping, keyNumParallel, d.Parallelism)
	setInt(mapping, keyThreadsPerWorker, d.ThreadsPerWorker)
	setInt(mapping, keyRequestTimeout, d.TimeoutSeconds)
	setInt(mapping, keyTotalThreadBudget, d.TotalThreadBudget)
	setInt(mapping, keyBatchSize, d.BatchSize)
	setBool(mapping, keyUseMMap, d.UseMMap)

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encoding %s: %w", path, err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("encoding %s: %w", path, err)
	}

	return writeAtomic(path, buf.Bytes())
}

// loadDocument parses the existing target file, or returns an empty
// mapping document when the file is absent or empty.
func loadDocument(path string) (*yaml.Node, error) {
	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("%w: reading %s: %v", ErrNotWritable, path, err)
	}

	var doc yaml.Node
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("parsing existing config %s: %w", path, err)
		}
	}

	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		doc = yaml.Node{
			Kind:    yaml.DocumentNode,
			Content: []*yaml.Node{{Kind: yaml.MappingNode, Tag: "!!map"}},
		}
	}
	if doc.Content[0].Kind != yaml.MappingNode {
		return nil, fmt.Errorf("parsing existing config %s: top level is not a mapping", path)
	}

	return &doc, nil
}

// setScalar replaces the value for key in the mapping, or appends the pair
// if the key is absent.
func setScalar(mapping *yaml.Node, key string, value *yaml.Node) {
	for i := 0; i+1 < len(mapping.Content); i += 2 {
		if mapping.Content[i].Value == key {
			mapping.Content[i+1] = value
			return
		}
	}
	mapping.Content = append(mapping.Content,
		&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: key},
		value,
	)
}

func setInt(mapping *yaml.Node, key string, v int) {
	setScalar(mapping, key, &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!int", Value: strconv.Itoa(v)})
}

func setBool(mapping *yaml.Node, key string, v bool) {
	setScalar(mapping, key, &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!bool", Value: strconv.FormatBool(v)})
}

// writeAtomic writes data to path via a temp file in the same directory so
// the managed server never observes a half-written config.
func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrNotWritable, path, err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("%w: %s: %v", ErrNotWritable, path, err)
	}
	if err := tmp.Chmod(0o644); err != nil {
		tmp.Close()
		return fmt.Errorf("%w: %s: %v", ErrNotWritable, path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrNotWritable, path, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrNotWritable, path, err)
	}
	return nil
}
