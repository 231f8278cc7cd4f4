package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/zjrosen/fieldunits/internal/log"
)

// SaveCatalogs updates the catalogs list in the config file.
// This preserves comments and formatting in other sections by using yaml.Node.
func SaveCatalogs(configPath string, catalogs []string) error {
	return saveKey(configPath, "catalogs", buildStringsNode(catalogs))
}

// EnableCatalog appends entry to the configured catalogs and saves. An
// entry that is already enabled is a no-op.
func EnableCatalog(configPath, entry string, current []string) ([]string, error) {
	if slices.Contains(current, entry) {
		return current, nil
	}
	updated := append(slices.Clone(current), entry)
	if err := SaveCatalogs(configPath, updated); err != nil {
		return nil, err
	}
	log.Info(log.CatConfig, "Enabled catalog", "catalog", entry, "path", configPath)
	return updated, nil
}

// DisableCatalog removes entry from the configured catalogs and saves.
// Returns an error if entry is not enabled.
func DisableCatalog(configPath, entry string, current []string) ([]string, error) {
	idx := slices.Index(current, entry)
	if idx < 0 {
		return nil, fmt.Errorf("catalog %q is not enabled", entry)
	}
	updated := slices.Delete(slices.Clone(current), idx, idx+1)
	if err := SaveCatalogs(configPath, updated); err != nil {
		return nil, err
	}
	log.Info(log.CatConfig, "Disabled catalog", "catalog", entry, "path", configPath)
	return updated, nil
}

// saveKey replaces (or appends) one top-level key of the config document.
func saveKey(configPath, key string, value *yaml.Node) error {
	data, err := os.ReadFile(configPath)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("reading config: %w", err)
	}

	// Parse into yaml.Node to preserve comments
	var doc yaml.Node
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return fmt.Errorf("parsing config: %w", err)
		}
	}

	if doc.Kind == 0 {
		doc = yaml.Node{
			Kind: yaml.DocumentNode,
			Content: []*yaml.Node{
				{
					Kind: yaml.MappingNode,
					Content: []*yaml.Node{
						{Kind: yaml.ScalarNode, Value: key},
						value,
					},
				},
			},
		}
	} else if doc.Kind == yaml.DocumentNode && len(doc.Content) > 0 {
		root := doc.Content[0]
		if root.Kind != yaml.MappingNode {
			return fmt.Errorf("parsing config: top level is not a mapping")
		}
		found := false
		for i := 0; i < len(root.Content)-1; i += 2 {
			if root.Content[i].Value == key {
				root.Content[i+1] = value
				found = true
				break
			}
		}
		if !found {
			root.Content = append(root.Content,
				&yaml.Node{Kind: yaml.ScalarNode, Value: key},
				value,
			)
		}
	}

	var buf bytes.Buffer
	encoder := yaml.NewEncoder(&buf)
	encoder.SetIndent(2)
	if err := encoder.Encode(&doc); err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	_ = encoder.Close()

	return writeAtomic(configPath, buf.Bytes())
}

// writeAtomic writes to a temp file in the same directory, then renames.
func writeAtomic(configPath string, data []byte) error {
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	temp, err := os.CreateTemp(dir, ".fieldunits.yaml.tmp.*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tempPath := temp.Name()

	if _, err := temp.Write(data); err != nil {
		_ = temp.Close()
		_ = os.Remove(tempPath)
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := temp.Close(); err != nil {
		_ = os.Remove(tempPath)
		return fmt.Errorf("closing temp file: %w", err)
	}

	if err := os.Rename(tempPath, configPath); err != nil {
		_ = os.Remove(tempPath)
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}

func buildStringsNode(values []string) *yaml.Node {
	node := &yaml.Node{
		Kind:    yaml.SequenceNode,
		Content: make([]*yaml.Node, 0, len(values)),
	}
	for _, v := range values {
		node.Content = append(node.Content, &yaml.Node{Kind: yaml.ScalarNode, Value: v})
	}
	return node
}
