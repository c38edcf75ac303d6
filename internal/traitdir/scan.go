// Package traitdir discovers the initial trait catalog from a directory tree
// of trait art. Folders are named "1. Background", "2. Body", ...; the numeric
// prefix is the layering rank and each image file inside is one trait.
package traitdir

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

// Category is one discovered layer folder.
type Category struct {
	Rank   int
	Name   string
	Dir    string
	Traits []string
}

// Scan walks the root directory and returns the discovered categories in
// layering order. Folder names without the "N. Name" shape are an error, not
// skipped: a typo there would silently drop a whole layer.
func Scan(root string) ([]Category, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("read traits dir: %w", err)
	}

	var categories []Category
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		rank, name, err := splitFolderName(entry.Name())
		if err != nil {
			return nil, err
		}
		dir := filepath.Join(root, entry.Name())
		traits, err := listTraits(dir)
		if err != nil {
			return nil, err
		}
		categories = append(categories, Category{
			Rank:   rank,
			Name:   name,
			Dir:    dir,
			Traits: traits,
		})
	}
	if len(categories) == 0 {
		return nil, fmt.Errorf("no trait folders found under %s", root)
	}

	sort.Slice(categories, func(i, j int) bool {
		if categories[i].Rank != categories[j].Rank {
			return categories[i].Rank < categories[j].Rank
		}
		return categories[i].Name < categories[j].Name
	})
	return categories, nil
}

// splitFolderName parses "3. Head" into rank 3 and name "Head".
func splitFolderName(folder string) (int, string, error) {
	prefix, rest, found := strings.Cut(folder, ".")
	if !found {
		return 0, "", fmt.Errorf("trait folder %q: expected a name like \"1. Background\"", folder)
	}
	rank, err := strconv.Atoi(strings.TrimSpace(prefix))
	if err != nil {
		return 0, "", fmt.Errorf("trait folder %q: layer prefix is not a number", folder)
	}
	name := strings.TrimSpace(rest)
	if name == "" {
		return 0, "", fmt.Errorf("trait folder %q: empty category name after rank", folder)
	}
	return rank, name, nil
}

// listTraits returns the trait names in a layer folder: file names with the
// extension stripped, sorted for stable numbering.
func listTraits(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read trait folder: %w", err)
	}
	var traits []string
	for _, entry := range entries {
		if entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		name := entry.Name()
		if ext := filepath.Ext(name); ext != "" {
			name = strings.TrimSuffix(name, ext)
		}
		if name == "" {
			continue
		}
		traits = append(traits, name)
	}
	if len(traits) == 0 {
		return nil, fmt.Errorf("trait folder %s holds no trait images", dir)
	}
	sort.Strings(traits)
	return traits, nil
}
