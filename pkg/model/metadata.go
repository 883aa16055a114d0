package model

import "sort"

// NameMap implements a bidirectional mapping between a name and an index
type NameMap struct {
	NameToIndex map[string]int
	IndexToName map[int]string
}

func (f NameMap) Set(name string, index int) {
	f.NameToIndex[name] = index
	f.IndexToName[index] = name
}

func (f NameMap) Size() int {
	return len(f.IndexToName)
}

func (f NameMap) ContainsName(name string) (int, bool) {
	index, ok := f.NameToIndex[name]
	return index, ok
}

// Names lists the names ordered by index.
func (f NameMap) Names() []string {
	names := make([]string, 0, len(f.IndexToName))
	for index := 0; index < len(f.IndexToName); index++ {
		names = append(names, f.IndexToName[index])
	}
	return names
}

func NewNameMap() NameMap {
	return NameMap{
		NameToIndex: map[string]int{},
		IndexToName: map[int]string{},
	}
}

// NewSortedNameMap indexes the distinct names in lexicographic order.
func NewSortedNameMap(names []string) NameMap {
	sorted := sortedUnique(names)
	m := NewNameMap()
	for i, name := range sorted {
		m.Set(name, i)
	}
	return m
}

func sortedUnique(names []string) []string {
	seen := make(map[string]struct{}, len(names))
	result := make([]string, 0, len(names))
	for _, name := range names {
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		result = append(result, name)
	}
	sort.Strings(result)
	return result
}
