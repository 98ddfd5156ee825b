package results

import (
	"strings"
)

// Store folds failing spec results into a Suite → Test → Browser tree.
//
// Each level keeps its children in first-seen order alongside a name index,
// so a (suite path, test, browser) identity maps to exactly one node no
// matter how many times it is saved.
type Store struct {
	tree *Tree
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{tree: &Tree{}}
}

// Tree returns the accumulated failure tree. Callers must not modify it.
func (s *Store) Tree() *Tree {
	return s.tree
}

// Save records result for browser.
//
// Only failures (not success, not skipped) with a non-empty suite path are
// recorded. The first log entry, split by newline, replaces any error lines
// previously stored for the same identity.
func (s *Store) Save(browser BrowserInfo, result SpecResult) {
	if !result.Failed() || len(result.Suite) == 0 {
		return
	}

	suite := s.findSuite(result.Suite)
	test := findOrCreate(&suite.Tests, &suite.testIndex, result.Description, newTest)
	brwsr := findOrCreate(&test.Browsers, &test.browserIndex, browser.Name, newBrowser)

	if len(result.Log) > 0 && result.Log[0] != nil {
		brwsr.Errors = strings.Split(*result.Log[0], "\n")
	}
}

// findSuite walks path from the root, creating suites as needed, and returns
// the innermost one. path must not be empty.
func (s *Store) findSuite(path []string) *Suite {
	suite := findOrCreate(&s.tree.Suites, &s.tree.suiteIndex, path[0], newSuite)
	for _, name := range path[1:] {
		suite = findOrCreate(&suite.Suites, &suite.suiteIndex, name, newSuite)
	}
	return suite
}

// findOrCreate returns the node called name from items, appending a new one
// built by create when there is none. index maps names to positions in items
// and is allocated on first use.
func findOrCreate[T any](items *[]*T, index *map[string]int, name string, create func(string) *T) *T {
	if *index == nil {
		*index = make(map[string]int)
	}
	if i, ok := (*index)[name]; ok {
		return (*items)[i]
	}
	node := create(name)
	(*index)[name] = len(*items)
	*items = append(*items, node)
	return node
}

func newSuite(name string) *Suite     { return &Suite{Name: name} }
func newTest(name string) *Test       { return &Test{Name: name} }
func newBrowser(name string) *Browser { return &Browser{Name: name} }

// Empty reports whether no failure has been recorded.
func (t *Tree) Empty() bool {
	return len(t.Suites) == 0
}

// Walk visits every suite depth first, in insertion order, passing its
// nesting depth (0 for top level suites).
func (t *Tree) Walk(fn func(suite *Suite, depth int)) {
	var walk func(suites []*Suite, depth int)
	walk = func(suites []*Suite, depth int) {
		for _, suite := range suites {
			fn(suite, depth)
			walk(suite.Suites, depth+1)
		}
	}
	walk(t.Suites, 0)
}

// HasErrors reports whether the browser carries error lines.
func (b *Browser) HasErrors() bool {
	return b.Errors != nil
}
