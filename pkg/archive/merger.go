package archive

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"

	errs "redditsave/pkg/errors"
)

var (
	idPattern      = regexp.MustCompile(`id="([^"]*)"`)
	postPattern    = regexp.MustCompile(`(?s)<div class="post".*?<!--postend--></div>`)
	commentPattern = regexp.MustCompile(`(?s)<div class="comment".*?<!--commentend--></div>`)
)

// Corpus is the archived content recovered from existing output pages
type Corpus struct {
	IDs      []string
	Posts    []string
	Comments []string

	known map[string]struct{}
}

// NewCorpus returns an empty corpus
func NewCorpus() *Corpus {
	return &Corpus{known: make(map[string]struct{})}
}

// Has reports whether id appears anywhere in the corpus
func (c *Corpus) Has(id string) bool {
	_, ok := c.known[id]
	return ok
}

func (c *Corpus) addID(id string) {
	if _, ok := c.known[id]; ok {
		return
	}
	c.known[id] = struct{}{}
	c.IDs = append(c.IDs, id)
}

// PageFiles lists the existing output pages for base in read order: numbered
// pages ascending, then the unpaged file
func PageFiles(outputDir, base string) ([]string, error) {
	entries, err := os.ReadDir(outputDir)
	if err != nil {
		return nil, errs.Wrap(errs.ErrorTypeFilesystem, fmt.Sprintf("cannot read output directory %s", outputDir), err)
	}

	pattern := pagePattern(base)

	type paged struct {
		number int
		name   string
	}
	var pages []paged
	unpaged := false

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if name == base {
			unpaged = true
			continue
		}
		m := pattern.FindStringSubmatch(name)
		if m == nil {
			continue
		}
		n, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		pages = append(pages, paged{number: n, name: name})
	}

	sort.Slice(pages, func(i, j int) bool { return pages[i].number < pages[j].number })

	files := make([]string, 0, len(pages)+1)
	for _, p := range pages {
		files = append(files, filepath.Join(outputDir, p.name))
	}
	if unpaged {
		files = append(files, filepath.Join(outputDir, base))
	}
	return files, nil
}

func pagePattern(base string) *regexp.Regexp {
	name, ext := splitBase(base)
	return regexp.MustCompile(`^` + regexp.QuoteMeta(name) + `\.(\d+)` + regexp.QuoteMeta(ext) + `$`)
}

// LoadExisting recovers the known IDs and the rendered post and comment
// fragments from every output page for base in outputDir. Fragments are kept
// verbatim, each appearing once.
func LoadExisting(outputDir, base string) (*Corpus, error) {
	files, err := PageFiles(outputDir, base)
	if err != nil {
		return nil, err
	}

	corpus := NewCorpus()
	seenPosts := newFragmentSet()
	seenComments := newFragmentSet()

	for _, file := range files {
		data, err := os.ReadFile(file)
		if err != nil {
			return nil, errs.Wrap(errs.ErrorTypeFilesystem, fmt.Sprintf("cannot read page %s", filepath.Base(file)), err)
		}
		content := string(data)

		for _, m := range idPattern.FindAllStringSubmatch(content, -1) {
			corpus.addID(m[1])
		}
		for _, fragment := range postPattern.FindAllString(content, -1) {
			if seenPosts.add(fragment) {
				corpus.Posts = append(corpus.Posts, fragment)
			}
		}
		for _, fragment := range commentPattern.FindAllString(content, -1) {
			if seenComments.add(fragment) {
				corpus.Comments = append(corpus.Comments, fragment)
			}
		}
	}

	return corpus, nil
}

// fragmentSet dedups fragments by exact text and by the id of their top element
type fragmentSet struct {
	texts map[string]struct{}
	ids   map[string]struct{}
}

func newFragmentSet() *fragmentSet {
	return &fragmentSet{texts: make(map[string]struct{}), ids: make(map[string]struct{})}
}

func (s *fragmentSet) add(fragment string) bool {
	if _, ok := s.texts[fragment]; ok {
		return false
	}
	id := ""
	if m := idPattern.FindStringSubmatch(fragment); m != nil {
		id = m[1]
		if _, ok := s.ids[id]; ok {
			return false
		}
	}
	s.texts[fragment] = struct{}{}
	if id != "" {
		s.ids[id] = struct{}{}
	}
	return true
}
