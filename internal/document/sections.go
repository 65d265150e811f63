package document

import (
	"regexp"
	"strings"

	"papersumm/internal/domain"
)

var sectionHeadings = []string{
	"abstract",
	"introduction",
	"related work",
	"methodology",
	"methods",
	"experiments",
	"results",
	"discussion",
	"conclusion",
}

var headingRe = regexp.MustCompile(
	`(?im)^[ \t]*(\d+\.?[ \t]+)?(` + strings.Join(sectionHeadings, "|") + `)[ \t]*$`,
)

type Section struct {
	Name string
	Text string
}

// SplitSections cuts text at known headings standing on their own line. A
// repeated heading keeps its first position and its last body. Text without
// any heading yields a single full section.
func SplitSections(text string) []Section {
	matches := headingRe.FindAllStringSubmatchIndex(text, -1)
	if len(matches) == 0 {
		return []Section{{Name: domain.FullSection, Text: text}}
	}

	var sections []Section
	index := make(map[string]int, len(matches))

	for i, m := range matches {
		end := len(text)
		if i+1 < len(matches) {
			end = matches[i+1][0]
		}

		name := strings.ToLower(text[m[4]:m[5]])
		body := strings.TrimSpace(text[m[1]:end])

		if pos, ok := index[name]; ok {
			sections[pos].Text = body
			continue
		}

		index[name] = len(sections)
		sections = append(sections, Section{Name: name, Text: body})
	}

	return sections
}

func SectionNames(sections []Section) []string {
	names := make([]string, 0, len(sections))
	for _, s := range sections {
		names = append(names, s.Name)
	}

	return names
}
