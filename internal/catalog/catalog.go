// Package catalog holds the static curriculum used by the admin panel: which
// programs a class can pick, and the chapters of each subject per phase.
package catalog

import "strings"

type Chapter struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

var Phases = []string{"Quarter 1", "Quarter 2", "Quarter 3", "Quarter 4"}

// Classes in display order. Group tokens (ssc, hsc) are not classes.
var Classes = []string{"c9", "c10", "c11", "c12"}

var programsByClass = map[string][]string{
	"c9":  {"SSC - AP 2026", "SSC - AP 2025"},
	"c10": {"SSC - AP 2025"},
}

var subjectsByProgram = map[string][]string{
	"SSC - AP 2026": {"Physics", "Chemistry"},
	"SSC - AP 2025": {"Physics", "Chemistry"},
}

// chapters[subject][phase]
var chapters = map[string]map[string][]Chapter{
	"Physics": {
		"Quarter 1": {{"ch1", "অধ্যায় ০১ - ভৌত রাশি"}, {"ch2", "অধ্যায় ০২ - গতি"}},
		"Quarter 2": {{"ch1", "অধ্যায় ০৩ - বল ও নিউটনের সূত্র"}, {"ch2", "অধ্যায় ০৪ - কাজ ও শক্তি"}},
		"Quarter 3": {{"ch1", "অধ্যায় ০৫ - তাপ ও তাপগতিবিদ্যা"}, {"ch2", "অধ্যায় ০৬ - তরঙ্গ ও শব্দ"}},
		"Quarter 4": {{"ch1", "অধ্যায় ০৭ - আলোকবিজ্ঞান"}, {"ch2", "অধ্যায় ০৮ - বিদ্যুৎ ও চৌম্বকত্ব"}},
	},
	"Chemistry": {
		"Quarter 1": {{"ch3", "অধ্যায় ০১ - রসায়নের ধারণা"}},
		"Quarter 2": {{"ch3", "অধ্যায় ০২ - পারমাণবিক গঠন"}},
		"Quarter 3": {{"ch3", "অধ্যায় ০৩ - রাসায়নিক বন্ধন"}},
		"Quarter 4": {{"ch3", "অধ্যায় ০৪ - অম্ল-ক্ষারক"}},
	},
}

// Programs returns the programs offered to a class.
func Programs(class string) []string {
	return programsByClass[class]
}

// DefaultProgram is the first program offered to a class, or "".
func DefaultProgram(class string) string {
	if ps := programsByClass[class]; len(ps) > 0 {
		return ps[0]
	}
	return ""
}

func Subjects(program string) []string {
	return subjectsByProgram[program]
}

func Chapters(subject, phase string) []Chapter {
	return chapters[subject][phase]
}

// ChapterName looks a chapter up; unknown chapters yield "".
func ChapterName(subject, phase, chapterID string) string {
	for _, c := range chapters[subject][phase] {
		if c.ID == chapterID {
			return c.Name
		}
	}
	return ""
}

// ClassGroups expands grouped class tokens into concrete classes.
var ClassGroups = map[string][]string{
	"ssc": {"c9", "c10"},
	"hsc": {"c11", "c12"},
}

// ExpandClass returns the concrete classes a token stands for. Plain classes
// expand to themselves.
func ExpandClass(token string) []string {
	if g, ok := ClassGroups[strings.ToLower(strings.TrimSpace(token))]; ok {
		return g
	}
	return []string{token}
}
