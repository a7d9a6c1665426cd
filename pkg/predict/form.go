package predict

import (
	"strconv"
	"strings"
)

// FormKind tags which representation a FormInput carries
type FormKind int

const (
	FormUnknown FormKind = iota
	FormList
	FormStreak
)

func (k FormKind) String() string {
	switch k {
	case FormList:
		return "list"
	case FormStreak:
		return "streak"
	default:
		return "unknown"
	}
}

// FormInput is a tagged union over the two ways recent form can be supplied:
// an ordered list of outcomes (most recent first) or a streak token such as "W5".
type FormInput struct {
	Kind    FormKind
	Results []string // FormList only
	Letter  string   // FormStreak only
	Count   int      // FormStreak only
}

// ListForm builds a list form from match results. Empty input gives FormUnknown.
func ListForm(matches []MatchResult) FormInput {
	if len(matches) == 0 {
		return FormInput{Kind: FormUnknown}
	}
	results := make([]string, 0, len(matches))
	for _, m := range matches {
		results = append(results, m.Outcome())
	}
	return FormInput{Kind: FormList, Results: results}
}

// StreakForm parses a streak token: a W, D or L followed by an optional count.
// A missing or zero count means 1. Anything else gives FormUnknown.
func StreakForm(token string) FormInput {
	token = strings.ToUpper(trimmed(token))
	if token == "" {
		return FormInput{Kind: FormUnknown}
	}

	letter := token[:1]
	if letter != "W" && letter != "D" && letter != "L" {
		return FormInput{Kind: FormUnknown}
	}

	count := 1
	if rest := trimmed(token[1:]); rest != "" {
		n, err := strconv.Atoi(rest)
		if err != nil || n < 0 {
			return FormInput{Kind: FormUnknown}
		}
		if n > 0 {
			count = n
		}
	}
	return FormInput{Kind: FormStreak, Letter: letter, Count: count}
}

// NewFormInput picks the list representation when results exist, otherwise the streak
func NewFormInput(stats TeamStats) FormInput {
	if f := ListForm(stats.LastMatches); f.Kind != FormUnknown {
		return f
	}
	return StreakForm(stats.Form)
}

// Points converts the form into a non-negative points total
func (f FormInput) Points(cfg *EngineConfig) int {
	switch f.Kind {
	case FormList:
		total := 0
		for _, r := range f.Results {
			total += letterPoints(r, cfg)
		}
		return total
	case FormStreak:
		return f.Count * letterPoints(f.Letter, cfg)
	default:
		return 0
	}
}

func letterPoints(letter string, cfg *EngineConfig) int {
	switch letter {
	case "W":
		return cfg.FormWinPoints
	case "D":
		return cfg.FormDrawPoints
	default:
		return cfg.FormLossPoints
	}
}

// PairForms chooses comparable form inputs for both sides.
// Lists are preferred; streak tokens are used when both sides have one; otherwise both are unknown.
func PairForms(home, away TeamStats) (FormInput, FormInput) {
	hl, al := ListForm(home.LastMatches), ListForm(away.LastMatches)
	if hl.Kind == FormList && al.Kind == FormList {
		return hl, al
	}
	hs, as := StreakForm(home.Form), StreakForm(away.Form)
	if hs.Kind == FormStreak && as.Kind == FormStreak {
		return hs, as
	}
	return FormInput{Kind: FormUnknown}, FormInput{Kind: FormUnknown}
}

// CompareForm returns both points totals when the inputs share a known kind
func CompareForm(home, away FormInput, cfg *EngineConfig) (homePts, awayPts int, ok bool) {
	if home.Kind == FormUnknown || home.Kind != away.Kind {
		return 0, 0, false
	}
	return home.Points(cfg), away.Points(cfg), true
}
