package preprocessing

import (
	"strings"

	"github.com/YuminosukeSato/mlcli/core/frame"
	"github.com/YuminosukeSato/mlcli/pkg/errors"
)

// TitleGroup folds a set of honorifics into one title.
type TitleGroup struct {
	Group  string
	Titles []string
}

// TitleGroups is the fixed normalization table applied to titles extracted
// from passenger names. Titles not listed pass through unchanged.
var TitleGroups = []TitleGroup{
	{Group: "Other", Titles: []string{"Rev", "Col", "Jonkheer", "Capt"}},
	{Group: "Miss", Titles: []string{"Dona", "Mlle", "Ms"}},
	{Group: "Mrs", Titles: []string{"Lady", "Mme", "the Countess"}},
	{Group: "Mr", Titles: []string{"Sir", "Major", "Dr", "Don"}},
}

var titleLookup = func() map[string]string {
	m := make(map[string]string)
	for _, g := range TitleGroups {
		for _, t := range g.Titles {
			m[t] = g.Group
		}
	}
	return m
}()

// ExtractTitle returns the honorific of a "Surname, Title. Given" name: the
// text after the first comma, cut at the next comma and then at the first
// period, trimmed.
func ExtractTitle(name string) (string, error) {
	i := strings.IndexByte(name, ',')
	if i < 0 {
		return "", errors.Newf("name %q has no comma", name)
	}
	rest := name[i+1:]
	if j := strings.IndexByte(rest, ','); j >= 0 {
		rest = rest[:j]
	}
	if j := strings.IndexByte(rest, '.'); j >= 0 {
		rest = rest[:j]
	}
	return strings.TrimSpace(rest), nil
}

// NormalizeTitle maps a raw title through TitleGroups.
func NormalizeTitle(title string) string {
	if g, ok := titleLookup[title]; ok {
		return g
	}
	return title
}

func extractTitleValue(v frame.Value) (frame.Value, error) {
	s, ok := v.Text()
	if !ok {
		return frame.Value{}, errors.Newf("name must be a string, got %s", v.Kind())
	}
	title, err := ExtractTitle(s)
	if err != nil {
		return frame.Value{}, err
	}
	return frame.Str(title), nil
}

func normalizeTitleValue(v frame.Value) (frame.Value, error) {
	s, ok := v.Text()
	if !ok {
		return v, nil
	}
	return frame.Str(NormalizeTitle(s)), nil
}
