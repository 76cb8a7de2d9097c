package extraction

import (
	"sort"
	"strings"
)

// KnownSources are journalists who are often named in transfer news and must
// never be linked as players.
var KnownSources = []string{
	"Paul O Keefe",
	"Alasdair Gold",
	"Fabrizio Romano",
	"David Ornstein",
	"Dan Kilpatrick",
	"Charlie Eccleshare",
	"Jack Pitt-Brooke",
	"Matt Law",
	"Jonathan Veal",
	"Tom Barclay",
	"Mike McGrath",
	"John Percy",
	"Simon Stone",
	"James Ducker",
	"Jason Burt",
	"Sam Wallace",
	"Miguel Delaney",
	"Melissa Reddy",
	"James Olley",
	"Rob Dorsett",
	"Lyall Thomas",
	"Pete O'Rourke",
}

// Denylist is an exact, case-insensitive name set. It keeps the first
// spelling seen for each name.
type Denylist struct {
	names map[string]string
}

func NewDenylist(names []string) Denylist {
	set := make(map[string]string, len(names))
	for _, name := range names {
		key := denyKey(name)
		if key == "" {
			continue
		}
		if _, ok := set[key]; !ok {
			set[key] = strings.Join(strings.Fields(name), " ")
		}
	}
	return Denylist{names: set}
}

func DefaultDenylist() Denylist {
	return NewDenylist(KnownSources)
}

func (d Denylist) Contains(name string) bool {
	_, ok := d.names[denyKey(name)]
	return ok
}

// Names returns the names as written, sorted, for prompts.
func (d Denylist) Names() []string {
	out := make([]string, 0, len(d.names))
	for _, name := range d.names {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

func (d Denylist) Len() int {
	return len(d.names)
}

func denyKey(name string) string {
	return strings.ToLower(strings.Join(strings.Fields(name), " "))
}
