package query

import (
	"net/url"
	"reflect"
	"testing"

	"github.com/JonMunkholm/jobboard/internal/core"
)

func TestFromValues(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  func(*FiltersState)
	}{
		{
			name:  "empty is default",
			query: "",
			want:  func(f *FiltersState) {},
		},
		{
			name:  "every field",
			query: "q=go+dev&location=Berlin&type=Contract&level=Senior&tags=go,,rust&salaryMin=50000&salaryMax=90000&remote=true&sort=salary-low",
			want: func(f *FiltersState) {
				f.Search = "go dev"
				f.Location = "Berlin"
				f.Type = core.JobTypeContract
				f.Level = core.LevelSenior
				f.Tags = []string{"go", "rust"}
				f.SalaryRange = [2]int{50000, 90000}
				f.RemoteOnly = true
				f.Sort = SortSalaryLow
			},
		},
		{
			name:  "only min salary keeps default max",
			query: "salaryMin=40000",
			want:  func(f *FiltersState) { f.SalaryRange = [2]int{40000, DefaultSalaryMax} },
		},
		{
			name:  "reversed range swapped",
			query: "salaryMin=90000&salaryMax=10000",
			want:  func(f *FiltersState) { f.SalaryRange = [2]int{10000, 90000} },
		},
		{
			name:  "invalid values ignored",
			query: "salaryMin=lots&remote=yes&sort=random",
			want:  func(f *FiltersState) {},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := url.ParseQuery(tt.query)
			if err != nil {
				t.Fatalf("ParseQuery: %v", err)
			}

			want := DefaultFilters()
			tt.want(&want)

			if got := FromValues(v); !reflect.DeepEqual(got, want) {
				t.Errorf("FromValues(%q) = %+v, want %+v", tt.query, got, want)
			}
		})
	}
}

func TestValues_RoundTrip(t *testing.T) {
	tests := []string{
		"",
		"q=react",
		"location=Remote&sort=oldest",
		"remote=true&salaryMax=150000&tags=go%2Csql",
		"level=Lead&q=platform+engineer&salaryMin=100000&type=Full-time",
	}

	for _, query := range tests {
		t.Run(query, func(t *testing.T) {
			v, _ := url.ParseQuery(query)
			got := FromValues(v).Encode()
			if got != v.Encode() {
				t.Errorf("round trip of %q = %q, want %q", query, got, v.Encode())
			}
		})
	}
}

func TestValues_DropsDefaults(t *testing.T) {
	v, _ := url.ParseQuery("sort=newest&salaryMin=0&salaryMax=200000&remote=false&q=")
	if got := FromValues(v).Encode(); got != "" {
		t.Errorf("Encode = %q, want empty for default values", got)
	}
}

func TestHasActiveFilters(t *testing.T) {
	if HasActiveFilters(DefaultFilters()) {
		t.Error("default filters reported active")
	}

	mods := map[string]func(*FiltersState){
		"search":   func(f *FiltersState) { f.Search = "x" },
		"tags":     func(f *FiltersState) { f.Tags = []string{"go"} },
		"salary":   func(f *FiltersState) { f.SalaryRange[1] = 100000 },
		"remote":   func(f *FiltersState) { f.RemoteOnly = true },
		"sort":     func(f *FiltersState) { f.Sort = SortAlphabetical },
		"level":    func(f *FiltersState) { f.Level = core.LevelEntry },
		"location": func(f *FiltersState) { f.Location = "Paris" },
	}
	for name, mod := range mods {
		f := DefaultFilters()
		mod(&f)
		if !HasActiveFilters(f) {
			t.Errorf("%s change not reported active", name)
		}
	}
}

func TestWithTag(t *testing.T) {
	f := DefaultFilters().WithTag("go").WithTag("sql").WithTag("go")
	if !reflect.DeepEqual(f.Tags, []string{"go", "sql"}) {
		t.Errorf("WithTag = %v", f.Tags)
	}

	g := f.WithoutTag("go")
	if !reflect.DeepEqual(g.Tags, []string{"sql"}) {
		t.Errorf("WithoutTag = %v", g.Tags)
	}
	if !reflect.DeepEqual(f.Tags, []string{"go", "sql"}) {
		t.Errorf("WithoutTag modified the receiver: %v", f.Tags)
	}
}
