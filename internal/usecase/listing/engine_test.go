package listing

import (
	"errors"
	"sync"
	"testing"

	"github.com/kailas-cloud/jobsift/internal/domain"
	"github.com/kailas-cloud/jobsift/internal/domain/record"
)

func scenarioRecords(t *testing.T) []*record.Record {
	t.Helper()
	return makeRecords(t,
		map[string]any{"title": "Engineer", "startDate": "2023-01-01", "loc": "Columbus"},
		map[string]any{"title": "Analyst", "startDate": "2023-03-01", "loc": "Remote"},
	)
}

func jobRecords(t *testing.T) []*record.Record {
	t.Helper()
	return makeRecords(t,
		map[string]any{"title": "Senior Engineer", "jobDescription": "Go services", "loc": "Columbus", "type": "Full time", "startDate": "2023-02-01"},
		map[string]any{"title": "Analyst", "jobDescription": "SQL reports", "loc": "Remote", "type": "Full time", "startDate": "2023-01-15"},
		map[string]any{"title": "Nurse", "jobDescription": "Patient care", "loc": "Columbus", "type": "Part time", "startDate": "2023-02-01"},
		map[string]any{"title": "Data Engineer", "jobDescription": "Go and SQL pipelines in Go", "loc": "Remote", "type": "Part time", "startDate": "not posted"},
		map[string]any{"title": "Intern", "jobDescription": "", "loc": "Wooster", "startDate": "2022-12-31"},
	)
}

func TestScenario_SelectClearSortByDate(t *testing.T) {
	e := New(scenarioRecords(t))

	e.SelectOption("loc", optionID(t, e, "loc", "Columbus"))
	if got := titles(e.FilteredView()); !equalStrings(got, []string{"Engineer"}) {
		t.Fatalf("after select: %v", got)
	}

	e.ClearOptions("loc")
	if got := titles(e.FilteredView()); !equalStrings(got, []string{"Engineer", "Analyst"}) {
		t.Fatalf("after clear: %v", got)
	}

	e.SortByDate(false, "")
	if got := titles(e.FilteredView()); !equalStrings(got, []string{"Analyst", "Engineer"}) {
		t.Fatalf("after sort desc: %v", got)
	}
}

func TestScenario_TitleKeyword(t *testing.T) {
	e := New(makeRecords(t,
		map[string]any{"title": "Senior Engineer"},
		map[string]any{"title": "Analyst", "jobDescription": "works with engineers"},
	))
	if _, err := e.AddKeyword(`(?i)engineer`, true, false); err != nil {
		t.Fatalf("AddKeyword: %v", err)
	}
	if got := titles(e.FilteredView()); !equalStrings(got, []string{"Senior Engineer"}) {
		t.Errorf("FilteredView() = %v", got)
	}
}

func TestAndOrLaw(t *testing.T) {
	e := New(jobRecords(t))
	e.SelectOption("loc", optionID(t, e, "loc", "Columbus"))
	e.SelectOption("type", optionID(t, e, "type", "Full time"))

	for _, r := range e.AllRecords() {
		want := r.Value("loc") == "Columbus" && r.Value("type") == "Full time"
		got := false
		for _, v := range e.FilteredView() {
			if v == r {
				got = true
			}
		}
		if got != want {
			t.Errorf("%s: passes = %v, want %v", r.Title(), got, want)
		}
	}

	// OR within a field.
	e.SelectOption("loc", optionID(t, e, "loc", "Remote"))
	if got := titles(e.FilteredView()); !equalStrings(got, []string{"Senior Engineer", "Analyst"}) {
		t.Errorf("OR within loc: %v", got)
	}
}

func TestFiltering_Monotonic(t *testing.T) {
	e := New(jobRecords(t))
	all := titles(e.FilteredView())

	_, _ = e.AddKeyword(`Go|SQL`, false, false)
	afterKeyword := titles(e.FilteredView())
	if len(afterKeyword) > len(all) {
		t.Fatalf("keyword increased view: %d > %d", len(afterKeyword), len(all))
	}

	e.SelectOption("loc", optionID(t, e, "loc", "Remote"))
	afterSelect := titles(e.FilteredView())
	if len(afterSelect) > len(afterKeyword) {
		t.Fatalf("selection increased view: %d > %d", len(afterSelect), len(afterKeyword))
	}

	e.ClearOptions("loc")
	if got := titles(e.FilteredView()); !equalStrings(got, afterKeyword) {
		t.Errorf("clear options: %v, want %v", got, afterKeyword)
	}
	e.ClearKeywords()
	if got := titles(e.FilteredView()); !equalStrings(got, all) {
		t.Errorf("clear keywords: %v, want %v", got, all)
	}
}

func TestLimitLaw(t *testing.T) {
	e := New(jobRecords(t))
	_, _ = e.AddKeyword(`Go|SQL`, false, true)
	unlimited := len(e.FilteredView())

	for _, n := range []int{0, 1, unlimited, unlimited + 5} {
		if _, err := e.SetLimit(n); err != nil {
			t.Fatalf("SetLimit(%d): %v", n, err)
		}
		if got := len(e.FilteredView()); got != min(n, unlimited) {
			t.Errorf("limit %d: len = %d, want %d", n, got, min(n, unlimited))
		}
		if l, ok := e.Limit(); !ok || l != n {
			t.Errorf("Limit() = %d, %v", l, ok)
		}
	}

	e.ClearLimit()
	if _, ok := e.Limit(); ok {
		t.Error("limit still set after ClearLimit")
	}
	if got := len(e.FilteredView()); got != unlimited {
		t.Errorf("after ClearLimit len = %d, want %d", got, unlimited)
	}

	if _, err := e.SetLimit(-1); !errors.Is(err, domain.ErrInvalidLimit) {
		t.Errorf("SetLimit(-1) err = %v", err)
	}
}

func TestSelectOption_Idempotent(t *testing.T) {
	e := New(jobRecords(t))
	id := optionID(t, e, "loc", "Remote")
	e.SelectOption("loc", id)
	e.SelectOption("loc", id)
	if got := e.AppliedOptions("loc"); len(got) != 1 || got[0] != id {
		t.Errorf("AppliedOptions() = %v", got)
	}
	if !e.IsSelected("loc", id) {
		t.Error("IsSelected() = false")
	}
}

func TestSelectOption_UnknownFieldIsLenient(t *testing.T) {
	e := New(jobRecords(t))
	if got := e.AppliedOptions("salary"); len(got) != 0 {
		t.Errorf("AppliedOptions(unknown) = %v", got)
	}
	e.ClearOptions("salary")
	if got := len(e.FilteredView()); got != 5 {
		t.Errorf("FilteredView() len = %d, want 5", got)
	}
}

func TestDeselectOption(t *testing.T) {
	e := New(jobRecords(t))
	id := optionID(t, e, "loc", "Remote")
	e.SelectOption("loc", id)

	o, err := e.DeselectOption("loc", id)
	if err != nil {
		t.Fatalf("DeselectOption: %v", err)
	}
	if o.Value != "Remote" {
		t.Errorf("removed option = %+v", o)
	}
	if e.IsSelected("loc", id) {
		t.Error("still selected")
	}

	if _, err := e.DeselectOption("loc", id); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("second deselect err = %v, want ErrNotFound", err)
	}
	if _, err := e.DeselectOption("ghost", "0"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("unknown field err = %v, want ErrNotFound", err)
	}
}

func TestKeywords_AddRemoveClear(t *testing.T) {
	e := New(jobRecords(t))
	if _, err := e.AddKeyword(`Go`, false, false); err != nil {
		t.Fatalf("AddKeyword: %v", err)
	}
	if _, err := e.AddKeyword(`SQL`, false, true); err != nil {
		t.Fatalf("AddKeyword: %v", err)
	}

	removed, err := e.RemoveKeyword(0)
	if err != nil {
		t.Fatalf("RemoveKeyword: %v", err)
	}
	if removed.Pattern() != "Go" {
		t.Errorf("removed = %q", removed.Pattern())
	}
	if kws := e.Keywords(); len(kws) != 1 || kws[0].Pattern() != "SQL" {
		t.Errorf("Keywords() = %v", kws)
	}

	for _, i := range []int{-1, 1, 99} {
		if _, err := e.RemoveKeyword(i); !errors.Is(err, domain.ErrNotFound) {
			t.Errorf("RemoveKeyword(%d) err = %v", i, err)
		}
	}
	if len(e.Keywords()) != 1 {
		t.Error("out-of-range remove changed state")
	}

	e.ClearKeywords()
	if len(e.Keywords()) != 0 {
		t.Error("ClearKeywords left keywords")
	}
}

func TestAddKeyword_InvalidPatternKeepsState(t *testing.T) {
	e := New(jobRecords(t))
	_, _ = e.AddKeyword(`Go`, false, false)
	before := titles(e.FilteredView())

	_, err := e.AddKeyword(`[unclosed`, false, false)
	if !errors.Is(err, domain.ErrInvalidPattern) {
		t.Fatalf("err = %v, want ErrInvalidPattern", err)
	}
	var ipe *domain.InvalidPatternError
	if !errors.As(err, &ipe) {
		t.Errorf("expected InvalidPatternError, got %T", err)
	}
	if len(e.Keywords()) != 1 {
		t.Errorf("Keywords() len = %d, want 1", len(e.Keywords()))
	}
	if got := titles(e.FilteredView()); !equalStrings(got, before) {
		t.Errorf("view changed: %v, want %v", got, before)
	}
}

func TestFacetCountsFollowConstraints(t *testing.T) {
	e := New(jobRecords(t))
	_, _ = e.AddKeyword(`Go`, false, false)

	loc, _ := e.Facets().Facet("loc")
	columbus, _ := loc.OptionByValue("Columbus")
	remote, _ := loc.OptionByValue("Remote")
	if columbus.Count != 1 || remote.Count != 1 {
		t.Errorf("counts Columbus=%d Remote=%d, want 1 and 1", columbus.Count, remote.Count)
	}

	e.ClearKeywords()
	loc, _ = e.Facets().Facet("loc")
	if loc.Total() != 5 {
		t.Errorf("loc total = %d, want 5", loc.Total())
	}
}

func TestSetDisplayNames_FirstMappingWins(t *testing.T) {
	e := New(jobRecords(t))
	e.SetDisplayNames(map[string]string{"loc": "Location"})
	e.SetDisplayNames(map[string]string{"loc": "Where", "type": "Time Type"})

	loc, _ := e.Facets().Facet("loc")
	typ, _ := e.Facets().Facet("type")
	if loc.DisplayName() != "Location" {
		t.Errorf("loc = %q", loc.DisplayName())
	}
	if typ.DisplayName() != "Time Type" {
		t.Errorf("type = %q", typ.DisplayName())
	}
}

func TestSetDisplayNames_EmptyNameDoesNotClaimField(t *testing.T) {
	e := New(jobRecords(t))
	e.SetDisplayNames(map[string]string{"loc": "", "type": ""})
	e.SetDisplayNames(map[string]string{"loc": "Location"})

	loc, _ := e.Facets().Facet("loc")
	typ, _ := e.Facets().Facet("type")
	if loc.DisplayName() != "Location" {
		t.Errorf("loc = %q, want Location", loc.DisplayName())
	}
	if typ.DisplayName() != "type" {
		t.Errorf("type = %q, want field name", typ.DisplayName())
	}
}

func TestRefresh_SeesEnrichment(t *testing.T) {
	r, err := record.FromJSON([]byte(`{"title":"Engineer","externalPath":"/job/1"}`))
	if err != nil {
		t.Fatalf("FromJSON: %v", err)
	}
	e := New([]*record.Record{r})
	if e.Facets().Len() != 0 {
		t.Fatalf("expected no facets, got %v", e.Facets().Names())
	}

	if err := r.Merge([]byte(`{"jobPostingInfo":{"timeType":"Full time"}}`)); err != nil {
		t.Fatalf("Merge: %v", err)
	}
	idx := e.Refresh()
	if _, ok := idx.Facet("timeType"); !ok {
		t.Errorf("timeType facet missing after refresh: %v", idx.Names())
	}
}

func TestNew_DoesNotReorderCallerSlice(t *testing.T) {
	recs := scenarioRecords(t)
	e := New(recs)
	e.SortByTitle(true)
	if recs[0].Title() != "Engineer" {
		t.Error("caller slice reordered")
	}
	if got := titles(e.AllRecords()); !equalStrings(got, []string{"Analyst", "Engineer"}) {
		t.Errorf("AllRecords() = %v", got)
	}
}

func TestObserver(t *testing.T) {
	obs := &recordingObserver{}
	e := New(jobRecords(t)).WithObserver(obs)
	e.SelectOption("loc", optionID(t, e, "loc", "Columbus"))
	if obs.calls != 1 || obs.records != 5 || obs.filtered != 2 {
		t.Errorf("observer = %+v", obs)
	}
}

func TestLocked_ConcurrentAccess(t *testing.T) {
	l := NewLocked(New(jobRecords(t)))
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if i%2 == 0 {
				l.SelectOption("loc", "0")
				_, _ = l.DeselectOption("loc", "0")
			} else {
				_, _ = l.Sort(SortTitle, i%3 == 0, "")
				_ = l.FilteredView()
			}
		}(i)
	}
	wg.Wait()
	if got := len(l.AllRecords()); got != 5 {
		t.Errorf("AllRecords() len = %d", got)
	}

	l.Do(func(e *Engine) {
		e.SelectOption("loc", "0")
		e.SelectOption("type", "0")
	})
	if got := len(l.FilteredView()); got != 1 {
		t.Errorf("batched selection view len = %d, want 1", got)
	}
}
