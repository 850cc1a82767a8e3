package report

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/kailas-cloud/jobsift/internal/domain/record"
)

func date(s string) time.Time {
	t, _ := time.Parse(dateLayout, s)
	return t
}

func TestSplit(t *testing.T) {
	tests := []struct {
		name      string
		since     time.Time
		wantFresh []string
		wantOlder []string
	}{
		{
			name:      "cutoff between dates",
			since:     date("2023-02-01"),
			wantFresh: []string{"Analyst", "Nurse"},
			wantOlder: []string{"Engineer", "Clerk", "Intern"},
		},
		{
			name:      "cutoff is inclusive",
			since:     date("2023-03-01"),
			wantFresh: []string{"Analyst"},
			wantOlder: []string{"Nurse", "Engineer", "Clerk", "Intern"},
		},
		{
			name:      "first run",
			since:     time.Time{},
			wantFresh: []string{"Analyst", "Nurse", "Engineer", "Clerk"},
			wantOlder: []string{"Intern"},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			fresh, older := Split(sampleRecords(t), tc.since, "")
			if got := titles(fresh); !equalStrings(got, tc.wantFresh) {
				t.Errorf("fresh = %v, want %v", got, tc.wantFresh)
			}
			if got := titles(older); !equalStrings(got, tc.wantOlder) {
				t.Errorf("older = %v, want %v", got, tc.wantOlder)
			}
		})
	}
}

func TestHTMLRenderer(t *testing.T) {
	recs := makeRecords(t,
		map[string]any{"title": "Engineer <Senior>", "externalPath": "/job/1", "postedOn": "Posted Today", "locationsText": "Columbus", "timeType": "Full time"},
	)
	doc := Document{
		Generated: date("2023-03-05"),
		Fresh:     recs,
		SiteURL:   "https://osu.example.com/en-US/OSUCareers",
	}

	var buf bytes.Buffer
	if err := NewHTMLRenderer().Render(&buf, doc); err != nil {
		t.Fatalf("Render: %v", err)
	}
	out := buf.String()

	for _, want := range []string{
		"<caption>New Jobs --- 2023-03-05</caption>",
		"<caption>Older Jobs --- 2023-03-05</caption>",
		"<th>Job Title</th><th>Posted On</th><th>Job Location</th><th>Job Type</th>",
		`<a href="https://osu.example.com/en-US/OSUCareers/job/1">Engineer &lt;Senior&gt;</a>`,
		"<td>Posted Today</td><td>Columbus</td><td>Full time</td>",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q\n%s", want, out)
		}
	}
	if strings.Contains(out, "Description") {
		t.Error("description column rendered without being enabled")
	}
	if strings.Contains(out, "Previous run") {
		t.Error("previous run shown on first run")
	}
}

func TestHTMLRenderer_SanitizesDescriptions(t *testing.T) {
	r, err := record.FromJSON([]byte(`{"title":"Engineer","jobDescription":"<p onclick=\"x()\">Build <b>things</b></p><script>alert(1)</script>"}`))
	if err != nil {
		t.Fatalf("FromJSON: %v", err)
	}
	doc := Document{Generated: date("2023-03-05"), Since: date("2023-03-01"), Fresh: []*record.Record{r}, Descriptions: true}

	var buf bytes.Buffer
	if err := NewHTMLRenderer().Render(&buf, doc); err != nil {
		t.Fatalf("Render: %v", err)
	}
	out := buf.String()

	if !strings.Contains(out, "<p>Build <b>things</b></p>") {
		t.Errorf("expected sanitized markup kept:\n%s", out)
	}
	if strings.Contains(out, "<script>") || strings.Contains(out, "onclick") {
		t.Errorf("unsafe markup leaked:\n%s", out)
	}
	if !strings.Contains(out, "<th>Description</th>") {
		t.Error("expected description column")
	}
	if !strings.Contains(out, "Previous run: 2023-03-01") {
		t.Error("expected previous run date")
	}
}

func TestMarkdownRenderer(t *testing.T) {
	doc := Document{
		Generated: date("2023-03-05"),
		Fresh:     makeRecords(t, map[string]any{"title": "Engineer", "externalPath": "/job/1", "locationsText": "Columbus", "timeType": "Full time"}),
		Older:     makeRecords(t, map[string]any{"title": "Clerk", "externalPath": "/job/5", "locationsText": "Remote"}),
		SiteURL:   "https://osu.example.com/en-US/OSUCareers",
	}

	var buf bytes.Buffer
	if err := NewMarkdownRenderer().Render(&buf, doc); err != nil {
		t.Fatalf("Render: %v", err)
	}
	out := buf.String()

	for _, want := range []string{
		"[Engineer](https://osu.example.com/en-US/OSUCareers/job/1)",
		"[Clerk](https://osu.example.com/en-US/OSUCareers/job/5)",
		"Job Title",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q\n%s", want, out)
		}
	}
	if strings.Contains(out, "<table>") {
		t.Errorf("expected markdown, got html:\n%s", out)
	}
}

func TestLastRun(t *testing.T) {
	lr := NewLastRun(filepath.Join(t.TempDir(), "state", "last_run.txt"))

	got, err := lr.Load()
	if err != nil {
		t.Fatalf("Load on missing file: %v", err)
	}
	if !got.IsZero() {
		t.Errorf("expected zero time, got %v", got)
	}

	if err := lr.Save(time.Date(2023, 3, 5, 17, 30, 0, 0, time.UTC)); err != nil {
		t.Fatalf("Save: %v", err)
	}
	data, err := os.ReadFile(lr.path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(data) != "2023-03-05\n" {
		t.Errorf("file content = %q", data)
	}

	got, err = lr.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !got.Equal(date("2023-03-05")) {
		t.Errorf("Load() = %v", got)
	}
}

func TestLastRun_Corrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "last_run.txt")
	if err := os.WriteFile(path, []byte("yesterday\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := NewLastRun(path).Load(); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestWriter_Write(t *testing.T) {
	dir := t.TempDir()
	lr := NewLastRun(filepath.Join(dir, "last_run.txt"))
	if err := lr.Save(date("2023-02-01")); err != nil {
		t.Fatal(err)
	}

	w := NewWriter(Config{Dir: filepath.Join(dir, "out"), Prefix: "OSU_jobs", SiteURL: "https://osu.example.com"}, NewHTMLRenderer(), lr, nil)
	w.now = func() time.Time { return date("2023-03-05") }

	path, err := w.Write(context.Background(), sampleRecords(t))
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	if path != filepath.Join(dir, "out", "OSU_jobs_2023-03-05.html") {
		t.Errorf("path = %q", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read report: %v", err)
	}
	out := string(data)
	newAt := strings.Index(out, "New Jobs")
	olderAt := strings.Index(out, "Older Jobs")
	analystAt := strings.Index(out, ">Analyst<")
	engineerAt := strings.Index(out, ">Engineer<")
	if newAt < 0 || olderAt < 0 || !(newAt < analystAt && analystAt < olderAt && olderAt < engineerAt) {
		t.Errorf("records in wrong sections:\n%s", out)
	}

	next, err := lr.Load()
	if err != nil || !next.Equal(date("2023-03-05")) {
		t.Errorf("last run not advanced: %v %v", next, err)
	}
}

func TestWriter_CancelledContext(t *testing.T) {
	dir := t.TempDir()
	w := NewWriter(Config{Dir: dir, Prefix: "jobs"}, NewHTMLRenderer(), NewLastRun(filepath.Join(dir, "lr")), nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := w.Write(ctx, nil); err == nil {
		t.Fatal("expected context error")
	}
}
