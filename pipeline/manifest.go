package pipeline

import (
	"fmt"
	"io"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gocarina/gocsv"

	"github.com/passeth/neural-visuals-v2/themes"
)

// ManifestRow is one track of a batch manifest.
type ManifestRow struct {
	ID          string `csv:"ID"`
	Title       string `csv:"Title"`
	MusicPrompt string `csv:"Music_Prompt"`
	VideoTitle  string `csv:"Video_Title"`
	CaptionKR   string `csv:"Video_Caption_KR"`
	CaptionEN   string `csv:"Video_Caption_EN"`
	Theme       string `csv:"Theme"`
	ColorPreset string `csv:"ColorPreset"`
}

// ReadManifest parses manifest CSV rows.
func ReadManifest(r io.Reader) ([]*ManifestRow, error) {
	var rows []*ManifestRow
	if err := gocsv.Unmarshal(r, &rows); err != nil {
		return nil, fmt.Errorf("parsing manifest: %w", err)
	}
	return rows, nil
}

// LoadManifest reads a manifest file.
func LoadManifest(path string) ([]*ManifestRow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadManifest(f)
}

// WriteManifest writes rows with a header.
func WriteManifest(w io.Writer, rows []*ManifestRow) error {
	return gocsv.Marshal(rows, w)
}

// Jobs maps manifest rows to jobs. Audio is expected at <audioDir>/<ID><ext>.
func Jobs(rows []*ManifestRow, audioDir, ext string, duration time.Duration) []Job {
	jobs := make([]Job, 0, len(rows))
	for _, row := range rows {
		jobs = append(jobs, Job{
			ID:          row.ID,
			AudioPath:   filepath.Join(audioDir, row.ID+ext),
			Theme:       row.Theme,
			ColorPreset: row.ColorPreset,
			Duration:    duration,
		})
	}
	return jobs
}

// Quota is how many tracks a theme gets and which presets it draws from.
type Quota struct {
	Theme   string
	Count   int
	Presets []string
}

var softPresets = []string{"electric", "softPink", "softGreen", "softYellow"}

// DefaultQuotas is the catalogue distribution used for sleep-music batches.
var DefaultQuotas = []Quota{
	{Theme: "moonlight", Count: 20, Presets: softPresets},
	{Theme: "zenfocus", Count: 20, Presets: softPresets},
	{Theme: "ocean", Count: 20, Presets: []string{"midnight", "tropical", "sunset", "arctic", "emerald"}},
	{Theme: "creativeflow", Count: 20, Presets: softPresets},
	{Theme: "brainboost", Count: 15, Presets: softPresets},
	{Theme: "mentalfocus", Count: 5, Presets: softPresets},
}

type wave struct {
	title string // printf pattern taking the track number
	freq  string
	kind  string
}

// waves is indexed by track number mod 5.
var waves = [5]wave{
	{"Delta Sleep Wave %d", "0.5-3Hz", "Delta"},
	{"Theta Dream Space %d", "4-7Hz", "Theta"},
	{"Alpha Calm Flow %d", "8-12Hz", "Alpha"},
	{"Deep Rest Blend %d", "2-6Hz", "Theta-Delta"},
	{"Gentle Night %d", "1-4Hz", "Delta"},
}

// GenerateManifest assigns themes and presets to tracks first..last
// following quotas, shuffled with rng. Theme ids and preset keys are
// validated against reg; presets a theme lacks fall back to its default.
func GenerateManifest(reg *themes.Registry, quotas []Quota, first, last int, rng *rand.Rand) ([]*ManifestRow, error) {
	type assignment struct{ theme, preset string }
	var pool []assignment
	for _, q := range quotas {
		desc, err := reg.Get(q.Theme)
		if err != nil {
			return nil, err
		}
		for i := 0; i < q.Count; i++ {
			preset := desc.DefaultPreset()
			if len(q.Presets) > 0 {
				if p := q.Presets[rng.Intn(len(q.Presets))]; desc.Presets.Has(p) {
					preset = p
				}
			}
			pool = append(pool, assignment{theme: desc.ID, preset: preset})
		}
	}
	n := last - first + 1
	if n <= 0 {
		return nil, fmt.Errorf("empty track range %d..%d", first, last)
	}
	if n > len(pool) {
		return nil, fmt.Errorf("%d tracks but quotas only cover %d", n, len(pool))
	}
	rng.Shuffle(len(pool), func(i, j int) { pool[i], pool[j] = pool[j], pool[i] })

	rows := make([]*ManifestRow, 0, n)
	for i := first; i <= last; i++ {
		a := pool[i-first]
		w := waves[i%5]
		num := i
		if i%5 == 0 {
			num = i / 5
		}
		title := fmt.Sprintf(w.title, num)
		rows = append(rows, &ManifestRow{
			ID:    fmt.Sprintf("NM%03d", i),
			Title: title,
			MusicPrompt: fmt.Sprintf("Create %s wave ambient music for deep sleep. Frequency: %s. "+
				"Blend soft ASMR textures warm atmosphere gentle sounds. No sudden changes. "+
				"Everything slow peaceful intimate safe. Include subtle nature elements. "+
				"Balanced frequencies zero harsh sounds.", strings.ToLower(w.kind), w.freq),
			VideoTitle: title + " 🌙 1 Hour Sleep Music",
			CaptionKR: fmt.Sprintf("편안한 밤이에요 💙\n\n이 음악은 %s 파형(%s)으로 깊은 휴식을 도와줘요.\n\n"+
				"#%sWaves #DeepSleep #수면음악 #깊은수면", w.kind, w.freq, w.kind),
			CaptionEN: fmt.Sprintf("Have a peaceful night 💙\n\nThis music uses %s waves (%s) to help you rest deeply.\n\n"+
				"#%sWaves #DeepSleep #SleepMusic", w.kind, w.freq, w.kind),
			Theme:       a.theme,
			ColorPreset: a.preset,
		})
	}
	return rows, nil
}
