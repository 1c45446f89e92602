// Package dataset loads the variables of one catalog view into an immutable Snapshot.
//
// Every distinct source file is read concurrently; the load only proceeds once all
// reads have succeeded. Extraction, aggregation and transforms then run
// synchronously over the parsed tables.
package dataset

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/KaramelBytes/trendloom-cli/internal/catalog"
	"github.com/KaramelBytes/trendloom-cli/internal/choropleth"
	"github.com/KaramelBytes/trendloom-cli/internal/entity"
	"github.com/KaramelBytes/trendloom-cli/internal/series"
	"github.com/KaramelBytes/trendloom-cli/internal/table"
)

// ErrEntityRequired is returned when a per-entity view is loaded without an entity.
var ErrEntityRequired = errors.New("entity required")

// Loader reads catalog sources from FS. Fields are not modified by Load.
type Loader struct {
	FS      fs.FS
	Catalog *catalog.Catalog
	Logger  *slog.Logger
	// Fallback is the normalized value of a constant series. NewLoader sets series.ConstantFallback.
	Fallback float64
	// Strict turns a schema mismatch in any source into a load failure.
	Strict bool
}

// NewLoader returns a loader over fsys using cat, or the built-in catalog when cat is nil.
func NewLoader(fsys fs.FS, cat *catalog.Catalog) *Loader {
	if cat == nil {
		cat = catalog.Default()
	}
	return &Loader{FS: fsys, Catalog: cat, Fallback: series.ConstantFallback}
}

func (l *Loader) logger() *slog.Logger {
	if l.Logger != nil {
		return l.Logger
	}
	return slog.Default()
}

// Load builds a snapshot of every variable in view for entity.
// entity may be a code ("FRA") or a display name ("France"); views that are not
// per-entity ignore it.
func (l *Loader) Load(ctx context.Context, view, entityKey string) (*Snapshot, error) {
	v, err := l.Catalog.View(view)
	if err != nil {
		return nil, err
	}
	entityKey = strings.TrimSpace(entityKey)
	if v.EntityRequired && entityKey == "" {
		return nil, fmt.Errorf("load %s: %w", view, ErrEntityRequired)
	}
	if !v.EntityRequired {
		entityKey = ""
	}

	snap := &Snapshot{
		ID:       uuid.NewString(),
		View:     v.Name,
		Years:    v.Years,
		LoadedAt: time.Now().UTC(),
		fallback: l.Fallback,
		series:   make(map[string]series.Series, len(v.Variables)),
		problems: map[string]error{},
		labels:   make(map[string]string, len(v.Variables)),
	}
	log := l.logger().With("snapshot_id", snap.ID, "view", v.Name)
	start := time.Now()

	in, err := l.fetch(ctx, v.Variables, v.EntityRequired || usesNames(v.Variables))
	if err != nil {
		return nil, err
	}

	var match func(catalog.Source) series.Matcher
	if entityKey != "" {
		snap.Entity, snap.EntityName = resolveEntity(in.dir, entityKey)
		code, name := snap.Entity, entity.Fold(snap.EntityName)
		match = func(s catalog.Source) series.Matcher {
			switch s.Layout().Key {
			case series.KeyCode:
				return series.MatchCode(code)
			case series.KeyName:
				return series.MatchFolded(name, entity.Fold)
			}
			return series.MatchAll
		}
	} else {
		match = func(catalog.Source) series.Matcher { return series.MatchAll }
	}

	for _, vr := range v.Variables {
		snap.order = append(snap.order, vr.ID)
		snap.labels[vr.ID] = vr.Label
		vlog := log.With("variable", vr.ID, "file", vr.Source.File)
		obs, st, err := series.Observe(in.tables[vr.Source.ReadKey()], vr.Source.Layout())
		if err != nil {
			if errors.Is(err, series.ErrSchemaMismatch) && !l.Strict {
				vlog.Warn("source skipped", "err", err)
				snap.problems[vr.ID] = err
				snap.series[vr.ID] = series.Series{}
				continue
			}
			return nil, fmt.Errorf("load %s/%s: %w", v.Name, vr.ID, err)
		}
		s := series.Sort(series.Aggregate(series.Select(obs, match(vr.Source))))
		if vr.Source.Transform == catalog.TransformYoY {
			s = series.GrowthRate(s)
		}
		s = series.FilterYears(s, v.Years)
		snap.series[vr.ID] = s
		vlog.Debug("series extracted", "rows", st.Rows, "observed", st.Observed, "skipped", st.Skipped, "points", len(s))
	}
	log.Info("snapshot loaded", "entity", snap.Entity, "variables", len(snap.order),
		"problems", len(snap.problems), "elapsed", time.Since(start).Round(time.Millisecond))
	return snap, nil
}

// LoadMap builds the choropleth index for every variable of view, auxiliary ones included.
// Name-keyed sources are mapped to codes through the entity directory; unmatched names are dropped.
func (l *Loader) LoadMap(ctx context.Context, view string) (*choropleth.Index, error) {
	v, err := l.Catalog.View(view)
	if err != nil {
		return nil, err
	}
	log := l.logger().With("view", v.Name)
	in, err := l.fetch(ctx, v.Variables, usesNames(v.Variables))
	if err != nil {
		return nil, err
	}
	b := choropleth.NewBuilder(v.Years)
	for _, vr := range v.Variables {
		vlog := log.With("variable", vr.ID, "file", vr.Source.File)
		layout := vr.Source.Layout()
		obs, _, err := series.Observe(in.tables[vr.Source.ReadKey()], layout)
		if err != nil {
			if errors.Is(err, series.ErrSchemaMismatch) && !l.Strict {
				vlog.Warn("source skipped", "err", err)
				b.Add(vr.ID, nil, vr.Source.Aggregate)
				continue
			}
			return nil, fmt.Errorf("map %s/%s: %w", v.Name, vr.ID, err)
		}
		if layout.Key == series.KeyNone {
			vlog.Warn("source has no entity key; nothing to map")
		}
		obs = toCodes(obs, layout.Key, in.dir)
		if vr.Source.Transform == catalog.TransformYoY {
			obs = growthByEntity(obs)
		}
		kept := b.Add(vr.ID, obs, vr.Source.Aggregate)
		vlog.Debug("map variable indexed", "observations", len(obs), "kept", kept)
	}
	return b.Build(), nil
}

// Directory reads the catalog's entity directory on its own.
func (l *Loader) Directory(ctx context.Context) (*entity.Directory, error) {
	if l.FS == nil {
		return nil, errors.New("loader has no data filesystem")
	}
	return l.readDirectory(ctx)
}

type inputs struct {
	tables map[string]*table.Table
	dir    *entity.Directory
}

// fetch reads every distinct source of vars, and the entity directory when withDir is set.
// All reads must succeed.
func (l *Loader) fetch(ctx context.Context, vars []catalog.Variable, withDir bool) (*inputs, error) {
	if l.FS == nil {
		return nil, errors.New("loader has no data filesystem")
	}
	in := &inputs{tables: map[string]*table.Table{}}
	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)

	seen := map[string]bool{}
	for _, vr := range vars {
		src := vr.Source
		key := src.ReadKey()
		if seen[key] {
			continue
		}
		seen[key] = true
		g.Go(func() error {
			t, err := l.readTable(gctx, src)
			if err != nil {
				return err
			}
			mu.Lock()
			in.tables[key] = t
			mu.Unlock()
			return nil
		})
	}
	if withDir {
		g.Go(func() error {
			d, err := l.readDirectory(gctx)
			if err != nil {
				return err
			}
			in.dir = d
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return in, nil
}

func (l *Loader) readTable(ctx context.Context, src catalog.Source) (*table.Table, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := l.FS.Open(path.Clean(src.File))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", src.File, err)
	}
	defer f.Close()
	t, err := table.Read(f, src.File, src.TableOptions())
	if err != nil {
		return nil, err
	}
	return t, ctx.Err()
}

func (l *Loader) readDirectory(ctx context.Context) (*entity.Directory, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	name := l.Catalog.Entities
	f, err := l.FS.Open(path.Clean(name))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	defer f.Close()
	d, err := entity.Load(f)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	return d, nil
}

func usesNames(vars []catalog.Variable) bool {
	for _, vr := range vars {
		if vr.Source.Layout().Key == series.KeyName {
			return true
		}
	}
	return false
}

// resolveEntity accepts a code or a display name and returns the code and display name.
// Unknown keys are treated as codes so code-keyed sources can still match.
func resolveEntity(dir *entity.Directory, key string) (code, name string) {
	if n, ok := dir.NameFor(key); ok {
		return strings.ToUpper(key), n
	}
	if c, ok := dir.CodeFor(key); ok {
		n, _ := dir.NameFor(c)
		return strings.ToUpper(c), n
	}
	return strings.ToUpper(key), ""
}

func toCodes(obs []series.Observation, key series.EntityKey, dir *entity.Directory) []series.Observation {
	out := make([]series.Observation, 0, len(obs))
	for _, o := range obs {
		switch key {
		case series.KeyName:
			code, ok := dir.CodeFor(o.Entity)
			if !ok {
				continue
			}
			o.Entity = strings.ToUpper(code)
		case series.KeyCode:
			o.Entity = strings.ToUpper(strings.TrimSpace(o.Entity))
		}
		out = append(out, o)
	}
	return out
}

// growthByEntity applies the year-over-year transform to each entity's levels separately.
func growthByEntity(obs []series.Observation) []series.Observation {
	var order []string
	levels := map[string]series.Series{}
	for _, o := range obs {
		if _, ok := levels[o.Entity]; !ok {
			order = append(order, o.Entity)
		}
		levels[o.Entity] = append(levels[o.Entity], series.Point{Year: o.Year, Value: o.Value})
	}
	var out []series.Observation
	for _, e := range order {
		for _, p := range series.GrowthRate(series.Aggregate(levels[e])) {
			out = append(out, series.Observation{Entity: e, Year: p.Year, Value: p.Value})
		}
	}
	return out
}
