// Command reactorbench times reactor's notification graph under varying
// fan-out and collection sizes, following the same tachymeter-plus-table
// shape as the teacher's cmd/benchmark/main.go (its benchmarkAlien /
// benchmarkRocket functions) — minus the pprof-profile-to-disk step, which
// belonged to the teacher's own signal-library comparison and has no
// analogue here.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/delaneyj/reactor/collection"
	"github.com/delaneyj/reactor/model"
	"github.com/delaneyj/reactor/notify"
	"github.com/dustin/go-humanize"
	"github.com/jamiealquiza/tachymeter"
	"github.com/jedib0t/go-pretty/v6/table"
)

var (
	subscriberCounts = []int{1, 10, 100, 1_000}
	listSizes        = []int{1, 10, 100, 1_000}
	iters            = 1_000
)

func main() {
	flag.Parse()

	log.Printf("warming up")
	benchmarkPropertyFanOut(true)
	benchmarkCollectionMutation(true)
}

// cell has one writable property and three properties derived from it, so
// writing Value fans out across a fixed-height dependency chain on every
// iteration — the notify/model analogue of the teacher's "computed height."
type cell struct {
	model.Base
	Value model.Prop[int]
	D1    model.Derived `reactor:"dependsOn=Value"`
	D2    model.Derived `reactor:"dependsOn=D1"`
	D3    model.Derived `reactor:"dependsOn=D2"`
}

// benchmarkPropertyFanOut times cell.Value.Set across a varying number of
// OnPropertyChanged subscribers — the "width" dimension of the teacher's
// benchmark, reinterpreted as subscriber count rather than graph width
// since model's dependency shape is fixed per type, not constructed at
// runtime.
func benchmarkPropertyFanOut(shouldRender bool) {
	tbl := table.NewWriter()
	tbl.SetTitle("Property fan-out")
	tbl.SetOutputMirror(os.Stdout)
	tbl.AppendHeader(table.Row{"subscribers", "avg", "min", "p75", "p99", "max"})

	for _, n := range subscriberCounts {
		c := model.CreateObservable[cell](nil)
		for i := 0; i < n; i++ {
			c.Notifier().OnPropertyChanged(func(notify.Args) {})
		}

		tach := tachymeter.New(&tachymeter.Config{Size: iters})
		for i := 0; i < iters; i++ {
			start := time.Now()
			c.Value.Set(i)
			tach.AddTime(time.Since(start))
		}

		calc := tach.Calc()
		tbl.AppendRows([]table.Row{
			{
				humanize.Comma(int64(n)) + " subscribers",
				calc.Time.Avg, calc.Time.Min, calc.Time.P75, calc.Time.P99, calc.Time.Max,
			},
		})
	}

	if shouldRender {
		tbl.Render()
	}
}

// benchmarkCollectionMutation times Add+RemoveAt(0) pairs against a list
// prefilled to each size in listSizes — the collection analogue of the
// teacher's width sweep.
func benchmarkCollectionMutation(shouldRender bool) {
	tbl := table.NewWriter()
	tbl.SetTitle("Collection mutation")
	tbl.SetOutputMirror(os.Stdout)
	tbl.AppendHeader(table.Row{"benchmark", "avg", "min", "p75", "p99", "max"})

	for _, size := range listSizes {
		l := collection.NewObservableList[int](nil)
		for i := 0; i < size; i++ {
			l.Add(i)
		}

		tach := tachymeter.New(&tachymeter.Config{Size: iters})
		for i := 0; i < iters; i++ {
			start := time.Now()
			l.Add(i)
			l.RemoveAt(0)
			tach.AddTime(time.Since(start))
		}

		calc := tach.Calc()
		tbl.AppendRows([]table.Row{
			{
				fmt.Sprintf("add+remove at size %s", humanize.Comma(int64(size))),
				calc.Time.Avg, calc.Time.Min, calc.Time.P75, calc.Time.P99, calc.Time.Max,
			},
		})
	}

	if shouldRender {
		tbl.Render()
	}
}
