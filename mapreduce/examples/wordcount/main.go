// Command wordcount counts word frequency across a handful of lines,
// using the mapreduce package's map+shuffle+reduce pipeline.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/KimMachineGun/automemlimit/memlimit"
	"go.uber.org/automaxprocs/maxprocs"

	"github.com/avikfir/mapreduce"
	"github.com/joeycumines/izerolog"
	"github.com/rs/zerolog"
)

func init() {
	// The worker pool's size and this process's memory ceiling both
	// matter under cgroup limits, unlike uthreads (which pins
	// GOMAXPROCS(1) for a different reason entirely).
	if _, err := maxprocs.Set(maxprocs.Logger(log.Printf)); err != nil {
		log.Printf("automaxprocs: %v", err)
	}
	if _, err := memlimit.SetGoMemLimitWithOpts(); err != nil {
		log.Printf("automemlimit: %v", err)
	}
}

// config is the subset of build/run-time parameters this demo accepts
// from a TOML file (spec.md's default-worker-count knob).
type config struct {
	Workers int `toml:"workers"`
}

func loadConfig(path string) config {
	cfg := config{Workers: 4}
	if _, err := toml.DecodeFile(path, &cfg); err != nil && !os.IsNotExist(err) {
		log.Printf("config: %v", err)
	}
	return cfg
}

type client struct{}

func (client) Map(_ int, line string, ctx *mapreduce.MapContext[string, int]) {
	for _, word := range strings.Fields(strings.ToLower(line)) {
		ctx.Emit2(word, 1)
	}
}

func (client) Reduce(word string, counts []int, ctx *mapreduce.ReduceContext[string, int]) {
	sum := 0
	for _, c := range counts {
		sum += c
	}
	ctx.Emit3(word, sum)
}

func main() {
	configPath := flag.String("config", "config.toml", "path to a TOML config file")
	flag.Parse()
	cfg := loadConfig(*configPath)

	zl := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
	mapreduce.SetLogger(izerolog.L.New(izerolog.L.WithZerolog(zl)).Logger())

	lines := []string{
		"the quick brown fox",
		"the lazy dog sleeps",
		"the fox jumps over the dog",
	}

	input := make([]mapreduce.InputPair[int, string], len(lines))
	for i, line := range lines {
		input[i] = mapreduce.InputPair[int, string]{Key: i, Value: line}
	}

	job, err := mapreduce.StartJob[int, string, string, int, string, int](client{}, input, cfg.Workers)
	if err != nil {
		panic(err)
	}
	defer job.Close()

	if err := job.Wait(context.Background()); err != nil {
		panic(err)
	}

	out := job.Output()
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	for _, p := range out {
		fmt.Printf("%-8s %d\n", p.Key, p.Value)
	}
}
