// Command basic spawns two threads that take turns yielding, demonstrating
// round-robin dispatch and the quantum counters.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/KimMachineGun/automemlimit/memlimit"
	"go.uber.org/automaxprocs/maxprocs"

	"github.com/avikfir/uthreads"
	"github.com/joeycumines/izerolog"
	"github.com/rs/zerolog"
)

func init() {
	// automaxprocs only matters up to the uthreads.Init call below, which
	// pins GOMAXPROCS to 1 for the scheduler's own invariant; setting it
	// first still gives a correct container-aware default for whatever
	// runs before that point (config/log setup).
	if _, err := maxprocs.Set(maxprocs.Logger(log.Printf)); err != nil {
		log.Printf("automaxprocs: %v", err)
	}
	if _, err := memlimit.SetGoMemLimitWithOpts(); err != nil {
		log.Printf("automemlimit: %v", err)
	}
}

// config is the subset of build/run-time parameters this demo accepts
// from a TOML file (spec.md's quantum knob).
type config struct {
	QuantumMillis int `toml:"quantum_millis"`
}

func loadConfig(path string) config {
	cfg := config{QuantumMillis: 10}
	if _, err := toml.DecodeFile(path, &cfg); err != nil && !os.IsNotExist(err) {
		log.Printf("config: %v", err)
	}
	return cfg
}

func main() {
	configPath := flag.String("config", "config.toml", "path to a TOML config file")
	flag.Parse()
	cfg := loadConfig(*configPath)

	zl := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
	uthreads.SetLogger(izerolog.L.New(izerolog.L.WithZerolog(zl)).Logger())

	if err := uthreads.Init(time.Duration(cfg.QuantumMillis) * time.Millisecond); err != nil {
		panic(err)
	}

	done := make(chan struct{}, 2)
	spawn := func(name string) {
		_, err := uthreads.Spawn(func() {
			tid, _ := uthreads.GetTid()
			for i := 0; i < 5; i++ {
				fmt.Printf("%s (tid %d): iteration %d\n", name, tid, i)
				_ = uthreads.Yield()
			}
			done <- struct{}{}
		})
		if err != nil {
			panic(err)
		}
	}

	spawn("alpha")
	spawn("beta")

	<-done
	<-done

	total, _ := uthreads.GetTotalQuantums()
	fmt.Printf("total quantums elapsed: %d\n", total)
}
