// Command demo writes and reads a handful of virtual addresses, printing
// each physical translation, to demonstrate faulting-in new frames on
// first touch and consistent reads thereafter.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/KimMachineGun/automemlimit/memlimit"
	"go.uber.org/automaxprocs/maxprocs"

	"github.com/avikfir/pagedvm"
	"github.com/joeycumines/izerolog"
	"github.com/rs/zerolog"
)

func init() {
	if _, err := maxprocs.Set(maxprocs.Logger(log.Printf)); err != nil {
		log.Printf("automaxprocs: %v", err)
	}
	if _, err := memlimit.SetGoMemLimitWithOpts(); err != nil {
		log.Printf("automemlimit: %v", err)
	}
}

// config is the subset of build/run-time parameters this demo accepts
// from a TOML file (spec.md's VIRTUAL_ADDRESS_WIDTH/OFFSET_WIDTH/
// NUM_FRAMES/NUM_PAGES knobs).
type config struct {
	VirtualAddressWidth uint   `toml:"virtual_address_width"`
	OffsetWidth         uint   `toml:"offset_width"`
	NumFrames           uint64 `toml:"num_frames"`
	NumPages            uint64 `toml:"num_pages"`
}

func loadConfig(path string) config {
	cfg := config{
		VirtualAddressWidth: 16,
		OffsetWidth:         4,
		NumFrames:           32,
		NumPages:            1 << 12,
	}
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
	pagedvm.SetLogger(izerolog.L.New(izerolog.L.WithZerolog(zl)).Logger())

	tr := pagedvm.NewTranslator(pagedvm.Params{
		VirtualAddressWidth: cfg.VirtualAddressWidth,
		OffsetWidth:         cfg.OffsetWidth,
		NumFrames:           cfg.NumFrames,
		NumPages:            cfg.NumPages,
	})
	tr.Initialize()

	addrs := []uint64{0x10, 0x1234, 0x4000, 0x1234}
	for i, va := range addrs {
		ok := tr.Write(va, int64(i*10))
		fmt.Printf("write va=0x%x value=%d ok=%v\n", va, i*10, ok)
	}
	for _, va := range addrs {
		v, ok := tr.Read(va)
		fmt.Printf("read  va=0x%x value=%d ok=%v\n", va, v, ok)
	}
}
