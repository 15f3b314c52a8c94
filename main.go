package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"

	"btree/btree"
	"btree/cli"

	"github.com/fatih/color"
	"github.com/go-faker/faker/v4"
	"github.com/sirupsen/logrus"
)

var shouldSeed, debug, noColor *bool
var order, seedNumRecords *int

// seedRecord bounds the generated keys so that a seeded tree stays readable when printed.
type seedRecord struct {
	Key int   `faker:"boundary_start=1, boundary_end=999"`
	Rec int64 `faker:"boundary_start=1, boundary_end=1000000"`
}

func seedTreeWithTestRecords(t *btree.Btree, log logrus.FieldLogger) {
	inserted := 0
	for i := 0; i < *seedNumRecords; i++ {
		var r seedRecord
		if err := faker.FakeData(&r); err != nil {
			log.WithError(err).Fatal("generating seed record")
		}
		if t.Put(r.Key, r.Rec) {
			inserted++
		}
	}
	log.WithFields(logrus.Fields{"records": *seedNumRecords, "keys": inserted}).Info("seeded tree")
}

func main() {
	setupFlags()

	log := logrus.StandardLogger()
	if *debug {
		log.SetLevel(logrus.DebugLevel)
	}
	color.NoColor = color.NoColor || *noColor

	tree, err := btree.NewBTree(*order, btree.WithLogger(log))
	if err != nil {
		log.Fatal(err)
	}

	if *shouldSeed {
		seedTreeWithTestRecords(tree, log)
	}

	scanner := bufio.NewScanner(os.Stdin)
	demo := cli.NewCli(scanner, tree, os.Stdout, log)
	demo.Start()
}

func setupFlags() {
	order = flag.Int("order", 4, "Maximum number of children per node.")
	shouldSeed = flag.Bool("seed", false, "Seed the tree using records created with go-faker.")
	seedNumRecords = flag.Int("records", 20, "Amount of records to seed the tree with upon startup.")
	debug = flag.Bool("debug", false, "Log splits, rotations and merges.")
	noColor = flag.Bool("no-color", false, "Disable colored output.")
	flag.Usage = func() {
		fmt.Println("\nB-Tree CLI\n\nArguments:")
		flag.PrintDefaults()
	}
	flag.Parse()
}
