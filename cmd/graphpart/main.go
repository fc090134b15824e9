// Command graphpart is a thin wiring demo: ingest a binary edgelist
// (shuffling it first when the algorithm is SNE), run one of the three
// partitioners, and report the resulting metrics. It takes no flags — file paths and the algorithm choice are
// constants at the top of main, not a CLI surface (see SPEC_FULL.md §1).
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/sccWisdom/graphcode/ingest"
	"github.com/sccWisdom/graphcode/partition"
	"github.com/sccWisdom/graphcode/shuffle"
)

const (
	edgelistPath = "graph.binedgelist"
	algorithm    = "hdrf" // one of "dbh", "hdrf", "sne"
	partitions   = 4
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	substrate, err := ingest.Open(edgelistPath)
	if err != nil {
		return fmt.Errorf("opening %s: %w", edgelistPath, err)
	}

	dir, err := os.MkdirTemp("", "graphpart-")
	if err != nil {
		return err
	}
	defer os.RemoveAll(dir)

	cfg := partition.Config{
		P:              partitions,
		MemBudgetBytes: 64 << 20,
		SampleRatio:    0.1,
		Seed:           1,
		Logger:         log.Default(),
	}

	degreePath := edgelistPath + ".degree"
	assignPath := filepath.Join(dir, "assignment.bin")

	var metrics *partition.Metrics
	switch algorithm {
	case "dbh":
		p, err := partition.NewDbhPartitioner(edgelistPath, degreePath, assignPath, cfg)
		if err != nil {
			return err
		}
		metrics, err = p.Split()
		if err != nil {
			return err
		}
	case "hdrf":
		p, err := partition.NewHdrfPartitioner(edgelistPath, degreePath, assignPath, cfg)
		if err != nil {
			return err
		}
		metrics, err = p.Split()
		if err != nil {
			return err
		}
	case "sne":
		shuffledPath, shuffledDegreePath, err := shuffleEdgelist(dir, substrate)
		if err != nil {
			return err
		}
		p, err := partition.NewSnePartitioner(shuffledPath, shuffledDegreePath, assignPath, cfg)
		if err != nil {
			return err
		}
		metrics, err = p.Split()
		if err != nil {
			return err
		}
	default:
		return fmt.Errorf("unknown algorithm %q", algorithm)
	}

	fmt.Printf("partitions=%d balance=%.4f replication=%.4f elapsed=%v\n",
		partitions, metrics.Balance, metrics.ReplicationFactor, metrics.ElapsedTime)
	fmt.Printf("assignment written to %s\n", assignPath)
	return nil
}

// shuffleEdgelist materializes a randomized-order copy of substrate's
// underlying edgelist, which SNE requires so its sample window is not
// biased toward the original ingestion order. It returns the shuffled
// edgelist path and the degree sidecar the Shuffler wrote for it, which
// matches the Shuffler's renumbered vertex ids.
func shuffleEdgelist(dir string, substrate *ingest.Substrate) (string, string, error) {
	scan, err := substrate.MappedScan()
	if err != nil {
		return "", "", err
	}
	defer scan.Close()

	sh := shuffle.New(context.Background(), shuffle.Config{
		Dir:            dir,
		BaseName:       "shuffled",
		MemBudgetBytes: 64 << 20,
		Seed:           2,
	})
	for {
		e, ok := scan.Next()
		if !ok {
			break
		}
		sh.AddEdge(e.U, e.V)
	}
	result, err := sh.Finalize()
	if err != nil {
		return "", "", err
	}
	return result.EdgelistPath, result.DegreePath, nil
}
