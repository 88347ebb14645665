package snapshot

import (
	"fmt"
	"log"
	"os"

	"github.com/TobiSchelling/LibLoans/internal/checksum"
)

// Dedup removes redundant snapshots from baseDir. Whenever three consecutive
// snapshots have identical content the middle one is deleted, so a run of
// unchanged captures keeps only its first and last. It returns the names of
// the removed snapshots.
func Dedup(baseDir string) ([]string, error) {
	snaps, err := List(baseDir)
	if err != nil {
		return nil, err
	}

	var removed []string
	var prev1, prev2 string
	var prev2Snap Snapshot
	for _, s := range snaps {
		sum, err := checksum.Tree(s.Path)
		if err != nil {
			return removed, fmt.Errorf("hashing snapshot %s: %w", s.Name, err)
		}
		if prev2 != "" && sum == prev2 && prev2 == prev1 {
			log.Printf("Removing duplicate snapshot %s", prev2Snap.Name)
			if err := os.RemoveAll(prev2Snap.Path); err != nil {
				return removed, fmt.Errorf("removing snapshot %s: %w", prev2Snap.Name, err)
			}
			removed = append(removed, prev2Snap.Name)
		}
		prev1, prev2, prev2Snap = prev2, sum, s
	}
	return removed, nil
}
