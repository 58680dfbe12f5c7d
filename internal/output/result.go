// Package output turns a finished assignment into result artifacts.
package output

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/VDandavate/Secret-Santa-Generator/internal/match"
	"github.com/VDandavate/Secret-Santa-Generator/internal/participant"
)

// Pair is one giver and the person they give to.
type Pair struct {
	Giver    participant.Participant `json:"giver"`
	Receiver participant.Participant `json:"receiver"`
}

// Pairs resolves an assignment against the directory, ordered by category
// then giver ID.
func Pairs(dir participant.Directory, a match.Assignment) ([]Pair, error) {
	pairs := make([]Pair, 0, len(a))
	for _, sender := range a.Senders() {
		giver, ok := dir[sender]
		if !ok {
			return nil, fmt.Errorf("output: unknown giver %s", sender)
		}
		receiver, ok := dir[a[sender]]
		if !ok {
			return nil, fmt.Errorf("output: unknown receiver %s", a[sender])
		}
		pairs = append(pairs, Pair{Giver: giver, Receiver: receiver})
	}
	sort.SliceStable(pairs, func(i, j int) bool {
		if pairs[i].Giver.Category != pairs[j].Giver.Category {
			return pairs[i].Giver.Category < pairs[j].Giver.Category
		}
		return pairs[i].Giver.ID < pairs[j].Giver.ID
	})
	return pairs, nil
}

// WriteText writes one CSV line per giver:
// giver_first,giver_last,giver_email,receiver_first,receiver_last,receiver_email
func WriteText(path string, pairs []Pair) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("output: ensure dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("output: create %s: %w", path, err)
	}
	w := csv.NewWriter(f)
	for _, p := range pairs {
		record := []string{
			p.Giver.FirstName, p.Giver.LastName, p.Giver.ID,
			p.Receiver.FirstName, p.Receiver.LastName, p.Receiver.ID,
		}
		if err := w.Write(record); err != nil {
			f.Close()
			return fmt.Errorf("output: write %s: %w", path, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		return fmt.Errorf("output: write %s: %w", path, err)
	}
	return f.Close()
}

// Document is the JSON result format.
type Document struct {
	RunID       string    `json:"run_id"`
	GeneratedAt time.Time `json:"generated_at"`
	Seed        int64     `json:"seed"`
	Pairs       []Pair    `json:"pairs"`
}

// WriteJSON writes the result document, creating parent directories.
func WriteJSON(path string, doc Document) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("output: ensure dir: %w", err)
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("output: encode result: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("output: write %s: %w", path, err)
	}
	return nil
}

// ReadJSON reads a result document written by WriteJSON.
func ReadJSON(path string) (Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Document{}, err
	}
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return Document{}, fmt.Errorf("output: parse %s: %w", path, err)
	}
	return doc, nil
}
