package output

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/VDandavate/Secret-Santa-Generator/internal/match"
	"github.com/VDandavate/Secret-Santa-Generator/internal/participant"
)

var stamp = time.Date(2024, 12, 1, 9, 30, 5, 0, time.UTC)

func testDirectory() participant.Directory {
	return participant.Directory{
		"a@example.com": {ID: "a@example.com", FirstName: "Alice", LastName: "A", Family: "F1", Category: "P"},
		"b@example.com": {ID: "b@example.com", FirstName: "Bob", LastName: "B", Family: "F2", Category: "P"},
		"c@example.com": {ID: "c@example.com", FirstName: "Charlie", LastName: "C, Jr.", Family: "F3", Category: "C"},
		"d@example.com": {ID: "d@example.com", FirstName: "David", LastName: "D", Family: "F1", Category: "C"},
	}
}

func TestNamerUsesRosterBaseAndTimestamp(t *testing.T) {
	n := NewNamer(filepath.Join("lists", "TestParticipants.txt"), "", stamp)
	if n.Dir != "lists" || n.Base != "TestParticipants" || n.Stamp != "20241201093005" {
		t.Fatalf("unexpected namer: %+v", n)
	}
}

func TestNamerVersionsTakenNames(t *testing.T) {
	dir := t.TempDir()
	n := NewNamer(filepath.Join(dir, "family.csv"), "", stamp)
	first, err := n.Debug()
	if err != nil {
		t.Fatal(err)
	}
	if filepath.Base(first) != "family-Debug-20241201093005.txt" {
		t.Fatalf("debug name = %s", first)
	}
	if err := os.WriteFile(first, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	second, err := n.Debug()
	if err != nil {
		t.Fatal(err)
	}
	if filepath.Base(second) != "family-Debug-20241201093005-2.txt" {
		t.Fatalf("versioned debug name = %s", second)
	}
	result, err := n.Result(".json")
	if err != nil {
		t.Fatal(err)
	}
	if filepath.Base(result) != "family-Matched-20241201093005.json" {
		t.Fatalf("result name = %s", result)
	}
}

func TestPairsOrderedByCategoryThenGiver(t *testing.T) {
	a := match.Assignment{
		"a@example.com": "b@example.com",
		"b@example.com": "a@example.com",
		"c@example.com": "d@example.com",
		"d@example.com": "c@example.com",
	}
	pairs, err := Pairs(testDirectory(), a)
	if err != nil {
		t.Fatalf("pairs: %v", err)
	}
	var givers []string
	for _, p := range pairs {
		givers = append(givers, p.Giver.ID)
	}
	want := "c@example.com,d@example.com,a@example.com,b@example.com"
	if strings.Join(givers, ",") != want {
		t.Fatalf("givers = %v, want %s", givers, want)
	}
	if _, err := Pairs(testDirectory(), match.Assignment{"x@example.com": "a@example.com"}); err == nil {
		t.Fatalf("expected error for unknown giver")
	}
}

func TestWriteText(t *testing.T) {
	pairs, err := Pairs(testDirectory(), match.Assignment{
		"c@example.com": "d@example.com",
		"d@example.com": "c@example.com",
	})
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(t.TempDir(), "out", "family-Matched.txt")
	if err := WriteText(path, pairs); err != nil {
		t.Fatalf("write: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	want := "Charlie,\"C, Jr.\",c@example.com,David,D,d@example.com\n" +
		"David,D,d@example.com,Charlie,\"C, Jr.\",c@example.com\n"
	if string(data) != want {
		t.Fatalf("file = %q\nwant %q", string(data), want)
	}
}

func TestWriteAndReadJSON(t *testing.T) {
	pairs, err := Pairs(testDirectory(), match.Assignment{
		"a@example.com": "b@example.com",
		"b@example.com": "a@example.com",
	})
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(t.TempDir(), "result.json")
	doc := Document{RunID: "run-1", GeneratedAt: stamp, Seed: 9, Pairs: pairs}
	if err := WriteJSON(path, doc); err != nil {
		t.Fatalf("write: %v", err)
	}
	got, err := ReadJSON(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if got.RunID != "run-1" || got.Seed != 9 || len(got.Pairs) != 2 || !got.GeneratedAt.Equal(stamp) {
		t.Fatalf("unexpected document: %+v", got)
	}
	if got.Pairs[0].Receiver.FirstName != "Bob" {
		t.Fatalf("receiver not preserved: %+v", got.Pairs[0])
	}
}
