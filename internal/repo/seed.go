package repo

import (
	"encoding/json"

	_ "embed"

	"github.com/franz/worshipnote/internal/song"
)

//go:embed seed.json
var seedData []byte

// loadSeed parses the starter database shipped with the binary. It is only
// consulted when both stores are empty, so a first run has something to
// show.
func loadSeed() (*Collections, error) {
	var doc struct {
		Songs        []song.Song       `json:"songs"`
		WorshipLists song.WorshipLists `json:"worshipLists"`
	}
	if err := json.Unmarshal(seedData, &doc); err != nil {
		return nil, err
	}
	if doc.WorshipLists == nil {
		doc.WorshipLists = song.WorshipLists{}
	}
	return &Collections{Songs: doc.Songs, Lists: doc.WorshipLists}, nil
}
