package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/mesh-intelligence/cardsets/pkg/types"
)

const timeFormat = "2006-01-02 15:04:05"

// cardSetJSON is the --json shape of a card set.
type cardSetJSON struct {
	CardSetID   string    `json:"card_set_id"`
	Name        string    `json:"name"`
	Parent      string    `json:"parent"`
	Author      string    `json:"author"`
	Comment     string    `json:"comment"`
	Annotations string    `json:"annotations"`
	InUse       bool      `json:"in_use"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func toJSON(cs *types.CardSet) cardSetJSON {
	return cardSetJSON{
		CardSetID:   cs.CardSetID,
		Name:        cs.Name,
		Parent:      cs.Parent,
		Author:      cs.Author,
		Comment:     cs.Comment,
		Annotations: cs.Annotations,
		InUse:       cs.InUse,
		CreatedAt:   cs.CreatedAt,
		UpdatedAt:   cs.UpdatedAt,
	}
}

func toJSONList(sets []*types.CardSet) []cardSetJSON {
	out := make([]cardSetJSON, 0, len(sets))
	for _, cs := range sets {
		out = append(out, toJSON(cs))
	}
	return out
}

// writeJSON writes v as indented JSON followed by a newline.
func writeJSON(w io.Writer, v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return sysError(fmt.Errorf("marshal JSON: %w", err))
	}
	_, err = fmt.Fprintln(w, string(out))
	return err
}

// writeNames writes one name per line.
func writeNames(w io.Writer, sets []*types.CardSet) {
	for _, cs := range sets {
		fmt.Fprintln(w, cs.Name)
	}
}

// formatLoop renders loop names in parent order, closing back on the first.
func formatLoop(names []string) string {
	if len(names) == 0 {
		return ""
	}
	return strings.Join(append(append([]string{}, names...), names[0]), " -> ")
}
