package importer

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"giftcard-store/internal/domain"
	"giftcard-store/internal/repository/giftcard"
)

// CSVImporter reads a gift-card catalog export and inserts/updates
// denominations. Expected columns: id, name, value.centAmount, currency,
// description; extra columns are ignored.
type CSVImporter struct {
	reader *csv.Reader
	cards  giftcard.Writer
}

func NewCSVImporter(r io.Reader, repo giftcard.Writer) *CSVImporter {
	csvr := csv.NewReader(r)
	csvr.FieldsPerRecord = -1 // rows may have trailing commas
	return &CSVImporter{reader: csvr, cards: repo}
}

// Run parses CSV rows and upserts gift cards. Rows without an id are
// skipped; a malformed row aborts the import with the count so far.
func (i *CSVImporter) Run(ctx context.Context) (int, error) {
	headers, err := i.reader.Read()
	if err != nil {
		return 0, fmt.Errorf("read headers: %w", err)
	}
	index := headerIndex(headers)

	var imported int
	for {
		record, err := i.reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return imported, fmt.Errorf("read row: %w", err)
		}

		card, ok := parseRow(record, index)
		if !ok {
			continue
		}
		if err := validate(card); err != nil {
			return imported, err
		}

		if _, err := i.cards.Upsert(ctx, card); err != nil {
			return imported, fmt.Errorf("upsert gift card %q: %w", card.ID, err)
		}
		imported++
	}

	return imported, nil
}

func validate(card domain.GiftCard) error {
	if card.Name == "" || card.ValueCents <= 0 || card.Currency == "" {
		return fmt.Errorf("invalid gift card row (missing required fields) for id %q", card.ID)
	}
	return nil
}

func headerIndex(headers []string) map[string]int {
	idx := make(map[string]int, len(headers))
	for i, h := range headers {
		idx[h] = i
	}
	return idx
}

func parseRow(record []string, index map[string]int) (domain.GiftCard, bool) {
	id := pick(record, index, "id")
	if id == "" {
		return domain.GiftCard{}, false
	}

	var cents int64
	if centStr := pick(record, index, "value.centAmount"); centStr != "" {
		cents, _ = strconv.ParseInt(centStr, 10, 64)
	}

	return domain.GiftCard{
		ID:          id,
		Name:        pick(record, index, "name"),
		ValueCents:  cents,
		Currency:    pick(record, index, "currency"),
		Description: pick(record, index, "description"),
	}, true
}

func pick(record []string, index map[string]int, key string) string {
	pos, ok := index[key]
	if !ok || pos >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[pos])
}
