// Package metadata projects cleaned articles into the flat labelling table.
package metadata

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/IshaanNene/NewsGoat/internal/storage"
	"github.com/IshaanNene/NewsGoat/internal/temporal"
	"github.com/IshaanNene/NewsGoat/internal/types"
)

// Unset fills every label column until a labeller writes it.
const Unset = "UNSET"

// Columns is the header of the labelling table. Downstream tools depend on
// this exact order.
var Columns = []string{
	"article_id",
	"published_date",
	"t",
	"title",
	"source",
	"url",
	"clean_body",
	"rule_label",
	"rule_reason",
	"llm_label",
	"llm_reason",
	"kg_validation_result",
	"final_label",
	"label_source",
	"t_bin",
}

// Row is one article of the labelling table.
type Row struct {
	ArticleID     string
	PublishedDate string
	T             int
	Title         string
	Source        string
	URL           string
	CleanBody     string

	RuleLabel          string
	RuleReason         string
	LLMLabel           string
	LLMReason          string
	KGValidationResult string
	FinalLabel         string
	LabelSource        string

	TBin temporal.Bin
}

// Skipped reports an input record that produced no row.
type Skipped struct {
	Index int
	URL   string
	Err   error
}

// Build projects records in order. Ids are assigned by input position,
// so a skipped record leaves a gap in the sequence.
func Build(records []*types.Record, ref time.Time, policy temporal.NegativePolicy) ([]Row, []Skipped) {
	rows := make([]Row, 0, len(records))
	var skipped []Skipped

	for i, rec := range records {
		pub, err := temporal.ParseDate(rec.Date())
		if err != nil {
			skipped = append(skipped, Skipped{Index: i, URL: rec.URL(), Err: err})
			continue
		}
		t, bin, err := temporal.ComputeAge(pub, ref, policy)
		if err != nil {
			skipped = append(skipped, Skipped{Index: i, URL: rec.URL(), Err: err})
			continue
		}

		rows = append(rows, Row{
			ArticleID:          fmt.Sprintf("A%04d", i),
			PublishedDate:      pub.Format(temporal.DateLayout),
			T:                  t,
			Title:              rec.Title(),
			Source:             rec.Source(),
			URL:                rec.URL(),
			CleanBody:          rec.CleanBody(),
			RuleLabel:          Unset,
			RuleReason:         Unset,
			LLMLabel:           Unset,
			LLMReason:          Unset,
			KGValidationResult: Unset,
			FinalLabel:         Unset,
			LabelSource:        Unset,
			TBin:               bin,
		})
	}
	return rows, skipped
}

// Values returns the row in Columns order.
func (r Row) Values() []string {
	return []string{
		r.ArticleID,
		r.PublishedDate,
		strconv.Itoa(r.T),
		r.Title,
		r.Source,
		r.URL,
		r.CleanBody,
		r.RuleLabel,
		r.RuleReason,
		r.LLMLabel,
		r.LLMReason,
		r.KGValidationResult,
		r.FinalLabel,
		r.LabelSource,
		string(r.TBin),
	}
}

// WriteCSV writes the header and rows to w.
func WriteCSV(w io.Writer, rows []Row) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Columns); err != nil {
		return fmt.Errorf("write CSV header: %w", err)
	}
	for _, r := range rows {
		if err := cw.Write(r.Values()); err != nil {
			return fmt.Errorf("write CSV row %s: %w", r.ArticleID, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteFile replaces the table at path.
func WriteFile(path string, rows []Row) error {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, rows); err != nil {
		return err
	}
	return storage.WriteFileAtomic(path, buf.Bytes())
}
