package aggregate

import (
	"fmt"
	"strconv"

	"github.com/yungbote/academicworld-backend/internal/types"
)

// Table is the uniform tabular shape handed to the rendering layer: named
// string dimensions followed by named numeric measures, one Row per group.
type Table struct {
	Dimensions []string `json:"dimensions"`
	Measures   []string `json:"measures"`
	Rows       []Row    `json:"rows"`
}

type Row struct {
	Dims []string  `json:"dims"`
	Vals []float64 `json:"vals"`
}

func NewTable(dimensions, measures []string) Table {
	return Table{
		Dimensions: dimensions,
		Measures:   measures,
		Rows:       []Row{},
	}
}

// AddRow coerces each measure to float64; non-numeric measures become an
// error so a malformed store result never silently renders as zero.
func (t *Table) AddRow(dims []string, measures ...interface{}) error {
	if len(dims) != len(t.Dimensions) {
		return fmt.Errorf("row has %d dimensions, table declares %d", len(dims), len(t.Dimensions))
	}
	if len(measures) != len(t.Measures) {
		return fmt.Errorf("row has %d measures, table declares %d", len(measures), len(t.Measures))
	}
	vals := make([]float64, len(measures))
	for i, m := range measures {
		f, ok := Coerce(m)
		if !ok {
			return fmt.Errorf("measure %q is not numeric: %T(%v)", t.Measures[i], m, m)
		}
		vals[i] = f
	}
	t.Rows = append(t.Rows, Row{Dims: dims, Vals: vals})
	return nil
}

func (t Table) Empty() bool { return len(t.Rows) == 0 }

// Coerce converts the numeric shapes the three drivers hand back (ints,
// floats, and MySQL DECIMAL arriving as a string or []byte) to float64.
// Values here are visualization-scale, so float64 carries them exactly.
func Coerce(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case []byte:
		f, err := strconv.ParseFloat(string(n), 64)
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(n, 64)
		return f, err == nil
	default:
		return 0, false
	}
}

// Dimension names are uniform across services: a "university" column from
// the relational, document, or graph store all normalize to the same name.
const (
	DimUniversity = "university"
	DimFaculty    = "faculty"
	DimYear       = "year"
)

func FromCitationRanking(rows []types.CitationRank) Table {
	t := NewTable([]string{DimFaculty}, []string{"total_citations"})
	for _, r := range rows {
		_ = t.AddRow([]string{r.Faculty}, r.TotalCitations)
	}
	return t
}

func FromKeywordScores(rows []types.UniversityScore) Table {
	t := NewTable([]string{DimUniversity}, []string{"total_score"})
	for _, r := range rows {
		_ = t.AddRow([]string{r.University}, r.TotalScore)
	}
	return t
}

func FromPublicationsOverTime(rows []types.PublicationCount) Table {
	t := NewTable([]string{DimUniversity, DimYear}, []string{"publications"})
	for _, r := range rows {
		_ = t.AddRow([]string{r.University, strconv.Itoa(r.Year)}, r.Count)
	}
	return t
}

func FromKRC(rows []types.InstituteKRC) Table {
	t := NewTable([]string{DimUniversity}, []string{"total_krc"})
	for _, r := range rows {
		_ = t.AddRow([]string{r.University}, r.TotalKRC)
	}
	return t
}
