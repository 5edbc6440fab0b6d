package aggregate

import (
	"testing"

	"github.com/yungbote/academicworld-backend/internal/types"
)

func TestCoerceDecimalBytes(t *testing.T) {
	// MySQL SUM() over an int column yields DECIMAL, which the driver hands
	// back as []byte.
	f, ok := Coerce([]byte("1234.5"))
	if !ok || f != 1234.5 {
		t.Fatalf("expected 1234.5, got %v ok=%v", f, ok)
	}
	if _, ok := Coerce("not a number"); ok {
		t.Fatalf("expected coercion failure for non-numeric string")
	}
	if _, ok := Coerce(struct{}{}); ok {
		t.Fatalf("expected coercion failure for struct")
	}
}

func TestAddRowRejectsShapeMismatch(t *testing.T) {
	tab := NewTable([]string{DimUniversity}, []string{"m"})
	if err := tab.AddRow([]string{"a", "b"}, 1); err == nil {
		t.Fatalf("expected dimension arity error")
	}
	if err := tab.AddRow([]string{"a"}, 1, 2); err == nil {
		t.Fatalf("expected measure arity error")
	}
	if err := tab.AddRow([]string{"a"}, "NaN-ish"); err == nil {
		t.Fatalf("expected non-numeric measure error")
	}
	if len(tab.Rows) != 0 {
		t.Fatalf("rejected rows must not be appended, got %d", len(tab.Rows))
	}
}

func TestFromPublicationsOverTimeUniformNaming(t *testing.T) {
	tab := FromPublicationsOverTime([]types.PublicationCount{
		{University: "CMU", Year: 2001, Count: 3},
		{University: "MIT", Year: 2002, Count: 5},
	})
	if tab.Dimensions[0] != DimUniversity || tab.Dimensions[1] != DimYear {
		t.Fatalf("unexpected dimensions: %v", tab.Dimensions)
	}
	if len(tab.Rows) != 2 || tab.Rows[0].Dims[1] != "2001" || tab.Rows[1].Vals[0] != 5 {
		t.Fatalf("unexpected rows: %+v", tab.Rows)
	}
}

func TestFromKRCEmpty(t *testing.T) {
	tab := FromKRC(nil)
	if !tab.Empty() {
		t.Fatalf("expected empty table")
	}
	if tab.Rows == nil {
		t.Fatalf("empty table still carries a non-nil row slice for JSON encoding")
	}
}
