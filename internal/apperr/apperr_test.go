package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/go-sql-driver/mysql"
	"gorm.io/gorm"
)

func TestClassifyMySQLDuplicateEntry(t *testing.T) {
	raw := &mysql.MySQLError{Number: 1062, Message: "Duplicate entry 'CMU' for key 'name'"}
	err := ClassifyMySQL(fmt.Errorf("insert university: %w", raw))
	if !IsDuplicateEntry(err) {
		t.Fatalf("expected duplicate_entry, got code %q", CodeOf(err))
	}
	var myErr *mysql.MySQLError
	if !errors.As(err, &myErr) {
		t.Fatalf("expected original mysql error to stay reachable via errors.As")
	}
}

func TestClassifyMySQLReferentialIntegrity(t *testing.T) {
	for _, errno := range []uint16{1451, 1452} {
		err := ClassifyMySQL(&mysql.MySQLError{Number: errno})
		if !IsReferentialIntegrity(err) {
			t.Fatalf("errno %d: expected referential_integrity, got %q", errno, CodeOf(err))
		}
	}
}

func TestClassifyMySQLRecordNotFound(t *testing.T) {
	err := ClassifyMySQL(fmt.Errorf("load publication: %w", gorm.ErrRecordNotFound))
	if !IsNotFound(err) {
		t.Fatalf("expected not_found, got %q", CodeOf(err))
	}
}

func TestClassifyMySQLPassesThroughUnknown(t *testing.T) {
	raw := errors.New("syntax error near SELECT")
	err := ClassifyMySQL(raw)
	if CodeOf(err) != "" {
		t.Fatalf("expected unclassified error to keep empty code, got %q", CodeOf(err))
	}
	if !errors.Is(err, raw) {
		t.Fatalf("expected original error identity preserved")
	}
}

func TestClassifyMySQLKeepsExistingClassification(t *testing.T) {
	orig := New(CodeValidation, errors.New("bad year"))
	err := ClassifyMySQL(fmt.Errorf("wrap: %w", orig))
	if !IsValidation(err) {
		t.Fatalf("expected validation code preserved, got %q", CodeOf(err))
	}
}

func TestClassifyMySQLNil(t *testing.T) {
	if err := ClassifyMySQL(nil); err != nil {
		t.Fatalf("expected nil, got %v", err)
	}
}
