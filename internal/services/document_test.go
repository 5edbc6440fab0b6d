package services

import (
	"testing"

	"github.com/yungbote/academicworld-backend/internal/apperr"
	"github.com/yungbote/academicworld-backend/internal/types"
)

func intPtr(v int) *int { return &v }

func TestValidatePublicationFiltersBlankUniversity(t *testing.T) {
	_, err := validatePublicationFilters([]string{"CMU", "  "}, nil)
	if !apperr.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestValidatePublicationFiltersReversedRange(t *testing.T) {
	_, err := validatePublicationFilters(nil, &types.YearRange{Min: intPtr(2010), Max: intPtr(2000)})
	if !apperr.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestValidatePublicationFiltersHalfOpenRange(t *testing.T) {
	_, err := validatePublicationFilters(nil, &types.YearRange{Min: intPtr(2000)})
	if !apperr.IsValidation(err) {
		t.Fatalf("expected validation error for missing max, got %v", err)
	}
}

func TestValidatePublicationFiltersTrims(t *testing.T) {
	trimmed, err := validatePublicationFilters([]string{" CMU "}, &types.YearRange{Min: intPtr(2000), Max: intPtr(2010)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(trimmed) != 1 || trimmed[0] != "CMU" {
		t.Fatalf("expected trimmed names, got %v", trimmed)
	}
}

func TestBuildPublicationsPipelineNoFilters(t *testing.T) {
	pipeline := buildPublicationsPipeline(nil, nil)
	// project, lookup, unwind, group, sort; no match stage without filters
	if len(pipeline) != 5 {
		t.Fatalf("expected 5 stages, got %d", len(pipeline))
	}
	for _, stage := range pipeline {
		if stage[0].Key == "$match" {
			t.Fatalf("unexpected $match stage in unfiltered pipeline")
		}
	}
}

func TestBuildPublicationsPipelineWithFilters(t *testing.T) {
	pipeline := buildPublicationsPipeline([]string{"CMU"}, &types.YearRange{Min: intPtr(2000), Max: intPtr(2010)})
	if len(pipeline) != 6 {
		t.Fatalf("expected 6 stages, got %d", len(pipeline))
	}
	if pipeline[3][0].Key != "$match" {
		t.Fatalf("expected $match as stage 4, got %q", pipeline[3][0].Key)
	}
	if pipeline[5][0].Key != "$sort" {
		t.Fatalf("expected $sort last, got %q", pipeline[5][0].Key)
	}
}

func TestYearRangeOfFiltersInvalidYears(t *testing.T) {
	r := yearRangeOf([]interface{}{int32(1999), int64(2021), -5, 0, "2020", 3.5, float64(2005)})
	if r.Min == nil || r.Max == nil {
		t.Fatalf("expected populated range, got %+v", r)
	}
	if *r.Min != 1999 || *r.Max != 2021 {
		t.Fatalf("expected [1999, 2021], got [%d, %d]", *r.Min, *r.Max)
	}
}

func TestYearRangeOfEmpty(t *testing.T) {
	r := yearRangeOf([]interface{}{"n/a", -1})
	if r.Min != nil || r.Max != nil {
		t.Fatalf("expected [nil, nil], got %+v", r)
	}
}
