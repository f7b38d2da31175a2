package casefiles

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"golang.org/x/sync/singleflight"

	"github.com/vb-entreprise/rrsa-server/internal/repository"
)

const (
	// CasePrefix is the fixed prefix of every case number.
	CasePrefix = "CS"
	// sequenceWidth is the zero-padded digit count of the numeric suffix.
	sequenceWidth = 7
)

// CaseLister is the allocator's view of the case repository.
type CaseLister interface {
	GetAll(ctx context.Context) []repository.Record[CasePaper]
}

// SequenceAllocator derives the next case number from the records that
// already exist: scan every case, take the highest numeric suffix among
// well-formed numbers, and move one past it. Numbers are never reused,
// so gaps from deleted cases are expected; regressions are not.
//
// When the scan cannot run at all the allocator answers with the first
// number of the sequence rather than blocking case creation; the operator
// resolves the rare resulting collision by hand. Concurrent in-process
// calls share one scan via singleflight, which narrows, but does not
// close, the scan-and-increment race across processes.
type SequenceAllocator struct {
	cases  CaseLister
	logger *slog.Logger
	group  singleflight.Group
}

// NewSequenceAllocator constructs a SequenceAllocator.
func NewSequenceAllocator(cases CaseLister, logger *slog.Logger) *SequenceAllocator {
	if logger == nil {
		logger = slog.Default()
	}
	return &SequenceAllocator{cases: cases, logger: logger}
}

// Next returns the next case number, formatted as CS- plus a seven digit
// zero-padded integer.
func (a *SequenceAllocator) Next(ctx context.Context) string {
	value, _, _ := a.group.Do("next", func() (any, error) {
		return a.scan(ctx), nil
	})
	return value.(string)
}

func (a *SequenceAllocator) scan(ctx context.Context) string {
	max := 0
	for _, rec := range a.cases.GetAll(ctx) {
		suffix, ok := strings.CutPrefix(rec.Data.CaseNumber, CasePrefix+"-")
		if !ok || len(suffix) != sequenceWidth || !allDigits(suffix) {
			// Malformed or foreign-format numbers are ignored, not fatal.
			continue
		}
		n, err := strconv.Atoi(suffix)
		if err != nil {
			continue
		}
		if n > max {
			max = n
		}
	}
	return fmt.Sprintf("%s-%0*d", CasePrefix, sequenceWidth, max+1)
}

// allDigits rejects suffixes that Atoi would still accept, such as a
// leading sign.
func allDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
